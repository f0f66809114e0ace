package repository

import (
	"context"
	"errors"

	"github.com/omarshaarawi/courtside/internal/models"
)

var ErrNotFound = errors.New("not found")

// Store persists user inventory, submitted lineups, team follows and the
// cached player directory.
type Store interface {
	SaveCard(ctx context.Context, card models.OwnedCard) error
	Card(ctx context.Context, userID int64, cardID string) (models.OwnedCard, error)
	Cards(ctx context.Context, userID int64) ([]models.OwnedCard, error)

	SaveToken(ctx context.Context, token models.OwnedToken) error
	Token(ctx context.Context, userID int64, tokenID string) (models.OwnedToken, error)
	Tokens(ctx context.Context, userID int64) ([]models.OwnedToken, error)
	DeleteToken(ctx context.Context, userID int64, tokenID string) error

	SaveLineupResult(ctx context.Context, result models.LineupResult) error
	LineupResults(ctx context.Context, userID int64) ([]models.LineupResult, error)

	SaveFollow(ctx context.Context, chatID int64, teamID int) error
	DeleteFollow(ctx context.Context, chatID int64) error
	Follows(ctx context.Context) (map[int64]int, error)

	SaveDirectory(ctx context.Context, dir *models.PlayerDirectory) error
	Directory(ctx context.Context) (*models.PlayerDirectory, error)
}
