package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/repository"
)

type Repository struct {
	mu        sync.RWMutex
	cards     map[int64]map[string]models.OwnedCard
	tokens    map[int64]map[string]models.OwnedToken
	lineups   map[int64][]models.LineupResult
	follows   map[int64]int
	directory *models.PlayerDirectory
}

func NewRepository() *Repository {
	return &Repository{
		cards:   make(map[int64]map[string]models.OwnedCard),
		tokens:  make(map[int64]map[string]models.OwnedToken),
		lineups: make(map[int64][]models.LineupResult),
		follows: make(map[int64]int),
	}
}

var _ repository.Store = (*Repository)(nil)

func (r *Repository) SaveCard(_ context.Context, card models.OwnedCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cards[card.UserID] == nil {
		r.cards[card.UserID] = make(map[string]models.OwnedCard)
	}
	r.cards[card.UserID][card.ID] = card
	return nil
}

func (r *Repository) Card(_ context.Context, userID int64, cardID string) (models.OwnedCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.cards[userID][cardID]
	if !ok {
		return models.OwnedCard{}, repository.ErrNotFound
	}
	return card, nil
}

func (r *Repository) Cards(_ context.Context, userID int64) ([]models.OwnedCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.OwnedCard, 0, len(r.cards[userID]))
	for _, c := range r.cards[userID] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return acquiredBefore(out[i].AcquiredAt, out[j].AcquiredAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *Repository) SaveToken(_ context.Context, token models.OwnedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokens[token.UserID] == nil {
		r.tokens[token.UserID] = make(map[string]models.OwnedToken)
	}
	r.tokens[token.UserID][token.ID] = token
	return nil
}

func (r *Repository) Token(_ context.Context, userID int64, tokenID string) (models.OwnedToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.tokens[userID][tokenID]
	if !ok {
		return models.OwnedToken{}, repository.ErrNotFound
	}
	return token, nil
}

func (r *Repository) Tokens(_ context.Context, userID int64) ([]models.OwnedToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.OwnedToken, 0, len(r.tokens[userID]))
	for _, t := range r.tokens[userID] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return acquiredBefore(out[i].AcquiredAt, out[j].AcquiredAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *Repository) DeleteToken(_ context.Context, userID int64, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[userID][tokenID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tokens[userID], tokenID)
	return nil
}

func (r *Repository) SaveLineupResult(_ context.Context, result models.LineupResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lineups[result.UserID] = append(r.lineups[result.UserID], result)
	return nil
}

func (r *Repository) LineupResults(_ context.Context, userID int64) ([]models.LineupResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.LineupResult(nil), r.lineups[userID]...), nil
}

func (r *Repository) SaveFollow(_ context.Context, chatID int64, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.follows[chatID] = teamID
	return nil
}

func (r *Repository) DeleteFollow(_ context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.follows, chatID)
	return nil
}

func (r *Repository) Follows(context.Context) (map[int64]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64]int, len(r.follows))
	for k, v := range r.follows {
		out[k] = v
	}
	return out, nil
}

func (r *Repository) SaveDirectory(_ context.Context, dir *models.PlayerDirectory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.directory = dir
	return nil
}

func (r *Repository) Directory(context.Context) (*models.PlayerDirectory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.directory == nil {
		return nil, repository.ErrNotFound
	}
	return r.directory, nil
}

func acquiredBefore(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.Before(b)
}
