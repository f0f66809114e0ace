package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/omarshaarawi/courtside/internal/api/nba"
	"github.com/omarshaarawi/courtside/internal/cache"
	"github.com/omarshaarawi/courtside/internal/gamestate"
	"github.com/omarshaarawi/courtside/internal/lineup"
	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/packs"
	"github.com/omarshaarawi/courtside/internal/reconcile"
	"github.com/omarshaarawi/courtside/internal/repository"
	"github.com/omarshaarawi/courtside/internal/resolver"
)

var ErrPlayerNotFound = errors.New("player not found")

// Gateway is the part of the upstream API the service reads directly.
type Gateway interface {
	Games(ctx context.Context, q nba.GamesQuery) ([]models.Game, error)
	Stats(ctx context.Context, q nba.StatsQuery) ([]models.GameStat, error)
	SeasonAverages(ctx context.Context, playerID, season int) (*models.SeasonAverages, error)
	Players(ctx context.Context, search string) ([]models.Player, error)
	ActivePlayers(ctx context.Context) ([]models.Player, error)
}

// Notifier delivers a message to a chat.
type Notifier func(chatID int64, text string)

type Deps struct {
	Gateway    Gateway
	Cache      *cache.GameCache
	Resolver   *resolver.Resolver
	Poller     *resolver.Poller
	Reconciler *reconcile.Reconciler
	Lineups    *lineup.Manager
	Packs      *packs.Generator
	Store      repository.Store
	Classifier gamestate.Classifier
	Clock      clockwork.Clock
	Season     int
	// DirectoryMaxAge is how long the player directory is trusted before a refetch.
	DirectoryMaxAge time.Duration
	// Location is used when rendering tip-off times.
	Location *time.Location
}

type FantasyService struct {
	Deps

	mu     sync.RWMutex
	notify Notifier
}

func NewFantasyService(deps Deps) *FantasyService {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.DirectoryMaxAge <= 0 {
		deps.DirectoryMaxAge = 24 * time.Hour
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &FantasyService{Deps: deps}
}

func (s *FantasyService) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = n
}

// RefreshDirectory refetches the active player list.
func (s *FantasyService) RefreshDirectory(ctx context.Context) error {
	players, err := s.Gateway.ActivePlayers(ctx)
	if err != nil && len(players) == 0 {
		return fmt.Errorf("fetching active players: %w", err)
	}
	if err != nil {
		slog.Warn("Player directory is incomplete", "players", len(players), "error", err)
	}
	dir := &models.PlayerDirectory{Players: players, LastUpdated: s.Clock.Now()}
	if err := s.Store.SaveDirectory(ctx, dir); err != nil {
		return fmt.Errorf("saving player directory: %w", err)
	}
	slog.Info("Player directory refreshed", "players", len(players))
	return nil
}

func (s *FantasyService) directory(ctx context.Context) (*models.PlayerDirectory, error) {
	dir, err := s.Store.Directory(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if dir == nil || s.Clock.Since(dir.LastUpdated) > s.DirectoryMaxAge {
		if err := s.RefreshDirectory(ctx); err != nil {
			if dir != nil {
				slog.Error("Serving stale player directory", "error", err)
				return dir, nil
			}
			return nil, err
		}
		return s.Store.Directory(ctx)
	}
	return dir, nil
}

// FindPlayer matches name against the player directory, falling back to an
// upstream search when nothing in the directory is close enough.
func (s *FantasyService) FindPlayer(ctx context.Context, name string) (models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Player{}, ErrPlayerNotFound
	}

	dir, err := s.directory(ctx)
	if err != nil {
		slog.Error("Error loading player directory", "error", err)
	} else if p, ok := bestMatch(dir.Players, name); ok {
		return p, nil
	}

	found, err := s.Gateway.Players(ctx, name)
	if err != nil {
		return models.Player{}, fmt.Errorf("searching players: %w", err)
	}
	if p, ok := bestMatch(found, name); ok {
		return p, nil
	}
	if len(found) > 0 {
		return found[0], nil
	}
	return models.Player{}, fmt.Errorf("%q: %w", name, ErrPlayerNotFound)
}

func bestMatch(players []models.Player, name string) (models.Player, bool) {
	var best *models.Player
	bestScore := 0.0
	threshold := 0.7
	query := strings.ToLower(name)

	for i, p := range players {
		candidates := []string{strings.ToLower(p.FullName()), strings.ToLower(p.LastName)}
		for _, candidate := range candidates {
			distance := fuzzy.LevenshteinDistance(query, candidate)
			maxLen := float64(max(len(query), len(candidate)))
			if maxLen == 0 {
				continue
			}
			similarity := 1 - float64(distance)/maxLen
			if similarity > threshold && similarity > bestScore {
				bestScore = similarity
				best = &players[i]
			}
		}
	}
	if best == nil {
		return models.Player{}, false
	}
	return *best, true
}

// FindTeam resolves a team abbreviation ("BOS") or, failing that, the team
// of the named player.
func (s *FantasyService) FindTeam(ctx context.Context, query string) (models.Team, error) {
	query = strings.TrimSpace(query)
	if dir, err := s.directory(ctx); err == nil {
		for _, p := range dir.Players {
			if p.Team.ID != 0 && strings.EqualFold(p.Team.Abbreviation, query) {
				return p.Team, nil
			}
		}
	}
	p, err := s.FindPlayer(ctx, query)
	if err != nil {
		return models.Team{}, err
	}
	if p.Team.ID == 0 {
		return models.Team{}, fmt.Errorf("%s has no current team: %w", p.FullName(), ErrPlayerNotFound)
	}
	return p.Team, nil
}

// PlayerSummary describes a player and their season averages.
func (s *FantasyService) PlayerSummary(ctx context.Context, name string) (string, error) {
	p, err := s.FindPlayer(ctx, name)
	if err != nil {
		return "", err
	}
	avg, err := s.Gateway.SeasonAverages(ctx, p.ID, s.Season)
	if err != nil {
		slog.Error("Error fetching season averages", "player_id", p.ID, "error", err)
	}
	return formatPlayer(p, avg, s.Season), nil
}
