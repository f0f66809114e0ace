package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/courtside/internal/api/nba"
	"github.com/omarshaarawi/courtside/internal/gamestate"
	"github.com/omarshaarawi/courtside/internal/models"
)

// Source is the upstream the cache reads through to.
type Source interface {
	Games(ctx context.Context, q nba.GamesQuery) ([]models.Game, error)
	Game(ctx context.Context, id int) (*models.Game, error)
}

type Options struct {
	LiveTTL       time.Duration
	TeamTTL       time.Duration
	GameTTL       time.Duration
	LookupTimeout time.Duration
	// Anchor decides which calendar days make up the live window.
	Anchor *time.Location
	Clock  clockwork.Clock
}

func DefaultOptions() Options {
	return Options{
		LiveTTL:       30 * time.Second,
		TeamTTL:       60 * time.Second,
		GameTTL:       60 * time.Second,
		LookupTimeout: 3 * time.Second,
		Anchor:        time.UTC,
		Clock:         clockwork.NewRealClock(),
	}
}

type entry[T any] struct {
	data      T
	fetchedAt time.Time
}

// GameCache is a short-TTL read-through cache over the games gateway. It
// never returns errors: on upstream failure it serves whatever it has.
// Concurrent misses may each reach upstream.
type GameCache struct {
	source Source
	opts   Options

	mu       sync.RWMutex
	live     *entry[[]models.Game]
	teams    map[int]entry[[]models.Game]
	teamDays map[teamDay]entry[[]models.Game]
	games    map[int]entry[models.Game]
}

type teamDay struct {
	teamID int
	date   string
}

func New(source Source, opts Options) *GameCache {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Anchor == nil {
		opts.Anchor = time.UTC
	}
	return &GameCache{
		source: source,
		opts:   opts,
		teams:    make(map[int]entry[[]models.Game]),
		teamDays: make(map[teamDay]entry[[]models.Game]),
		games:    make(map[int]entry[models.Game]),
	}
}

// LiveGames returns the games dated yesterday through tomorrow. The cached
// slice is reused while younger than LiveTTL unless forceRefresh is set.
func (c *GameCache) LiveGames(ctx context.Context, forceRefresh bool) []models.Game {
	c.mu.RLock()
	cached := c.live
	c.mu.RUnlock()

	if !forceRefresh && cached != nil && c.opts.Clock.Since(cached.fetchedAt) < c.opts.LiveTTL {
		return cloneGames(cached.data)
	}

	games, err := c.source.Games(ctx, nba.GamesQuery{Dates: c.window()})
	if err != nil {
		slog.Warn("Fetching live games failed, serving cached data", "error", err, "cached", cached != nil)
		if cached != nil {
			return cloneGames(cached.data)
		}
		return []models.Game{}
	}

	gamestate.NormalizeAll(games)
	c.mu.Lock()
	c.live = &entry[[]models.Game]{data: games, fetchedAt: c.opts.Clock.Now()}
	c.mu.Unlock()

	return cloneGames(games)
}

// TeamGames filters the live snapshot down to one team.
func (c *GameCache) TeamGames(ctx context.Context, teamID int) []models.Game {
	c.mu.RLock()
	cached, ok := c.teams[teamID]
	c.mu.RUnlock()

	if ok && c.opts.Clock.Since(cached.fetchedAt) < c.opts.TeamTTL {
		return cloneGames(cached.data)
	}

	var teamGames []models.Game
	for _, g := range c.LiveGames(ctx, false) {
		if g.InvolvesTeam(teamID) {
			teamGames = append(teamGames, g)
		}
	}

	c.mu.Lock()
	c.teams[teamID] = entry[[]models.Game]{data: teamGames, fetchedAt: c.opts.Clock.Now()}
	c.mu.Unlock()

	return cloneGames(teamGames)
}

// TeamGamesOn returns the team's games on one calendar date (YYYY-MM-DD),
// cached for TeamTTL. Used for dates outside the live window.
func (c *GameCache) TeamGamesOn(ctx context.Context, teamID int, date string) []models.Game {
	key := teamDay{teamID: teamID, date: date}
	c.mu.RLock()
	cached, ok := c.teamDays[key]
	c.mu.RUnlock()

	if ok && c.opts.Clock.Since(cached.fetchedAt) < c.opts.TeamTTL {
		return cloneGames(cached.data)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.opts.LookupTimeout)
	defer cancel()

	games, err := c.source.Games(lookupCtx, nba.GamesQuery{TeamIDs: []int{teamID}, Dates: []string{date}})
	if err != nil {
		slog.Warn("Fetching team games failed", "team_id", teamID, "date", date, "error", err)
		if ok {
			return cloneGames(cached.data)
		}
		return []models.Game{}
	}

	var teamGames []models.Game
	for _, g := range gamestate.NormalizeAll(games) {
		if g.InvolvesTeam(teamID) {
			teamGames = append(teamGames, g)
		}
	}

	c.mu.Lock()
	c.teamDays[key] = entry[[]models.Game]{data: teamGames, fetchedAt: c.opts.Clock.Now()}
	c.mu.Unlock()

	return cloneGames(teamGames)
}

// GameByID checks the per-game cache, then the live snapshot, and only then
// fetches the single game with a short timeout. Returns nil when nothing is known.
func (c *GameCache) GameByID(ctx context.Context, id int) *models.Game {
	c.mu.RLock()
	cached, ok := c.games[id]
	c.mu.RUnlock()

	if ok && c.opts.Clock.Since(cached.fetchedAt) < c.opts.GameTTL {
		g := cached.data.Clone()
		return &g
	}
	if g := c.snapshotGame(id); g != nil {
		return g
	}
	if g := c.fetchGame(ctx, id); g != nil {
		return g
	}
	return c.storedGame(id)
}

// FreshGame always asks upstream for the single game, bypassing the live
// snapshot. On failure it serves the last per-game record, then the
// snapshot's copy, then nil.
func (c *GameCache) FreshGame(ctx context.Context, id int) *models.Game {
	if g := c.fetchGame(ctx, id); g != nil {
		return g
	}
	if g := c.storedGame(id); g != nil {
		return g
	}
	return c.snapshotGame(id)
}

func (c *GameCache) fetchGame(ctx context.Context, id int) *models.Game {
	lookupCtx, cancel := context.WithTimeout(ctx, c.opts.LookupTimeout)
	defer cancel()

	fetched, err := c.source.Game(lookupCtx, id)
	if err != nil || fetched == nil {
		slog.Debug("Single game lookup failed", "game_id", id, "error", err)
		return nil
	}

	g := *fetched
	gamestate.Normalize(&g)
	c.mu.Lock()
	c.games[id] = entry[models.Game]{data: g, fetchedAt: c.opts.Clock.Now()}
	c.mu.Unlock()

	clone := g.Clone()
	return &clone
}

func (c *GameCache) storedGame(id int) *models.Game {
	c.mu.RLock()
	cached, ok := c.games[id]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	g := cached.data.Clone()
	return &g
}

func (c *GameCache) snapshotGame(id int) *models.Game {
	c.mu.RLock()
	live := c.live
	c.mu.RUnlock()
	if live == nil {
		return nil
	}
	for _, g := range live.data {
		if g.ID == id {
			clone := g.Clone()
			return &clone
		}
	}
	return nil
}

func (c *GameCache) window() []string {
	today := gamestate.CalendarDay(c.opts.Clock.Now(), c.opts.Anchor)
	return []string{
		gamestate.DateString(today.AddDate(0, 0, -1)),
		gamestate.DateString(today),
		gamestate.DateString(today.AddDate(0, 0, 1)),
	}
}

func cloneGames(games []models.Game) []models.Game {
	out := make([]models.Game, len(games))
	for i, g := range games {
		out[i] = g.Clone()
	}
	return out
}
