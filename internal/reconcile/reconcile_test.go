package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/courtside/internal/api/nba"
	"github.com/omarshaarawi/courtside/internal/gamestate"
	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playerID = 237

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu       sync.Mutex
	games    map[int]models.Game
	stats    map[int][]models.GameStat
	boxes    map[int]models.BoxScore
	gameErr  error
	boxErr   error
	gameHits []int
	statHits []nba.StatsQuery
	batches  [][]int
}

func (f *fakeSource) Game(_ context.Context, id int) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gameHits = append(f.gameHits, id)
	if f.gameErr != nil {
		return nil, f.gameErr
	}
	g, ok := f.games[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (f *fakeSource) Stats(_ context.Context, q nba.StatsQuery) ([]models.GameStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statHits = append(f.statHits, q)
	var out []models.GameStat
	for _, id := range q.GameIDs {
		out = append(out, f.stats[id]...)
	}
	return out, nil
}

func (f *fakeSource) BoxScores(_ context.Context, ids []int) ([]models.BoxScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]int(nil), ids...))
	if f.boxErr != nil {
		return nil, f.boxErr
	}
	var out []models.BoxScore
	for _, id := range ids {
		if b, ok := f.boxes[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func newReconciler(t *testing.T, src Source) *Reconciler {
	t.Helper()
	r, err := New(src, Options{
		Classifier: gamestate.NewClassifier(time.UTC, gamestate.DefaultLivePolicy()),
		Clock:      clockwork.NewFakeClockAt(now),
	})
	require.NoError(t, err)
	return r
}

func game(id int, date string) models.Game {
	return models.Game{
		ID:          id,
		Date:        date,
		HomeTeam:    models.Team{ID: 14},
		VisitorTeam: models.Team{ID: 2},
	}
}

func intPtr(v int) *int { return &v }

func boxWith(id int, home, visitor *int, line *models.GameStat) models.BoxScore {
	b := models.BoxScore{
		GameID:           id,
		HomeTeamScore:    home,
		VisitorTeamScore: visitor,
		HomeTeam:         models.BoxScoreTeam{Team: models.Team{ID: 14}},
		VisitorTeam:      models.BoxScoreTeam{Team: models.Team{ID: 2}},
	}
	if line != nil {
		b.HomeTeam.Players = []models.GameStat{*line}
	}
	return b
}

func findGame(t *testing.T, games []models.Game, id int) models.Game {
	t.Helper()
	for _, g := range games {
		if g.ID == id {
			return g
		}
	}
	t.Fatalf("game %d not in result", id)
	return models.Game{}
}

func TestNew_RejectsOversizedBatch(t *testing.T) {
	_, err := New(&fakeSource{}, Options{BatchSize: 11})
	assert.Error(t, err)

	r, err := New(&fakeSource{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, MaxBatchSize, r.opts.BatchSize)
	assert.Equal(t, DefaultRecentDays, r.opts.RecentDays)
}

func TestBackfill_RecentGapsFetchedIndividually(t *testing.T) {
	src := &fakeSource{
		games: map[int]models.Game{
			1: {ID: 1, HomeTeamScore: 110, VisitorTeamScore: 102},
		},
		stats: map[int][]models.GameStat{
			1: {{GameID: 1, PlayerID: playerID, Points: 22, Rebounds: 5}},
		},
	}
	r := newReconciler(t, src)

	res := r.Backfill(context.Background(), playerID, []models.Game{game(1, "2026-10-15")}, nil)

	assert.Equal(t, []int{1}, src.gameHits)
	require.Len(t, src.statHits, 1)
	assert.Equal(t, []int{1}, src.statHits[0].GameIDs)
	assert.Equal(t, []int{playerID}, src.statHits[0].PlayerIDs)
	assert.Empty(t, src.batches)

	g := findGame(t, res.Games, 1)
	assert.Equal(t, 110, g.HomeTeamScore)
	assert.True(t, g.Played)
	require.NotNil(t, g.Stats)
	assert.Equal(t, 22, g.Stats.Points)
	assert.False(t, g.NeedsRecentCheck)
	assert.Equal(t, 0, res.Pending)
}

func TestBackfill_OlderGapsUseBoxScores(t *testing.T) {
	src := &fakeSource{
		boxes: map[int]models.BoxScore{
			3: boxWith(3, intPtr(98), intPtr(101), &models.GameStat{
				PlayerID: playerID, Points: 14, OffRebounds: 2, DefRebounds: 4,
				FieldGoalsMade: 6, FieldGoalsAttempted: 12,
			}),
		},
	}
	r := newReconciler(t, src)

	res := r.Backfill(context.Background(), playerID, []models.Game{game(3, "2026-09-21")}, nil)

	assert.Empty(t, src.gameHits)
	require.Len(t, src.batches, 1)

	g := findGame(t, res.Games, 3)
	assert.Equal(t, 98, g.HomeTeamScore)
	assert.Equal(t, 101, g.VisitorTeamScore)
	require.NotNil(t, g.Stats)
	assert.Equal(t, 3, g.Stats.GameID)
	assert.Equal(t, 6, g.Stats.Rebounds)
	assert.InDelta(t, 0.5, g.Stats.FieldGoalPct, 1e-9)
	assert.Zero(t, g.Stats.ThreePct, "no attempts means zero, not NaN")
	assert.Equal(t, 1, res.Patched)
}

func TestBackfill_NeverOverwritesNonZeroPoints(t *testing.T) {
	src := &fakeSource{
		boxes: map[int]models.BoxScore{
			2: boxWith(2, intPtr(120), intPtr(99), &models.GameStat{PlayerID: playerID, Points: 30}),
		},
	}
	r := newReconciler(t, src)
	existing := []models.GameStat{{ID: 55, GameID: 2, PlayerID: playerID, Points: 18}}

	res := r.Backfill(context.Background(), playerID, []models.Game{game(2, "2026-09-20")}, existing)

	g := findGame(t, res.Games, 2)
	assert.Equal(t, 18, g.Stats.Points)
	assert.Equal(t, 120, g.HomeTeamScore, "scores still propagate")
	assert.Equal(t, 0, res.Patched)
}

func TestBackfill_ReplacesZeroPointPlaceholder(t *testing.T) {
	src := &fakeSource{
		boxes: map[int]models.BoxScore{
			2: boxWith(2, intPtr(120), intPtr(99), &models.GameStat{PlayerID: playerID, Points: 30}),
		},
	}
	r := newReconciler(t, src)
	existing := []models.GameStat{{ID: 55, GameID: 2, PlayerID: playerID}}

	res := r.Backfill(context.Background(), playerID, []models.Game{game(2, "2026-09-20")}, existing)

	g := findGame(t, res.Games, 2)
	assert.Equal(t, 30, g.Stats.Points)
	assert.Equal(t, 55, g.Stats.ID)
}

func TestBackfill_Idempotent(t *testing.T) {
	src := &fakeSource{
		games: map[int]models.Game{1: {ID: 1, HomeTeamScore: 104, VisitorTeamScore: 100}},
		stats: map[int][]models.GameStat{1: {{GameID: 1, PlayerID: playerID, Points: 25}}},
		boxes: map[int]models.BoxScore{
			2: boxWith(2, intPtr(120), intPtr(99), &models.GameStat{PlayerID: playerID, Points: 19}),
		},
	}
	r := newReconciler(t, src)
	games := []models.Game{game(1, "2026-10-14"), game(2, "2026-09-20"), game(4, "2026-10-20")}

	first := r.Backfill(context.Background(), playerID, games, nil)
	hits, batches := len(src.gameHits), len(src.batches)

	second := r.Backfill(context.Background(), playerID, first.Games, first.Stats)

	assert.Equal(t, first.Stats, second.Stats)
	assert.Equal(t, hits, len(src.gameHits), "satisfied games are not refetched")
	assert.Equal(t, batches, len(src.batches))
	assert.Equal(t, 0, second.Patched)
	for _, g := range second.Games {
		assert.False(t, g.NeedsRecentCheck)
	}
}

func TestBackfill_BatchesAtMostTen(t *testing.T) {
	src := &fakeSource{}
	r := newReconciler(t, src)

	var games []models.Game
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 23; i++ {
		games = append(games, game(100+i, start.AddDate(0, 0, i).Format("2006-01-02")))
	}

	r.Backfill(context.Background(), playerID, games, nil)

	require.Len(t, src.batches, 3)
	assert.Len(t, src.batches[0], 10)
	assert.Len(t, src.batches[1], 10)
	assert.Len(t, src.batches[2], 3)
}

func TestBackfill_FailuresAreSkipped(t *testing.T) {
	src := &fakeSource{
		gameErr: errors.New("timeout"),
		boxErr:  errors.New("rate limited"),
	}
	r := newReconciler(t, src)
	games := []models.Game{game(1, "2026-10-15"), game(2, "2026-09-20"), game(3, "2026-09-01")}

	res := r.Backfill(context.Background(), playerID, games, nil)

	require.Len(t, res.Games, 3)
	assert.Len(t, src.statHits, 1, "stats still fetched after the game lookup failed")
	assert.Len(t, src.batches, 1)

	recent := findGame(t, res.Games, 1)
	assert.True(t, recent.NeedsRecentCheck)
	require.NotNil(t, recent.Stats)
	assert.Zero(t, recent.Stats.Points)

	assert.False(t, findGame(t, res.Games, 2).NeedsRecentCheck)
	assert.Equal(t, 1, res.Pending)
}

func TestBackfill_IgnoresTodayAndFuture(t *testing.T) {
	src := &fakeSource{}
	r := newReconciler(t, src)

	res := r.Backfill(context.Background(), playerID, []models.Game{game(1, "2026-10-17"), game(2, "2026-10-19")}, nil)

	assert.Empty(t, src.gameHits)
	assert.Empty(t, src.batches)
	for _, g := range res.Games {
		require.NotNil(t, g.Stats)
		assert.False(t, g.NeedsRecentCheck)
	}
}

func TestBackfill_DoesNotMutateInput(t *testing.T) {
	src := &fakeSource{games: map[int]models.Game{1: {ID: 1, HomeTeamScore: 90, VisitorTeamScore: 80}}}
	r := newReconciler(t, src)
	games := []models.Game{game(1, "2026-10-16")}

	r.Backfill(context.Background(), playerID, games, nil)

	assert.Zero(t, games[0].HomeTeamScore)
	assert.Nil(t, games[0].Stats)
}
