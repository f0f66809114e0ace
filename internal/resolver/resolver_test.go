package resolver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/courtside/internal/gamestate"
	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const teamID = 14

type fakeGames struct {
	mu        sync.Mutex
	live      []models.Game
	byID      map[int]models.Game
	byDate    map[string][]models.Game
	liveCalls int
	idCalls   int
	scanned   []string
}

func (f *fakeGames) LiveGames(context.Context, bool) []models.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liveCalls++
	out := make([]models.Game, len(f.live))
	copy(out, f.live)
	return out
}

func (f *fakeGames) TeamGamesOn(_ context.Context, _ int, date string) []models.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scanned = append(f.scanned, date)
	return append([]models.Game(nil), f.byDate[date]...)
}

func (f *fakeGames) FreshGame(_ context.Context, id int) *models.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idCalls++
	if g, ok := f.byID[id]; ok {
		return &g
	}
	for _, g := range f.live {
		if g.ID == id {
			return &g
		}
	}
	return nil
}

func (f *fakeGames) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.liveCalls
}

func newTestResolver(games *fakeGames, at time.Time) (*Resolver, clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(at)
	return New(games, Options{
		Classifier:   gamestate.NewClassifier(time.UTC, gamestate.DefaultLivePolicy()),
		RecentWindow: 3 * time.Hour,
		Clock:        clock,
	}), clock
}

// teamGame builds a game for teamID tipping off at start (UTC).
func teamGame(id int, start time.Time, mutate func(*models.Game)) models.Game {
	g := models.Game{
		ID:          id,
		Date:        start.Format("2006-01-02"),
		Datetime:    start.Format(time.RFC3339),
		Status:      start.Format(time.RFC3339),
		HomeTeam:    models.Team{ID: teamID, Abbreviation: "LAL"},
		VisitorTeam: models.Team{ID: 2, Abbreviation: "BOS"},
	}
	if mutate != nil {
		mutate(&g)
	}
	return g
}

var tipoff = time.Date(2026, 10, 17, 18, 0, 0, 0, time.UTC)

func TestResolve_KeepsPreviousLiveGame(t *testing.T) {
	a := teamGame(1, tipoff, func(g *models.Game) { g.Status = "2nd Qtr"; g.Period = 2; g.HomeTeamScore = 50 })
	b := teamGame(2, tipoff.Add(-time.Hour), func(g *models.Game) { g.Status = "3rd Qtr"; g.Period = 3; g.HomeTeamScore = 70 })
	games := &fakeGames{live: []models.Game{b, a}}
	r, _ := newTestResolver(games, tipoff.Add(time.Hour))

	previous := Selection{Game: &a, State: StateLive}
	for i := 0; i < 3; i++ {
		sel := r.Resolve(context.Background(), teamID, nil, previous)
		require.Equal(t, StateLive, sel.State)
		assert.Equal(t, 1, sel.GameID())
		previous = sel
	}
}

func TestResolve_PreviousLiveBecomesRecent(t *testing.T) {
	live := teamGame(1, tipoff, func(g *models.Game) { g.Status = "4th Qtr"; g.Period = 4; g.HomeTeamScore = 90 })
	finished := live
	finished.Status = "Final"
	finished.HomeTeamScore = 110
	finished.VisitorTeamScore = 104
	games := &fakeGames{byID: map[int]models.Game{1: finished}}
	r, _ := newTestResolver(games, tipoff.Add(3*time.Hour))

	sel := r.Resolve(context.Background(), teamID, nil, Selection{Game: &live, State: StateLive})

	require.Equal(t, StateRecent, sel.State)
	assert.Equal(t, 1, sel.GameID())
	assert.Equal(t, 110, sel.Game.HomeTeamScore)
}

func finishedGame(period int) models.Game {
	return teamGame(1, tipoff, func(g *models.Game) {
		g.Status = "4th Qtr"
		g.Period = period
		g.HomeTeamScore = 101
		g.VisitorTeamScore = 99
		g.Played = true
	})
}

func TestResolve_RecentWindowBoundary(t *testing.T) {
	end := tipoff.Add(150 * time.Minute)

	games := &fakeGames{live: []models.Game{finishedGame(4)}}
	r, clock := newTestResolver(games, end.Add(2*time.Hour+59*time.Minute))

	sel := r.Resolve(context.Background(), teamID, nil, Selection{})
	require.Equal(t, StateRecent, sel.State)
	assert.Equal(t, models.FinalStatus, sel.Game.Status)
	assert.Equal(t, models.ProgressFinal, sel.Game.Progress)

	clock.Advance(2 * time.Minute)
	sel = r.Resolve(context.Background(), teamID, nil, Selection{})
	assert.Equal(t, StateNone, sel.State)
	assert.Nil(t, sel.Game)
}

func TestResolve_RecentWindowShiftsWithOvertime(t *testing.T) {
	// Two overtimes add half an hour to the nominal length.
	end := tipoff.Add(180 * time.Minute)

	games := &fakeGames{live: []models.Game{finishedGame(6)}}
	r, clock := newTestResolver(games, end.Add(2*time.Hour+59*time.Minute))

	assert.Equal(t, StateRecent, r.Resolve(context.Background(), teamID, nil, Selection{}).State)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, StateNone, r.Resolve(context.Background(), teamID, nil, Selection{}).State)
}

func TestResolve_StartPassedWithoutEvidenceStaysUpcoming(t *testing.T) {
	g := teamGame(1, tipoff, nil)
	games := &fakeGames{live: []models.Game{g}}
	r, _ := newTestResolver(games, tipoff.Add(25*time.Minute))

	sel := r.Resolve(context.Background(), teamID, nil, Selection{})

	assert.Equal(t, StateUpcoming, sel.State)
	assert.Equal(t, 1, sel.GameID())
}

func TestResolve_StartPassedWithPlayedFlagPromotesLive(t *testing.T) {
	g := teamGame(1, tipoff, func(g *models.Game) { g.Played = true })
	games := &fakeGames{live: []models.Game{g}}
	r, _ := newTestResolver(games, tipoff.Add(25*time.Minute))

	sel := r.Resolve(context.Background(), teamID, nil, Selection{})

	assert.Equal(t, StateLive, sel.State)
}

func TestResolve_RefreshedRecordPromotesLive(t *testing.T) {
	stale := teamGame(1, tipoff, nil)
	fresh := teamGame(1, tipoff, func(g *models.Game) { g.HomeTeamScore = 6; g.VisitorTeamScore = 2 })
	games := &fakeGames{byID: map[int]models.Game{1: fresh}}
	r, _ := newTestResolver(games, tipoff.Add(25*time.Minute))

	sel := r.Resolve(context.Background(), teamID, []models.Game{stale}, Selection{})

	require.Equal(t, StateLive, sel.State)
	assert.Equal(t, 6, sel.Game.HomeTeamScore)
	assert.Equal(t, 1, games.idCalls)
}

func TestResolve_RefreshedRecordWithinGraceStaysUpcoming(t *testing.T) {
	stale := teamGame(1, tipoff, nil)
	fresh := teamGame(1, tipoff, func(g *models.Game) { g.HomeTeamScore = 2 })
	games := &fakeGames{byID: map[int]models.Game{1: fresh}}
	r, _ := newTestResolver(games, tipoff.Add(10*time.Minute))

	sel := r.Resolve(context.Background(), teamID, []models.Game{stale}, Selection{})

	assert.Equal(t, StateUpcoming, sel.State)
}

func TestResolve_UpcomingPicksEarliestFutureGame(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	later := teamGame(3, now.AddDate(0, 0, 3), nil)
	sooner := teamGame(2, now.AddDate(0, 0, 1), nil)
	farAway := teamGame(4, now.AddDate(0, 0, 12), nil)
	other := models.Game{ID: 9, Date: "2026-10-18", HomeTeam: models.Team{ID: 30}, VisitorTeam: models.Team{ID: 31}}
	r, _ := newTestResolver(&fakeGames{}, now)

	sel := r.Resolve(context.Background(), teamID, []models.Game{farAway, later, other, sooner}, Selection{})

	require.Equal(t, StateUpcoming, sel.State)
	assert.Equal(t, 2, sel.GameID())

	sel = r.Resolve(context.Background(), teamID, []models.Game{farAway}, Selection{})
	assert.Equal(t, 4, sel.GameID())
}

func TestResolve_TodayBeatsTomorrow(t *testing.T) {
	now := tipoff.Add(-2 * time.Hour)
	tonight := teamGame(5, tipoff, nil)
	tomorrow := teamGame(6, tipoff.AddDate(0, 0, 1), nil)
	r, _ := newTestResolver(&fakeGames{live: []models.Game{tomorrow, tonight}}, now)

	sel := r.Resolve(context.Background(), teamID, nil, Selection{})

	assert.Equal(t, 5, sel.GameID())
}

func TestResolve_MergesKnownWithCache(t *testing.T) {
	known := teamGame(1, tipoff, nil)
	cached := teamGame(1, tipoff, func(g *models.Game) { g.Status = "1st Qtr"; g.Period = 1; g.HomeTeamScore = 4 })
	r, _ := newTestResolver(&fakeGames{live: []models.Game{cached}}, tipoff.Add(5*time.Minute))

	sel := r.Resolve(context.Background(), teamID, []models.Game{known}, Selection{})

	require.Equal(t, StateLive, sel.State)
	assert.Equal(t, 4, sel.Game.HomeTeamScore)
}

func TestResolve_NothingToShow(t *testing.T) {
	past := teamGame(1, tipoff.AddDate(0, 0, -5), nil)
	r, _ := newTestResolver(&fakeGames{}, tipoff)

	sel := r.Resolve(context.Background(), teamID, []models.Game{past}, Selection{})

	assert.Equal(t, StateNone, sel.State)
	assert.Nil(t, sel.Game)
}

func TestResolve_ScansAheadForNextGame(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	late := teamGame(8, time.Date(2026, 10, 21, 23, 30, 0, 0, time.UTC), nil)
	early := teamGame(7, time.Date(2026, 10, 21, 19, 0, 0, 0, time.UTC), nil)
	games := &fakeGames{byDate: map[string][]models.Game{"2026-10-21": {late, early}}}
	r, _ := newTestResolver(games, now)

	sel := r.Resolve(context.Background(), teamID, nil, Selection{})

	require.Equal(t, StateUpcoming, sel.State)
	assert.Equal(t, 7, sel.GameID())
	assert.Equal(t, []string{"2026-10-18", "2026-10-19", "2026-10-20", "2026-10-21"}, games.scanned)
}

func TestResolve_ScanStopsAfterSevenDays(t *testing.T) {
	now := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	games := &fakeGames{byDate: map[string][]models.Game{
		"2026-10-25": {teamGame(7, time.Date(2026, 10, 25, 19, 0, 0, 0, time.UTC), nil)},
	}}
	r, _ := newTestResolver(games, now)

	sel := r.Resolve(context.Background(), teamID, nil, Selection{})

	assert.Equal(t, StateNone, sel.State)
	assert.Len(t, games.scanned, UpcomingScanDays)
	assert.Equal(t, "2026-10-24", games.scanned[UpcomingScanDays-1])
}
