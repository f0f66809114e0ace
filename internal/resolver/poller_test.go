package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/courtside/internal/gamestate"
	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCadence_Interval(t *testing.T) {
	c := DefaultCadence()
	afternoon := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)
	lateNight := time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, 45*time.Second, c.Interval(Selection{State: StateLive}, afternoon))
	assert.Equal(t, 90*time.Second, c.Interval(Selection{State: StateUpcoming}, evening))
	assert.Equal(t, 180*time.Second, c.Interval(Selection{State: StateUpcoming}, afternoon))
	assert.Equal(t, 180*time.Second, c.Interval(Selection{}, lateNight))
}

func newTestPoller(games *fakeGames, at time.Time) (*Poller, clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(at)
	r := New(games, Options{
		Classifier:   gamestate.NewClassifier(time.UTC, gamestate.DefaultLivePolicy()),
		RecentWindow: 3 * time.Hour,
		Clock:        clock,
	})
	return NewPoller(r, clock, DefaultCadence(), time.Second), clock
}

func TestPoller_TickHonorsCadence(t *testing.T) {
	games := &fakeGames{}
	p, clock := newTestPoller(games, time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC))
	ctx := context.Background()

	p.Watch(ctx, "chat-1", teamID, nil, nil)
	require.Equal(t, 1, games.calls())

	clock.Advance(45 * time.Second)
	p.Tick(ctx)
	assert.Equal(t, 1, games.calls(), "idle cadence is 180s")

	clock.Advance(135 * time.Second)
	p.Tick(ctx)
	assert.Equal(t, 2, games.calls())
}

func TestPoller_HiddenWatchSkipsAndResumes(t *testing.T) {
	games := &fakeGames{}
	p, clock := newTestPoller(games, time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC))
	ctx := context.Background()

	p.Watch(ctx, "chat-1", teamID, nil, nil)
	p.SetVisible(ctx, "chat-1", false)

	clock.Advance(10 * time.Minute)
	p.Tick(ctx)
	assert.Equal(t, 1, games.calls())

	p.SetVisible(ctx, "chat-1", true)
	assert.Equal(t, 2, games.calls(), "resuming after more than a minute recomputes at once")
}

func TestPoller_QuickResumeWaitsForTick(t *testing.T) {
	games := &fakeGames{}
	p, clock := newTestPoller(games, time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC))
	ctx := context.Background()

	p.Watch(ctx, "chat-1", teamID, nil, nil)
	p.SetVisible(ctx, "chat-1", false)
	clock.Advance(30 * time.Second)
	p.SetVisible(ctx, "chat-1", true)

	assert.Equal(t, 1, games.calls())
}

func TestPoller_CommitsSelection(t *testing.T) {
	upcoming := teamGame(1, time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC), nil)
	games := &fakeGames{live: []models.Game{upcoming}}
	p, clock := newTestPoller(games, time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC))
	ctx := context.Background()

	committed := make(chan Selection, 1)
	p.Watch(ctx, "chat-1", teamID, nil, func(sel Selection) { committed <- sel })

	sel, ok := p.Current("chat-1")
	require.True(t, ok)
	assert.Equal(t, StateNone, sel.State, "nothing visible before the settle delay")

	clock.Advance(time.Second)

	select {
	case sel := <-committed:
		assert.Equal(t, StateUpcoming, sel.State)
		assert.Equal(t, 1, sel.GameID())
	case <-time.After(time.Second):
		t.Fatal("selection was not committed")
	}
}

func TestPoller_Unwatch(t *testing.T) {
	games := &fakeGames{}
	p, clock := newTestPoller(games, time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC))
	ctx := context.Background()

	p.Watch(ctx, "chat-1", teamID, nil, nil)
	p.Unwatch("chat-1")
	clock.Advance(time.Hour)
	p.Tick(ctx)

	_, ok := p.Current("chat-1")
	assert.False(t, ok)
	assert.Equal(t, 1, games.calls())
	assert.Empty(t, p.Keys())
}
