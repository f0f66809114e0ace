package lineup

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/repository"
	"github.com/omarshaarawi/courtside/internal/repository/memory"
	"github.com/omarshaarawi/courtside/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID int64 = 42

func fullLineup(contracts int) []models.LineupCard {
	cards := make([]models.LineupCard, 0, len(models.LineupPositions))
	for i, pos := range models.LineupPositions {
		cards = append(cards, models.LineupCard{
			CardID:             string(pos),
			PlayerID:           i + 1,
			Position:           pos,
			ContractsRemaining: contracts,
		})
	}
	return cards
}

func TestValidate(t *testing.T) {
	t.Run("complete lineup", func(t *testing.T) {
		r := Validate(fullLineup(3))
		assert.True(t, r.OK())
		assert.Empty(t, r.Warnings)
	})

	t.Run("missing position", func(t *testing.T) {
		r := Validate(fullLineup(3)[:4])
		assert.False(t, r.OK())
		assert.ErrorIs(t, r.Err(), ErrMissingPosition)
	})

	t.Run("duplicate position", func(t *testing.T) {
		cards := fullLineup(3)
		cards[1].Position = models.PointGuard
		r := Validate(cards)
		assert.ErrorIs(t, r.Err(), ErrDuplicatePosition)
		assert.ErrorIs(t, r.Err(), ErrMissingPosition)
	})

	t.Run("expired contract", func(t *testing.T) {
		cards := fullLineup(3)
		cards[2].ContractsRemaining = 0
		r := Validate(cards)
		assert.ErrorIs(t, r.Err(), ErrExpiredContract)
	})

	t.Run("last contract warns", func(t *testing.T) {
		cards := fullLineup(3)
		cards[4].ContractsRemaining = 1
		cards[4].PlayerName = "Victor Wembanyama"
		r := Validate(cards)
		assert.True(t, r.OK())
		require.Len(t, r.Warnings, 1)
		assert.Contains(t, r.Warnings[0], "Victor Wembanyama")
	})

	t.Run("unknown position", func(t *testing.T) {
		cards := append(fullLineup(3), models.LineupCard{CardID: "x", Position: "G", ContractsRemaining: 2})
		assert.ErrorIs(t, Validate(cards).Err(), ErrInvalidPosition)
	})
}

type fixture struct {
	store   *memory.Repository
	manager *Manager
	clock   clockwork.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewRepository()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC))
	engine := scoring.NewEngine(func() bool { return true })
	return fixture{store: store, manager: NewManager(store, engine, clock), clock: clock}
}

func (f fixture) card(t *testing.T, id string, playerID, contracts int) {
	t.Helper()
	require.NoError(t, f.store.SaveCard(context.Background(), models.OwnedCard{
		ID: id, UserID: userID, PlayerID: playerID, ContractsRemaining: contracts,
	}))
}

func (f fixture) token(t *testing.T, id string, effect models.EffectType, value float64) {
	t.Helper()
	require.NoError(t, f.store.SaveToken(context.Background(), models.OwnedToken{
		ID: id, UserID: userID, Effect: models.TokenEffect{ID: id, EffectType: effect, EffectValue: &value},
	}))
}

func (f fixture) startAll(t *testing.T) {
	t.Helper()
	for i, pos := range models.LineupPositions {
		id := string(pos)
		f.card(t, id, i+1, 3)
		require.NoError(t, f.manager.SetPosition(context.Background(), userID, id, pos))
	}
}

func TestSetPosition_BenchesPreviousHolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.card(t, "a", 1, 3)
	f.card(t, "b", 2, 3)

	require.NoError(t, f.manager.SetPosition(ctx, userID, "a", models.Center))
	require.NoError(t, f.manager.SetPosition(ctx, userID, "b", models.Center))

	a, err := f.store.Card(ctx, userID, "a")
	require.NoError(t, err)
	assert.False(t, a.InLineup)

	cards, err := f.manager.Lineup(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "b", cards[0].CardID)

	assert.ErrorIs(t, f.manager.SetPosition(ctx, userID, "a", "G"), ErrInvalidPosition)
	assert.ErrorIs(t, f.manager.SetPosition(ctx, userID, "zzz", models.Center), repository.ErrNotFound)
}

func TestApplyToken_MovesBetweenCards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.card(t, "a", 1, 3)
	f.card(t, "b", 2, 3)
	f.token(t, "mult", models.EffectScoreMultiplier, 1.5)

	_, err := f.manager.ApplyToken(ctx, userID, "mult", "a")
	require.NoError(t, err)
	_, err = f.manager.ApplyToken(ctx, userID, "mult", "b")
	require.NoError(t, err)

	a, _ := f.store.Card(ctx, userID, "a")
	b, _ := f.store.Card(ctx, userID, "b")
	tok, _ := f.store.Token(ctx, userID, "mult")
	assert.Empty(t, a.AppliedTokenID)
	assert.Equal(t, "mult", b.AppliedTokenID)
	assert.Equal(t, "b", tok.AppliedTo)
}

func TestApplyToken_ReplacesCardToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.card(t, "a", 1, 3)
	f.token(t, "first", models.EffectScoreMultiplier, 1.5)
	f.token(t, "second", models.EffectStatThreshold, 10)

	_, err := f.manager.ApplyToken(ctx, userID, "first", "a")
	require.NoError(t, err)
	card, err := f.manager.ApplyToken(ctx, userID, "second", "a")
	require.NoError(t, err)
	assert.Equal(t, "second", card.AppliedTokenID)

	first, _ := f.store.Token(ctx, userID, "first")
	assert.Empty(t, first.AppliedTo)

	byCard, err := f.manager.TokensByCard(ctx, userID)
	require.NoError(t, err)
	require.Len(t, byCard["a"], 1)
	assert.Equal(t, models.EffectStatThreshold, byCard["a"][0].EffectType)
}

func TestApplyToken_ContractAddIsConsumed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.card(t, "a", 1, 1)
	f.token(t, "extend", models.EffectContractAdd, 2)

	card, err := f.manager.ApplyToken(ctx, userID, "extend", "a")
	require.NoError(t, err)
	assert.Equal(t, 3, card.ContractsRemaining)
	assert.Empty(t, card.AppliedTokenID)

	_, err = f.store.Token(ctx, userID, "extend")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRemoveToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.card(t, "a", 1, 3)
	f.token(t, "mult", models.EffectScoreMultiplier, 2)

	_, err := f.manager.ApplyToken(ctx, userID, "mult", "a")
	require.NoError(t, err)
	require.NoError(t, f.manager.RemoveToken(ctx, userID, "a"))
	require.NoError(t, f.manager.RemoveToken(ctx, userID, "a"))

	a, _ := f.store.Card(ctx, userID, "a")
	tok, _ := f.store.Token(ctx, userID, "mult")
	assert.Empty(t, a.AppliedTokenID)
	assert.Empty(t, tok.AppliedTo)
}

func TestSubmitLineup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.startAll(t)
	f.token(t, "mult", models.EffectScoreMultiplier, 1.5)
	_, err := f.manager.ApplyToken(ctx, userID, "mult", "PG")
	require.NoError(t, err)

	stats := map[int]models.GameStat{
		1: {PlayerID: 1, Points: 30, Rebounds: 10, Assists: 5, Steals: 2, Blocks: 1, Turnovers: 3, ThreesMade: 4},
		2: {PlayerID: 2, Points: 10},
	}

	sub, err := f.manager.SubmitLineup(ctx, userID, "2026-10-16", stats)
	require.NoError(t, err)
	assert.Equal(t, 96.25, sub.Score.TotalScore)
	assert.Equal(t, 96.25, sub.Result.TotalScore)
	assert.Equal(t, f.clock.Now(), sub.Result.SubmittedAt)
	assert.Len(t, sub.Result.Cards, 5)

	results, err := f.store.LineupResults(ctx, userID)
	require.NoError(t, err)
	require.Len(t, results, 1)

	pg, _ := f.store.Card(ctx, userID, "PG")
	assert.Equal(t, 2, pg.ContractsRemaining)
}

func TestSubmitLineup_RejectsExpiredCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.startAll(t)

	c, err := f.store.Card(ctx, userID, "SF")
	require.NoError(t, err)
	c.ContractsRemaining = 0
	require.NoError(t, f.store.SaveCard(ctx, c))

	_, err = f.manager.SubmitLineup(ctx, userID, "2026-10-16", nil)
	assert.ErrorIs(t, err, ErrInvalidLineup)
	assert.ErrorIs(t, err, ErrExpiredContract)

	results, _ := f.store.LineupResults(ctx, userID)
	assert.Empty(t, results)
	pg, _ := f.store.Card(ctx, userID, "PG")
	assert.Equal(t, 3, pg.ContractsRemaining)
}
