// Package storetest holds behaviour shared by every repository.Store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	acquired := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	t.Run("cards", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Card(ctx, 1, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		first := models.OwnedCard{ID: "a", UserID: 1, PlayerID: 237, ContractsRemaining: 3, AcquiredAt: acquired}
		second := models.OwnedCard{ID: "b", UserID: 1, PlayerID: 115, ContractsRemaining: 1, AcquiredAt: acquired.Add(time.Minute)}
		require.NoError(t, s.SaveCard(ctx, second))
		require.NoError(t, s.SaveCard(ctx, first))
		require.NoError(t, s.SaveCard(ctx, models.OwnedCard{ID: "c", UserID: 2, AcquiredAt: acquired}))

		first.ContractsRemaining = 2
		require.NoError(t, s.SaveCard(ctx, first))

		got, err := s.Card(ctx, 1, "a")
		require.NoError(t, err)
		assert.Equal(t, 2, got.ContractsRemaining)

		cards, err := s.Cards(ctx, 1)
		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, "a", cards[0].ID)
		assert.Equal(t, "b", cards[1].ID)
	})

	t.Run("tokens", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		value := 1.5

		tok := models.OwnedToken{
			ID:         "t1",
			UserID:     1,
			Effect:     models.TokenEffect{ID: "mult", EffectType: models.EffectScoreMultiplier, EffectValue: &value},
			AcquiredAt: acquired,
		}
		require.NoError(t, s.SaveToken(ctx, tok))

		got, err := s.Token(ctx, 1, "t1")
		require.NoError(t, err)
		require.NotNil(t, got.Effect.EffectValue)
		assert.Equal(t, 1.5, *got.Effect.EffectValue)

		tokens, err := s.Tokens(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, tokens, 1)

		require.NoError(t, s.DeleteToken(ctx, 1, "t1"))
		assert.ErrorIs(t, s.DeleteToken(ctx, 1, "t1"), repository.ErrNotFound)
		_, err = s.Token(ctx, 1, "t1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("lineup results", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.SaveLineupResult(ctx, models.LineupResult{UserID: 1, GameDate: "2026-10-15", TotalScore: 120.5}))
		require.NoError(t, s.SaveLineupResult(ctx, models.LineupResult{UserID: 1, GameDate: "2026-10-16", TotalScore: 98}))

		results, err := s.LineupResults(ctx, 1)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "2026-10-15", results[0].GameDate)
		assert.Equal(t, 98.0, results[1].TotalScore)

		none, err := s.LineupResults(ctx, 9)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("follows", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.SaveFollow(ctx, 100, 14))
		require.NoError(t, s.SaveFollow(ctx, 200, 2))
		require.NoError(t, s.SaveFollow(ctx, 100, 7))
		require.NoError(t, s.DeleteFollow(ctx, 200))

		follows, err := s.Follows(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[int64]int{100: 7}, follows)
	})

	t.Run("directory", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Directory(ctx)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		dir := &models.PlayerDirectory{
			Players:     []models.Player{{ID: 237, FirstName: "LeBron", LastName: "James"}},
			LastUpdated: acquired,
		}
		require.NoError(t, s.SaveDirectory(ctx, dir))

		got, err := s.Directory(ctx)
		require.NoError(t, err)
		require.Len(t, got.Players, 1)
		assert.Equal(t, "LeBron James", got.Players[0].FullName())
		assert.True(t, got.LastUpdated.Equal(acquired))
	})
}
