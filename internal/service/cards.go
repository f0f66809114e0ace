package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/omarshaarawi/courtside/internal/api/nba"
	"github.com/omarshaarawi/courtside/internal/gamestate"
	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/repository"
)

var (
	ErrAmbiguousRef     = errors.New("reference matches more than one item")
	ErrStatsUnavailable = errors.New("stats are still updating")
)

// minRefLen is the shortest id prefix accepted from chat commands.
const minRefLen = 4

func (s *FantasyService) Inventory(ctx context.Context, userID int64) (string, error) {
	cards, err := s.Store.Cards(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("loading cards: %w", err)
	}
	tokens, err := s.Store.Tokens(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("loading tokens: %w", err)
	}
	return formatInventory(cards, tokens), nil
}

func (s *FantasyService) Lineup(ctx context.Context, userID int64) (string, error) {
	cards, err := s.Lineups.Lineup(ctx, userID)
	if err != nil {
		return "", err
	}
	return formatLineup(cards), nil
}

// SetPosition starts the referenced card at pos ("bench" benches it).
func (s *FantasyService) SetPosition(ctx context.Context, userID int64, cardRef, pos string) (string, error) {
	card, err := s.resolveCard(ctx, userID, cardRef)
	if err != nil {
		return "", err
	}
	position := models.Position(strings.ToUpper(pos))
	if strings.EqualFold(pos, "bench") {
		position = ""
	}
	if err := s.Lineups.SetPosition(ctx, userID, card.ID, position); err != nil {
		return "", err
	}
	if position == "" {
		return fmt.Sprintf("🪑 %s moved to the bench.", card.PlayerName), nil
	}
	return fmt.Sprintf("✅ %s starts at %s.", card.PlayerName, position), nil
}

func (s *FantasyService) ApplyToken(ctx context.Context, userID int64, tokenRef, cardRef string) (string, error) {
	token, err := s.resolveToken(ctx, userID, tokenRef)
	if err != nil {
		return "", err
	}
	card, err := s.resolveCard(ctx, userID, cardRef)
	if err != nil {
		return "", err
	}
	updated, err := s.Lineups.ApplyToken(ctx, userID, token.ID, card.ID)
	if err != nil {
		return "", err
	}
	if token.Effect.EffectType == models.EffectContractAdd {
		return fmt.Sprintf("📝 %s now has %d contracts.", updated.PlayerName, updated.ContractsRemaining), nil
	}
	return fmt.Sprintf("🪙 %s applied to %s.", tokenName(token.Effect), updated.PlayerName), nil
}

func (s *FantasyService) RemoveToken(ctx context.Context, userID int64, cardRef string) (string, error) {
	card, err := s.resolveCard(ctx, userID, cardRef)
	if err != nil {
		return "", err
	}
	if err := s.Lineups.RemoveToken(ctx, userID, card.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Token removed from %s.", card.PlayerName), nil
}

// ScorePreview scores the current lineup against date's stat lines
// (today in the date anchor when empty).
func (s *FantasyService) ScorePreview(ctx context.Context, userID int64, date string) (string, error) {
	date, err := s.scoreDate(date)
	if err != nil {
		return "", err
	}
	cards, err := s.Lineups.Lineup(ctx, userID)
	if err != nil {
		return "", err
	}
	stats, err := s.statsFor(ctx, cards, date)
	if err != nil {
		slog.Error("Error fetching lineup stats, previewing without them", "date", date, "error", err)
	}
	_, score, err := s.Lineups.Preview(ctx, userID, stats)
	if err != nil {
		return "", err
	}
	return formatScore(date, cards, score), nil
}

func (s *FantasyService) SubmitLineup(ctx context.Context, userID int64, date string) (string, error) {
	date, err := s.scoreDate(date)
	if err != nil {
		return "", err
	}
	cards, err := s.Lineups.Lineup(ctx, userID)
	if err != nil {
		return "", err
	}
	stats, err := s.statsFor(ctx, cards, date)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStatsUnavailable, err)
	}
	sub, err := s.Lineups.SubmitLineup(ctx, userID, date, stats)
	if err != nil {
		return "", err
	}
	return formatSubmission(sub), nil
}

func (s *FantasyService) OpenPack(ctx context.Context, userID int64) (string, error) {
	dir, err := s.directory(ctx)
	if err != nil {
		return "", err
	}
	pack, err := s.Packs.Open(userID, dir.Players)
	if err != nil {
		return "", err
	}
	for _, c := range pack.Cards {
		if err := s.Store.SaveCard(ctx, c); err != nil {
			return "", fmt.Errorf("saving card: %w", err)
		}
	}
	for _, t := range pack.Tokens {
		if err := s.Store.SaveToken(ctx, t); err != nil {
			return "", fmt.Errorf("saving token: %w", err)
		}
	}
	return formatPack(pack.Cards, pack.Tokens), nil
}

func (s *FantasyService) scoreDate(date string) (string, error) {
	if date == "" {
		return gamestate.DateString(s.Classifier.Today(s.Clock.Now())), nil
	}
	day, err := gamestate.ParseDate(date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return gamestate.DateString(day), nil
}

// statsFor fetches the lineup's stat lines for date. On error the returned
// map is empty, never nil.
func (s *FantasyService) statsFor(ctx context.Context, cards []models.LineupCard, date string) (map[int]models.GameStat, error) {
	out := make(map[int]models.GameStat, len(cards))
	if len(cards) == 0 {
		return out, nil
	}
	ids := make([]int, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.PlayerID)
	}
	lines, err := s.Gateway.Stats(ctx, nba.StatsQuery{PlayerIDs: ids, Dates: []string{date}})
	if err != nil {
		return out, fmt.Errorf("fetching stats for %s: %w", date, err)
	}
	for _, l := range lines {
		out[l.PlayerID] = l
	}
	return out, nil
}

func (s *FantasyService) resolveCard(ctx context.Context, userID int64, ref string) (models.OwnedCard, error) {
	cards, err := s.Store.Cards(ctx, userID)
	if err != nil {
		return models.OwnedCard{}, fmt.Errorf("loading cards: %w", err)
	}
	var matches []models.OwnedCard
	for _, c := range cards {
		if c.ID == ref {
			return c, nil
		}
		if refMatches(c.ID, ref) || strings.EqualFold(c.PlayerName, ref) {
			matches = append(matches, c)
		}
	}
	return pick(matches, "card", ref)
}

func (s *FantasyService) resolveToken(ctx context.Context, userID int64, ref string) (models.OwnedToken, error) {
	tokens, err := s.Store.Tokens(ctx, userID)
	if err != nil {
		return models.OwnedToken{}, fmt.Errorf("loading tokens: %w", err)
	}
	var matches []models.OwnedToken
	for _, t := range tokens {
		if t.ID == ref {
			return t, nil
		}
		if refMatches(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	return pick(matches, "token", ref)
}

func refMatches(id, ref string) bool {
	return len(ref) >= minRefLen && strings.HasPrefix(strings.ToLower(id), strings.ToLower(ref))
}

func pick[T any](matches []T, kind, ref string) (T, error) {
	var zero T
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("%s %q: %w", kind, ref, repository.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return zero, fmt.Errorf("%s %q: %w", kind, ref, ErrAmbiguousRef)
	}
}
