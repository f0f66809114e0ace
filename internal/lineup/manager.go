package lineup

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/repository"
	"github.com/omarshaarawi/courtside/internal/scoring"
)

var (
	ErrInvalidLineup = errors.New("lineup cannot be submitted")
	ErrInvalidToken  = errors.New("token has no usable value")
)

// Manager applies inventory changes on top of a repository.Store.
type Manager struct {
	store  repository.Store
	engine *scoring.Engine
	clock  clockwork.Clock
}

func NewManager(store repository.Store, engine *scoring.Engine, clock clockwork.Clock) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{store: store, engine: engine, clock: clock}
}

// Lineup returns the user's started cards in position order.
func (m *Manager) Lineup(ctx context.Context, userID int64) ([]models.LineupCard, error) {
	cards, err := m.store.Cards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading cards: %w", err)
	}
	var out []models.LineupCard
	for _, c := range cards {
		if c.InLineup {
			out = append(out, c.LineupCard())
		}
	}
	slices.SortStableFunc(out, func(a, b models.LineupCard) int {
		return positionIndex(a.Position) - positionIndex(b.Position)
	})
	return out, nil
}

// SetPosition starts a card at pos, benching whoever held it. An empty pos
// benches the card.
func (m *Manager) SetPosition(ctx context.Context, userID int64, cardID string, pos models.Position) error {
	if pos != "" && !slices.Contains(models.LineupPositions, pos) {
		return fmt.Errorf("%q: %w", pos, ErrInvalidPosition)
	}
	card, err := m.store.Card(ctx, userID, cardID)
	if err != nil {
		return fmt.Errorf("loading card %s: %w", cardID, err)
	}

	if pos != "" {
		cards, err := m.store.Cards(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading cards: %w", err)
		}
		for _, other := range cards {
			if other.ID == cardID || !other.InLineup || other.LineupPosition != pos {
				continue
			}
			other.InLineup = false
			other.LineupPosition = ""
			if err := m.store.SaveCard(ctx, other); err != nil {
				return fmt.Errorf("benching card %s: %w", other.ID, err)
			}
		}
	}

	card.InLineup = pos != ""
	card.LineupPosition = pos
	if err := m.store.SaveCard(ctx, card); err != nil {
		return fmt.Errorf("saving card %s: %w", cardID, err)
	}
	return nil
}

// ApplyToken attaches a token to a card. The token is first detached from
// any card it was on and the card's current token is detached, so a card
// holds one token and a token sits on one card. A contract_add token is
// consumed on the spot and extends the card's contracts instead.
func (m *Manager) ApplyToken(ctx context.Context, userID int64, tokenID, cardID string) (models.OwnedCard, error) {
	token, err := m.store.Token(ctx, userID, tokenID)
	if err != nil {
		return models.OwnedCard{}, fmt.Errorf("loading token %s: %w", tokenID, err)
	}
	card, err := m.store.Card(ctx, userID, cardID)
	if err != nil {
		return models.OwnedCard{}, fmt.Errorf("loading card %s: %w", cardID, err)
	}

	if token.AppliedTo != "" && token.AppliedTo != cardID {
		if err := m.clearCardToken(ctx, userID, token.AppliedTo, tokenID); err != nil {
			return models.OwnedCard{}, err
		}
	}

	if token.Effect.EffectType == models.EffectContractAdd {
		if token.Effect.EffectValue == nil || *token.Effect.EffectValue <= 0 {
			return models.OwnedCard{}, fmt.Errorf("token %s: %w", tokenID, ErrInvalidToken)
		}
		card.ContractsRemaining += int(math.Round(*token.Effect.EffectValue))
		if card.AppliedTokenID == tokenID {
			card.AppliedTokenID = ""
		}
		if err := m.store.SaveCard(ctx, card); err != nil {
			return models.OwnedCard{}, fmt.Errorf("saving card %s: %w", cardID, err)
		}
		if err := m.store.DeleteToken(ctx, userID, tokenID); err != nil {
			return models.OwnedCard{}, fmt.Errorf("consuming token %s: %w", tokenID, err)
		}
		return card, nil
	}

	if card.AppliedTokenID != "" && card.AppliedTokenID != tokenID {
		if err := m.clearTokenCard(ctx, userID, card.AppliedTokenID); err != nil {
			return models.OwnedCard{}, err
		}
	}

	card.AppliedTokenID = tokenID
	token.AppliedTo = cardID
	if err := m.store.SaveToken(ctx, token); err != nil {
		return models.OwnedCard{}, fmt.Errorf("saving token %s: %w", tokenID, err)
	}
	if err := m.store.SaveCard(ctx, card); err != nil {
		return models.OwnedCard{}, fmt.Errorf("saving card %s: %w", cardID, err)
	}
	return card, nil
}

// RemoveToken detaches whatever token the card holds.
func (m *Manager) RemoveToken(ctx context.Context, userID int64, cardID string) error {
	card, err := m.store.Card(ctx, userID, cardID)
	if err != nil {
		return fmt.Errorf("loading card %s: %w", cardID, err)
	}
	if card.AppliedTokenID == "" {
		return nil
	}
	if err := m.clearTokenCard(ctx, userID, card.AppliedTokenID); err != nil {
		return err
	}
	card.AppliedTokenID = ""
	if err := m.store.SaveCard(ctx, card); err != nil {
		return fmt.Errorf("saving card %s: %w", cardID, err)
	}
	return nil
}

// TokensByCard maps each card id to the effects of the tokens applied to it.
func (m *Manager) TokensByCard(ctx context.Context, userID int64) (map[string][]models.TokenEffect, error) {
	tokens, err := m.store.Tokens(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading tokens: %w", err)
	}
	out := make(map[string][]models.TokenEffect)
	for _, t := range tokens {
		if t.AppliedTo != "" {
			out[t.AppliedTo] = append(out[t.AppliedTo], t.Effect)
		}
	}
	return out, nil
}

// Preview scores the current lineup without recording anything.
func (m *Manager) Preview(ctx context.Context, userID int64, stats map[int]models.GameStat) ([]models.LineupCard, models.LineupScore, error) {
	cards, err := m.Lineup(ctx, userID)
	if err != nil {
		return nil, models.LineupScore{}, err
	}
	tokens, err := m.TokensByCard(ctx, userID)
	if err != nil {
		return nil, models.LineupScore{}, err
	}
	return cards, m.engine.ScoreLineup(cards, stats, tokens), nil
}

type Submission struct {
	Result   models.LineupResult
	Score    models.LineupScore
	Warnings []string
}

// SubmitLineup validates and scores the lineup for gameDate, records the
// result and uses up one contract on every started card.
func (m *Manager) SubmitLineup(ctx context.Context, userID int64, gameDate string, stats map[int]models.GameStat) (Submission, error) {
	cards, score, err := m.Preview(ctx, userID, stats)
	if err != nil {
		return Submission{}, err
	}

	report := Validate(cards)
	if !report.OK() {
		return Submission{Warnings: report.Warnings}, fmt.Errorf("%w: %w", ErrInvalidLineup, report.Err())
	}

	result := models.LineupResult{
		UserID:      userID,
		GameDate:    gameDate,
		Cards:       cards,
		TotalScore:  score.TotalScore,
		SubmittedAt: m.clock.Now(),
	}
	if err := m.store.SaveLineupResult(ctx, result); err != nil {
		return Submission{}, fmt.Errorf("recording lineup: %w", err)
	}

	for _, lc := range cards {
		card, err := m.store.Card(ctx, userID, lc.CardID)
		if err != nil {
			return Submission{}, fmt.Errorf("loading card %s: %w", lc.CardID, err)
		}
		card.ContractsRemaining--
		if err := m.store.SaveCard(ctx, card); err != nil {
			return Submission{}, fmt.Errorf("saving card %s: %w", lc.CardID, err)
		}
	}

	return Submission{Result: result, Score: score, Warnings: report.Warnings}, nil
}

func (m *Manager) clearCardToken(ctx context.Context, userID int64, cardID, tokenID string) error {
	prev, err := m.store.Card(ctx, userID, cardID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading card %s: %w", cardID, err)
	}
	if prev.AppliedTokenID != tokenID {
		return nil
	}
	prev.AppliedTokenID = ""
	if err := m.store.SaveCard(ctx, prev); err != nil {
		return fmt.Errorf("detaching token from card %s: %w", cardID, err)
	}
	return nil
}

func (m *Manager) clearTokenCard(ctx context.Context, userID int64, tokenID string) error {
	tok, err := m.store.Token(ctx, userID, tokenID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading token %s: %w", tokenID, err)
	}
	tok.AppliedTo = ""
	if err := m.store.SaveToken(ctx, tok); err != nil {
		return fmt.Errorf("detaching token %s: %w", tokenID, err)
	}
	return nil
}

func positionIndex(p models.Position) int {
	if i := slices.Index(models.LineupPositions, p); i >= 0 {
		return i
	}
	return len(models.LineupPositions)
}
