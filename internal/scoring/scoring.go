package scoring

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/omarshaarawi/courtside/internal/models"
)

// ThresholdCutoff is the base score a stat_threshold token needs to pay out.
const ThresholdCutoff = 25.0

const NoStatsReason = "No stats available"

const (
	OutcomeHigh    = "high"
	OutcomeLow     = "low"
	OutcomeMissed  = "missed"
	OutcomeUnknown = "unknown"
)

// Coin decides a score_variance token: true is the high outcome.
type Coin func() bool

func FairCoin() Coin {
	return func() bool { return rand.IntN(2) == 0 }
}

type Engine struct {
	coin Coin
}

func NewEngine(coin Coin) *Engine {
	if coin == nil {
		coin = FairCoin()
	}
	return &Engine{coin: coin}
}

// BaseFantasyPoints applies the fixed stat weights and rounds to cents.
func BaseFantasyPoints(s models.GameStat) float64 {
	return Round(rawPoints(s))
}

func rawPoints(s models.GameStat) float64 {
	return float64(s.Points) +
		float64(s.Rebounds)*1.2 +
		float64(s.Assists)*1.5 +
		float64(s.Steals)*3 +
		float64(s.Blocks)*3 -
		float64(s.Turnovers) +
		float64(s.ThreesMade)*0.5
}

func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// ScoreLineup scores every card against its player's stat line and the
// tokens attached to it. A card with no stat line scores zero and its
// tokens are not evaluated.
func (e *Engine) ScoreLineup(lineup []models.LineupCard, statsByPlayer map[int]models.GameStat, tokensByCard map[string][]models.TokenEffect) models.LineupScore {
	result := models.LineupScore{PlayerScores: make([]models.PlayerScore, 0, len(lineup))}
	total := 0.0

	for _, card := range lineup {
		ps := models.PlayerScore{
			CardID:       card.CardID,
			PlayerID:     card.PlayerID,
			Position:     card.Position,
			TokenEffects: []models.TokenContribution{},
		}

		stat, ok := statsByPlayer[card.PlayerID]
		if !ok {
			ps.Reason = NoStatsReason
			result.PlayerScores = append(result.PlayerScores, ps)
			continue
		}

		ps.BaseFantasyPoints = BaseFantasyPoints(stat)
		contributions, delta := e.ApplyTokens(ps.BaseFantasyPoints, tokensByCard[card.CardID])
		ps.TokenEffects = contributions
		ps.FinalScore = Round(ps.BaseFantasyPoints + delta)

		total += ps.BaseFantasyPoints + delta
		result.PlayerScores = append(result.PlayerScores, ps)
	}

	result.TotalScore = Round(total)
	return result
}

// ApplyTokens evaluates tokens in order against base and returns one
// contribution per token plus the summed delta.
func (e *Engine) ApplyTokens(base float64, tokens []models.TokenEffect) ([]models.TokenContribution, float64) {
	contributions := make([]models.TokenContribution, 0, len(tokens))
	sum := 0.0
	for _, t := range tokens {
		c := e.apply(base, t)
		sum += c.Bonus
		contributions = append(contributions, c)
	}
	return contributions, sum
}

func (e *Engine) apply(base float64, t models.TokenEffect) models.TokenContribution {
	c := models.TokenContribution{
		TokenID:     t.ID,
		Type:        t.EffectType,
		Description: t.Description,
	}

	switch Canonical(t.EffectType) {
	case models.EffectScoreMultiplier:
		factor, ok := param(t.EffectValue, t.Multiplier)
		if !ok {
			c.Outcome = OutcomeUnknown
			return c
		}
		c.Bonus = base * (factor - 1)
		if c.Description == "" {
			c.Description = fmt.Sprintf("%.2gx score", factor)
		}

	case models.EffectStatThreshold:
		bonus, ok := param(t.EffectValue, t.Bonus)
		if !ok {
			c.Outcome = OutcomeUnknown
			return c
		}
		cutoff := ThresholdCutoff
		if t.Threshold != nil {
			cutoff = *t.Threshold
		}
		if base >= cutoff {
			c.Bonus = bonus
		} else {
			c.Outcome = OutcomeMissed
		}
		if c.Description == "" {
			c.Description = fmt.Sprintf("+%g at %g points", bonus, cutoff)
		}

	case models.EffectContractAdd:
		if c.Description == "" {
			v, _ := param(t.EffectValue, nil)
			c.Description = fmt.Sprintf("+%g contracts", v)
		}

	case models.EffectScoreVariance:
		if e.coin() {
			c.Outcome = OutcomeHigh
			c.Bonus = base
		} else {
			c.Outcome = OutcomeLow
			c.Bonus = -base * 0.5
		}

	default:
		c.Outcome = OutcomeUnknown
	}
	return c
}

// Canonical maps legacy effect names onto their current equivalents.
func Canonical(t models.EffectType) models.EffectType {
	switch t {
	case models.EffectLegacyMultiplier:
		return models.EffectScoreMultiplier
	case models.EffectLegacyThreshold:
		return models.EffectStatThreshold
	}
	return t
}

func param(primary, fallback *float64) (float64, bool) {
	if primary != nil {
		return *primary, true
	}
	if fallback != nil {
		return *fallback, true
	}
	return 0, false
}
