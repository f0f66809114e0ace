package models

import "time"

type Position string

const (
	PointGuard    Position = "PG"
	ShootingGuard Position = "SG"
	SmallForward  Position = "SF"
	PowerForward  Position = "PF"
	Center        Position = "C"
)

// LineupPositions lists the five slots every lineup must fill, in display order.
var LineupPositions = []Position{PointGuard, ShootingGuard, SmallForward, PowerForward, Center}

type EffectType string

const (
	EffectScoreMultiplier EffectType = "score_multiplier"
	EffectStatThreshold   EffectType = "stat_threshold"
	EffectContractAdd     EffectType = "contract_add"
	EffectScoreVariance   EffectType = "score_variance"

	// Legacy aliases still referenced by older tokens.
	EffectLegacyMultiplier EffectType = "multiplier"
	EffectLegacyThreshold  EffectType = "threshold"
)

type TokenEffect struct {
	ID          string     `json:"id"`
	Name        string     `json:"name,omitempty"`
	EffectType  EffectType `json:"effect_type"`
	EffectValue *float64   `json:"effect_value,omitempty"`
	Threshold   *float64   `json:"threshold,omitempty"`
	Bonus       *float64   `json:"bonus,omitempty"`
	Multiplier  *float64   `json:"multiplier,omitempty"`
	Description string     `json:"description"`
	Rarity      Rarity     `json:"rarity,omitempty"`
}

type LineupCard struct {
	CardID             string   `json:"card_id"`
	PlayerID           int      `json:"player_id"`
	PlayerName         string   `json:"player_name,omitempty"`
	TeamID             int      `json:"team_id,omitempty"`
	Position           Position `json:"position"`
	ContractsRemaining int      `json:"contracts_remaining"`
	AppliedTokenID     string   `json:"applied_token_id,omitempty"`
}

type TokenContribution struct {
	TokenID     string     `json:"token_id"`
	Type        EffectType `json:"type"`
	Description string     `json:"description"`
	Bonus       float64    `json:"bonus"`
	// Outcome is "high"/"low" for variance tokens and "missed" for unmet thresholds.
	Outcome string `json:"outcome,omitempty"`
}

type PlayerScore struct {
	CardID            string              `json:"card_id"`
	PlayerID          int                 `json:"player_id"`
	Position          Position            `json:"position"`
	BaseFantasyPoints float64             `json:"base_fantasy_points"`
	TokenEffects      []TokenContribution `json:"token_effects"`
	FinalScore        float64             `json:"final_score"`
	Reason            string              `json:"reason,omitempty"`
}

type LineupScore struct {
	TotalScore   float64       `json:"total_score"`
	PlayerScores []PlayerScore `json:"player_scores"`
}

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// OwnedCard is a user's inventory row for a player card.
type OwnedCard struct {
	ID                 string    `json:"id"`
	UserID             int64     `json:"user_id"`
	PlayerID           int       `json:"player_id"`
	PlayerName         string    `json:"player_name"`
	TeamID             int       `json:"team_id"`
	Position           Position  `json:"position"`
	Rarity             Rarity    `json:"rarity"`
	ContractsRemaining int       `json:"contracts_remaining"`
	InLineup           bool      `json:"in_lineup"`
	LineupPosition     Position  `json:"lineup_position,omitempty"`
	AppliedTokenID     string    `json:"applied_token_id,omitempty"`
	AcquiredAt         time.Time `json:"acquired_at"`
}

func (c OwnedCard) LineupCard() LineupCard {
	return LineupCard{
		CardID:             c.ID,
		PlayerID:           c.PlayerID,
		PlayerName:         c.PlayerName,
		TeamID:             c.TeamID,
		Position:           c.LineupPosition,
		ContractsRemaining: c.ContractsRemaining,
		AppliedTokenID:     c.AppliedTokenID,
	}
}

// OwnedToken is a user's inventory row for a token card.
type OwnedToken struct {
	ID         string      `json:"id"`
	UserID     int64       `json:"user_id"`
	Effect     TokenEffect `json:"effect"`
	AppliedTo  string      `json:"applied_to,omitempty"`
	AcquiredAt time.Time   `json:"acquired_at"`
}

type LineupResult struct {
	UserID      int64        `json:"user_id"`
	GameDate    string       `json:"game_date"`
	Cards       []LineupCard `json:"cards"`
	TotalScore  float64      `json:"total_score"`
	Rank        int          `json:"rank,omitempty"`
	SubmittedAt time.Time    `json:"submitted_at"`
}

// PlayerDirectory is the cached list of players used for name lookups.
type PlayerDirectory struct {
	Players     []Player
	LastUpdated time.Time
}
