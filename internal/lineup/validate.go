package lineup

import (
	"errors"
	"fmt"
	"slices"

	"github.com/omarshaarawi/courtside/internal/models"
)

var (
	ErrExpiredContract   = errors.New("card has no contracts remaining")
	ErrMissingPosition   = errors.New("position not filled")
	ErrDuplicatePosition = errors.New("position filled more than once")
	ErrInvalidPosition   = errors.New("unknown position")
)

// Report is the outcome of validating a lineup. Errors block submission;
// warnings do not.
type Report struct {
	Errors   []error
	Warnings []string
}

func (r Report) OK() bool {
	return len(r.Errors) == 0
}

func (r Report) Err() error {
	return errors.Join(r.Errors...)
}

// Validate checks that every position holds exactly one card and that every
// card can still be started.
func Validate(cards []models.LineupCard) Report {
	var r Report
	filled := make(map[models.Position]int, len(models.LineupPositions))

	for _, c := range cards {
		if !slices.Contains(models.LineupPositions, c.Position) {
			r.Errors = append(r.Errors, fmt.Errorf("card %s at %q: %w", c.CardID, c.Position, ErrInvalidPosition))
			continue
		}
		filled[c.Position]++

		switch {
		case c.ContractsRemaining <= 0:
			r.Errors = append(r.Errors, fmt.Errorf("%s %s: %w", c.Position, displayName(c), ErrExpiredContract))
		case c.ContractsRemaining == 1:
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s %s is on their last contract", c.Position, displayName(c)))
		}
	}

	for _, pos := range models.LineupPositions {
		switch n := filled[pos]; {
		case n == 0:
			r.Errors = append(r.Errors, fmt.Errorf("%s: %w", pos, ErrMissingPosition))
		case n > 1:
			r.Errors = append(r.Errors, fmt.Errorf("%s: %w", pos, ErrDuplicatePosition))
		}
	}
	return r
}

func displayName(c models.LineupCard) string {
	if c.PlayerName != "" {
		return c.PlayerName
	}
	return fmt.Sprintf("player %d", c.PlayerID)
}
