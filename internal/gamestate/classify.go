package gamestate

import (
	"time"

	"github.com/omarshaarawi/courtside/internal/models"
)

type Phase string

const (
	PhaseUpcoming Phase = "upcoming"
	PhaseLive     Phase = "live"
	PhaseFinished Phase = "finished"
	// PhasePending is a past-dated game with no score and no final marker,
	// waiting on a backfill.
	PhasePending Phase = "pending"
)

// LivePolicy decides when a game that upstream has not yet marked live
// should be treated as live anyway, covering publish lag.
type LivePolicy struct {
	Grace    time.Duration
	Evidence func(models.Game) bool
}

// StartEvidence is satisfied by a non-zero score or the played flag.
func StartEvidence(g models.Game) bool {
	return g.HasScore() || g.Played
}

func DefaultLivePolicy() LivePolicy {
	return LivePolicy{Grace: 20 * time.Minute, Evidence: StartEvidence}
}

// ShouldPromote reports whether start is at least Grace in the past and g
// shows evidence of having tipped off.
func (p LivePolicy) ShouldPromote(g models.Game, start, now time.Time) bool {
	if start.IsZero() || now.Sub(start) < p.Grace {
		return false
	}
	evidence := p.Evidence
	if evidence == nil {
		evidence = StartEvidence
	}
	return evidence(g)
}

// Classifier evaluates the finished/live/upcoming predicates. Anchor is the
// timezone whose calendar date is "today"; UTC when nil.
type Classifier struct {
	Anchor *time.Location
	Policy LivePolicy
}

func NewClassifier(anchor *time.Location, policy LivePolicy) Classifier {
	if anchor == nil {
		anchor = time.UTC
	}
	return Classifier{Anchor: anchor, Policy: policy}
}

func (c Classifier) Today(now time.Time) time.Time {
	return CalendarDay(now, c.Anchor)
}

// DaysFromToday returns the game's date relative to today (negative in the past).
func (c Classifier) DaysFromToday(g models.Game, now time.Time) (int, bool) {
	day, err := ParseDate(g.Date)
	if err != nil {
		return 0, false
	}
	return int(day.Sub(c.Today(now)).Hours() / 24), true
}

func (c Classifier) IsToday(g models.Game, now time.Time) bool {
	d, ok := c.DaysFromToday(g, now)
	return ok && d == 0
}

func (c Classifier) IsPast(g models.Game, now time.Time) bool {
	d, ok := c.DaysFromToday(g, now)
	return ok && d < 0
}

func (c Classifier) IsFinished(g models.Game, now time.Time) bool {
	if progressOf(g) == models.ProgressFinal {
		return true
	}
	if !g.HasScore() {
		return false
	}
	return c.IsPast(g, now) || g.Played
}

func (c Classifier) IsLive(g models.Game, now time.Time) bool {
	if c.IsFinished(g, now) {
		return false
	}
	if g.Period > 0 || progressOf(g) == models.ProgressLive {
		return true
	}
	if !c.IsToday(g, now) {
		return false
	}
	start, _ := ScheduledStart(g)
	return c.Policy.ShouldPromote(g, start, now)
}

func (c Classifier) IsUpcoming(g models.Game, now time.Time) bool {
	if c.IsFinished(g, now) || c.IsLive(g, now) {
		return false
	}
	d, ok := c.DaysFromToday(g, now)
	return ok && d >= 0
}

// Phase returns the single phase g is in. Finished wins over live, live over upcoming.
func (c Classifier) Phase(g models.Game, now time.Time) Phase {
	switch {
	case c.IsFinished(g, now):
		return PhaseFinished
	case c.IsLive(g, now):
		return PhaseLive
	case c.IsUpcoming(g, now):
		return PhaseUpcoming
	default:
		return PhasePending
	}
}
