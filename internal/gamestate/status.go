package gamestate

import (
	"regexp"
	"strings"
	"time"

	"github.com/omarshaarawi/courtside/internal/models"
)

var (
	liveMarkers = []string{"in progress", "qtr", "quarter", "half", "end of", "live"}
	overtimeRe  = regexp.MustCompile(`(?i)\b\d*ot\b`)
)

// ProgressFromStatus maps the overloaded upstream status text to a progress
// value. Anything that is not a final or in-game marker is a scheduled game.
func ProgressFromStatus(status string) models.ProgressStatus {
	lower := strings.ToLower(strings.TrimSpace(status))
	if strings.Contains(lower, "final") {
		return models.ProgressFinal
	}
	for _, marker := range liveMarkers {
		if strings.Contains(lower, marker) {
			return models.ProgressLive
		}
	}
	if overtimeRe.MatchString(lower) {
		return models.ProgressLive
	}
	return models.ProgressScheduled
}

func progressOf(g models.Game) models.ProgressStatus {
	if g.Progress != "" {
		return g.Progress
	}
	return ProgressFromStatus(g.Status)
}

// Normalize fills the derived fields of g: progress, scheduled time display
// and a non-nil stats line.
func Normalize(g *models.Game) {
	g.Progress = ProgressFromStatus(g.Status)
	g.ScheduledTimeDisplay = ""
	if g.Progress == models.ProgressScheduled {
		if start, ok := ScheduledStart(*g); ok {
			g.ScheduledTimeDisplay = start.In(eastern).Format("3:04 PM") + " ET"
		}
	}
	if g.Stats == nil {
		g.Stats = models.EmptyStat(g.ID)
	}
}

// NormalizeAll normalizes every game in place and returns the slice.
func NormalizeAll(games []models.Game) []models.Game {
	for i := range games {
		Normalize(&games[i])
	}
	return games
}

// MarkFinal forces the unambiguous final status onto g.
func MarkFinal(g *models.Game) {
	if ProgressFromStatus(g.Status) != models.ProgressFinal {
		g.Status = models.FinalStatus
	}
	g.Progress = models.ProgressFinal
}

// DefaultTipoff is assumed when neither datetime nor status carries a start time.
var DefaultTipoff = 19 * time.Hour

// ScheduledStart returns the game's tip-off. The boolean is false when the
// start had to be assumed from the date alone.
func ScheduledStart(g models.Game) (time.Time, bool) {
	if g.Datetime != "" {
		if t, err := time.Parse(time.RFC3339, g.Datetime); err == nil {
			return t, true
		}
	}
	day, err := ParseDate(g.Date)
	if err != nil {
		return time.Time{}, false
	}
	if t, ok := parseTipoff(g.Status, day); ok {
		return t, true
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, eastern).Add(DefaultTipoff), false
}

const (
	NominalGameLength = 150 * time.Minute
	OvertimeLength    = 15 * time.Minute
)

// EndTime estimates when g finished: tip-off plus the nominal length plus
// one overtime length per period beyond the fourth.
func EndTime(g models.Game) time.Time {
	start, _ := ScheduledStart(g)
	if start.IsZero() {
		return start
	}
	end := start.Add(NominalGameLength)
	if g.Period > 4 {
		end = end.Add(time.Duration(g.Period-4) * OvertimeLength)
	}
	return end
}
