package models

// ProgressStatus is the normalized lifecycle of a game, derived from the
// upstream status text which mixes tip-off times with progress descriptors.
type ProgressStatus string

const (
	ProgressScheduled ProgressStatus = "scheduled"
	ProgressLive      ProgressStatus = "live"
	ProgressFinal     ProgressStatus = "final"
)

// FinalStatus is the unambiguous status text written onto games known to be over.
const FinalStatus = "Final"

type Team struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	City         string `json:"city,omitempty"`
	Name         string `json:"name,omitempty"`
	FullName     string `json:"full_name"`
	Conference   string `json:"conference,omitempty"`
	Division     string `json:"division,omitempty"`
}

type Game struct {
	ID               int    `json:"id"`
	Date             string `json:"date"`
	Datetime         string `json:"datetime,omitempty"`
	Season           int    `json:"season"`
	Status           string `json:"status"`
	Period           int    `json:"period"`
	Time             string `json:"time"`
	Postseason       bool   `json:"postseason"`
	HomeTeamScore    int    `json:"home_team_score"`
	VisitorTeamScore int    `json:"visitor_team_score"`
	HomeTeam         Team   `json:"home_team"`
	VisitorTeam      Team   `json:"visitor_team"`
	Played           bool   `json:"played"`

	Progress             ProgressStatus `json:"progress_status"`
	ScheduledTimeDisplay string         `json:"scheduled_time_display,omitempty"`
	Stats                *GameStat      `json:"stats"`
	NeedsRecentCheck     bool           `json:"needs_recent_check,omitempty"`
}

// HasScore reports whether either side has a non-zero score.
func (g Game) HasScore() bool {
	return g.HomeTeamScore > 0 || g.VisitorTeamScore > 0
}

func (g Game) InvolvesTeam(teamID int) bool {
	return g.HomeTeam.ID == teamID || g.VisitorTeam.ID == teamID
}

// Opponent returns the other side of the game from teamID's perspective.
func (g Game) Opponent(teamID int) Team {
	if g.HomeTeam.ID == teamID {
		return g.VisitorTeam
	}
	return g.HomeTeam
}

// SetScores overwrites both scores and marks the game played when either is positive.
func (g *Game) SetScores(home, visitor int) {
	g.HomeTeamScore = home
	g.VisitorTeamScore = visitor
	if home > 0 || visitor > 0 {
		g.Played = true
	}
}

// Clone returns a copy that does not share the stats pointer.
func (g Game) Clone() Game {
	if g.Stats != nil {
		s := *g.Stats
		g.Stats = &s
	}
	return g
}
