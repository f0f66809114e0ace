package models

type GameStat struct {
	ID       int    `json:"id,omitempty"`
	GameID   int    `json:"game_id"`
	PlayerID int    `json:"player_id"`
	TeamID   int    `json:"team_id,omitempty"`
	Minutes  string `json:"min"`

	Points        int `json:"pts"`
	OffRebounds   int `json:"oreb"`
	DefRebounds   int `json:"dreb"`
	Rebounds      int `json:"reb"`
	Assists       int `json:"ast"`
	Steals        int `json:"stl"`
	Blocks        int `json:"blk"`
	Turnovers     int `json:"turnover"`
	PersonalFouls int `json:"pf"`

	FieldGoalsMade      int     `json:"fgm"`
	FieldGoalsAttempted int     `json:"fga"`
	FieldGoalPct        float64 `json:"fg_pct"`
	ThreesMade          int     `json:"fg3m"`
	ThreesAttempted     int     `json:"fg3a"`
	ThreePct            float64 `json:"fg3_pct"`
	FreeThrowsMade      int     `json:"ftm"`
	FreeThrowsAttempted int     `json:"fta"`
	FreeThrowPct        float64 `json:"ft_pct"`
}

// EmptyStat is the zeroed stat line attached to games with no data yet.
func EmptyStat(gameID int) *GameStat {
	return &GameStat{GameID: gameID, Minutes: "0"}
}

// ShootingPct returns made/attempted, or 0 when nothing was attempted.
func ShootingPct(made, attempted int) float64 {
	if attempted <= 0 {
		return 0
	}
	return float64(made) / float64(attempted)
}

// BoxScore is one game's per-player stat lines. Scores are nil when the
// upstream payload omitted them.
type BoxScore struct {
	GameID           int          `json:"game_id,omitempty"`
	Date             string       `json:"date"`
	Season           int          `json:"season"`
	Status           string       `json:"status"`
	Period           int          `json:"period"`
	Time             string       `json:"time"`
	HomeTeamScore    *int         `json:"home_team_score"`
	VisitorTeamScore *int         `json:"visitor_team_score"`
	HomeTeam         BoxScoreTeam `json:"home_team"`
	VisitorTeam      BoxScoreTeam `json:"visitor_team"`
}

type BoxScoreTeam struct {
	Team
	Players []GameStat `json:"players"`
}

// FindPlayer returns the player's line from either roster.
func (b BoxScore) FindPlayer(playerID int) (GameStat, bool) {
	for _, roster := range []BoxScoreTeam{b.HomeTeam, b.VisitorTeam} {
		for _, line := range roster.Players {
			if line.PlayerID == playerID {
				return line, true
			}
		}
	}
	return GameStat{}, false
}

// Matches reports whether the box score belongs to g.
func (b BoxScore) Matches(g Game) bool {
	if b.GameID != 0 {
		return b.GameID == g.ID
	}
	return b.HomeTeam.ID == g.HomeTeam.ID && b.VisitorTeam.ID == g.VisitorTeam.ID && sameDay(b.Date, g.Date)
}

func sameDay(a, b string) bool {
	if len(a) < 10 || len(b) < 10 {
		return a == b
	}
	return a[:10] == b[:10]
}

type Player struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	Team      Team   `json:"team"`
}

func (p Player) FullName() string {
	return p.FirstName + " " + p.LastName
}

type SeasonAverages struct {
	PlayerID    int     `json:"player_id"`
	Season      int     `json:"season"`
	GamesPlayed int     `json:"games_played"`
	Minutes     string  `json:"min"`
	Points      float64 `json:"pts"`
	Rebounds    float64 `json:"reb"`
	Assists     float64 `json:"ast"`
	Steals      float64 `json:"stl"`
	Blocks      float64 `json:"blk"`
	Turnovers   float64 `json:"turnover"`
	ThreesMade  float64 `json:"fg3m"`
}
