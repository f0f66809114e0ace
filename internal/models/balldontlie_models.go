package models

type Meta struct {
	NextCursor *int `json:"next_cursor"`
	PerPage    int  `json:"per_page"`
}

type GamesResponse struct {
	Data []Game `json:"data"`
	Meta Meta   `json:"meta"`
}

type GameResponse struct {
	Data Game `json:"data"`
}

type StatsResponse struct {
	Data []StatLine `json:"data"`
	Meta Meta       `json:"meta"`
}

type BoxScoresResponse struct {
	Data []BoxScoreResponse `json:"data"`
}

type PlayersResponse struct {
	Data []Player `json:"data"`
	Meta Meta     `json:"meta"`
}

type SeasonAveragesResponse struct {
	Data []SeasonAverages `json:"data"`
}

// StatLine is the shared shape of a /stats row and a box score player row.
type StatLine struct {
	ID       int      `json:"id"`
	Min      string   `json:"min"`
	Fgm      int      `json:"fgm"`
	Fga      int      `json:"fga"`
	FgPct    *float64 `json:"fg_pct"`
	Fg3m     int      `json:"fg3m"`
	Fg3a     int      `json:"fg3a"`
	Fg3Pct   *float64 `json:"fg3_pct"`
	Ftm      int      `json:"ftm"`
	Fta      int      `json:"fta"`
	FtPct    *float64 `json:"ft_pct"`
	Oreb     int      `json:"oreb"`
	Dreb     int      `json:"dreb"`
	Reb      int      `json:"reb"`
	Ast      int      `json:"ast"`
	Stl      int      `json:"stl"`
	Blk      int      `json:"blk"`
	Turnover int      `json:"turnover"`
	Pf       int      `json:"pf"`
	Pts      int      `json:"pts"`
	Player   Player   `json:"player"`
	Team     *Team    `json:"team,omitempty"`
	Game     *struct {
		ID int `json:"id"`
	} `json:"game,omitempty"`
}

type BoxScoreResponse struct {
	GameID           int             `json:"game_id"`
	Date             string          `json:"date"`
	Season           int             `json:"season"`
	Status           string          `json:"status"`
	Period           int             `json:"period"`
	Time             string          `json:"time"`
	HomeTeamScore    *int            `json:"home_team_score"`
	VisitorTeamScore *int            `json:"visitor_team_score"`
	HomeTeam         BoxScoreRoster  `json:"home_team"`
	VisitorTeam      *BoxScoreRoster `json:"visitor_team"`
	AwayTeam         *BoxScoreRoster `json:"away_team"`
}

type BoxScoreRoster struct {
	Team
	Players []StatLine `json:"players"`
}
