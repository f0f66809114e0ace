package nba

import "github.com/omarshaarawi/courtside/internal/models"

// StatFromLine builds a GameStat from an upstream stat row. Percentages are
// recomputed from made/attempted so a missing or zero attempt count yields 0.
func StatFromLine(line models.StatLine, gameID, teamID int) models.GameStat {
	minutes := line.Min
	if minutes == "" {
		minutes = "0"
	}
	return models.GameStat{
		ID:                  line.ID,
		GameID:              gameID,
		PlayerID:            line.Player.ID,
		TeamID:              teamID,
		Minutes:             minutes,
		Points:              line.Pts,
		OffRebounds:         line.Oreb,
		DefRebounds:         line.Dreb,
		Rebounds:            line.Reb,
		Assists:             line.Ast,
		Steals:              line.Stl,
		Blocks:              line.Blk,
		Turnovers:           line.Turnover,
		PersonalFouls:       line.Pf,
		FieldGoalsMade:      line.Fgm,
		FieldGoalsAttempted: line.Fga,
		FieldGoalPct:        models.ShootingPct(line.Fgm, line.Fga),
		ThreesMade:          line.Fg3m,
		ThreesAttempted:     line.Fg3a,
		ThreePct:            models.ShootingPct(line.Fg3m, line.Fg3a),
		FreeThrowsMade:      line.Ftm,
		FreeThrowsAttempted: line.Fta,
		FreeThrowPct:        models.ShootingPct(line.Ftm, line.Fta),
	}
}

func boxScoreFromResponse(raw models.BoxScoreResponse) models.BoxScore {
	visitor := raw.VisitorTeam
	if visitor == nil {
		visitor = raw.AwayTeam
	}
	box := models.BoxScore{
		GameID:           raw.GameID,
		Date:             raw.Date,
		Season:           raw.Season,
		Status:           raw.Status,
		Period:           raw.Period,
		Time:             raw.Time,
		HomeTeamScore:    raw.HomeTeamScore,
		VisitorTeamScore: raw.VisitorTeamScore,
		HomeTeam:         rosterFromResponse(raw.HomeTeam, raw.GameID),
	}
	if visitor != nil {
		box.VisitorTeam = rosterFromResponse(*visitor, raw.GameID)
	}
	return box
}

func rosterFromResponse(r models.BoxScoreRoster, gameID int) models.BoxScoreTeam {
	team := models.BoxScoreTeam{Team: r.Team}
	for _, line := range r.Players {
		team.Players = append(team.Players, StatFromLine(line, gameID, r.ID))
	}
	return team
}
