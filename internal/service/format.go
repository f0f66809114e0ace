package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/omarshaarawi/courtside/internal/gamestate"
	"github.com/omarshaarawi/courtside/internal/lineup"
	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/resolver"
	"github.com/omarshaarawi/courtside/internal/scoring"
)

// seasonLogLength is how many games /games shows.
const seasonLogLength = 10

func teamLabel(t models.Team) string {
	switch {
	case t.FullName != "":
		return t.FullName
	case t.Abbreviation != "":
		return t.Abbreviation
	}
	return fmt.Sprintf("team %d", t.ID)
}

func formatPlayer(p models.Player, avg *models.SeasonAverages, season int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏀 *%s*", p.FullName()))
	if p.Position != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", p.Position))
	}
	sb.WriteString("\n")
	if p.Team.ID != 0 {
		sb.WriteString(teamLabel(p.Team) + "\n")
	}
	sb.WriteString("━━━━━━━━━━━━━━━━\n")

	if avg == nil || avg.GamesPlayed == 0 {
		sb.WriteString(fmt.Sprintf("No averages for %d yet.", season))
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("%d season, %d games\n", season, avg.GamesPlayed))
	sb.WriteString(fmt.Sprintf("%.1f pts · %.1f reb · %.1f ast\n", avg.Points, avg.Rebounds, avg.Assists))
	sb.WriteString(fmt.Sprintf("%.1f stl · %.1f blk · %.1f tov\n", avg.Steals, avg.Blocks, avg.Turnovers))
	fp := avg.Points + avg.Rebounds*1.2 + avg.Assists*1.5 + avg.Steals*3 + avg.Blocks*3 - avg.Turnovers + avg.ThreesMade*0.5
	sb.WriteString(fmt.Sprintf("\n%.2f fantasy pts per game", scoring.Round(fp)))
	return sb.String()
}

func formatSelection(team models.Team, sel resolver.Selection, loc *time.Location) string {
	if sel.Game == nil {
		return fmt.Sprintf("📭 No games found for *%s*.", teamLabel(team))
	}
	g := *sel.Game
	matchup := fmt.Sprintf("*%s* %d - %d *%s*",
		g.VisitorTeam.Abbreviation, g.VisitorTeamScore, g.HomeTeamScore, g.HomeTeam.Abbreviation)

	switch sel.State {
	case resolver.StateLive:
		clock := periodLabel(g.Period)
		if g.Time != "" {
			clock += " " + g.Time
		}
		return fmt.Sprintf("🔴 *LIVE*\n%s\n%s", matchup, strings.TrimSpace(clock))
	case resolver.StateRecent:
		return fmt.Sprintf("✅ *Final*\n%s", matchup)
	default:
		return fmt.Sprintf("🗓 *Next up*\n*%s* @ *%s*\n%s",
			g.VisitorTeam.Abbreviation, g.HomeTeam.Abbreviation, tipoffLabel(g, loc))
	}
}

func periodLabel(period int) string {
	switch {
	case period <= 0:
		return ""
	case period <= 4:
		return fmt.Sprintf("Q%d", period)
	case period == 5:
		return "OT"
	}
	return fmt.Sprintf("%dOT", period-4)
}

func tipoffLabel(g models.Game, loc *time.Location) string {
	start, known := gamestate.ScheduledStart(g)
	if start.IsZero() {
		return gamestate.Unavailable
	}
	if !known {
		return start.In(loc).Format("Mon Jan 2") + ", time TBD"
	}
	return start.In(loc).Format("Mon Jan 2, 3:04 PM MST")
}

func formatSeasonLog(p models.Player, games []models.Game, c gamestate.Classifier, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *%s* game log\n\n", p.FullName()))
	if len(games) == 0 {
		sb.WriteString("No games played yet.")
		return sb.String()
	}

	start := max(0, len(games)-seasonLogLength)
	for i := len(games) - 1; i >= start; i-- {
		g := games[i]
		prefix := "vs"
		if g.VisitorTeam.ID == p.Team.ID {
			prefix = "@"
		}
		sb.WriteString(fmt.Sprintf("%s %s %s  ", gamestate.FormatDate(g.Date, "Jan 2"), prefix, g.Opponent(p.Team.ID).Abbreviation))

		switch {
		case g.NeedsRecentCheck:
			sb.WriteString("⏳ Updating\n")
			continue
		case !g.HasScore():
			sb.WriteString("TBD\n")
			continue
		}
		sb.WriteString(resultLabel(g, p.Team.ID))
		if g.Stats != nil && (g.Stats.Points > 0 || g.Stats.Minutes != "0") {
			sb.WriteString(fmt.Sprintf("  %d pts %d reb %d ast · %.2f FP",
				g.Stats.Points, g.Stats.Rebounds, g.Stats.Assists, scoring.BaseFantasyPoints(*g.Stats)))
		} else {
			sb.WriteString("  DNP")
		}
		if c.IsLive(g, now) {
			sb.WriteString(" 🔴")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func resultLabel(g models.Game, teamID int) string {
	own, other := g.HomeTeamScore, g.VisitorTeamScore
	if g.VisitorTeam.ID == teamID {
		own, other = other, own
	}
	mark := "L"
	if own > other {
		mark = "W"
	}
	return fmt.Sprintf("%s %d-%d", mark, own, other)
}

func tokenName(e models.TokenEffect) string {
	if e.Name != "" {
		return e.Name
	}
	return string(e.EffectType)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatInventory(cards []models.OwnedCard, tokens []models.OwnedToken) string {
	var sb strings.Builder
	sb.WriteString("🗂 *Your cards*\n\n")
	if len(cards) == 0 {
		sb.WriteString("No cards yet. Open one with /pack.\n")
	}
	for _, c := range cards {
		slot := "bench"
		if c.InLineup {
			slot = string(c.LineupPosition)
		}
		sb.WriteString(fmt.Sprintf("`%s` *%s* %s · %s · %d contracts · %s\n",
			shortID(c.ID), c.PlayerName, c.Position, c.Rarity, c.ContractsRemaining, slot))
	}

	if len(tokens) > 0 {
		sb.WriteString("\n🪙 *Tokens*\n\n")
	}
	for _, t := range tokens {
		line := fmt.Sprintf("`%s` *%s* %s", shortID(t.ID), tokenName(t.Effect), t.Effect.Description)
		if t.AppliedTo != "" {
			line += fmt.Sprintf(" (on `%s`)", shortID(t.AppliedTo))
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func formatLineup(cards []models.LineupCard) string {
	var sb strings.Builder
	sb.WriteString("📋 *Lineup*\n\n")
	byPos := make(map[models.Position]models.LineupCard, len(cards))
	for _, c := range cards {
		byPos[c.Position] = c
	}
	for _, pos := range models.LineupPositions {
		c, ok := byPos[pos]
		if !ok {
			sb.WriteString(fmt.Sprintf("%s: _empty_\n", pos))
			continue
		}
		line := fmt.Sprintf("%s: *%s* (%d contracts)", pos, c.PlayerName, c.ContractsRemaining)
		if c.AppliedTokenID != "" {
			line += " 🪙"
		}
		sb.WriteString(line + "\n")
	}

	report := lineup.Validate(cards)
	for _, err := range report.Errors {
		sb.WriteString(fmt.Sprintf("\n⛔ %v", err))
	}
	for _, w := range report.Warnings {
		sb.WriteString(fmt.Sprintf("\n⚠️ %s", w))
	}
	return sb.String()
}

func formatScore(date string, cards []models.LineupCard, score models.LineupScore) string {
	names := make(map[string]string, len(cards))
	for _, c := range cards {
		names[c.CardID] = c.PlayerName
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧮 *Score for %s*\n\n", gamestate.FormatDate(date, "Jan 2")))
	for _, ps := range score.PlayerScores {
		sb.WriteString(fmt.Sprintf("%s *%s*: ", ps.Position, names[ps.CardID]))
		if ps.Reason != "" {
			sb.WriteString(ps.Reason + "\n")
			continue
		}
		sb.WriteString(fmt.Sprintf("%.2f", ps.FinalScore))
		for _, te := range ps.TokenEffects {
			label := te.Description
			if label == "" {
				label = string(te.Type)
			}
			switch {
			case te.Outcome != "" && te.Bonus == 0:
				sb.WriteString(fmt.Sprintf(" (%s: %s)", label, te.Outcome))
			case te.Outcome != "":
				sb.WriteString(fmt.Sprintf(" (%s %s %+.2f)", label, te.Outcome, te.Bonus))
			default:
				sb.WriteString(fmt.Sprintf(" (%s %+.2f)", label, te.Bonus))
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n*Total: %.2f*", score.TotalScore))
	return sb.String()
}

func formatSubmission(sub lineup.Submission) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏁 Lineup submitted for %s: *%.2f* points\n", gamestate.FormatDate(sub.Result.GameDate, "Jan 2"), sub.Result.TotalScore))
	for _, w := range sub.Warnings {
		sb.WriteString(fmt.Sprintf("⚠️ %s\n", w))
	}
	return sb.String()
}

func formatPack(cards []models.OwnedCard, tokens []models.OwnedToken) string {
	var sb strings.Builder
	sb.WriteString("🎁 *Pack opened!*\n\n")
	for _, c := range cards {
		sb.WriteString(fmt.Sprintf("%s *%s* %s · %d contracts\n", rarityIcon(c.Rarity), c.PlayerName, c.Position, c.ContractsRemaining))
	}
	for _, t := range tokens {
		sb.WriteString(fmt.Sprintf("🪙 *%s* %s\n", tokenName(t.Effect), t.Effect.Description))
	}
	return sb.String()
}

func rarityIcon(r models.Rarity) string {
	switch r {
	case models.RarityLegendary:
		return "🌟"
	case models.RarityRare:
		return "💎"
	}
	return "⚪"
}

func formatSlate(games []models.Game, c gamestate.Classifier, now time.Time, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString("🏀 *Today's games*\n\n")
	if len(games) == 0 {
		sb.WriteString("No games today.")
		return sb.String()
	}
	for _, g := range games {
		matchup := fmt.Sprintf("%s @ %s", g.VisitorTeam.Abbreviation, g.HomeTeam.Abbreviation)
		switch c.Phase(g, now) {
		case gamestate.PhaseFinished:
			sb.WriteString(fmt.Sprintf("%s  %d-%d Final\n", matchup, g.VisitorTeamScore, g.HomeTeamScore))
		case gamestate.PhaseLive:
			sb.WriteString(fmt.Sprintf("%s  %d-%d 🔴 %s\n", matchup, g.VisitorTeamScore, g.HomeTeamScore, periodLabel(g.Period)))
		default:
			start, known := gamestate.ScheduledStart(g)
			when := "TBD"
			if known {
				when = start.In(loc).Format("3:04 PM MST")
			}
			sb.WriteString(fmt.Sprintf("%s  %s\n", matchup, when))
		}
	}
	return sb.String()
}
