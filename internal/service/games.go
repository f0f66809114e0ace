package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/omarshaarawi/courtside/internal/api/nba"
	"github.com/omarshaarawi/courtside/internal/gamestate"
	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/reconcile"
	"github.com/omarshaarawi/courtside/internal/resolver"
)

// RelevantGame resolves the team's most relevant game from the cache.
func (s *FantasyService) RelevantGame(ctx context.Context, teamID int) resolver.Selection {
	return s.Resolver.Resolve(ctx, teamID, s.Cache.TeamGames(ctx, teamID), resolver.Selection{})
}

// GameReport renders the relevant game for a team abbreviation or player name.
func (s *FantasyService) GameReport(ctx context.Context, query string) (string, error) {
	team, err := s.FindTeam(ctx, query)
	if err != nil {
		return "", err
	}
	sel := s.RelevantGame(ctx, team.ID)
	return formatSelection(team, sel, s.Location), nil
}

// PlayerGames returns the player's season with stat gaps repaired. A failed
// stats fetch still yields the schedule, backfilled from box scores.
func (s *FantasyService) PlayerGames(ctx context.Context, playerID, teamID, season int) (reconcile.Result, error) {
	if season == 0 {
		season = s.Season
	}
	games, err := s.Gateway.Games(ctx, nba.GamesQuery{Seasons: []int{season}, TeamIDs: []int{teamID}})
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("fetching team games: %w", err)
	}
	games = gamestate.NormalizeAll(games)

	stats, err := s.Gateway.Stats(ctx, nba.StatsQuery{PlayerIDs: []int{playerID}, Seasons: []int{season}})
	if err != nil {
		slog.Error("Error fetching player stats, relying on backfill", "player_id", playerID, "error", err)
		stats = nil
	}

	return s.Reconciler.Backfill(ctx, playerID, games, stats), nil
}

// SeasonLog renders the player's most recent games with their stat lines.
func (s *FantasyService) SeasonLog(ctx context.Context, name string) (string, error) {
	p, err := s.FindPlayer(ctx, name)
	if err != nil {
		return "", err
	}
	if p.Team.ID == 0 {
		return fmt.Sprintf("%s is not on a roster this season.", p.FullName()), nil
	}
	res, err := s.PlayerGames(ctx, p.ID, p.Team.ID, s.Season)
	if err != nil {
		return "", err
	}
	return formatSeasonLog(p, s.played(res.Games), s.Classifier, s.Clock.Now()), nil
}

func (s *FantasyService) played(games []models.Game) []models.Game {
	now := s.Clock.Now()
	var out []models.Game
	for _, g := range games {
		if s.Classifier.IsPast(g, now) || s.Classifier.IsToday(g, now) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// TodaysSlate lists the games on today's calendar with their state.
func (s *FantasyService) TodaysSlate(ctx context.Context) (string, error) {
	now := s.Clock.Now()
	var today []models.Game
	for _, g := range s.Cache.LiveGames(ctx, false) {
		if s.Classifier.IsToday(g, now) {
			today = append(today, g)
		}
	}
	sort.SliceStable(today, func(i, j int) bool {
		a, _ := gamestate.ScheduledStart(today[i])
		b, _ := gamestate.ScheduledStart(today[j])
		return a.Before(b)
	})
	return formatSlate(today, s.Classifier, now, s.Location), nil
}
