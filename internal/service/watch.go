package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/omarshaarawi/courtside/internal/models"
	"github.com/omarshaarawi/courtside/internal/resolver"
)

func watchKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// Follow subscribes a chat to a team's relevant game. Every committed change
// of game or state, and every live score change, is pushed to the chat.
func (s *FantasyService) Follow(ctx context.Context, chatID int64, query string) (string, error) {
	team, err := s.FindTeam(ctx, query)
	if err != nil {
		return "", err
	}
	if err := s.Store.SaveFollow(ctx, chatID, team.ID); err != nil {
		return "", fmt.Errorf("saving follow: %w", err)
	}
	s.watch(ctx, chatID, team)
	return fmt.Sprintf("👀 Following *%s*. Use /mute to pause updates.", teamLabel(team)), nil
}

func (s *FantasyService) Unfollow(ctx context.Context, chatID int64) error {
	s.Poller.Unwatch(watchKey(chatID))
	if err := s.Store.DeleteFollow(ctx, chatID); err != nil {
		return fmt.Errorf("removing follow: %w", err)
	}
	return nil
}

// Mute pauses a chat's updates; Unmute resumes them.
func (s *FantasyService) Mute(ctx context.Context, chatID int64) {
	s.Poller.SetVisible(ctx, watchKey(chatID), false)
}

func (s *FantasyService) Unmute(ctx context.Context, chatID int64) {
	s.Poller.SetVisible(ctx, watchKey(chatID), true)
}

// RestoreFollows re-registers the stored follows, typically at startup.
func (s *FantasyService) RestoreFollows(ctx context.Context) error {
	follows, err := s.Store.Follows(ctx)
	if err != nil {
		return fmt.Errorf("loading follows: %w", err)
	}
	for chatID, teamID := range follows {
		s.watch(ctx, chatID, models.Team{ID: teamID})
	}
	slog.Info("Restored follows", "count", len(follows))
	return nil
}

// TickWatches refreshes each followed team's schedule and recomputes the
// watches that are due.
func (s *FantasyService) TickWatches(ctx context.Context) {
	follows, err := s.Store.Follows(ctx)
	if err != nil {
		slog.Error("Error loading follows", "error", err)
	}
	for chatID, teamID := range follows {
		s.Poller.SetKnownGames(watchKey(chatID), s.Cache.TeamGames(ctx, teamID))
	}
	s.Poller.Tick(ctx)
}

func (s *FantasyService) watch(ctx context.Context, chatID int64, team models.Team) {
	teamID := team.ID
	known := s.Cache.TeamGames(ctx, teamID)
	s.Poller.Watch(ctx, watchKey(chatID), teamID, known, func(sel resolver.Selection) {
		s.mu.RLock()
		notify := s.notify
		s.mu.RUnlock()
		if notify == nil {
			return
		}
		shown := team
		if sel.Game != nil {
			shown = sideOf(*sel.Game, teamID)
		}
		notify(chatID, formatSelection(shown, sel, s.Location))
	})
}

func sideOf(g models.Game, teamID int) models.Team {
	if g.VisitorTeam.ID == teamID {
		return g.VisitorTeam
	}
	return g.HomeTeam
}
