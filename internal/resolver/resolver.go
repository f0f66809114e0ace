package resolver

import (
	"context"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/courtside/internal/gamestate"
	"github.com/omarshaarawi/courtside/internal/models"
)

type State string

const (
	StateNone     State = ""
	StateLive     State = "live"
	StateRecent   State = "recent"
	StateUpcoming State = "upcoming"
)

// Selection is the single most relevant game for a team and how to show it.
type Selection struct {
	Game  *models.Game `json:"selected_game"`
	State State        `json:"state"`
}

func (s Selection) GameID() int {
	if s.Game == nil {
		return 0
	}
	return s.Game.ID
}

// UpcomingScanDays is how far past today the resolver looks for a next game.
const UpcomingScanDays = 7

// Games is the cache surface the resolver reads from.
type Games interface {
	LiveGames(ctx context.Context, forceRefresh bool) []models.Game
	// FreshGame fetches one game from upstream, skipping the live snapshot.
	FreshGame(ctx context.Context, id int) *models.Game
	TeamGamesOn(ctx context.Context, teamID int, date string) []models.Game
}

type Options struct {
	Classifier   gamestate.Classifier
	RecentWindow time.Duration
	Clock        clockwork.Clock
}

func DefaultOptions() Options {
	return Options{
		Classifier:   gamestate.NewClassifier(time.UTC, gamestate.DefaultLivePolicy()),
		RecentWindow: 3 * time.Hour,
		Clock:        clockwork.NewRealClock(),
	}
}

type Resolver struct {
	games Games
	opts  Options
}

func New(games Games, opts Options) *Resolver {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Resolver{games: games, opts: opts}
}

// Resolve picks the team's most relevant game from known plus the cache's
// live snapshot. previous is the currently displayed selection; a live
// previous selection is kept as long as that game stays live.
func (r *Resolver) Resolve(ctx context.Context, teamID int, known []models.Game, previous Selection) Selection {
	now := r.opts.Clock.Now()

	if sel, ok := r.keepLive(ctx, previous, now); ok {
		return sel
	}

	working := r.workingSet(ctx, teamID, known)

	if sel, ok := r.findLive(ctx, working, now); ok {
		return sel
	}
	if sel, ok := r.findRecent(working, now); ok {
		return sel
	}
	if sel, ok := r.findUpcoming(working, now); ok {
		return sel
	}
	if sel, ok := r.scanAhead(ctx, teamID, now); ok {
		return sel
	}
	return Selection{State: StateNone}
}

func (r *Resolver) keepLive(ctx context.Context, previous Selection, now time.Time) (Selection, bool) {
	if previous.State != StateLive || previous.Game == nil {
		return Selection{}, false
	}
	g := r.games.FreshGame(ctx, previous.Game.ID)
	if g == nil {
		return Selection{}, false
	}
	c := r.opts.Classifier
	if c.IsLive(*g, now) {
		return Selection{Game: g, State: StateLive}, true
	}
	if c.IsFinished(*g, now) && r.withinRecentWindow(*g, now) {
		gamestate.MarkFinal(g)
		return Selection{Game: g, State: StateRecent}, true
	}
	return Selection{}, false
}

// findLive looks for a live game among today's unfinished games, refreshing
// any whose tip-off has passed. IsLive carries the promotion heuristic.
func (r *Resolver) findLive(ctx context.Context, working []models.Game, now time.Time) (Selection, bool) {
	c := r.opts.Classifier
	var today []int
	for i, g := range working {
		if c.IsToday(g, now) && !c.IsFinished(g, now) {
			today = append(today, i)
		}
	}

	for _, i := range today {
		if c.IsLive(working[i], now) {
			g := working[i].Clone()
			return Selection{Game: &g, State: StateLive}, true
		}
	}

	for _, i := range today {
		start, _ := gamestate.ScheduledStart(working[i])
		if start.IsZero() || now.Before(start) {
			continue
		}
		refreshed := r.games.FreshGame(ctx, working[i].ID)
		if refreshed == nil {
			continue
		}
		working[i] = pickFresher(working[i], *refreshed)
		if c.IsLive(working[i], now) {
			g := working[i].Clone()
			return Selection{Game: &g, State: StateLive}, true
		}
	}
	return Selection{}, false
}

func (r *Resolver) findRecent(working []models.Game, now time.Time) (Selection, bool) {
	c := r.opts.Classifier
	var latest *models.Game
	var latestStart time.Time
	for i, g := range working {
		if !c.IsFinished(g, now) {
			continue
		}
		start, _ := gamestate.ScheduledStart(g)
		if latest == nil || start.After(latestStart) {
			latest = &working[i]
			latestStart = start
		}
	}
	if latest == nil || !r.withinRecentWindow(*latest, now) {
		return Selection{}, false
	}
	g := latest.Clone()
	gamestate.MarkFinal(&g)
	return Selection{Game: &g, State: StateRecent}, true
}

// findUpcoming prefers today's unfinished games, even ones whose tip-off has
// passed, so there is no empty flash right before a live promotion lands.
// Otherwise it takes the earliest future game.
func (r *Resolver) findUpcoming(working []models.Game, now time.Time) (Selection, bool) {
	c := r.opts.Classifier
	var today, future []models.Game
	for _, g := range working {
		if c.IsFinished(g, now) {
			continue
		}
		days, ok := c.DaysFromToday(g, now)
		switch {
		case !ok:
		case days == 0:
			today = append(today, g)
		case days > 0:
			future = append(future, g)
		}
	}
	for _, bucket := range [][]models.Game{today, future} {
		if len(bucket) == 0 {
			continue
		}
		sortByStart(bucket)
		g := bucket[0].Clone()
		return Selection{Game: &g, State: StateUpcoming}, true
	}
	return Selection{}, false
}

// scanAhead walks the next UpcomingScanDays dates and takes the earliest
// game on the first date the team plays.
func (r *Resolver) scanAhead(ctx context.Context, teamID int, now time.Time) (Selection, bool) {
	c := r.opts.Classifier
	today := c.Today(now)
	for d := 1; d <= UpcomingScanDays; d++ {
		var day []models.Game
		for _, g := range r.games.TeamGamesOn(ctx, teamID, gamestate.DateString(today.AddDate(0, 0, d))) {
			if g.InvolvesTeam(teamID) && !c.IsFinished(g, now) {
				day = append(day, g)
			}
		}
		if len(day) == 0 {
			continue
		}
		sortByStart(day)
		g := day[0].Clone()
		gamestate.Normalize(&g)
		return Selection{Game: &g, State: StateUpcoming}, true
	}
	return Selection{}, false
}

func (r *Resolver) withinRecentWindow(g models.Game, now time.Time) bool {
	end := gamestate.EndTime(g)
	if end.IsZero() {
		return false
	}
	return now.Sub(end) < r.opts.RecentWindow
}

// workingSet merges the caller's games with the live snapshot, keeping the
// most advanced record when both know the same game.
func (r *Resolver) workingSet(ctx context.Context, teamID int, known []models.Game) []models.Game {
	byID := make(map[int]int)
	var working []models.Game
	add := func(g models.Game) {
		if !g.InvolvesTeam(teamID) {
			return
		}
		if i, ok := byID[g.ID]; ok {
			working[i] = pickFresher(working[i], g)
			return
		}
		g = g.Clone()
		gamestate.Normalize(&g)
		byID[g.ID] = len(working)
		working = append(working, g)
	}
	for _, g := range known {
		add(g)
	}
	for _, g := range r.games.LiveGames(ctx, false) {
		add(g)
	}
	return working
}

var progressRank = map[models.ProgressStatus]int{
	models.ProgressScheduled: 0,
	models.ProgressLive:      1,
	models.ProgressFinal:     2,
}

// pickFresher returns whichever record is further along: final over live
// over scheduled, then later period, then higher combined score.
func pickFresher(current, candidate models.Game) models.Game {
	gamestate.Normalize(&candidate)
	if progressRank[candidate.Progress] != progressRank[current.Progress] {
		if progressRank[candidate.Progress] > progressRank[current.Progress] {
			return candidate
		}
		return current
	}
	if candidate.Period != current.Period {
		if candidate.Period > current.Period {
			return candidate
		}
		return current
	}
	if candidate.HomeTeamScore+candidate.VisitorTeamScore >= current.HomeTeamScore+current.VisitorTeamScore {
		if current.Played && !candidate.Played {
			candidate.Played = true
		}
		return candidate
	}
	return current
}

func sortByStart(games []models.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		a, _ := gamestate.ScheduledStart(games[i])
		b, _ := gamestate.ScheduledStart(games[j])
		return a.Before(b)
	})
}
