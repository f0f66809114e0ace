package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/courtside/internal/api/nba"
	"github.com/omarshaarawi/courtside/internal/gamestate"
	"github.com/omarshaarawi/courtside/internal/models"
)

const (
	MaxBatchSize      = 10
	DefaultRecentDays = 7
)

// Source is the slice of the upstream gateway the reconciler needs.
type Source interface {
	Game(ctx context.Context, id int) (*models.Game, error)
	Stats(ctx context.Context, q nba.StatsQuery) ([]models.GameStat, error)
	BoxScores(ctx context.Context, gameIDs []int) ([]models.BoxScore, error)
}

type Options struct {
	Classifier gamestate.Classifier
	BatchSize  int
	RecentDays int
	Clock      clockwork.Clock
}

type Reconciler struct {
	source Source
	opts   Options
}

func New(source Source, opts Options) (*Reconciler, error) {
	if opts.BatchSize == 0 {
		opts.BatchSize = MaxBatchSize
	}
	if opts.BatchSize < 1 || opts.BatchSize > MaxBatchSize {
		return nil, fmt.Errorf("batch size must be between 1 and %d, got %d", MaxBatchSize, opts.BatchSize)
	}
	if opts.RecentDays <= 0 {
		opts.RecentDays = DefaultRecentDays
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Reconciler{source: source, opts: opts}, nil
}

// Result is the repaired view of one player's season: every game carries
// its stat line (zeroed when still missing) and Stats holds the merged lines.
type Result struct {
	Games   []models.Game
	Stats   []models.GameStat
	Patched int
	Pending int
}

// Backfill finds past games with no stat line for the player or a 0-0
// score and tries to repair them. Games from the last few days are fetched
// one at a time first; the rest go through batched box score lookups.
// Fetch failures are logged and skipped.
func (r *Reconciler) Backfill(ctx context.Context, playerID int, games []models.Game, stats []models.GameStat) Result {
	now := r.opts.Clock.Now()

	byGame := make(map[int]models.GameStat, len(stats))
	for _, s := range stats {
		byGame[s.GameID] = s
	}
	working := make([]models.Game, len(games))
	index := make(map[int]int, len(games))
	for i, g := range games {
		working[i] = g.Clone()
		index[g.ID] = i
	}

	recent, older := r.gaps(working, byGame, now)
	patched := 0

	for _, id := range recent {
		if ctx.Err() != nil {
			break
		}
		if r.refreshOne(ctx, playerID, &working[index[id]], byGame) {
			patched++
		}
	}

	for start := 0; start < len(older); start += r.opts.BatchSize {
		if ctx.Err() != nil {
			break
		}
		end := min(start+r.opts.BatchSize, len(older))
		patched += r.refreshBatch(ctx, playerID, older[start:end], working, index, byGame)
	}

	pending := 0
	for i := range working {
		g := &working[i]
		if s, ok := byGame[g.ID]; ok {
			line := s
			g.Stats = &line
		} else {
			g.Stats = models.EmptyStat(g.ID)
		}
		g.NeedsRecentCheck = false
		if r.isRecent(*g, now) && r.needsData(*g, byGame, now) {
			g.NeedsRecentCheck = true
			pending++
		}
	}

	return Result{
		Games:   working,
		Stats:   sortedStats(byGame),
		Patched: patched,
		Pending: pending,
	}
}

func (r *Reconciler) gaps(games []models.Game, byGame map[int]models.GameStat, now time.Time) (recent, older []int) {
	for _, g := range games {
		if !r.needsData(g, byGame, now) {
			continue
		}
		if r.isRecent(g, now) {
			recent = append(recent, g.ID)
		} else {
			older = append(older, g.ID)
		}
	}
	return recent, older
}

func (r *Reconciler) needsData(g models.Game, byGame map[int]models.GameStat, now time.Time) bool {
	if !r.opts.Classifier.IsPast(g, now) {
		return false
	}
	_, ok := byGame[g.ID]
	return !ok || !g.HasScore()
}

func (r *Reconciler) isRecent(g models.Game, now time.Time) bool {
	d, ok := r.opts.Classifier.DaysFromToday(g, now)
	return ok && d < 0 && d >= -r.opts.RecentDays
}

func (r *Reconciler) refreshOne(ctx context.Context, playerID int, g *models.Game, byGame map[int]models.GameStat) bool {
	changed := false

	fresh, err := r.source.Game(ctx, g.ID)
	if err != nil {
		slog.Error("Failed to fetch game for backfill", "game_id", g.ID, "error", err)
	} else if fresh != nil {
		g.SetScores(fresh.HomeTeamScore, fresh.VisitorTeamScore)
		changed = g.HasScore()
	}

	lines, err := r.source.Stats(ctx, nba.StatsQuery{PlayerIDs: []int{playerID}, GameIDs: []int{g.ID}})
	if err != nil {
		slog.Error("Failed to fetch player stats for backfill", "game_id", g.ID, "player_id", playerID, "error", err)
		return changed
	}
	for _, line := range lines {
		if line.PlayerID != playerID {
			continue
		}
		if line.GameID == 0 {
			line.GameID = g.ID
		}
		if upsert(byGame, line) {
			changed = true
		}
	}
	return changed
}

func (r *Reconciler) refreshBatch(ctx context.Context, playerID int, ids []int, games []models.Game, index map[int]int, byGame map[int]models.GameStat) int {
	boxes, err := r.source.BoxScores(ctx, ids)
	if err != nil {
		slog.Error("Failed to fetch box scores for backfill", "game_ids", ids, "error", err)
		return 0
	}

	patched := 0
	for _, id := range ids {
		g := &games[index[id]]
		for _, box := range boxes {
			if !box.Matches(*g) {
				continue
			}
			if box.HomeTeamScore != nil && box.VisitorTeamScore != nil {
				g.SetScores(*box.HomeTeamScore, *box.VisitorTeamScore)
			}
			line, ok := box.FindPlayer(playerID)
			if !ok {
				break
			}
			line.GameID = g.ID
			if upsert(byGame, synthesize(line)) {
				patched++
			}
			break
		}
	}
	return patched
}

// upsert inserts line if the game has no stat yet, or replaces an existing
// line whose points are zero. A non-zero point total is never overwritten.
func upsert(byGame map[int]models.GameStat, line models.GameStat) bool {
	existing, ok := byGame[line.GameID]
	if ok && existing.Points != 0 {
		return false
	}
	if ok && existing.ID != 0 && line.ID == 0 {
		line.ID = existing.ID
	}
	byGame[line.GameID] = line
	return true
}

func synthesize(line models.GameStat) models.GameStat {
	line.FieldGoalPct = models.ShootingPct(line.FieldGoalsMade, line.FieldGoalsAttempted)
	line.ThreePct = models.ShootingPct(line.ThreesMade, line.ThreesAttempted)
	line.FreeThrowPct = models.ShootingPct(line.FreeThrowsMade, line.FreeThrowsAttempted)
	if line.Rebounds == 0 {
		line.Rebounds = line.OffRebounds + line.DefRebounds
	}
	if line.Minutes == "" {
		line.Minutes = "0"
	}
	return line
}

func sortedStats(byGame map[int]models.GameStat) []models.GameStat {
	out := make([]models.GameStat, 0, len(byGame))
	for _, s := range byGame {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out
}
