package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/courtside/internal/models"
)

// Cadence decides how often a watch is recomputed.
type Cadence struct {
	Live        time.Duration
	Prime       time.Duration
	Idle        time.Duration
	ResumeAfter time.Duration
	PrimeStart  int
	PrimeEnd    int
	Location    *time.Location
}

func DefaultCadence() Cadence {
	return Cadence{
		Live:        45 * time.Second,
		Prime:       90 * time.Second,
		Idle:        180 * time.Second,
		ResumeAfter: 60 * time.Second,
		PrimeStart:  19,
		PrimeEnd:    23,
		Location:    time.UTC,
	}
}

func (c Cadence) Interval(sel Selection, now time.Time) time.Duration {
	if sel.State == StateLive {
		return c.Live
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	if h := now.In(loc).Hour(); h >= c.PrimeStart && h < c.PrimeEnd {
		return c.Prime
	}
	return c.Idle
}

type watch struct {
	teamID  int
	known   []models.Game
	buffer  *Buffer
	visible bool
	lastRun time.Time
}

// Poller keeps one debounced selection per subscriber and recomputes it on
// Tick according to the cadence. Hidden watches are skipped.
type Poller struct {
	resolver *Resolver
	clock    clockwork.Clock
	cadence  Cadence
	settle   time.Duration

	mu      sync.Mutex
	watches map[string]*watch
}

func NewPoller(resolver *Resolver, clock clockwork.Clock, cadence Cadence, settle time.Duration) *Poller {
	return &Poller{
		resolver: resolver,
		clock:    clock,
		cadence:  cadence,
		settle:   settle,
		watches:  make(map[string]*watch),
	}
}

// Watch registers (or replaces) a subscriber and resolves once right away.
func (p *Poller) Watch(ctx context.Context, key string, teamID int, known []models.Game, onCommit func(Selection)) {
	w := &watch{
		teamID:  teamID,
		known:   known,
		buffer:  NewBuffer(p.clock, p.settle, onCommit),
		visible: true,
	}

	p.mu.Lock()
	if old, ok := p.watches[key]; ok {
		old.buffer.Stop()
	}
	p.watches[key] = w
	p.mu.Unlock()

	p.refresh(ctx, w)
}

func (p *Poller) Unwatch(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.watches[key]; ok {
		w.buffer.Stop()
		delete(p.watches, key)
	}
}

// SetVisible pauses or resumes a watch. Resuming after more than
// ResumeAfter since the last run recomputes immediately.
func (p *Poller) SetVisible(ctx context.Context, key string, visible bool) {
	p.mu.Lock()
	w, ok := p.watches[key]
	if !ok {
		p.mu.Unlock()
		return
	}
	wasVisible := w.visible
	w.visible = visible
	stale := p.clock.Since(w.lastRun) > p.cadence.ResumeAfter
	p.mu.Unlock()

	if visible && !wasVisible && stale {
		p.refresh(ctx, w)
	}
}

func (p *Poller) SetKnownGames(key string, games []models.Game) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.watches[key]; ok {
		w.known = games
	}
}

func (p *Poller) Current(key string) (Selection, bool) {
	p.mu.Lock()
	w, ok := p.watches[key]
	p.mu.Unlock()
	if !ok {
		return Selection{}, false
	}
	return w.buffer.Current(), true
}

func (p *Poller) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.watches))
	for k := range p.watches {
		keys = append(keys, k)
	}
	return keys
}

// Tick recomputes every visible watch whose interval has elapsed.
func (p *Poller) Tick(ctx context.Context) {
	now := p.clock.Now()

	p.mu.Lock()
	var due []*watch
	for _, w := range p.watches {
		if !w.visible {
			continue
		}
		if now.Sub(w.lastRun) >= p.cadence.Interval(w.buffer.Current(), now) {
			due = append(due, w)
		}
	}
	p.mu.Unlock()

	for _, w := range due {
		if ctx.Err() != nil {
			return
		}
		p.refresh(ctx, w)
	}
}

func (p *Poller) refresh(ctx context.Context, w *watch) {
	p.mu.Lock()
	teamID, known := w.teamID, w.known
	w.lastRun = p.clock.Now()
	p.mu.Unlock()

	sel := p.resolver.Resolve(ctx, teamID, known, w.buffer.Current())
	w.buffer.Propose(sel)
}
