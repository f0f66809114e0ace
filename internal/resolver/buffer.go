package resolver

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Differs reports whether next is worth showing over current: another game,
// another state, or a live game whose score, period or clock moved.
func Differs(current, next Selection) bool {
	if current.State != next.State || current.GameID() != next.GameID() {
		return true
	}
	if next.State != StateLive || current.Game == nil || next.Game == nil {
		return false
	}
	a, b := current.Game, next.Game
	return a.HomeTeamScore != b.HomeTeamScore ||
		a.VisitorTeamScore != b.VisitorTeamScore ||
		a.Period != b.Period ||
		a.Time != b.Time
}

// Buffer double-buffers selections: a proposal is held as pending and only
// committed once it has settled for the configured delay. A newer proposal
// replaces the pending one; a proposal equal to the committed selection
// discards it.
type Buffer struct {
	clock    clockwork.Clock
	settle   time.Duration
	onCommit func(Selection)

	mu         sync.Mutex
	committed  Selection
	pending    *Selection
	proposedAt time.Time
	timer      clockwork.Timer
}

func NewBuffer(clock clockwork.Clock, settle time.Duration, onCommit func(Selection)) *Buffer {
	return &Buffer{clock: clock, settle: settle, onCommit: onCommit}
}

func (b *Buffer) Propose(sel Selection) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if !Differs(b.committed, sel) {
		b.pending = nil
		return
	}
	b.pending = &sel
	b.proposedAt = b.clock.Now()
	b.timer = b.clock.AfterFunc(b.settle, func() { b.Settle() })
}

// Settle commits the pending selection if it has waited long enough and
// reports whether it did.
func (b *Buffer) Settle() bool {
	b.mu.Lock()
	if b.pending == nil || b.clock.Since(b.proposedAt) < b.settle {
		b.mu.Unlock()
		return false
	}
	b.committed = *b.pending
	b.pending = nil
	sel := b.committed
	b.mu.Unlock()

	if b.onCommit != nil {
		b.onCommit(sel)
	}
	return true
}

func (b *Buffer) Current() Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committed
}

func (b *Buffer) Pending() (Selection, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return Selection{}, false
	}
	return *b.pending, true
}

func (b *Buffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.pending = nil
}
