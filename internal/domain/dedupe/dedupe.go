// Package dedupe guards the tracker against duplicate and out-of-order
// play delivery. Ledger mutation is not idempotent, so the same sequence
// order must never reach the tracker twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Filter records seen (game, sequence) pairs to ensure at-most-once
// application per play.
type Filter interface {
	// SeenAndRecord atomically checks whether seq was already seen for the
	// game and records it if not. Returns true if it was already seen.
	SeenAndRecord(ctx context.Context, gameID string, seq int) bool

	// Forget removes the most recent record for a game, allowing a play
	// that was marked seen but failed downstream (e.g. queue backpressure)
	// to be retried.
	Forget(ctx context.Context, gameID string, seq int)

	// Reset clears a game's records entirely; used before a full replay.
	Reset(gameID string)

	// Release drops all state for a finished game.
	Release(gameID string)

	Size() int64
}

// gameWindow tracks per-game sequence progress. Plays arrive in ascending
// order within a batch, so a high-water mark suffices: anything at or
// below it is a duplicate or a too-late out-of-order delivery, and the
// recovery path for genuine late gaps is full replay.
type gameWindow struct {
	highWater int
	prev      int // high-water before the last record, for Forget
}

// SequenceFilter implements Filter with per-game high-water marks.
type SequenceFilter struct {
	mu    sync.Mutex
	games map[string]*gameWindow
	size  atomic.Int64
}

// NewSequenceFilter creates an empty filter.
func NewSequenceFilter() *SequenceFilter {
	return &SequenceFilter{games: make(map[string]*gameWindow)}
}

// SeenAndRecord atomically checks and records one sequence order.
func (f *SequenceFilter) SeenAndRecord(_ context.Context, gameID string, seq int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	w, ok := f.games[gameID]
	if !ok {
		w = &gameWindow{}
		f.games[gameID] = w
		f.size.Add(1)
	}
	if seq <= w.highWater {
		return true
	}
	w.prev = w.highWater
	w.highWater = seq
	return false
}

// Forget rolls back the most recent record for a game. Only the last
// recorded sequence can be forgotten; older ones are already applied.
func (f *SequenceFilter) Forget(_ context.Context, gameID string, seq int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if w, ok := f.games[gameID]; ok && w.highWater == seq {
		w.highWater = w.prev
	}
}

// Reset clears a game's progress so a full replay starts from zero.
func (f *SequenceFilter) Reset(gameID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if w, ok := f.games[gameID]; ok {
		w.highWater = 0
		w.prev = 0
	}
}

// Release drops all state for a game.
func (f *SequenceFilter) Release(gameID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.games[gameID]; ok {
		delete(f.games, gameID)
		f.size.Add(-1)
	}
}

// Size returns the number of games currently tracked.
func (f *SequenceFilter) Size() int64 {
	return f.size.Load()
}
