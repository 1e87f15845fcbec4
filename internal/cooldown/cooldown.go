// Package cooldown tracks per-pair trade cooldowns across price
// cycles (§4.5, §5 shared-resource policy: many-writer/many-reader,
// O(1) updates guarded by a lightweight lock).
package cooldown

import (
	"sync"

	"github.com/EMMoasis/BothMarkets/internal/types"
)

// Table is a per-pair cooldown tracker indexed by pair key, not by
// strategy (§9 open question b).
type Table struct {
	mu      sync.Mutex
	tick    int64
	expires map[string]int64
}

func NewTable() *Table {
	return &Table{expires: make(map[string]int64)}
}

// Tick advances the table's notion of the current cycle. Call once
// per fast-tick iteration before checking Active.
func (t *Table) Tick() {
	t.mu.Lock()
	t.tick++
	t.mu.Unlock()
}

// Active reports whether pair is currently cooling down.
func (t *Table) Active(pair types.MatchedPair) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tick < t.expires[pair.Key()]
}

// Start begins a cooldown of cycles price-cycles for pair, doubled by
// the caller when the terminal status was unwound or partial_stuck.
func (t *Table) Start(pair types.MatchedPair, cycles int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expires[pair.Key()] = t.tick + cycles
}
