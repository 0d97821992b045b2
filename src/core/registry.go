package core

import (
	"strings"
	"sync"
)

// SymbolRegistry is a concurrent mapping from uppercase symbol to its
// uniquely-owned SymbolState. Reads take the shared lock; insertion
// (get-or-create) and reaper deletion take the exclusive lock.
type SymbolRegistry struct {
	mu         sync.RWMutex
	symbols    map[string]*SymbolState
	bufferSize int
	maxStocks  int
}

func newSymbolRegistry(bufferSize, maxStocks int) *SymbolRegistry {
	return &SymbolRegistry{
		symbols:    make(map[string]*SymbolState, maxStocks),
		bufferSize: bufferSize,
		maxStocks:  maxStocks,
	}
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Get returns the state for symbol under the shared lock, or nil if absent.
func (r *SymbolRegistry) Get(symbol string) *SymbolState {
	symbol = normalize(symbol)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.symbols[symbol]
}

// GetOrCreate returns the existing state for symbol, or creates one.
// Optimistic read under the shared lock first; on a miss, upgrades to the
// exclusive lock and re-checks presence before inserting, so exactly one
// insertion wins when multiple callers race on first touch of the same
// symbol. ok is false only when the registry is at capacity and symbol is
// genuinely new (see §7 capacity-exceeded drop policy).
func (r *SymbolRegistry) GetOrCreate(symbol string) (state *SymbolState, ok bool) {
	symbol = normalize(symbol)

	r.mu.RLock()
	if s, found := r.symbols[symbol]; found {
		r.mu.RUnlock()
		return s, true
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check: another goroutine may have inserted while we waited for the
	// exclusive lock.
	if s, found := r.symbols[symbol]; found {
		return s, true
	}

	if r.maxStocks > 0 && len(r.symbols) >= r.maxStocks {
		return nil, false
	}

	s := newSymbolState(r.bufferSize)
	r.symbols[symbol] = s
	return s, true
}

// Len returns the number of tracked symbols under the shared lock.
func (r *SymbolRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.symbols)
}

// snapshotStale returns symbols whose state.LastUpdateMs() < cutoff, under
// the shared lock. Used by the Reaper's collection phase.
func (r *SymbolRegistry) snapshotStale(cutoffMs uint64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []string
	for symbol, s := range r.symbols {
		if s.LastUpdateMs() < cutoffMs {
			stale = append(stale, symbol)
		}
	}
	return stale
}

// removeStale deletes the given symbols under the exclusive lock, re-checking
// each one's LastUpdateMs against cutoff immediately before deletion so a
// symbol that received a fresh event between collection and this call is not
// evicted. Returns the symbols actually removed.
func (r *SymbolRegistry) removeStale(symbols []string, cutoffMs uint64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for _, symbol := range symbols {
		s, found := r.symbols[symbol]
		if !found {
			continue
		}
		if s.LastUpdateMs() >= cutoffMs {
			continue // raced with a fresh event; skip
		}
		delete(r.symbols, symbol)
		removed = append(removed, symbol)
	}
	return removed
}
