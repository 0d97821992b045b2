package core

import (
	"context"
	"sync"
	"time"

	"marketpulse/src/models"
)

// Reaper periodically evicts symbols idle longer than the inactivity
// horizon from both the registry and the threshold set. Runs on its own
// goroutine; observes ctx and exits as soon as it is cancelled.
type Reaper struct {
	analyzer   *Analyzer
	intervalMs int64
	horizonMs  int64
	onEvicted  func(evicted []models.AlertSnapshot)
}

// NewReaper builds a Reaper bound to analyzer's registry and threshold set.
// onEvicted, if non-nil, is called with the last-known snapshot of every
// evicted symbol that was actually in the alert band — the audit-trail
// hook. It is called once per tick, after the symbols are already removed;
// the reaper does not hand the same snapshots over again on a later tick.
func NewReaper(analyzer *Analyzer, intervalMs, horizonMs int64, onEvicted func(evicted []models.AlertSnapshot)) *Reaper {
	return &Reaper{
		analyzer:   analyzer,
		intervalMs: intervalMs,
		horizonMs:  horizonMs,
		onEvicted:  onEvicted,
	}
}

// Start runs the reaper loop until ctx is cancelled, decrementing wg when it
// exits.
func (r *Reaper) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(time.Duration(r.intervalMs) * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.tick()
			}
		}
	}()
}

// tick runs one collect-then-remove pass:
//  1. compute cutoff = now - inactivity_horizon
//  2. under the registry's shared lock, collect symbols whose
//     last_update_ms < cutoff
//  3. under the registry's exclusive lock, remove those symbols, re-checking
//     each one's timestamp immediately before deletion so a symbol that was
//     touched between steps 2 and 3 survives
//  4. remove the same (actually-removed) symbols from the threshold set
func (r *Reaper) tick() {
	cutoff := nowMs() - uint64(r.horizonMs)

	stale := r.analyzer.registry.snapshotStale(cutoff)
	if len(stale) == 0 {
		return
	}

	removed := r.analyzer.registry.removeStale(stale, cutoff)
	if len(removed) == 0 {
		return
	}

	evicted := r.analyzer.thresholds.removeMany(removed)

	if r.onEvicted != nil && len(evicted) > 0 {
		r.onEvicted(evicted)
	}
}
