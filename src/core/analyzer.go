package core

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"marketpulse/src/models"
)

// AlertCallback is invoked synchronously from the ingest goroutine on
// transition-into-band or on in-band change exceeding the hysteresis delta.
// Implementations must be non-blocking and must not call back into the
// Analyzer.
type AlertCallback func(models.AlertSnapshot)

// Recorder mirrors the analyzer's own counters onto an external metrics
// exporter. Optional — a nil Recorder simply means no export. Implemented
// structurally by src/metrics.Recorder; core never imports that package.
type Recorder interface {
	RecordProcessed()
	RecordDroppedMalformed()
	RecordDroppedCapacity()
	RecordTrackedSymbols(n int)
	RecordThresholdSymbols(n int)
	RecordLatency(seconds float64)
}

// Analyzer is the ingest entry point: process_trade / process_quote. It owns
// the registry and threshold set, invokes the reducer, applies membership
// rules, and dispatches alerts.
type Analyzer struct {
	config     Config
	registry   *SymbolRegistry
	thresholds *ThresholdSet
	metrics    *Metrics
	deeplink   *DeepLinker
	recorder   Recorder

	// thresholdMin/Max are mutated by SetThresholdBand (the admin endpoint)
	// concurrently with reads from ProcessTrade, hence atomics rather than
	// plain Config fields.
	thresholdMin atomic.Uint64 // bit pattern of a float64
	thresholdMax atomic.Uint64

	cbMu      sync.Mutex
	callbacks []AlertCallback

	transitionMu        sync.Mutex
	transitionCallbacks []TransitionCallback
}

// TransitionCallback is invoked for every alert-set transition — "enter",
// "update", or "exit" — unlike AlertCallback, which only fires on enter/
// update. The audit-trail writer subscribes here; the websocket hub
// subscribes to AlertCallback instead, since exits are not pushed live.
type TransitionCallback func(snapshot models.AlertSnapshot, kind string)

// NewAnalyzer constructs an Analyzer with its own registry, threshold set,
// and metrics. recorder may be nil.
func NewAnalyzer(config Config, deeplink *DeepLinker, recorder Recorder) *Analyzer {
	a := &Analyzer{
		config:     config,
		registry:   newSymbolRegistry(config.BufferSize, config.MaxStocks),
		thresholds: newThresholdSet(),
		metrics:    newMetrics(),
		deeplink:   deeplink,
		recorder:   recorder,
	}
	a.thresholdMin.Store(math.Float64bits(config.ThresholdMin))
	a.thresholdMax.Store(math.Float64bits(config.ThresholdMax))
	return a
}

// SetAlertCallback registers an additional callback, invoked in registration
// order alongside any previously registered callbacks. The server's websocket
// hub calls this once at construction; the alert store subscribes through
// SetTransitionCallback instead.
func (a *Analyzer) SetAlertCallback(cb AlertCallback) {
	a.cbMu.Lock()
	defer a.cbMu.Unlock()
	a.callbacks = append(a.callbacks, cb)
}

func (a *Analyzer) dispatch(snapshot models.AlertSnapshot) {
	a.cbMu.Lock()
	cbs := a.callbacks
	a.cbMu.Unlock()

	for _, cb := range cbs {
		func() {
			defer func() {
				// A panicking callback must not corrupt the caller's locks
				// or drop this event's metric accounting.
				recover()
			}()
			cb(snapshot)
		}()
	}
}

// SetTransitionCallback registers an additional transition subscriber,
// invoked alongside any previously registered ones.
func (a *Analyzer) SetTransitionCallback(cb TransitionCallback) {
	a.transitionMu.Lock()
	defer a.transitionMu.Unlock()
	a.transitionCallbacks = append(a.transitionCallbacks, cb)
}

func (a *Analyzer) dispatchTransition(snapshot models.AlertSnapshot, kind string) {
	a.transitionMu.Lock()
	cbs := a.transitionCallbacks
	a.transitionMu.Unlock()

	for _, cb := range cbs {
		func() {
			defer func() { recover() }()
			cb(snapshot, kind)
		}()
	}
}

func nowMs() uint64 {
	return uint64(time.Now().UnixMilli())
}

// ProcessTrade is the core ingest entry point. It never panics or returns an
// error to the caller; internal failures are counted and swallowed.
func (a *Analyzer) ProcessTrade(trade models.Trade) {
	start := time.Now()

	if !validTrade(trade) {
		a.metrics.recordDroppedEvent()
		if a.recorder != nil {
			a.recorder.RecordDroppedMalformed()
		}
		return
	}

	state, ok := a.registry.GetOrCreate(trade.Symbol)
	if !ok {
		a.metrics.recordDroppedInsert()
		if a.recorder != nil {
			a.recorder.RecordDroppedCapacity()
		}
		return
	}

	symbol := normalize(trade.Symbol)
	state.Append(models.PricePoint{Price: trade.Price, TimestampMs: trade.TimestampMs, Volume: trade.Volume})

	if result, ok := a.analyze(state); ok {
		a.applyThresholdRule(symbol, trade.Exchange, result)
	}

	elapsed := time.Since(start)
	a.metrics.recordUpdate(uint64(elapsed.Nanoseconds()))
	if a.recorder != nil {
		a.recorder.RecordProcessed()
		a.recorder.RecordLatency(elapsed.Seconds())
	}
}

// ProcessQuote folds a Quote into a synthetic Trade and delegates.
func (a *Analyzer) ProcessQuote(quote models.Quote) {
	a.ProcessTrade(quote.ToTrade())
}

func validTrade(t models.Trade) bool {
	if t.Symbol == "" {
		return false
	}
	if math.IsNaN(t.Price) || math.IsInf(t.Price, 0) {
		return false
	}
	if t.Price <= 0 {
		return false
	}
	return true
}

type analysisResult struct {
	changePercent float64
	min           float64
	max           float64
	current       float64
	volume        uint64
}

// analyze takes a chronological snapshot of the most recent buffer_size
// points, filters to the event-time window, and reduces to
// (change_percent, min, max, current). Returns ok=false when there are
// fewer than min_points_for_analysis points inside the window — not an
// error, just insufficient data.
func (a *Analyzer) analyze(state *SymbolState) (analysisResult, bool) {
	points := state.Recent(a.config.BufferSize)

	now := int64(nowMs())
	windowStart := now - a.config.WindowMs
	if windowStart < 0 {
		windowStart = 0
	}

	filtered := points[:0:0]
	for _, p := range points {
		if int64(p.TimestampMs) >= windowStart {
			filtered = append(filtered, p)
		}
	}

	if len(filtered) < a.config.MinPointsForAnalysis {
		return analysisResult{}, false
	}

	prices := make([]float64, len(filtered))
	for i, p := range filtered {
		prices[i] = p.Price
	}

	last := filtered[len(filtered)-1]
	min, max := MinMax(prices)

	var changePercent float64
	if min > 0 {
		changePercent = (last.Price - min) / min * 100
	}

	return analysisResult{
		changePercent: changePercent,
		min:           min,
		max:           max,
		current:       last.Price,
		volume:        last.Volume,
	}, true
}

// applyThresholdRule implements the in-band/out-of-band membership and
// hysteresis decision, dispatching the alert callback while the threshold
// set's writer lock is held (by design — see the design notes on callback
// ordering).
func (a *Analyzer) applyThresholdRule(symbol, exchange string, result analysisResult) {
	min := math.Float64frombits(a.thresholdMin.Load())
	max := math.Float64frombits(a.thresholdMax.Load())
	inBand := result.changePercent >= min && result.changePercent <= max

	if !inBand {
		a.thresholds.remove(symbol, a.dispatchTransition)
		return
	}

	snapshot := models.AlertSnapshot{
		Symbol:        symbol,
		ChangePercent: result.changePercent,
		CurrentPrice:  result.current,
		MinPrice:      result.min,
		MaxPrice:      result.max,
		Volume:        result.volume,
		TimestampMs:   nowMs(),
		DeepLink:      a.deeplink.Link(symbol, exchange),
	}

	// dispatch (the websocket-facing AlertCallback, enter/update only) and
	// dispatchTransition both run from inside upsertIfSignificant, while its
	// writer lock is still held.
	a.thresholds.upsertIfSignificant(snapshot, a.config.HysteresisDeltaPercent, func(stored models.AlertSnapshot, kind string) {
		a.dispatch(stored)
		a.dispatchTransition(stored, kind)
	})
}

// ActiveSymbols returns every in-band symbol's snapshot, sorted by
// change_percent descending, ties broken by symbol ascending.
func (a *Analyzer) ActiveSymbols() []models.AlertSnapshot {
	snapshots := a.thresholds.snapshotAll()
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].ChangePercent != snapshots[j].ChangePercent {
			return snapshots[i].ChangePercent > snapshots[j].ChangePercent
		}
		return snapshots[i].Symbol < snapshots[j].Symbol
	})
	return snapshots
}

// SymbolData returns the full per-symbol view, or ok=false if the symbol has
// never been seen.
func (a *Analyzer) SymbolData(symbol string) (models.StockData, bool) {
	symbol = normalize(symbol)
	state := a.registry.Get(symbol)
	if state == nil {
		return models.StockData{}, false
	}

	result, analyzed := a.analyze(state)
	_, inThreshold := a.thresholds.get(symbol)

	data := models.StockData{
		Symbol:       symbol,
		CurrentPrice: state.LastPrice(),
		LastUpdateMs: state.LastUpdateMs(),
		InThreshold:  inThreshold,
	}
	if analyzed {
		data.ChangePercent = result.changePercent
		data.MinPrice = result.min
		data.MaxPrice = result.max
		data.Volume = result.volume
	}
	return data, true
}

// Stats returns the derived metrics snapshot.
func (a *Analyzer) Stats() models.Stats {
	totalStocks := a.registry.Len()
	thresholdStocks := a.thresholds.len()
	updatesPerSecond, avgUs, memBytes := a.metrics.snapshot(totalStocks, thresholdStocks, a.config.BufferSize)
	droppedEvents, droppedInserts := a.metrics.dropped()

	if a.recorder != nil {
		a.recorder.RecordTrackedSymbols(totalStocks)
		a.recorder.RecordThresholdSymbols(thresholdStocks)
	}

	return models.Stats{
		TotalStocks:         totalStocks,
		ThresholdStocks:     thresholdStocks,
		UpdatesPerSecond:    updatesPerSecond,
		AvgProcessingTimeUs: avgUs,
		MemoryUsageBytes:    memBytes,
		DroppedEvents:       droppedEvents,
		DroppedInserts:      droppedInserts,
	}
}

// SetThresholdBand adjusts the alert band at runtime — the REST admin
// endpoint's hook.
func (a *Analyzer) SetThresholdBand(min, max float64) {
	a.thresholdMin.Store(math.Float64bits(min))
	a.thresholdMax.Store(math.Float64bits(max))
}
