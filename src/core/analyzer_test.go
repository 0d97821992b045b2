package core

import (
	"testing"
	"time"

	"marketpulse/src/models"
)

func feedTicks(a *Analyzer, symbol string, prices []float64) {
	now := uint64(time.Now().UnixMilli())
	for _, p := range prices {
		a.ProcessTrade(models.Trade{
			Symbol:      symbol,
			Price:       p,
			Volume:      100,
			TimestampMs: now,
			Exchange:    "NASDAQ",
		})
	}
}

// S1: a symbol whose change stays below threshold_min never enters the
// alert set and never fires a callback.
func TestS1BelowThresholdNeverAlerts(t *testing.T) {
	a := newTestAnalyzer()
	fired := false
	a.SetAlertCallback(func(models.AlertSnapshot) { fired = true })

	feedTicks(a, "AAPL", []float64{100, 100.5, 101, 100.8, 101.2})

	if fired {
		t.Fatal("expected no alert for a change_percent below threshold_min")
	}
	if _, ok := a.thresholds.get("AAPL"); ok {
		t.Fatal("expected AAPL to never enter the threshold set")
	}
}

// S2: a symbol whose change crosses into [threshold_min, threshold_max]
// enters the alert set and fires exactly one "enter" transition.
func TestS2CrossingIntoBandFiresEnter(t *testing.T) {
	a := newTestAnalyzer()
	var kinds []string
	a.SetTransitionCallback(func(_ models.AlertSnapshot, kind string) { kinds = append(kinds, kind) })

	feedTicks(a, "AAPL", []float64{100, 105, 110})

	if len(kinds) == 0 || kinds[0] != "enter" {
		t.Fatalf("expected the first in-band observation to fire 'enter', got %v", kinds)
	}
}

// S3: once in-band, further in-band changes beyond the hysteresis delta fire
// "update" via AlertCallback, but leaving the band fires no AlertCallback at
// all — only TransitionCallback sees the "exit".
func TestS3ExitFiresNoAlertCallbackOnlyTransition(t *testing.T) {
	a := newTestAnalyzer()
	var alertCount int
	var transitions []string
	a.SetAlertCallback(func(models.AlertSnapshot) { alertCount++ })
	a.SetTransitionCallback(func(_ models.AlertSnapshot, kind string) { transitions = append(transitions, kind) })

	// Enter the band.
	feedTicks(a, "AAPL", []float64{100, 110})
	enterCount := alertCount
	if enterCount == 0 {
		t.Fatal("expected entering the band to fire the alert callback")
	}

	// Drive the change back down near 0%, out of [9, 13].
	feedTicks(a, "AAPL", []float64{100, 100.1})

	if alertCount != enterCount {
		t.Fatalf("expected no additional AlertCallback firings on exit, before=%d after=%d", enterCount, alertCount)
	}
	if len(transitions) == 0 || transitions[len(transitions)-1] != "exit" {
		t.Fatalf("expected the final transition to be 'exit', got %v", transitions)
	}
}

// S4: an in-band change within the hysteresis delta of the stored value is
// suppressed — no callback, no transition.
func TestS4WithinHysteresisIsSuppressed(t *testing.T) {
	a := newTestAnalyzer()
	a.config.HysteresisDeltaPercent = 5 // wide delta to make the point robust to jitter

	var alertCount int
	a.SetAlertCallback(func(models.AlertSnapshot) { alertCount++ })

	feedTicks(a, "AAPL", []float64{100, 110})
	first := alertCount
	if first == 0 {
		t.Fatal("expected entering the band to fire once")
	}

	// A tiny additional wiggle still inside the band and within hysteresis.
	feedTicks(a, "AAPL", []float64{110.01})
	if alertCount != first {
		t.Fatalf("expected the wiggle to be suppressed by hysteresis, before=%d after=%d", first, alertCount)
	}
}

// S5: malformed trades (non-positive or non-finite price, empty symbol) are
// dropped without affecting registry state or firing any callback.
func TestS5MalformedTradeIsDropped(t *testing.T) {
	a := newTestAnalyzer()
	fired := false
	a.SetAlertCallback(func(models.AlertSnapshot) { fired = true })

	a.ProcessTrade(models.Trade{Symbol: "", Price: 100})
	a.ProcessTrade(models.Trade{Symbol: "AAPL", Price: 0})
	a.ProcessTrade(models.Trade{Symbol: "AAPL", Price: -5})

	if fired {
		t.Fatal("expected malformed trades to never fire a callback")
	}
	if a.registry.Get("AAPL") != nil {
		t.Fatal("expected a malformed trade to never create registry state")
	}
	stats := a.Stats()
	if stats.DroppedEvents == 0 {
		t.Fatal("expected malformed trades to be counted as dropped events")
	}
}

// S6: once the registry is at capacity, a genuinely new symbol is dropped
// (counted, not errored) while existing symbols keep updating normally.
func TestS6CapacityExceededDropsNewSymbolOnly(t *testing.T) {
	a := newTestAnalyzer()
	a.config.MaxStocks = 1
	a.registry.maxStocks = 1

	feedTicks(a, "AAPL", []float64{100})
	if a.registry.Get("AAPL") == nil {
		t.Fatal("expected the first symbol to be admitted")
	}

	feedTicks(a, "MSFT", []float64{100})
	if a.registry.Get("MSFT") != nil {
		t.Fatal("expected a second distinct symbol to be dropped at capacity")
	}

	stats := a.Stats()
	if stats.DroppedInserts == 0 {
		t.Fatal("expected the capacity-exceeded drop to be counted")
	}

	// AAPL must still be servable.
	feedTicks(a, "AAPL", []float64{101})
	if a.registry.Get("AAPL").LastPrice() != 101 {
		t.Fatal("expected the already-admitted symbol to keep updating at capacity")
	}
}

// S4: once the buffered points age out of the analysis window, a single
// fresh point is not enough to satisfy min_points_for_analysis and the
// symbol stays out of the threshold set.
func TestS4WindowExpiryInsufficientPoints(t *testing.T) {
	a := newTestAnalyzer()
	a.config.MinPointsForAnalysis = 5
	a.config.WindowMs = 120_000

	state, _ := a.registry.GetOrCreate("AAPL")
	stale := uint64(time.Now().Add(-130 * time.Second).UnixMilli())
	for i := 0; i < 5; i++ {
		state.Append(models.PricePoint{Price: 100 + float64(i), TimestampMs: stale})
	}

	a.ProcessTrade(models.Trade{Symbol: "AAPL", Price: 110, Volume: 10, TimestampMs: uint64(time.Now().UnixMilli()), Exchange: "NASDAQ"})

	if _, ok := a.thresholds.get("AAPL"); ok {
		t.Fatal("expected a single fresh point after window expiry to be insufficient for analysis")
	}
}

// S5: a Quote folds into a Trade at the bid/ask midpoint with summed size.
func TestS5QuoteToTradeFoldingUsesMidpointAndSummedSize(t *testing.T) {
	a := newTestAnalyzer()

	a.ProcessQuote(models.Quote{
		Symbol:      "AAPL",
		BidPrice:    100,
		AskPrice:    102,
		BidSize:     10,
		AskSize:     20,
		TimestampMs: uint64(time.Now().UnixMilli()),
		Exchange:    "NASDAQ",
	})

	state := a.registry.Get("AAPL")
	if state == nil {
		t.Fatal("expected the quote to create registry state via the folded trade")
	}
	if state.LastPrice() != 101 {
		t.Fatalf("expected the folded trade price to be the bid/ask midpoint 101, got %v", state.LastPrice())
	}

	points := state.Recent(1)
	if len(points) != 1 || points[0].Volume != 30 {
		t.Fatalf("expected the folded trade volume to be the summed size 30, got %v", points)
	}
}

func TestSymbolDataReflectsInThresholdFlag(t *testing.T) {
	a := newTestAnalyzer()
	feedTicks(a, "AAPL", []float64{100, 110})

	data, ok := a.SymbolData("aapl")
	if !ok {
		t.Fatal("expected SymbolData to find a tracked symbol regardless of case")
	}
	if !data.InThreshold {
		t.Fatal("expected InThreshold to be true once the symbol entered the band")
	}
}

func TestSymbolDataUnknownSymbol(t *testing.T) {
	a := newTestAnalyzer()
	if _, ok := a.SymbolData("NOPE"); ok {
		t.Fatal("expected SymbolData to report absent for a symbol never seen")
	}
}

func TestActiveSymbolsSortedByChangePercentDescending(t *testing.T) {
	a := newTestAnalyzer()
	feedTicks(a, "AAPL", []float64{100, 110})
	feedTicks(a, "MSFT", []float64{100, 112})

	active := a.ActiveSymbols()
	if len(active) != 2 {
		t.Fatalf("expected both symbols in the active set, got %d", len(active))
	}
	if active[0].ChangePercent < active[1].ChangePercent {
		t.Fatal("expected ActiveSymbols to be sorted by change_percent descending")
	}
}

func TestSetThresholdBandAffectsSubsequentTicks(t *testing.T) {
	a := newTestAnalyzer()
	a.SetThresholdBand(0, 1) // tight band

	feedTicks(a, "AAPL", []float64{100, 110})
	if _, ok := a.thresholds.get("AAPL"); ok {
		t.Fatal("expected a tightened band to keep a large change out of the alert set")
	}
}
