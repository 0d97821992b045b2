package feed

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"marketpulse/src/logger"
	"marketpulse/src/models"
)

// Sink is the ingestion entry point the feed drives — satisfied by
// *core.Analyzer.
type Sink interface {
	ProcessTrade(trade models.Trade)
}

// Feed emits a random-walk Trade per configured symbol on a fixed tick
// interval, gated by trading-calendar awareness so it only emits while at
// least one tracked market is open. It is a demonstration caller of the
// ingestion API, never required for the analyzer to function.
type Feed struct {
	symbols      []string
	tickInterval time.Duration
	sink         Sink
	logger       *logger.Logger
	scheduler    *scheduler

	mu     sync.Mutex
	prices map[string]float64
	rng    *rand.Rand
}

// New constructs a Feed over cfg.Symbols, ticking every cfg.TickIntervalMs.
func New(cfg models.FeedConfig, sink Sink, log *logger.Logger) *Feed {
	prices := make(map[string]float64, len(cfg.Symbols))
	for _, symbol := range cfg.Symbols {
		prices[symbol] = startingPrice(symbol)
	}

	return &Feed{
		symbols:      cfg.Symbols,
		tickInterval: time.Duration(cfg.TickIntervalMs) * time.Millisecond,
		sink:         sink,
		logger:       log,
		scheduler:    newScheduler(cfg.Symbols, log),
		prices:       prices,
		rng:          rand.New(rand.NewSource(1)),
	}
}

// startingPrice derives a stable, symbol-specific starting price so repeated
// runs behave consistently without needing external state.
func startingPrice(symbol string) float64 {
	var hash uint32
	for _, r := range symbol {
		hash = hash*31 + uint32(r)
	}
	return 10 + float64(hash%9000)/100.0
}

// Start runs the tick loop until ctx is cancelled.
func (f *Feed) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(f.tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				f.logger.Info("feed stopped")
				return
			case <-ticker.C:
				f.tick()
			}
		}
	}()

	f.logger.Info("feed started for %d symbols at %s intervals", len(f.symbols), f.tickInterval)
}

func (f *Feed) tick() {
	if !f.scheduler.anyOpen() {
		return
	}

	now := time.Now().UnixMilli()

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, symbol := range f.symbols {
		price := f.prices[symbol]
		price = walk(price, f.rng)
		f.prices[symbol] = price

		f.sink.ProcessTrade(models.Trade{
			Symbol:      symbol,
			Price:       price,
			Volume:      uint64(100 + f.rng.Intn(9900)),
			TimestampMs: uint64(now),
			Exchange:    "NASDAQ",
		})
	}
}

// walk applies one step of a bounded random walk: a small Gaussian
// percentage move, clamped away from zero.
func walk(price float64, rng *rand.Rand) float64 {
	moveFraction := rng.NormFloat64() * 0.004
	next := price * (1 + moveFraction)
	if next < 0.01 {
		next = 0.01
	}
	return math.Round(next*10000) / 10000
}
