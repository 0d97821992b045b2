package feed

import (
	"math"
	"math/rand"
	"testing"

	"marketpulse/src/models"
)

func TestStartingPriceDeterministicAndBounded(t *testing.T) {
	p1 := startingPrice("AAPL")
	p2 := startingPrice("AAPL")
	if p1 != p2 {
		t.Fatalf("expected startingPrice to be deterministic for the same symbol, got %v and %v", p1, p2)
	}
	if p1 < 10 || p1 >= 100 {
		t.Fatalf("expected starting price in [10, 100), got %v", p1)
	}
}

func TestStartingPriceVariesAcrossSymbols(t *testing.T) {
	if startingPrice("AAPL") == startingPrice("MSFT") {
		t.Fatal("expected distinct symbols to very likely hash to different starting prices")
	}
}

func TestWalkStaysPositiveAndRounded(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	price := 0.02

	for i := 0; i < 1000; i++ {
		price = walk(price, rng)
		if price < 0.01 {
			t.Fatalf("expected walk to clamp away from zero, got %v", price)
		}
		if math.Round(price*10000)/10000 != price {
			t.Fatalf("expected walk to round to 4 decimal places, got %v", price)
		}
	}
}

type recordingSink struct {
	trades []models.Trade
}

func (s *recordingSink) ProcessTrade(trade models.Trade) {
	s.trades = append(s.trades, trade)
}

func TestTickSkipsWhenNoMarketIsOpen(t *testing.T) {
	sink := &recordingSink{}
	f := &Feed{
		symbols:   []string{"AAPL"},
		sink:      sink,
		logger:    testLogger(),
		scheduler: &scheduler{calendars: map[string]*TradingCalendar{}},
		prices:    map[string]float64{"AAPL": 100},
		rng:       rand.New(rand.NewSource(1)),
	}

	f.tick()

	if len(sink.trades) != 0 {
		t.Fatalf("expected no trades emitted while every tracked market is closed, got %d", len(sink.trades))
	}
}
