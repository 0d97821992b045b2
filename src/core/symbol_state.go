package core

import (
	"math"
	"sync"
	"sync/atomic"

	"marketpulse/src/models"
	"marketpulse/src/ringbuffer"
)

// SymbolState owns one ring buffer of price points for a single symbol, plus
// lock-free fast-path fields for the latest price and update time.
type SymbolState struct {
	mu     sync.RWMutex
	buffer *ringbuffer.RingBuffer[models.PricePoint]

	lastUpdateMs atomic.Uint64
	lastPrice    atomic.Uint64 // bit pattern of a float64, see LastPrice/setLastPrice
}

func newSymbolState(bufferSize int) *SymbolState {
	return &SymbolState{
		buffer: ringbuffer.New[models.PricePoint](bufferSize),
	}
}

// Append stores a point and updates the atomic fast-path fields, all under
// the writer lock, so that two concurrent appends for the same symbol commit
// their last_update_ms/last_price stores in the same order they commit the
// buffer append itself — last_update_ms never regresses relative to append
// order.
func (s *SymbolState) Append(p models.PricePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffer.Append(p)
	s.lastUpdateMs.Store(nowMs())
	s.setLastPrice(p.Price)
}

// Recent returns a chronological snapshot of the last n points under the
// reader lock.
func (s *SymbolState) Recent(n int) []models.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer.Recent(n)
}

// BufferLen reports the current number of buffered points.
func (s *SymbolState) BufferLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer.Len()
}

// LastUpdateMs reads the last-append wall-clock time without acquiring the
// lock.
func (s *SymbolState) LastUpdateMs() uint64 {
	return s.lastUpdateMs.Load()
}

// LastPrice reads the last-appended price without acquiring the lock.
func (s *SymbolState) LastPrice() float64 {
	return math.Float64frombits(s.lastPrice.Load())
}

func (s *SymbolState) setLastPrice(price float64) {
	s.lastPrice.Store(math.Float64bits(price))
}
