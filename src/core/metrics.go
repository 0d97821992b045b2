package core

import "sync/atomic"

// Metrics holds the analyzer's own monotonic counters, updated with relaxed
// atomic semantics — exact ordering across counters is unimportant, only
// that each counter itself is consistent.
type Metrics struct {
	totalUpdates          atomic.Uint64
	totalProcessingTimeNs atomic.Uint64
	updatesLastSecond     atomic.Uint64
	droppedEvents         atomic.Uint64
	droppedInserts        atomic.Uint64
}

func newMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordUpdate(processingTimeNs uint64) {
	m.totalUpdates.Add(1)
	m.totalProcessingTimeNs.Add(processingTimeNs)
	m.updatesLastSecond.Add(1)
}

func (m *Metrics) recordDroppedEvent() {
	m.droppedEvents.Add(1)
}

func (m *Metrics) recordDroppedInsert() {
	m.droppedInserts.Add(1)
}

// snapshot computes the derived Stats values. updatesLastSecond is
// read-and-reset, matching the "since last snapshot" contract.
func (m *Metrics) snapshot(totalStocks, thresholdStocks, bufferSize int) (updatesPerSecond uint64, avgProcessingUs float64, memoryBytes uint64) {
	updatesPerSecond = m.updatesLastSecond.Swap(0)

	totalUpdates := m.totalUpdates.Load()
	if totalUpdates > 0 {
		avgProcessingUs = float64(m.totalProcessingTimeNs.Load()) / float64(totalUpdates) / 1000.0
	}

	const stateOverheadBytes = 64 // SymbolState's own fields, excluding the buffer
	const pricePointBytes = 24    // float64 + uint64 + uint64
	memoryBytes = uint64(totalStocks) * (uint64(stateOverheadBytes) + uint64(bufferSize)*uint64(pricePointBytes))

	return updatesPerSecond, avgProcessingUs, memoryBytes
}

func (m *Metrics) dropped() (events, inserts uint64) {
	return m.droppedEvents.Load(), m.droppedInserts.Load()
}
