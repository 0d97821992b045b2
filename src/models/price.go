package models

// PricePoint is one observation appended to a symbol's ring buffer.
// Immutable once appended.
type PricePoint struct {
	Price       float64 `json:"price"`
	TimestampMs uint64  `json:"timestamp_ms"`
	Volume      uint64  `json:"volume"`
}

// Trade is an inbound trade event from the feed.
type Trade struct {
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	Volume      uint64  `json:"volume"`
	TimestampMs uint64  `json:"timestamp_ms"`
	Exchange    string  `json:"exchange"`
}

// Quote is an inbound bid/ask event, folded into a synthetic Trade before
// entering the same ingest path.
type Quote struct {
	Symbol      string  `json:"symbol"`
	BidPrice    float64 `json:"bid_price"`
	BidSize     uint64  `json:"bid_size"`
	AskPrice    float64 `json:"ask_price"`
	AskSize     uint64  `json:"ask_size"`
	TimestampMs uint64  `json:"timestamp_ms"`
	Exchange    string  `json:"exchange"`
}

// ToTrade folds a Quote into the synthetic Trade the Analyzer actually
// ingests: mid price, summed size.
func (q Quote) ToTrade() Trade {
	return Trade{
		Symbol:      q.Symbol,
		Price:       (q.BidPrice + q.AskPrice) / 2,
		Volume:      q.BidSize + q.AskSize,
		TimestampMs: q.TimestampMs,
		Exchange:    q.Exchange,
	}
}

// AlertSnapshot is the last reported alert state for a symbol inside the
// threshold band.
type AlertSnapshot struct {
	Symbol        string  `json:"symbol"`
	ChangePercent float64 `json:"change_percent"`
	CurrentPrice  float64 `json:"current_price"`
	MinPrice      float64 `json:"min_price"`
	MaxPrice      float64 `json:"max_price"`
	Volume        uint64  `json:"volume"`
	TimestampMs   uint64  `json:"timestamp_ms"`
	DeepLink      string  `json:"deep_link"`
}

// StockData is the full per-symbol view returned by the query API.
type StockData struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"current_price"`
	ChangePercent float64 `json:"change_percent"`
	MinPrice      float64 `json:"min_price"`
	MaxPrice      float64 `json:"max_price"`
	Volume        uint64  `json:"volume"`
	LastUpdateMs  uint64  `json:"last_update_ms"`
	InThreshold   bool    `json:"in_threshold"`
}

// Stats is the derived metrics snapshot returned by the query API.
type Stats struct {
	TotalStocks         int     `json:"total_stocks"`
	ThresholdStocks     int     `json:"threshold_stocks"`
	UpdatesPerSecond    uint64  `json:"updates_per_second"`
	AvgProcessingTimeUs float64 `json:"avg_processing_time_us"`
	MemoryUsageBytes    uint64  `json:"memory_usage_bytes"`
	DroppedEvents       uint64  `json:"dropped_events"`
	DroppedInserts      uint64  `json:"dropped_inserts"`
}
