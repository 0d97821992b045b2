package core

import "marketpulse/src/models"

// Config is the analyzer's own tunable set, independent of the ambient
// config file shape in src/config — this is what Analyzer actually reads.
type Config struct {
	BufferSize             int
	ThresholdMin           float64
	ThresholdMax           float64
	MaxStocks              int
	ReaperIntervalMs       int64
	InactivityHorizonMs    int64
	MinPointsForAnalysis   int
	WindowMs               int64
	HysteresisDeltaPercent float64
}

// DefaultConfig mirrors the defaults enumerated in the data model.
func DefaultConfig() Config {
	return Config{
		BufferSize:             120,
		ThresholdMin:           9.0,
		ThresholdMax:           13.0,
		MaxStocks:              10000,
		ReaperIntervalMs:       60000,
		InactivityHorizonMs:    3_600_000,
		MinPointsForAnalysis:   5,
		WindowMs:               120_000,
		HysteresisDeltaPercent: 0.1,
	}
}

// FromCoreConfig adapts the YAML-loaded core config section, falling back to
// defaults for any zero-valued field.
func FromCoreConfig(c models.CoreConfig) Config {
	d := DefaultConfig()
	if c.BufferSize > 0 {
		d.BufferSize = c.BufferSize
	}
	if c.ThresholdMin != 0 {
		d.ThresholdMin = c.ThresholdMin
	}
	if c.ThresholdMax != 0 {
		d.ThresholdMax = c.ThresholdMax
	}
	if c.MaxStocks > 0 {
		d.MaxStocks = c.MaxStocks
	}
	if c.ReaperIntervalMs > 0 {
		d.ReaperIntervalMs = c.ReaperIntervalMs
	}
	if c.InactivityHorizonMs > 0 {
		d.InactivityHorizonMs = c.InactivityHorizonMs
	}
	if c.MinPointsForAnalysis > 0 {
		d.MinPointsForAnalysis = c.MinPointsForAnalysis
	}
	if c.WindowMs > 0 {
		d.WindowMs = c.WindowMs
	}
	if c.HysteresisDeltaPercent != 0 {
		d.HysteresisDeltaPercent = c.HysteresisDeltaPercent
	}
	return d
}
