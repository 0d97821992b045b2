package storage

import (
	"path/filepath"
	"testing"

	"marketpulse/src/logger"
	"marketpulse/src/models"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&models.AppConfig{Logging: models.LoggingConfig{Level: "error", Format: "console"}}, "storage_test")
}

func TestAsyncSQLiteDBRecordAndCleanup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.db")
	db := NewAsyncSQLiteDB(path, testLogger())

	if err := db.Initialize(); err != nil {
		t.Fatalf("unexpected error initializing store: %v", err)
	}
	defer db.Close()

	snapshot := models.AlertSnapshot{Symbol: "AAPL", ChangePercent: 10, CurrentPrice: 110, TimestampMs: 1000}
	if err := db.RecordTransition(snapshot, "enter"); err != nil {
		t.Fatalf("unexpected error recording transition: %v", err)
	}

	// Re-recording the same (symbol, timestamp_ms) pair must be a no-op, not
	// an error, per the ON CONFLICT DO NOTHING upsert policy.
	if err := db.RecordTransition(snapshot, "enter"); err != nil {
		t.Fatalf("unexpected error on duplicate transition: %v", err)
	}

	var count int
	if err := db.DB.QueryRow("SELECT COUNT(*) FROM alert_events").Scan(&count); err != nil {
		t.Fatalf("unexpected error counting rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row after a duplicate insert, got %d", count)
	}

	if err := db.CleanupOlderThan(2000); err != nil {
		t.Fatalf("unexpected error cleaning up: %v", err)
	}
	if err := db.DB.QueryRow("SELECT COUNT(*) FROM alert_events").Scan(&count); err != nil {
		t.Fatalf("unexpected error counting rows: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected cleanup to remove the row older than the cutoff, got %d remaining", count)
	}
}

func TestAsyncSQLiteDBCloseWithoutInitialize(t *testing.T) {
	db := NewAsyncSQLiteDB(filepath.Join(t.TempDir(), "unused.db"), testLogger())
	if err := db.Close(); err != nil {
		t.Fatalf("expected Close on an uninitialized store to be a no-op, got %v", err)
	}
}
