package storage

import (
	"database/sql"
	"fmt"

	"marketpulse/src/logger"
	"marketpulse/src/models"

	_ "modernc.org/sqlite"
)

// AsyncSQLiteDB persists alert_events to a local SQLite file via the pure-Go
// driver (no cgo).
type AsyncSQLiteDB struct {
	Path   string
	DB     *sql.DB
	Logger *logger.Logger
}

// NewAsyncSQLiteDB constructs a store bound to path.
func NewAsyncSQLiteDB(path string, log *logger.Logger) *AsyncSQLiteDB {
	return &AsyncSQLiteDB{Path: path, Logger: log}
}

func (d *AsyncSQLiteDB) Initialize() error {
	db, err := sql.Open("sqlite", d.Path)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		return err
	}
	d.DB = db

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("failed to set synchronous mode: %v", err)
	}

	return d.createTable()
}

func (d *AsyncSQLiteDB) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS alert_events (
			symbol TEXT,
			kind TEXT,
			change_percent REAL,
			current_price REAL,
			min_price REAL,
			max_price REAL,
			volume INTEGER,
			timestamp_ms INTEGER,
			deep_link TEXT,
			PRIMARY KEY (symbol, timestamp_ms)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create alert_events: %w", err)
	}
	return nil
}

func (d *AsyncSQLiteDB) RecordTransition(s models.AlertSnapshot, kind string) error {
	_, err := d.DB.Exec(`
		INSERT INTO alert_events (symbol, kind, change_percent, current_price, min_price, max_price, volume, timestamp_ms, deep_link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, timestamp_ms) DO NOTHING
	`, s.Symbol, kind, s.ChangePercent, s.CurrentPrice, s.MinPrice, s.MaxPrice, s.Volume, s.TimestampMs, s.DeepLink)
	return err
}

func (d *AsyncSQLiteDB) CleanupOlderThan(cutoffMs int64) error {
	_, err := d.DB.Exec("DELETE FROM alert_events WHERE timestamp_ms < ?", cutoffMs)
	return err
}

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
