package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"marketpulse/src/logger"
	"marketpulse/src/models"

	_ "github.com/lib/pq"
)

// PostgresDB persists alert_events under a schema named for the running
// binary, so multiple instances sharing a database don't collide.
type PostgresDB struct {
	DSN    string
	Schema string
	DB     *sql.DB
	Logger *logger.Logger
}

// NewPostgresDB constructs a store bound to dsn, deriving its schema name
// from the executable name.
func NewPostgresDB(dsn string, log *logger.Logger) (*PostgresDB, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{DSN: dsn, Schema: name, Logger: log}, nil
}

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.DSN)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		return err
	}
	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	return d.createTable()
}

func (d *PostgresDB) createTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."alert_events" (
			symbol TEXT,
			kind TEXT,
			change_percent DOUBLE PRECISION,
			current_price DOUBLE PRECISION,
			min_price DOUBLE PRECISION,
			max_price DOUBLE PRECISION,
			volume BIGINT,
			timestamp_ms BIGINT,
			deep_link TEXT,
			PRIMARY KEY (symbol, timestamp_ms)
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create alert_events: %w", err)
	}
	return nil
}

func (d *PostgresDB) RecordTransition(s models.AlertSnapshot, kind string) error {
	query := fmt.Sprintf(`
		INSERT INTO "%s"."alert_events" (symbol, kind, change_percent, current_price, min_price, max_price, volume, timestamp_ms, deep_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (symbol, timestamp_ms) DO NOTHING
	`, d.Schema)
	_, err := d.DB.Exec(query, s.Symbol, kind, s.ChangePercent, s.CurrentPrice, s.MinPrice, s.MaxPrice, s.Volume, s.TimestampMs, s.DeepLink)
	return err
}

func (d *PostgresDB) CleanupOlderThan(cutoffMs int64) error {
	query := fmt.Sprintf(`DELETE FROM "%s"."alert_events" WHERE timestamp_ms < $1`, d.Schema)
	_, err := d.DB.Exec(query, cutoffMs)
	return err
}

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
