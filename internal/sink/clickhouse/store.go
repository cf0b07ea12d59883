package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/nikdata/oura-hrv/internal"
)

type Config struct {
	DSN          string
	Database     string
	Table        string
	CreateTables bool
}

// Store writes readings into a ReplacingMergeTree keyed on
// (timestamp, metric_name), so re-exported nights collapse on merge.
type Store struct {
	db       *sql.DB
	database string
	table    string
}

func NewStore(config Config) (*Store, error) {
	db, err := sql.Open("clickhouse", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	store := &Store{db: db, database: config.Database, table: config.Table}

	if config.CreateTables {
		if err := store.createTablesIfNotExist(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return store, nil
}

func (store *Store) Name() string {
	return "clickhouse"
}

type row struct {
	ts              time.Time
	metric          internal.MetricKind
	unit            string
	qty             float64
	source          string
	measurementType string
	timezoneOffset  string
}

func rowsOf(night internal.Night) []row {
	rows := make([]row, 0, len(night.HRV)+1)
	for _, r := range night.HRV {
		rows = append(rows, row{time.Unix(r.Date, 0).UTC(), internal.MetricHRV, r.Unit, r.HRV, r.Source, r.MeasurementType, r.TimezoneOffset})
	}
	if r := night.RHR; r != nil {
		rows = append(rows, row{time.Unix(r.Date, 0).UTC(), internal.MetricRHR, r.Unit, float64(r.RHR), r.Source, r.MeasurementType, r.TimezoneOffset})
	}
	return rows
}

func (store *Store) StoreNight(ctx context.Context, night internal.Night) error {
	rows := rowsOf(night)
	if len(rows) == 0 {
		return nil
	}

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.%s
		(timestamp, night, metric_name, metric_unit, qty, source, measurement_type, timezone_offset)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, store.database, store.table))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err = stmt.ExecContext(ctx,
			r.ts,
			night.Date,
			string(r.metric),
			r.unit,
			r.qty,
			r.source,
			r.measurementType,
			r.timezoneOffset,
		)
		if err != nil {
			return fmt.Errorf("failed to insert reading: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (store *Store) createTablesIfNotExist() error {
	_, err := store.db.Exec(fmt.Sprintf(`
		CREATE DATABASE IF NOT EXISTS %s
	`, store.database))
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	_, err = store.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.%s (
			timestamp DateTime,
			night String,
			metric_name String,
			metric_unit String,
			qty Float64 DEFAULT 0,
			source String DEFAULT '',
			measurement_type String DEFAULT '',
			timezone_offset String DEFAULT '',
			PRIMARY KEY (timestamp, metric_name)
		) ENGINE = ReplacingMergeTree()
	`, store.database, store.table))
	if err != nil {
		return fmt.Errorf("failed to create readings table: %w", err)
	}

	return nil
}

func (store *Store) Close() error {
	return store.db.Close()
}
