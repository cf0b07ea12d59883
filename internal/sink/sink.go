// Package sink exports freshly written nights to downstream metric stores.
package sink

import (
	"context"

	"github.com/nikdata/oura-hrv/internal"
	"github.com/nikdata/oura-hrv/internal/config"
	"github.com/nikdata/oura-hrv/internal/sink/clickhouse"
)

// ReadingSink stores the readings of one night. The same night may arrive
// again after a file was deleted by hand, so sinks must tolerate repeats.
type ReadingSink interface {
	Name() string
	StoreNight(ctx context.Context, night internal.Night) error
	Close() error
}

// FromConfig returns the sinks enabled in cfg; none is a valid answer.
func FromConfig(cfg *config.Config) ([]ReadingSink, error) {
	var sinks []ReadingSink
	if cfg.ClickHouse.Enabled() {
		store, err := clickhouse.NewStore(clickhouse.Config{
			DSN:          cfg.ClickHouse.DSN,
			Database:     cfg.ClickHouse.Database,
			Table:        cfg.ClickHouse.Table,
			CreateTables: cfg.ClickHouse.CreateTables,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, store)
	}
	return sinks, nil
}

// CloseAll closes every sink, returning the first error.
func CloseAll(sinks []ReadingSink) error {
	var first error
	for _, s := range sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
