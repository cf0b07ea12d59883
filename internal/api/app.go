package api

import (
	"context"

	"github.com/nikdata/oura-hrv/internal"
	"github.com/nikdata/oura-hrv/internal/nightly"
)

type Syncer interface {
	Run(ctx context.Context, r internal.DateRange) (internal.Summary, error)
}

type Organizer interface {
	Organize(root string, dryRun bool) (nightly.OrganizeReport, error)
}

type App interface {
	Logger() internal.Logger
	Syncer() Syncer
	Organizer() Organizer
	DataDir() string
	// DateRange resolves an optional start/end pair against the configured defaults.
	DateRange(start, end string) (internal.DateRange, error)
}
