package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikdata/oura-hrv/internal"
	"github.com/nikdata/oura-hrv/internal/extract"
	"github.com/nikdata/oura-hrv/internal/nightly"
	"github.com/nikdata/oura-hrv/internal/sink"
)

// SleepSource is the API side of a run.
type SleepSource interface {
	Credentials() internal.Credentials
	FetchSleepSessions(ctx context.Context, start, end time.Time) ([]internal.SleepSession, error)
}

type NightWriter interface {
	Write(kind internal.MetricKind, date string, readings []internal.Reading) (nightly.WriteResult, error)
}

// Syncer runs the fetch → extract → write pipeline once per call.
type Syncer struct {
	source    SleepSource
	extractor *extract.Extractor
	writer    NightWriter
	sinks     []sink.ReadingSink
	logger    internal.Logger
}

func NewSyncer(source SleepSource, extractor *extract.Extractor, writer NightWriter, sinks []sink.ReadingSink, logger internal.Logger) *Syncer {
	return &Syncer{source: source, extractor: extractor, writer: writer, sinks: sinks, logger: logger}
}

// Run fetches r, writes one file per metric and night, and exports what was
// written. Missing credentials and fetch failures abort the run; problems
// with a single night are counted in Summary.Failed.
func (s *Syncer) Run(ctx context.Context, r internal.DateRange) (internal.Summary, error) {
	summary := internal.Summary{RunID: uuid.NewString()}
	log := s.logger.With("run_id", summary.RunID)

	if err := ValidateCredentials(s.source.Credentials()); err != nil {
		log.Errorf("sync: %v", err)
		return summary, err
	}

	log.Infof("Fetching sleep data for %s", r)
	sessions, err := s.source.FetchSleepSessions(ctx, r.Start, r.End)
	if err != nil {
		log.Errorf("sync: fetch failed: %v", err)
		return summary, fmt.Errorf("fetch sleep sessions: %w", err)
	}
	summary.Fetched = len(sessions)
	if len(sessions) == 0 {
		log.Infof("No sleep data returned from Oura API")
		return summary, nil
	}
	log.Infof("Retrieved %d sleep sessions", len(sessions))

	nights, stats := s.extractor.GroupNights(sessions)
	summary.NoRHR = stats.NoRHR
	summary.Failed += stats.Failed

	for _, night := range nights {
		written := s.writeNight(log, night, &summary)
		if len(written.HRV) == 0 && written.RHR == nil {
			continue
		}
		for _, sk := range s.sinks {
			if err := sk.StoreNight(ctx, written); err != nil {
				log.Errorf("sync: export of %s to %s failed: %v", night.Date, sk.Name(), err)
				summary.Failed++
				continue
			}
			summary.Exported++
		}
	}

	log.Infof("Run finished: fetched=%d written=%d skipped_duplicate=%d skipped_empty=%d no_rhr=%d failed=%d exported=%d",
		summary.Fetched, summary.Written, summary.SkippedDuplicate, summary.SkippedEmpty, summary.NoRHR, summary.Failed, summary.Exported)
	return summary, nil
}

// writeNight writes the HRV and RHR files of one night and returns the part of
// the night that actually landed on disk.
func (s *Syncer) writeNight(log internal.Logger, night internal.Night, summary *internal.Summary) internal.Night {
	written := internal.Night{Date: night.Date}
	for _, kind := range []internal.MetricKind{internal.MetricHRV, internal.MetricRHR} {
		if kind == internal.MetricRHR && night.RHR == nil {
			continue
		}
		res, err := s.writer.Write(kind, night.Date, night.Readings(kind))
		if err != nil {
			log.Errorf("sync: %s file for %s: %v", kind, night.Date, err)
			summary.Failed++
			continue
		}
		switch res {
		case nightly.Written:
			summary.Written++
			if kind == internal.MetricHRV {
				written.HRV = night.HRV
			} else {
				written.RHR = night.RHR
			}
		case nightly.Duplicate:
			summary.SkippedDuplicate++
		case nightly.SkippedEmpty:
			summary.SkippedEmpty++
		}
	}
	return written
}
