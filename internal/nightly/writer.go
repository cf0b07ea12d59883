package nightly

import (
	"fmt"
	"os"

	"github.com/nikdata/oura-hrv/internal"
	"github.com/nikdata/oura-hrv/internal/storage"
)

type WriteResult int

const (
	Written WriteResult = iota
	Duplicate
	SkippedEmpty
)

func (r WriteResult) String() string {
	switch r {
	case Written:
		return "written"
	case Duplicate:
		return "duplicate"
	case SkippedEmpty:
		return "skipped_empty"
	default:
		return fmt.Sprintf("WriteResult(%d)", int(r))
	}
}

// Writer creates night files under Root. A file that exists in either the
// flat or the organized location is never touched again.
type Writer struct {
	Root       string
	WriteEmpty bool
	logger     internal.Logger
}

func NewWriter(root string, writeEmpty bool, logger internal.Logger) *Writer {
	return &Writer{Root: root, WriteEmpty: writeEmpty, logger: logger}
}

// Write stores readings for (kind, date). Duplicates are reported, not
// errors. The existence check and the write are not atomic together; runs
// must not overlap.
func (w *Writer) Write(kind internal.MetricKind, date string, readings []internal.Reading) (WriteResult, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("nightly: unknown metric kind %q", kind)
	}
	organized, err := OrganizedPath(w.Root, kind, date)
	if err != nil {
		return 0, err
	}
	flat := FlatPath(w.Root, kind, date)

	for _, p := range []string{flat, organized} {
		exists, err := fileExists(p)
		if err != nil {
			return 0, err
		}
		if exists {
			w.logger.Infof("Skipping %s - already exists at %s", FileName(kind, date), p)
			return Duplicate, nil
		}
	}

	if len(readings) == 0 && !w.WriteEmpty {
		w.logger.Infof("No valid %s data found for %s", kind, date)
		return SkippedEmpty, nil
	}

	if err := os.MkdirAll(w.Root, 0o755); err != nil {
		return 0, fmt.Errorf("nightly: create %s: %w", w.Root, err)
	}
	if readings == nil {
		readings = []internal.Reading{}
	}
	if err := storage.AtomicWriteFileJSON(flat, readings, 0o644); err != nil {
		w.logger.Errorf("nightly: error writing %s: %v", flat, err)
		return 0, fmt.Errorf("nightly: write %s: %w", flat, err)
	}
	w.logger.Infof("Saved %d %s readings to %s", len(readings), kind, flat)
	return Written, nil
}

func fileExists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
