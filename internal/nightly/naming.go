// Package nightly owns the on-disk layout of the per-night metric files:
// writing them into the flat data directory and filing them into
// {metric}/{year}/{month}/ folders afterwards.
package nightly

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/nikdata/oura-hrv/internal"
)

var fileNamePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})_sleep-(hrv|rhr)\.json$`)

// FileName is YYYY-MM-DD_sleep-{kind}.json.
func FileName(kind internal.MetricKind, date string) string {
	return date + "_sleep-" + string(kind) + ".json"
}

// ParsedName is what a night file name encodes.
type ParsedName struct {
	Kind  internal.MetricKind
	Date  string
	Year  string
	Month string
}

// ParseFileName reports whether name is a night file and what it holds.
func ParseFileName(name string) (ParsedName, bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return ParsedName{}, false
	}
	date := m[1] + "-" + m[2] + "-" + m[3]
	if _, err := time.Parse(internal.DateLayout, date); err != nil {
		return ParsedName{}, false
	}
	return ParsedName{Kind: internal.MetricKind(m[4]), Date: date, Year: m[1], Month: m[2]}, true
}

// FlatPath is where the writer puts a new file.
func FlatPath(root string, kind internal.MetricKind, date string) string {
	return filepath.Join(root, FileName(kind, date))
}

// OrganizedPath is where the organizer files it.
func OrganizedPath(root string, kind internal.MetricKind, date string) (string, error) {
	d, err := time.Parse(internal.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("nightly: invalid date %q: %w", date, err)
	}
	return filepath.Join(root, string(kind), d.Format("2006"), d.Format("01"), FileName(kind, date)), nil
}
