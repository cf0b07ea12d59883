package internal

import "time"

// DateLayout is the calendar date format used in API queries and file names.
const DateLayout = "2006-01-02"

// ReadableLayout is the local wall-clock format written to date_readable.
const ReadableLayout = "2006-01-02 15:04:05"

type MetricKind string

const (
	MetricHRV MetricKind = "hrv"
	MetricRHR MetricKind = "rhr"
)

func (k MetricKind) Valid() bool {
	return k == MetricHRV || k == MetricRHR
}

type Credentials struct {
	ClientID     string    `json:"client_id" validate:"required"`
	ClientSecret string    `json:"client_secret" validate:"required"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token" validate:"required"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TimeSeries is a fixed-interval sample series as returned by the sleep
// endpoint. Items may be null.
type TimeSeries struct {
	Interval  float64    `json:"interval"`
	Items     []*float64 `json:"items"`
	Timestamp string     `json:"timestamp"`
}

// SleepSession is one sleep period from /v2/usercollection/sleep.
type SleepSession struct {
	ID           string      `json:"id"`
	Day          string      `json:"day"`
	Type         string      `json:"type"`
	BedtimeStart string      `json:"bedtime_start"`
	BedtimeEnd   string      `json:"bedtime_end"`
	HeartRate    *TimeSeries `json:"heart_rate"`
	HRV          *TimeSeries `json:"hrv"`
}

// Reading is a single entry of a nightly file.
type Reading interface {
	Kind() MetricKind
}

type HRVReading struct {
	Date            int64   `json:"date"`
	DateReadable    string  `json:"date_readable"`
	Timezone        string  `json:"timezone"`
	TimezoneOffset  string  `json:"timezone_offset"`
	HRV             float64 `json:"hrv"`
	Unit            string  `json:"unit"`
	Source          string  `json:"source"`
	MeasurementType string  `json:"measurement_type"`
}

func (HRVReading) Kind() MetricKind { return MetricHRV }

type RHRReading struct {
	Date            int64  `json:"date"`
	DateReadable    string `json:"date_readable"`
	Timezone        string `json:"timezone"`
	TimezoneOffset  string `json:"timezone_offset"`
	RHR             int    `json:"rhr"`
	Unit            string `json:"unit"`
	Source          string `json:"source"`
	MeasurementType string `json:"measurement_type"`
}

func (RHRReading) Kind() MetricKind { return MetricRHR }

// Night holds everything extracted for one local calendar date.
type Night struct {
	Date string
	HRV  []HRVReading
	RHR  *RHRReading
}

// Readings returns the night's entries for kind in file order.
func (n Night) Readings(kind MetricKind) []Reading {
	var out []Reading
	switch kind {
	case MetricHRV:
		out = make([]Reading, 0, len(n.HRV))
		for _, r := range n.HRV {
			out = append(out, r)
		}
	case MetricRHR:
		out = make([]Reading, 0, 1)
		if n.RHR != nil {
			out = append(out, *n.RHR)
		}
	}
	return out
}

// DateRange is inclusive of Start and passed to the API as-is for End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

type Summary struct {
	RunID            string `json:"run_id"`
	Fetched          int    `json:"fetched"`
	Written          int    `json:"written"`
	SkippedDuplicate int    `json:"skipped_duplicate"`
	SkippedEmpty     int    `json:"skipped_empty"`
	NoRHR            int    `json:"no_rhr"`
	Failed           int    `json:"failed"`
	Exported         int    `json:"exported"`
}
