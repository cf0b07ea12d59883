// Package extract turns raw sleep sessions into HRV and resting heart rate
// readings and groups them into nights.
package extract

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nikdata/oura-hrv/internal"
)

const (
	hrvUnit            = "ms"
	hrvSource          = "oura_ring_rmssd"
	hrvMeasurementType = "rMSSD"

	rhrUnit            = "bpm"
	rhrSource          = "oura_ring_sleep"
	rhrMeasurementType = "lowest_heart_rate"
)

// ErrOffsetChange marks a session whose bedtime start and end carry different
// UTC offsets while no Location is configured. The offset of each sample
// cannot be known, so the session is not extracted.
var ErrOffsetChange = errors.New("utc offset changes during session, set TIMEZONE")

// Extractor renders sample times in Location. With a nil Location each sample
// keeps the fixed UTC offset of its series timestamp, which is only correct
// when the session does not cross an offset change.
type Extractor struct {
	Location *time.Location
	logger   internal.Logger
}

func New(loc *time.Location, logger internal.Logger) *Extractor {
	return &Extractor{Location: loc, logger: logger}
}

// Extract derives the HRV series and the resting heart rate of one session.
// The returned error is internal.ErrNoHeartRate when the session has no usable
// heart-rate samples; the HRV readings are still valid in that case.
func (e *Extractor) Extract(s internal.SleepSession) ([]internal.HRVReading, *internal.RHRReading, error) {
	if e.Location == nil && crossesOffsetChange(s) {
		return nil, nil, fmt.Errorf("session %s: %w", s.ID, ErrOffsetChange)
	}
	hrv, err := e.extractHRV(s.HRV)
	if err != nil {
		return nil, nil, fmt.Errorf("session %s hrv: %w", s.ID, err)
	}
	rhr, err := e.extractRHR(s.HeartRate)
	if err != nil {
		return hrv, nil, fmt.Errorf("session %s heart rate: %w", s.ID, err)
	}
	return hrv, rhr, nil
}

func (e *Extractor) extractHRV(ts *internal.TimeSeries) ([]internal.HRVReading, error) {
	if ts == nil || len(ts.Items) == 0 {
		return []internal.HRVReading{}, nil
	}
	start, err := parseSeriesStart(ts)
	if err != nil {
		return nil, err
	}

	out := make([]internal.HRVReading, 0, len(ts.Items))
	for i, v := range ts.Items {
		if v == nil || *v <= 0 {
			continue
		}
		t := e.sampleTime(start, ts.Interval, i)
		stamp := stampOf(t)
		out = append(out, internal.HRVReading{
			Date:            stamp.epoch,
			DateReadable:    stamp.readable,
			Timezone:        stamp.zone,
			TimezoneOffset:  stamp.offset,
			HRV:             *v,
			Unit:            hrvUnit,
			Source:          hrvSource,
			MeasurementType: hrvMeasurementType,
		})
	}
	return out, nil
}

// extractRHR picks the lowest positive sample. On ties the last one wins: a
// sustained low reads as rest, an early dip does not.
func (e *Extractor) extractRHR(ts *internal.TimeSeries) (*internal.RHRReading, error) {
	if ts == nil || len(ts.Items) == 0 {
		return nil, internal.ErrNoHeartRate
	}
	idx := -1
	var lowest float64
	for i, v := range ts.Items {
		if v == nil || *v <= 0 {
			continue
		}
		if idx == -1 || *v <= lowest {
			idx, lowest = i, *v
		}
	}
	if idx == -1 {
		return nil, internal.ErrNoHeartRate
	}

	start, err := parseSeriesStart(ts)
	if err != nil {
		return nil, err
	}
	stamp := stampOf(e.sampleTime(start, ts.Interval, idx))
	return &internal.RHRReading{
		Date:            stamp.epoch,
		DateReadable:    stamp.readable,
		Timezone:        stamp.zone,
		TimezoneOffset:  stamp.offset,
		RHR:             int(lowest + 0.5),
		Unit:            rhrUnit,
		Source:          rhrSource,
		MeasurementType: rhrMeasurementType,
	}, nil
}

// sampleTime computes the absolute instant first and only then picks the zone,
// so a series crossing a DST change gets the right offset per sample.
func (e *Extractor) sampleTime(start time.Time, interval float64, i int) time.Time {
	t := start.Add(time.Duration(float64(i) * interval * float64(time.Second)))
	if e.Location != nil {
		return t.In(e.Location)
	}
	return t
}

// Stats counts the per-session problems GroupNights recovered from.
type Stats struct {
	NoRHR  int
	Failed int
}

// GroupNights extracts every session and groups the readings by the local
// calendar date of each reading. Every session day gets a night, even an
// empty one. Nights come back in date order.
func (e *Extractor) GroupNights(sessions []internal.SleepSession) ([]internal.Night, Stats) {
	var stats Stats
	nights := make(map[string]*internal.Night)
	night := func(date string) *internal.Night {
		n, ok := nights[date]
		if !ok {
			n = &internal.Night{Date: date, HRV: []internal.HRVReading{}}
			nights[date] = n
		}
		return n
	}

	for _, s := range sessions {
		if s.Day != "" {
			night(s.Day)
		}
		hrv, rhr, err := e.Extract(s)
		switch {
		case err == nil:
		case hrv == nil:
			e.logger.Warnf("extract: skipping session %s (%s): %v", s.ID, s.Day, err)
			stats.Failed++
			continue
		case errors.Is(err, internal.ErrNoHeartRate):
			e.logger.Infof("extract: no RHR available for %s", s.Day)
			stats.NoRHR++
		default:
			e.logger.Warnf("extract: no RHR for session %s (%s): %v", s.ID, s.Day, err)
			stats.Failed++
		}
		for _, r := range hrv {
			n := night(r.DateReadable[:len(internal.DateLayout)])
			n.HRV = append(n.HRV, r)
		}
		if rhr != nil {
			n := night(rhr.DateReadable[:len(internal.DateLayout)])
			if n.RHR == nil || rhr.RHR < n.RHR.RHR || (rhr.RHR == n.RHR.RHR && rhr.Date >= n.RHR.Date) {
				n.RHR = rhr
			}
		}
	}

	out := make([]internal.Night, 0, len(nights))
	for _, n := range nights {
		sort.SliceStable(n.HRV, func(i, j int) bool { return n.HRV[i].Date < n.HRV[j].Date })
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, stats
}

// crossesOffsetChange reports whether bedtime start and end disagree on the
// UTC offset. Missing or unparsable bedtimes count as no change.
func crossesOffsetChange(s internal.SleepSession) bool {
	start, err := time.Parse(time.RFC3339, s.BedtimeStart)
	if err != nil {
		return false
	}
	end, err := time.Parse(time.RFC3339, s.BedtimeEnd)
	if err != nil {
		return false
	}
	_, startOff := start.Zone()
	_, endOff := end.Zone()
	return startOff != endOff
}

func parseSeriesStart(ts *internal.TimeSeries) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, ts.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad series timestamp %q: %w", ts.Timestamp, err)
	}
	if ts.Interval <= 0 {
		return time.Time{}, fmt.Errorf("bad series interval %v", ts.Interval)
	}
	// Pin the parsed offset so the zone name does not depend on the host's
	// local zone.
	_, off := t.Zone()
	return t.In(time.FixedZone(fixedZoneName(off), off)), nil
}

type stamp struct {
	epoch    int64
	readable string
	zone     string
	offset   string
}

func stampOf(t time.Time) stamp {
	name, _ := t.Zone()
	return stamp{
		epoch:    t.Unix(),
		readable: t.Format(internal.ReadableLayout),
		zone:     name,
		offset:   t.Format("-0700"),
	}
}

// fixedZoneName is the abbreviation written for a bare offset: UTC for zero,
// otherwise empty, as an offset alone names no zone.
func fixedZoneName(offset int) string {
	if offset == 0 {
		return "UTC"
	}
	return ""
}
