package extract

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/nikdata/oura-hrv/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func series(ts string, interval float64, items ...*float64) *internal.TimeSeries {
	return &internal.TimeSeries{Interval: interval, Items: items, Timestamp: ts}
}

func newExtractor(loc *time.Location) *Extractor {
	return New(loc, internal.NewNopLogger())
}

func TestExtract_HRVDropsZeroAndNull(t *testing.T) {
	s := internal.SleepSession{
		ID:        "s1",
		Day:       "2025-09-20",
		HRV:       series("2025-09-20T01:00:00-05:00", 300, f(42.5), f(0), nil, f(-3), f(38.1)),
		HeartRate: series("2025-09-20T01:00:00-05:00", 300, f(60)),
	}

	hrv, rhr, err := newExtractor(nil).Extract(s)
	require.NoError(t, err)
	require.NotNil(t, rhr)
	require.Len(t, hrv, 2)

	assert.Equal(t, 42.5, hrv[0].HRV)
	assert.Equal(t, "2025-09-20 01:00:00", hrv[0].DateReadable)
	assert.Equal(t, 38.1, hrv[1].HRV)
	assert.Equal(t, "2025-09-20 01:20:00", hrv[1].DateReadable)
	assert.Equal(t, hrv[0].Date+1200, hrv[1].Date)

	assert.Equal(t, "", hrv[0].Timezone)
	assert.Equal(t, "-0500", hrv[0].TimezoneOffset)
	assert.Equal(t, "ms", hrv[0].Unit)
	assert.Equal(t, "oura_ring_rmssd", hrv[0].Source)
	assert.Equal(t, "rMSSD", hrv[0].MeasurementType)
}

func TestExtract_RHRLastTieWins(t *testing.T) {
	s := internal.SleepSession{
		ID:        "s1",
		Day:       "2025-09-20",
		HeartRate: series("2025-09-20T01:00:00-05:00", 300, f(62), f(60), f(60), f(65)),
	}

	hrv, rhr, err := newExtractor(nil).Extract(s)
	require.NoError(t, err)
	assert.Empty(t, hrv)
	assert.NotNil(t, hrv)
	require.NotNil(t, rhr)

	assert.Equal(t, 60, rhr.RHR)
	assert.Equal(t, "2025-09-20 01:10:00", rhr.DateReadable)
	assert.Equal(t, "bpm", rhr.Unit)
	assert.Equal(t, "oura_ring_sleep", rhr.Source)
	assert.Equal(t, "lowest_heart_rate", rhr.MeasurementType)
}

func TestExtract_RHRRoundsHalfUp(t *testing.T) {
	s := internal.SleepSession{
		ID:        "s1",
		HeartRate: series("2025-09-20T01:00:00Z", 60, f(54.5), f(56)),
	}
	_, rhr, err := newExtractor(nil).Extract(s)
	require.NoError(t, err)
	assert.Equal(t, 55, rhr.RHR)
	assert.Equal(t, "UTC", rhr.Timezone)
	assert.Equal(t, "+0000", rhr.TimezoneOffset)
}

func TestExtract_NoHeartRate(t *testing.T) {
	cases := map[string]*internal.TimeSeries{
		"missing":  nil,
		"empty":    series("2025-09-20T01:00:00Z", 300),
		"all null": series("2025-09-20T01:00:00Z", 300, nil, f(0), nil, f(-3)),
	}
	for name, hr := range cases {
		t.Run(name, func(t *testing.T) {
			s := internal.SleepSession{
				ID:        "s1",
				HRV:       series("2025-09-20T01:00:00Z", 300, f(40)),
				HeartRate: hr,
			}
			hrv, rhr, err := newExtractor(nil).Extract(s)
			assert.True(t, errors.Is(err, internal.ErrNoHeartRate))
			assert.Nil(t, rhr)
			assert.Len(t, hrv, 1)
		})
	}
}

func TestExtract_BadTimestamp(t *testing.T) {
	s := internal.SleepSession{
		ID:  "s1",
		HRV: series("yesterday", 300, f(40)),
	}
	hrv, rhr, err := newExtractor(nil).Extract(s)
	require.Error(t, err)
	assert.Nil(t, hrv)
	assert.Nil(t, rhr)
}

func TestExtract_DSTFallBack(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// Clocks go from 02:00 CDT back to 01:00 CST at 07:00 UTC.
	s := internal.SleepSession{
		ID:        "s1",
		Day:       "2025-11-02",
		HRV:       series("2025-11-02T00:30:00-05:00", 3600, f(50), f(51), f(52), f(53)),
		HeartRate: series("2025-11-02T00:30:00-05:00", 3600, f(60), f(58), f(59), f(61)),
	}

	hrv, rhr, err := newExtractor(chicago).Extract(s)
	require.NoError(t, err)
	require.Len(t, hrv, 4)

	readable := []string{"2025-11-02 00:30:00", "2025-11-02 01:30:00", "2025-11-02 01:30:00", "2025-11-02 02:30:00"}
	zones := []string{"CDT", "CDT", "CST", "CST"}
	offsets := []string{"-0500", "-0500", "-0600", "-0600"}
	for i, r := range hrv {
		assert.Equal(t, readable[i], r.DateReadable, "sample %d", i)
		assert.Equal(t, zones[i], r.Timezone, "sample %d", i)
		assert.Equal(t, offsets[i], r.TimezoneOffset, "sample %d", i)
	}
	assert.Equal(t, int64(3600), hrv[2].Date-hrv[1].Date)

	require.NotNil(t, rhr)
	assert.Equal(t, 58, rhr.RHR)
	assert.Equal(t, "CDT", rhr.Timezone)
}

func TestGroupNights_SplitsAtLocalMidnight(t *testing.T) {
	sessions := []internal.SleepSession{{
		ID:        "s1",
		Day:       "2025-09-20",
		HRV:       series("2025-09-19T23:50:00-05:00", 600, f(40), f(41), f(42)),
		HeartRate: series("2025-09-19T23:50:00-05:00", 600, f(60), f(55), f(57)),
	}}

	nights, stats := newExtractor(nil).GroupNights(sessions)
	assert.Equal(t, Stats{}, stats)
	require.Len(t, nights, 2)

	assert.Equal(t, "2025-09-19", nights[0].Date)
	assert.Len(t, nights[0].HRV, 1)
	assert.Nil(t, nights[0].RHR)

	assert.Equal(t, "2025-09-20", nights[1].Date)
	assert.Len(t, nights[1].HRV, 2)
	require.NotNil(t, nights[1].RHR)
	assert.Equal(t, 55, nights[1].RHR.RHR)
}

func TestGroupNights_LowestRHRAcrossSessions(t *testing.T) {
	sessions := []internal.SleepSession{
		{
			ID:        "nap",
			Day:       "2025-09-20",
			HeartRate: series("2025-09-20T14:00:00-05:00", 300, f(58)),
		},
		{
			ID:        "night",
			Day:       "2025-09-20",
			HeartRate: series("2025-09-20T01:00:00-05:00", 300, f(61), f(54)),
		},
	}

	nights, _ := newExtractor(nil).GroupNights(sessions)
	require.Len(t, nights, 1)
	require.NotNil(t, nights[0].RHR)
	assert.Equal(t, 54, nights[0].RHR.RHR)
}

func TestGroupNights_CountsProblems(t *testing.T) {
	sessions := []internal.SleepSession{
		{ID: "no-hr", Day: "2025-09-20", HRV: series("2025-09-20T01:00:00Z", 300, f(40))},
		{ID: "broken", Day: "2025-09-21", HRV: series("bad", 300, f(40))},
	}

	nights, stats := newExtractor(nil).GroupNights(sessions)
	assert.Equal(t, Stats{NoRHR: 1, Failed: 1}, stats)
	require.Len(t, nights, 2)
	assert.Len(t, nights[0].HRV, 1)
	assert.Empty(t, nights[1].HRV)
	assert.Nil(t, nights[1].RHR)
}

func TestFixedZoneName(t *testing.T) {
	assert.Equal(t, "UTC", fixedZoneName(0))
	assert.Equal(t, "", fixedZoneName(-5*3600))
	assert.Equal(t, "", fixedZoneName(9*3600+1800))
}

func TestExtract_OffsetChangeWithoutLocation(t *testing.T) {
	s := internal.SleepSession{
		ID:           "s1",
		Day:          "2025-11-02",
		BedtimeStart: "2025-11-02T00:20:00-05:00",
		BedtimeEnd:   "2025-11-02T07:10:00-06:00",
		HRV:          series("2025-11-02T00:30:00-05:00", 3600, f(50), f(51), f(52), f(53)),
		HeartRate:    series("2025-11-02T00:30:00-05:00", 3600, f(60), f(58), f(59), f(61)),
	}

	hrv, rhr, err := newExtractor(nil).Extract(s)
	assert.ErrorIs(t, err, ErrOffsetChange)
	assert.Nil(t, hrv)
	assert.Nil(t, rhr)

	nights, stats := newExtractor(nil).GroupNights([]internal.SleepSession{s})
	assert.Equal(t, Stats{Failed: 1}, stats)
	require.Len(t, nights, 1)
	assert.Empty(t, nights[0].HRV)
	assert.Nil(t, nights[0].RHR)
}

func TestExtract_OffsetChangeWithLocation(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	s := internal.SleepSession{
		ID:           "s1",
		BedtimeStart: "2025-11-02T00:20:00-05:00",
		BedtimeEnd:   "2025-11-02T07:10:00-06:00",
		HRV:          series("2025-11-02T00:30:00-05:00", 3600, f(50), f(51), f(52), f(53)),
		HeartRate:    series("2025-11-02T00:30:00-05:00", 3600, f(60)),
	}

	hrv, _, err := newExtractor(chicago).Extract(s)
	require.NoError(t, err)
	require.Len(t, hrv, 4)
	assert.Equal(t, "-0600", hrv[3].TimezoneOffset)
}

func TestExtract_SameOffsetWithoutLocation(t *testing.T) {
	s := internal.SleepSession{
		ID:           "s1",
		BedtimeStart: "2025-09-19T23:04:12-05:00",
		BedtimeEnd:   "2025-09-20T06:50:00-05:00",
		HRV:          series("2025-09-19T23:04:12-05:00", 300, f(40)),
		HeartRate:    series("2025-09-19T23:04:12-05:00", 300, f(60)),
	}

	hrv, rhr, err := newExtractor(nil).Extract(s)
	require.NoError(t, err)
	assert.Len(t, hrv, 1)
	assert.NotNil(t, rhr)
}
