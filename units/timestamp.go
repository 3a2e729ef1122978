package units

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/fwojciec/webtools"
)

// TimestampRequest is the request body of the timestamp-converter tool.
// Value is either a Unix timestamp or a date string. Empty means now.
type TimestampRequest struct {
	Value    string `json:"value"`
	Unit     string `json:"unit"`
	Timezone string `json:"timezone"`
}

// TimestampResponse is the result of the timestamp-converter tool.
type TimestampResponse struct {
	UnixSeconds int64  `json:"unixSeconds"`
	UnixMillis  int64  `json:"unixMillis"`
	UTC         string `json:"utc"`
	Local       string `json:"local"`
	Timezone    string `json:"timezone"`
	Offset      string `json:"offset"`
	DayOfWeek   string `json:"dayOfWeek"`
	DayOfYear   int    `json:"dayOfYear"`
	ISOWeek     int    `json:"isoWeek"`
	Relative    string `json:"relative"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ConvertTimestamp converts between Unix time and calendar representations.
func (s *Service) ConvertTimestamp(_ context.Context, req TimestampRequest) (*TimestampResponse, error) {
	loc := time.UTC
	if req.Timezone != "" {
		l, err := time.LoadLocation(req.Timezone)
		if err != nil {
			return nil, webtools.Errorf(webtools.EINVALID, "unknown time zone %q", req.Timezone)
		}
		loc = l
	}

	now := s.Now()
	t, err := parseInstant(strings.TrimSpace(req.Value), req.Unit, loc, now)
	if err != nil {
		return nil, err
	}

	local := t.In(loc)
	_, week := local.ISOWeek()
	return &TimestampResponse{
		UnixSeconds: t.Unix(),
		UnixMillis:  t.UnixMilli(),
		UTC:         t.UTC().Format(time.RFC3339),
		Local:       local.Format(time.RFC3339),
		Timezone:    loc.String(),
		Offset:      local.Format("-07:00"),
		DayOfWeek:   local.Weekday().String(),
		DayOfYear:   local.YearDay(),
		ISOWeek:     week,
		Relative:    relative(t, now),
	}, nil
}

func parseInstant(value, unit string, loc *time.Location, now time.Time) (time.Time, error) {
	if value == "" {
		return now, nil
	}

	if n, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return time.Time{}, webtools.Errorf(webtools.EINVALID, "timestamp must be finite")
		}
		switch unit {
		case "":
			// Anything beyond year 33658 in seconds is taken as milliseconds.
			if math.Abs(n) >= 1e12 {
				return time.UnixMilli(int64(n)), nil
			}
			return unixFloat(n), nil
		case "s", "seconds":
			return unixFloat(n), nil
		case "ms", "milliseconds":
			return time.UnixMilli(int64(n)), nil
		default:
			return time.Time{}, webtools.Errorf(webtools.EINVALID, "unit must be s or ms, got %q", unit)
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, webtools.Errorf(webtools.EINVALID, "cannot parse %q as a timestamp or date", value)
}

func unixFloat(n float64) time.Time {
	sec, frac := math.Modf(n)
	return time.Unix(int64(sec), int64(frac*1e9))
}

func relative(t, now time.Time) string {
	d := now.Sub(t)
	suffix := "ago"
	if d < 0 {
		d = -d
		suffix = "from now"
	}
	var n int64
	var unit string
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		n, unit = int64(d/time.Minute), "minute"
	case d < 24*time.Hour:
		n, unit = int64(d/time.Hour), "hour"
	case d < 365*24*time.Hour:
		n, unit = int64(d/(24*time.Hour)), "day"
	default:
		n, unit = int64(d/(365*24*time.Hour)), "year"
	}
	if n != 1 {
		unit += "s"
	}
	return strconv.FormatInt(n, 10) + " " + unit + " " + suffix
}
