package value

import (
	"math"
	"strconv"
	"time"
)

// Date is a point in time with millisecond precision. An invalid date holds
// NaN. Calendar accessors operate in UTC.
type Date struct {
	Props
	ms float64
}

// NewDate returns a date at t.
func NewDate(t time.Time) *Date { return &Date{ms: float64(t.UnixMilli())} }

// DateFromMillis returns a date at ms milliseconds since the Unix epoch.
func DateFromMillis(ms float64) *Date { return &Date{ms: timeClip(ms)} }

func (d *Date) Kind() Kind { return KindDate }

// Millis returns the timestamp in milliseconds; NaN for an invalid date.
func (d *Date) Millis() float64 { return d.ms }

// Valid reports whether the date holds a timestamp.
func (d *Date) Valid() bool { return !math.IsNaN(d.ms) }

// Time returns the date as a time.Time in UTC; the zero time when invalid.
func (d *Date) Time() time.Time {
	if !d.Valid() {
		return time.Time{}
	}
	return time.UnixMilli(int64(d.ms)).UTC()
}

// SetMillis sets the timestamp and returns the clipped value.
func (d *Date) SetMillis(ms float64) float64 {
	d.ms = timeClip(ms)
	return d.ms
}

// ISOString renders the date like toISOString.
func (d *Date) ISOString() string {
	if !d.Valid() {
		return "Invalid Date"
	}
	return d.Time().Format("2006-01-02T15:04:05.000Z")
}

func (d *Date) String() string { return d.ISOString() }

// setFields rebuilds the timestamp from calendar fields; nil entries keep
// their current value.
func (d *Date) setFields(year, month, day, hour, min, sec, msec *int) float64 {
	if !d.Valid() {
		return d.ms
	}
	t := d.Time()
	pick := func(p *int, cur int) int {
		if p == nil {
			return cur
		}
		return *p
	}
	nt := time.Date(
		pick(year, t.Year()),
		time.Month(pick(month, int(t.Month())-1)+1),
		pick(day, t.Day()),
		pick(hour, t.Hour()),
		pick(min, t.Minute()),
		pick(sec, t.Second()),
		pick(msec, t.Nanosecond()/int(time.Millisecond))*int(time.Millisecond),
		time.UTC,
	)
	return d.SetMillis(float64(nt.UnixMilli()))
}

const maxTime = 8.64e15

func timeClip(ms float64) float64 {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxTime {
		return math.NaN()
	}
	return math.Trunc(ms)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func nanMillis() float64 { return math.NaN() }
