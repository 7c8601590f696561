package ids

import (
	"fmt"
	"time"
)

// LocalTime is a year/month/day/hour/minute/second plus a signed timezone
// offset, parsed and emitted as ISO 8601 with the offset appended, e.g.
// "2020-08-28T13:35:06+02:00". Ordering compares instants in
// UTC, independent of the two values' stated offsets.
type LocalTime struct {
	inner time.Time
}

// NewLocalTime constructs a LocalTime from its fields. offsetMinutes is the
// signed timezone offset from UTC, in minutes.
func NewLocalTime(year int, month time.Month, day, hour, minute, second, offsetMinutes int) LocalTime {
	loc := time.FixedZone(offsetName(offsetMinutes), offsetMinutes*60)
	return LocalTime{inner: time.Date(year, month, day, hour, minute, second, 0, loc)}
}

// Now returns the current local time in the given fixed offset; used by
// the write pipeline, which reads the clock once per write_xml call and
// threads the same LocalTime through every emitted IssueDate.
func Now(offsetMinutes int) LocalTime {
	n := time.Now()
	loc := time.FixedZone(offsetName(offsetMinutes), offsetMinutes*60)
	return LocalTime{inner: n.In(loc)}
}

func offsetName(offsetMinutes int) string {
	sign := "+"
	if offsetMinutes < 0 {
		sign = "-"
		offsetMinutes = -offsetMinutes
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}

// String renders ISO 8601 with the zone offset appended.
func (l LocalTime) String() string {
	return l.inner.Format("2006-01-02T15:04:05-07:00")
}

// ParseLocalTime parses the ISO 8601 form emitted by String.
func ParseLocalTime(s string) (LocalTime, error) {
	t, err := time.Parse("2006-01-02T15:04:05-07:00", s)
	if err != nil {
		// Fall back to RFC3339, which also accepts a "Z" offset and fractional seconds.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return LocalTime{}, fmt.Errorf("invalid local time %q: %w", s, err)
		}
	}
	return LocalTime{inner: t}, nil
}

// Before reports whether l is strictly before other, comparing instants in UTC.
func (l LocalTime) Before(other LocalTime) bool { return l.inner.Before(other.inner) }

// After reports whether l is strictly after other, comparing instants in UTC.
func (l LocalTime) After(other LocalTime) bool { return l.inner.After(other.inner) }

// Equal reports whether l and other denote the same instant, regardless of
// their stated offsets.
func (l LocalTime) Equal(other LocalTime) bool { return l.inner.Equal(other.inner) }

// Time exposes the underlying time.Time for callers that need interop with
// the standard library (e.g. certificate NotBefore/NotAfter comparisons).
func (l LocalTime) Time() time.Time { return l.inner }

// FromTime wraps a standard time.Time as a LocalTime, preserving its
// location as the stated offset.
func FromTime(t time.Time) LocalTime { return LocalTime{inner: t} }
