package ids

import (
	"fmt"
	"strconv"
	"strings"
)

// InteropTicksPerSecond is the tick rate Interop assets use by convention.
const InteropTicksPerSecond = 250

// Time is a four-field (hours, minutes, seconds, ticks) timestamp with a
// per-instance ticks-per-second rate (TCR). Interop assets fix TCR at 250;
// SMPTE text assets carry a declared TCR, often 24, 25, 48, or 1000.
type Time struct {
	Hours            int
	Minutes          int
	Seconds          int
	Ticks            int
	TicksPerSecond   int
}

// New validates field ranges and constructs a Time.
func New(hours, minutes, seconds, ticks, ticksPerSecond int) (Time, error) {
	if ticksPerSecond <= 0 {
		return Time{}, fmt.Errorf("ticks-per-second must be positive, got %d", ticksPerSecond)
	}
	if minutes < 0 || minutes > 59 {
		return Time{}, fmt.Errorf("minutes out of range: %d", minutes)
	}
	if seconds < 0 || seconds > 59 {
		return Time{}, fmt.Errorf("seconds out of range: %d", seconds)
	}
	if ticks < 0 || ticks >= ticksPerSecond {
		return Time{}, fmt.Errorf("ticks out of range for TCR %d: %d", ticksPerSecond, ticks)
	}
	if hours < 0 {
		return Time{}, fmt.Errorf("hours must not be negative: %d", hours)
	}
	return Time{Hours: hours, Minutes: minutes, Seconds: seconds, Ticks: ticks, TicksPerSecond: ticksPerSecond}, nil
}

// Zero returns the zero Time at the given tick rate.
func Zero(ticksPerSecond int) Time {
	t, _ := New(0, 0, 0, 0, ticksPerSecond)
	return t
}

// TotalTicks returns the time expressed as a single tick count at this
// Time's own TCR.
func (t Time) TotalTicks() int64 {
	return (int64(t.Hours)*3600+int64(t.Minutes)*60+int64(t.Seconds))*int64(t.TicksPerSecond) + int64(t.Ticks)
}

func fromTotalTicks(total int64, ticksPerSecond int) Time {
	tps := int64(ticksPerSecond)
	ticks := total % tps
	totalSeconds := total / tps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return Time{Hours: int(hours), Minutes: int(minutes), Seconds: int(seconds), Ticks: int(ticks), TicksPerSecond: ticksPerSecond}
}

// Add returns t+other. Both must share a TCR.
func (t Time) Add(other Time) (Time, error) {
	if t.TicksPerSecond != other.TicksPerSecond {
		return Time{}, fmt.Errorf("cannot add times with differing tick rates: %d vs %d", t.TicksPerSecond, other.TicksPerSecond)
	}
	return fromTotalTicks(t.TotalTicks()+other.TotalTicks(), t.TicksPerSecond), nil
}

// Sub returns t-other. Both must share a TCR; the result may be negative,
// represented with Hours/Minutes/Seconds/Ticks all derived from a negative
// total tick count (callers needing a non-negative duration should check
// Compare first).
func (t Time) Sub(other Time) (Time, error) {
	if t.TicksPerSecond != other.TicksPerSecond {
		return Time{}, fmt.Errorf("cannot subtract times with differing tick rates: %d vs %d", t.TicksPerSecond, other.TicksPerSecond)
	}
	return fromTotalTicks(t.TotalTicks()-other.TotalTicks(), t.TicksPerSecond), nil
}

// Compare returns -1, 0, or 1 as t is less than, equal to, or greater than
// other, comparing at a common tick rate via cross multiplication.
func (t Time) Compare(other Time) int {
	lt := t.TotalTicks() * int64(other.TicksPerSecond)
	rt := other.TotalTicks() * int64(t.TicksPerSecond)
	switch {
	case lt < rt:
		return -1
	case lt > rt:
		return 1
	default:
		return 0
	}
}

// AsEditableUnitsFloor converts t to a frame count at editRate, rounding
// toward zero (floor).
func (t Time) AsEditableUnitsFloor(editRate Fraction) int64 {
	num := t.TotalTicks() * int64(editRate.Numerator)
	den := int64(t.TicksPerSecond) * int64(editRate.Denominator)
	return num / den
}

// AsEditableUnitsCeil converts t to a frame count at editRate, rounding up.
func (t Time) AsEditableUnitsCeil(editRate Fraction) int64 {
	num := t.TotalTicks() * int64(editRate.Numerator)
	den := int64(t.TicksPerSecond) * int64(editRate.Denominator)
	if num%den == 0 {
		return num / den
	}
	return num/den + 1
}

// FormatInterop renders "HH:MM:SS:ttt" — Interop's fixed 3-digit tick field.
func (t Time) FormatInterop() string {
	return fmt.Sprintf("%02d:%02d:%02d:%03d", t.Hours, t.Minutes, t.Seconds, t.Ticks)
}

// ParseInterop parses "HH:MM:SS:ttt" at the fixed Interop TCR of 250.
func ParseInterop(s string) (Time, error) {
	return parseColonQuad(s, InteropTicksPerSecond)
}

// FormatSMPTE renders "HH:MM:SS:FF", where FF is the frame/tick count
// within the declared TimeCodeRate (carried out of band as TicksPerSecond).
func (t Time) FormatSMPTE() string {
	width := len(strconv.Itoa(t.TicksPerSecond - 1))
	if width < 2 {
		width = 2
	}
	return fmt.Sprintf("%02d:%02d:%02d:%0*d", t.Hours, t.Minutes, t.Seconds, width, t.Ticks)
}

// ParseSMPTE parses "HH:MM:SS:FF" at the given declared TimeCodeRate.
func ParseSMPTE(s string, ticksPerSecond int) (Time, error) {
	return parseColonQuad(s, ticksPerSecond)
}

func parseColonQuad(s string, ticksPerSecond int) (Time, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 4 {
		return Time{}, fmt.Errorf("invalid time %q: expected HH:MM:SS:tt", s)
	}
	nums := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Time{}, fmt.Errorf("invalid time %q: %w", s, err)
		}
		nums[i] = n
	}
	return New(nums[0], nums[1], nums[2], nums[3], ticksPerSecond)
}

// IsZero reports whether t is 00:00:00:000 at its own TCR, the required
// start time for SMPTE timed text.
func (t Time) IsZero() bool {
	return t.Hours == 0 && t.Minutes == 0 && t.Seconds == 0 && t.Ticks == 0
}
