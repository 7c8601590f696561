package ids

import (
	"fmt"
	"strconv"
	"strings"
)

// Fraction is a non-zero numerator/denominator pair representing an edit
// rate (e.g. 24/1, 25/1, 48/1). The pair is stored as given, never
// normalized: the on-wire form must survive a
// round trip unchanged.
type Fraction struct {
	Numerator   int
	Denominator int
}

// NewFraction constructs a Fraction, rejecting a zero denominator.
func NewFraction(numerator, denominator int) (Fraction, error) {
	if denominator == 0 {
		return Fraction{}, fmt.Errorf("fraction denominator must not be zero")
	}
	return Fraction{Numerator: numerator, Denominator: denominator}, nil
}

// String renders "N/D", the form used in EditRate XML elements.
func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// ParseFraction parses either the space-separated "N D" form or "N/D".
func ParseFraction(s string) (Fraction, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) != 2 {
		// Some writers separate with '/' and no space; accept both.
		parts = strings.SplitN(strings.TrimSpace(s), "/", 2)
	}
	if len(parts) != 2 {
		return Fraction{}, fmt.Errorf("invalid fraction %q", s)
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return Fraction{}, fmt.Errorf("invalid fraction numerator in %q: %w", s, err)
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil {
		return Fraction{}, fmt.Errorf("invalid fraction denominator in %q: %w", s, err)
	}
	return NewFraction(n, d)
}

// AsFloat returns the fraction's floating-point value.
func (f Fraction) AsFloat() float64 {
	return float64(f.Numerator) / float64(f.Denominator)
}

// Equal reports whether two fractions represent the same value, using
// cross multiplication rather than floating-point comparison.
func (f Fraction) Equal(other Fraction) bool {
	return int64(f.Numerator)*int64(other.Denominator) == int64(other.Numerator)*int64(f.Denominator)
}

// LessThan reports whether f < other, via cross multiplication. Both
// denominators are assumed positive (edit rates never carry a negative
// denominator in practice).
func (f Fraction) LessThan(other Fraction) bool {
	return int64(f.Numerator)*int64(other.Denominator) < int64(other.Numerator)*int64(f.Denominator)
}
