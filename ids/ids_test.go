package ids

import "testing"

func TestIdentifierURNRoundTrip(t *testing.T) {
	src := RandomSource{}
	id := src.New()

	parsed, err := Parse(id.URN())
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", id.URN(), err)
	}
	if !parsed.Equal(id) {
		t.Fatalf("round trip mismatch: %s != %s", parsed, id)
	}

	parsedBare, err := Parse(id.String())
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", id.String(), err)
	}
	if !parsedBare.Equal(id) {
		t.Fatal("bare-form round trip mismatch")
	}
}

func TestDeterministicSourceIsReproducible(t *testing.T) {
	a := NewDeterministic()
	b := NewDeterministic()

	for i := 0; i < 5; i++ {
		ai, bi := a.New(), b.New()
		if !ai.Equal(bi) {
			t.Fatalf("deterministic sources diverged at index %d: %s != %s", i, ai, bi)
		}
	}
}

func TestFractionEqualityIgnoresNormalization(t *testing.T) {
	a, _ := NewFraction(24, 1)
	b, _ := NewFraction(48, 2)
	if !a.Equal(b) {
		t.Fatal("expected cross-multiplied equality to hold")
	}
	if a.String() == b.String() {
		t.Fatal("expected unnormalized string forms to differ")
	}
}

func TestFractionParseRoundTrip(t *testing.T) {
	f, err := ParseFraction("24/1")
	if err != nil {
		t.Fatalf("ParseFraction failed: %v", err)
	}
	if f.String() != "24/1" {
		t.Errorf("got %s, want 24/1", f)
	}
}

func TestFractionRejectsZeroDenominator(t *testing.T) {
	if _, err := NewFraction(24, 0); err == nil {
		t.Fatal("expected error for zero denominator")
	}
}

func TestTimeInteropRoundTrip(t *testing.T) {
	tm, err := New(1, 2, 3, 125, InteropTicksPerSecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s := tm.FormatInterop()
	if s != "01:02:03:125" {
		t.Fatalf("got %s", s)
	}
	parsed, err := ParseInterop(s)
	if err != nil {
		t.Fatalf("ParseInterop failed: %v", err)
	}
	if parsed.Compare(tm) != 0 {
		t.Fatal("round trip mismatch")
	}
}

func TestTimeAsEditableUnits(t *testing.T) {
	tm, _ := New(0, 0, 1, 0, InteropTicksPerSecond) // exactly 1 second
	rate, _ := NewFraction(24, 1)

	if got := tm.AsEditableUnitsFloor(rate); got != 24 {
		t.Errorf("floor: got %d, want 24", got)
	}
	if got := tm.AsEditableUnitsCeil(rate); got != 24 {
		t.Errorf("ceil: got %d, want 24", got)
	}

	partial, _ := New(0, 0, 1, 1, InteropTicksPerSecond) // 1s + 1 tick (1/250s)
	if got := partial.AsEditableUnitsFloor(rate); got != 24 {
		t.Errorf("floor with remainder: got %d, want 24", got)
	}
	if got := partial.AsEditableUnitsCeil(rate); got != 25 {
		t.Errorf("ceil with remainder: got %d, want 25", got)
	}
}

func TestTimeRejectsOutOfRangeFields(t *testing.T) {
	if _, err := New(0, 60, 0, 0, InteropTicksPerSecond); err == nil {
		t.Fatal("expected error for minutes == 60")
	}
	if _, err := New(0, 0, 0, InteropTicksPerSecond, InteropTicksPerSecond); err == nil {
		t.Fatal("expected error for ticks == TCR")
	}
}

func TestTimeSMPTERoundTrip(t *testing.T) {
	tm, err := New(0, 10, 20, 12, 24)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s := tm.FormatSMPTE()
	parsed, err := ParseSMPTE(s, 24)
	if err != nil {
		t.Fatalf("ParseSMPTE(%q) failed: %v", s, err)
	}
	if parsed.Compare(tm) != 0 {
		t.Fatalf("round trip mismatch for %q", s)
	}
}

func TestLocalTimeStringAppendsOffset(t *testing.T) {
	lt := NewLocalTime(2020, 8, 28, 13, 35, 6, 120)
	s := lt.String()
	if s != "2020-08-28T13:35:06+02:00" {
		t.Fatalf("got %s", s)
	}
	parsed, err := ParseLocalTime(s)
	if err != nil {
		t.Fatalf("ParseLocalTime failed: %v", err)
	}
	if !parsed.Equal(lt) {
		t.Fatal("round trip mismatch")
	}
}

func TestLocalTimeOrderingComparesInstants(t *testing.T) {
	a := NewLocalTime(2020, 1, 1, 12, 0, 0, 0)   // 12:00 UTC
	b := NewLocalTime(2020, 1, 1, 13, 0, 0, 60)  // 13:00+01:00 == 12:00 UTC
	if !a.Equal(b) {
		t.Fatal("expected instants to be equal across differing offsets")
	}

	c := NewLocalTime(2020, 1, 1, 13, 1, 0, 60) // slightly later
	if !a.Before(c) {
		t.Fatal("expected a before c")
	}
}
