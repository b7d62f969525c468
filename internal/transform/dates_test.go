package transform

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestParseDateSafeSupportedFormats(t *testing.T) {
	cases := []struct {
		input string
		want  time.Time
	}{
		{"2024/01/15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"15-01-2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got := ParseDateSafe(strPtr(tc.input))
		if got == nil {
			t.Fatalf("expected %q to parse, got nil", tc.input)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("parsed %q to %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseDateSafeDayMonthOrder(t *testing.T) {
	// DD-MM-YYYY comes before any month-first interpretation.
	got := ParseDateSafe(strPtr("02-03-2024"))
	if got == nil {
		t.Fatalf("expected parse to succeed")
	}
	want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected day-first parse %v, got %v", want, got)
	}
}

func TestParseDateSafeUnparseable(t *testing.T) {
	for _, input := range []string{"not a date", "2024-13-45", "15/01/2024"} {
		if got := ParseDateSafe(strPtr(input)); got != nil {
			t.Fatalf("expected %q to return nil, got %v", input, got)
		}
	}
}

func TestParseDateSafeNilAndEmpty(t *testing.T) {
	if got := ParseDateSafe(nil); got != nil {
		t.Fatalf("expected nil input to return nil, got %v", got)
	}
	if got := ParseDateSafe(strPtr("")); got != nil {
		t.Fatalf("expected empty input to return nil, got %v", got)
	}
	if got := ParseDateSafe(strPtr("   ")); got != nil {
		t.Fatalf("expected blank input to return nil, got %v", got)
	}
}
