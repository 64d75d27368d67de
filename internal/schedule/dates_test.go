package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateRoundTrip(t *testing.T) {
	cases := []struct {
		text  string
		month time.Month
		day   int
	}{
		{"Jan 5", time.January, 5},
		{"Feb 28", time.February, 28},
		{"Mar 01", time.March, 1},
		{"Apr 30", time.April, 30},
		{"May 15", time.May, 15},
		{"Jun 9", time.June, 9},
		{"Jul 4", time.July, 4},
		{"Aug 31", time.August, 31},
		{"Sep 29", time.September, 29},
		{"Sept 22", time.September, 22},
		{"September 22", time.September, 22},
		{"Oct 25", time.October, 25},
		{"Nov 25", time.November, 25},
		{"Dec 12", time.December, 12},
		{"  Oct 3  ", time.October, 3},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, err := ParseDate(tc.text, 2024)
			if err != nil {
				t.Fatalf("ParseDate(%q) error: %v", tc.text, err)
			}
			if got.Year() != 2024 || got.Month() != tc.month || got.Day() != tc.day {
				t.Fatalf("ParseDate(%q) = %v, want 2024-%d-%d", tc.text, got, tc.month, tc.day)
			}
		})
	}
}

func TestParseDateFailures(t *testing.T) {
	cases := []string{
		"",
		"Oct",
		"Octember 5",
		"oct 5",
		"Oct five",
		"Oct 0",
		"Oct 40",
		"Oct 5 extra",
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			if _, err := ParseDate(text, 2024); !errors.Is(err, ErrUnparsableDate) {
				t.Fatalf("ParseDate(%q) err = %v, want ErrUnparsableDate", text, err)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("Oct 20 - Oct 25", 2024)
	if err != nil {
		t.Fatalf("ParseRange error: %v", err)
	}
	if r.Start.Day() != 20 || r.End.Day() != 25 || r.Start.Month() != time.October {
		t.Fatalf("ParseRange = %+v", r)
	}

	single, err := ParseRange("Jun 15", 2024)
	if err != nil {
		t.Fatalf("ParseRange single error: %v", err)
	}
	if !single.Start.Equal(single.End) {
		t.Fatalf("single-date range should collapse, got %+v", single)
	}

	if _, err := ParseRange("Oct 25 - Oct 20", 2024); !errors.Is(err, ErrUnparsableDate) {
		t.Fatalf("reversed range err = %v, want ErrUnparsableDate", err)
	}
}
