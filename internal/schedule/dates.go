package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnparsableDate marks syllabus date text the normalizer could not read.
// Callers skip the offending record and keep going; it is never fatal.
var ErrUnparsableDate = errors.New("unparsable date")

// Month names as they appear in extracted syllabi. Matching is
// case-sensitive on purpose: the extraction prompt pins the format.
var monthNumbers = map[string]time.Month{
	"Jan": time.January, "January": time.January,
	"Feb": time.February, "February": time.February,
	"Mar": time.March, "March": time.March,
	"Apr": time.April, "April": time.April,
	"May": time.May,
	"Jun": time.June, "June": time.June,
	"Jul": time.July, "July": time.July,
	"Aug": time.August, "August": time.August,
	"Sep": time.September, "Sept": time.September, "September": time.September,
	"Oct": time.October, "October": time.October,
	"Nov": time.November, "November": time.November,
	"Dec": time.December, "December": time.December,
}

// ParseDate reads strings like "Sep 29" or "October 4" into a calendar date
// in the given reference year. Terms spanning a year boundary are not
// handled; the year is always the reference year.
func ParseDate(text string, year int) (time.Time, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableDate, text)
	}
	month, ok := monthNumbers[parts[0]]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown month in %q", ErrUnparsableDate, text)
	}
	day, err := strconv.Atoi(strings.TrimPrefix(parts[1], "0"))
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: bad day in %q", ErrUnparsableDate, text)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// DateRange is an inclusive start / exclusive-use end pair of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseRange reads "Oct 20 - Oct 25" into a range, or a single "Oct 20"
// into a one-day range.
func ParseRange(text string, year int) (DateRange, error) {
	sides := strings.SplitN(text, "-", 2)
	start, err := ParseDate(sides[0], year)
	if err != nil {
		return DateRange{}, err
	}
	if len(sides) == 1 {
		return DateRange{Start: start, End: start}, nil
	}
	end, err := ParseDate(sides[1], year)
	if err != nil {
		return DateRange{}, err
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%w: range end before start in %q", ErrUnparsableDate, text)
	}
	return DateRange{Start: start, End: end}, nil
}
