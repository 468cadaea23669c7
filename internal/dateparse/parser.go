// Package dateparse converts human-entered date expressions into canonical
// YYYY-MM-DD calendar dates and validates planning windows.
//
// Grammars are tried in a fixed priority order and the first one that matches
// decides the result:
//
//  1. canonical YYYY-MM-DD
//  2. relative expressions (today, tomorrow, yesterday, next week/month/year,
//     in N days/weeks/months)
//  3. ordinal day, month name, year ("20th June 2025")
//  4. month name, day, year ("June 20, 2025" or "June 20 2025")
//  5. numeric month/day/year ("6/20/2025")
//  6. numeric day-month-year ("20-06-2025")
//  7. day, month name, year ("20 June 2025")
//  8. dotted day.month.year ("20.06.2025")
package dateparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalLayout is the time layout of a canonical date.
const CanonicalLayout = "2006-01-02"

// MaxFutureDays is the planning horizon accepted by ValidateFuture.
const MaxFutureDays = 730

// Parsed dates always fall within the four-digit years of CanonicalLayout.
const (
	minYear = 1
	maxYear = 9999

	maxOffsetDays   = (maxYear - minYear + 1) * 366
	maxOffsetMonths = (maxYear - minYear + 1) * 12
)

var (
	// ErrRequired is returned for empty input.
	ErrRequired = errors.New("date input is required")
	// ErrUnrecognized is returned when no grammar matches the input.
	ErrUnrecognized = errors.New("could not parse date format")
	// ErrInvalidDate is returned when a grammar matched but the calendar date does not exist.
	ErrInvalidDate = errors.New("invalid date")
	// ErrFormat is returned by ValidateFuture for input that is not a canonical date.
	ErrFormat = errors.New("invalid date format")
	// ErrNotFuture is returned by ValidateFuture for today or earlier.
	ErrNotFuture = errors.New("date must be in the future")
	// ErrTooFar is returned by ValidateFuture beyond the planning horizon.
	ErrTooFar = errors.New("date is too far in the future")
)

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,

	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "jun": time.June, "jul": time.July,
	"aug": time.August, "sep": time.September, "oct": time.October,
	"nov": time.November, "dec": time.December,
}

var (
	canonicalPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	offsetPattern    = regexp.MustCompile(`^(?:in\s+)?(\d+)\s*(day|week|month)s?(?:\s+from\s+now)?$`)
	ordinalPattern   = regexp.MustCompile(`(\d{1,2})(st|nd|rd|th)\s+(\w+)\s+(\d{4})`)
	monthDayPattern  = regexp.MustCompile(`(\w+)\s+(\d{1,2}),?\s+(\d{4})`)
	slashPattern     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
	dashPattern      = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})`)
	dayMonthPattern  = regexp.MustCompile(`(\d{1,2})\s+(\w+)\s+(\d{4})`)
	dotPattern       = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})`)
)

// ParsedDate is a calendar date produced by the parser.
type ParsedDate struct {
	Year  int
	Month time.Month
	Day   int

	// Input is the original text the date was parsed from
	Input string
}

// String returns the canonical YYYY-MM-DD form.
func (d ParsedDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Parser parses date expressions. Relative expressions resolve against its clock.
type Parser struct {
	now func() time.Time
}

// New returns a Parser that reads the process clock.
func New() *Parser {
	return &Parser{now: time.Now}
}

// NewWithClock returns a Parser whose notion of "today" comes from now.
func NewWithClock(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// today returns the current calendar date as midnight UTC.
func (p *Parser) today() time.Time {
	n := p.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Parse converts input into a calendar date.
func (p *Parser) Parse(input string) (ParsedDate, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return ParsedDate{}, ErrRequired
	}
	lower := strings.ToLower(text)

	if canonicalPattern.MatchString(text) {
		t, err := time.Parse(CanonicalLayout, text)
		if err != nil {
			return ParsedDate{}, fmt.Errorf("%w: %s", ErrInvalidDate, text)
		}
		return fromTime(t, input)
	}

	if t, ok, err := p.parseRelative(lower); ok {
		if err != nil {
			return ParsedDate{}, err
		}
		return fromTime(t, input)
	}

	if m := ordinalPattern.FindStringSubmatch(lower); m != nil {
		if month, ok := monthNames[m[3]]; ok {
			return build(atoi(m[4]), month, atoi(m[1]), input)
		}
	}

	if m := monthDayPattern.FindStringSubmatch(lower); m != nil {
		if month, ok := monthNames[m[1]]; ok {
			return build(atoi(m[3]), month, atoi(m[2]), input)
		}
	}

	if m := slashPattern.FindStringSubmatch(text); m != nil {
		month, day := atoi(m[1]), atoi(m[2])
		if inRange(month, day) {
			return build(atoi(m[3]), time.Month(month), day, input)
		}
	}

	if m := dashPattern.FindStringSubmatch(text); m != nil {
		day, month := atoi(m[1]), atoi(m[2])
		if inRange(month, day) {
			return build(atoi(m[3]), time.Month(month), day, input)
		}
	}

	if m := dayMonthPattern.FindStringSubmatch(lower); m != nil {
		if month, ok := monthNames[m[2]]; ok {
			return build(atoi(m[3]), month, atoi(m[1]), input)
		}
	}

	if m := dotPattern.FindStringSubmatch(text); m != nil {
		day, month := atoi(m[1]), atoi(m[2])
		if inRange(month, day) {
			return build(atoi(m[3]), time.Month(month), day, input)
		}
	}

	return ParsedDate{}, fmt.Errorf("%w: '%s'. Supported formats: YYYY-MM-DD, '20th June 2025', 'June 20, 2025', 'next month', 'tomorrow', etc.", ErrUnrecognized, text)
}

// parseRelative resolves relative expressions. The input must already be lower-cased.
// ok reports whether a relative grammar matched; err is set when the offset is out of range.
func (p *Parser) parseRelative(lower string) (time.Time, bool, error) {
	today := p.today()

	switch lower {
	case "today":
		return today, true, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), true, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), true, nil
	case "next week":
		return today.AddDate(0, 0, 7), true, nil
	case "next month":
		// First day of the following month, not the same day next month.
		return time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC), true, nil
	case "next year":
		return addMonthsClamped(today, 12), true, nil
	}

	m := offsetPattern.FindStringSubmatch(lower)
	if m == nil {
		return time.Time{}, false, nil
	}
	outOfRange := fmt.Errorf("%w: offset %s %ss is out of range", ErrInvalidDate, m[1], m[2])

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, true, outOfRange
	}
	switch m[2] {
	case "day":
		if n > maxOffsetDays {
			return time.Time{}, true, outOfRange
		}
		return today.AddDate(0, 0, n), true, nil
	case "week":
		if n > maxOffsetDays/7 {
			return time.Time{}, true, outOfRange
		}
		return today.AddDate(0, 0, 7*n), true, nil
	default:
		if n > maxOffsetMonths {
			return time.Time{}, true, outOfRange
		}
		return addMonthsClamped(today, n), true, nil
	}
}

// ValidateFuture checks that canonical is a YYYY-MM-DD date after today
// (unless allowPast) and no more than MaxFutureDays ahead.
func (p *Parser) ValidateFuture(canonical string, allowPast bool) error {
	t, err := time.Parse(CanonicalLayout, strings.TrimSpace(canonical))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFormat, canonical)
	}

	today := p.today()
	if !allowPast && !t.After(today) {
		return fmt.Errorf("%w: %s", ErrNotFuture, canonical)
	}
	if t.After(today.AddDate(0, 0, MaxFutureDays)) {
		return fmt.Errorf("%w: %s (max 2 years from today)", ErrTooFar, canonical)
	}
	return nil
}

// ParseDate parses text with the process clock and reports the result as
// (ok, canonical, error message). On failure canonical holds the original text.
func ParseDate(text string) (bool, string, string) {
	d, err := New().Parse(text)
	if err != nil {
		return false, text, err.Error()
	}
	return true, d.String(), ""
}

// addMonthsClamped adds n months, clamping the day to the last day of the target month.
func addMonthsClamped(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := t.Day()
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// build constructs a date, rejecting values the calendar does not have.
func build(year int, month time.Month, day int, input string) (ParsedDate, error) {
	if year < minYear || year > maxYear {
		return ParsedDate{}, fmt.Errorf("%w: year must be in %d..%d", ErrInvalidDate, minYear, maxYear)
	}
	if month < time.January || month > time.December {
		return ParsedDate{}, fmt.Errorf("%w: month must be in 1..12", ErrInvalidDate)
	}
	if day < 1 || day > daysIn(year, month) {
		return ParsedDate{}, fmt.Errorf("%w: day is out of range for month", ErrInvalidDate)
	}
	return ParsedDate{Year: year, Month: month, Day: day, Input: input}, nil
}

func fromTime(t time.Time, input string) (ParsedDate, error) {
	if t.Year() < minYear || t.Year() > maxYear {
		return ParsedDate{}, fmt.Errorf("%w: year must be in %d..%d", ErrInvalidDate, minYear, maxYear)
	}
	return ParsedDate{Year: t.Year(), Month: t.Month(), Day: t.Day(), Input: input}, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func inRange(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
