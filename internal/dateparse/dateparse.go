// Package dateparse recovers calendar dates from the free-text fragments
// found in draw-history pages, CSV cells and API payloads. Parsing is
// best-effort: every entry point reports "not found" instead of failing.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	minYear = 1900
	maxYear = 2100
)

// labelExpr strips a leading "draw date:"-style label before any grammar runs.
var labelExpr = regexp.MustCompile(`(?i)^\s*(draw\s*date|drawn\s*on|date|drawn|fecha)\s*[:\-]\s*`)

// Full-string grammars, tried in order. Day-first numeric layouts come before
// month-first ones; the embedded search below applies the opposite policy.
var layouts = []string{
	"2 Jan 2006",
	"2 January 2006",
	"02 Jan 2006",
	"02 January 2006",
	"2/1/2006",
	"02/01/2006",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"2-1-2006",
	"02-01-2006",
	"Monday 2 January 2006",
	"Mon 2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

var (
	numericExpr  = regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2,4})`)
	englishExpr  = regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)
	dayFirstExpr = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)?\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{4})`)
)

var monthIndex = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Parse attempts to read text as a calendar date. The boolean reports whether
// any grammar matched; callers treat false as "skip this record".
func Parse(text string) (time.Time, bool) {
	text = strings.TrimSpace(labelExpr.ReplaceAllString(text, ""))
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return midnight(parsed), true
		}
	}

	return Find(text)
}

// Find searches text for an embedded date substring: first a numeric D/M/Y
// shape with /, - or . separators, then an English "Month day, year" shape.
func Find(text string) (time.Time, bool) {
	for _, match := range numericExpr.FindAllStringSubmatch(text, -1) {
		a, _ := strconv.Atoi(match[1])
		b, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if year < 100 {
			year += 2000
		}
		if date, ok := Triple(a, b, year); ok {
			return date, true
		}
	}

	if match := englishExpr.FindStringSubmatch(text); match != nil {
		month := monthIndex[strings.ToLower(match[1][:3])]
		day, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if date, ok := calendarDate(year, int(month), day); ok {
			return date, true
		}
	}

	if match := dayFirstExpr.FindStringSubmatch(text); match != nil {
		day, _ := strconv.Atoi(match[1])
		month := monthIndex[strings.ToLower(match[2][:3])]
		year, _ := strconv.Atoi(match[3])
		if date, ok := calendarDate(year, int(month), day); ok {
			return date, true
		}
	}

	return time.Time{}, false
}

// Strip removes the first embedded date substring so that subsequent numeric
// token extraction does not mistake date fields for drawn balls.
func Strip(text string) string {
	for _, expr := range []*regexp.Regexp{numericExpr, dayFirstExpr, englishExpr} {
		if loc := expr.FindStringIndex(text); loc != nil {
			return text[:loc[0]] + " " + text[loc[1]:]
		}
	}
	return text
}

// Triple interprets two ambiguous fields plus a year as a date. Month-first
// is tried before day-first; this ordering is inherited source policy, not a
// correctness guarantee.
func Triple(a, b, year int) (time.Time, bool) {
	if date, ok := calendarDate(year, a, b); ok {
		return date, true
	}
	if date, ok := calendarDate(year, b, a); ok {
		return date, true
	}
	return time.Time{}, false
}

// calendarDate builds a midnight-UTC date and rejects syntactically plausible
// but non-existent values (month 13, Feb 30) via round-trip comparison.
func calendarDate(year, month, day int) (time.Time, bool) {
	if year < minYear || year > maxYear || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
