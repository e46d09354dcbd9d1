package dateparse

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseGrammars(t *testing.T) {
	t.Parallel()

	cases := map[string]time.Time{
		"14 Mar 2024":             date(2024, time.March, 14),
		"14 March 2024":           date(2024, time.March, 14),
		"14/03/2024":              date(2024, time.March, 14),
		"03/14/2024":              date(2024, time.March, 14),
		"2024-03-14":              date(2024, time.March, 14),
		"Sat 14 Jun 2025":         date(2025, time.June, 14),
		"Saturday 14 June 2025":   date(2025, time.June, 14),
		"March 14, 2024":          date(2024, time.March, 14),
		"Draw Date: 14 Mar 2024":  date(2024, time.March, 14),
		"fecha: 14/03/2024":       date(2024, time.March, 14),
		"results for 5.6.2021 ok": date(2021, time.May, 6),
	}

	for input, want := range cases {
		got, ok := Parse(input)
		if !ok {
			t.Fatalf("Parse(%q) reported not found", input)
		}
		if !got.Equal(want) {
			t.Fatalf("Parse(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseNotFound(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "no date here", "99/99/9999", "14/13/2025 only"} {
		if _, ok := Parse(input); ok {
			t.Fatalf("Parse(%q) unexpectedly matched", input)
		}
	}
}

func TestFindEmbedded(t *testing.T) {
	t.Parallel()

	got, ok := Find("Draw #1024 held 14-03-2024 with jackpot rollover")
	if !ok || !got.Equal(date(2024, time.March, 14)) {
		t.Fatalf("embedded numeric: got %v ok=%v", got, ok)
	}

	got, ok = Find("Results published on June 14th, 2025 at noon")
	if !ok || !got.Equal(date(2025, time.June, 14)) {
		t.Fatalf("embedded english: got %v ok=%v", got, ok)
	}
}

func TestFindDayFirstEnglish(t *testing.T) {
	t.Parallel()

	got, ok := Find("Lotto results for Sat 14 Jun 2025: 5 12 23 31 40 44")
	if !ok || !got.Equal(date(2025, time.June, 14)) {
		t.Fatalf("day-first english: got %v ok=%v", got, ok)
	}
}

func TestStrip(t *testing.T) {
	t.Parallel()

	got := Strip("Draw 14/03/2024 balls 5 12 23")
	if got != "Draw   balls 5 12 23" {
		t.Fatalf("unexpected strip result: %q", got)
	}

	got = Strip("14 Jun 2025 winning numbers 1 2 3")
	if got != "  winning numbers 1 2 3" {
		t.Fatalf("unexpected strip result: %q", got)
	}
}

func TestTripleMonthFirstPolicy(t *testing.T) {
	t.Parallel()

	// Both readings of 3/4 are valid; month-first wins.
	got, ok := Triple(3, 4, 2024)
	if !ok || !got.Equal(date(2024, time.March, 4)) {
		t.Fatalf("ambiguous triple: got %v ok=%v", got, ok)
	}

	// Month-first impossible, falls through to day-first.
	got, ok = Triple(14, 3, 2024)
	if !ok || !got.Equal(date(2024, time.March, 14)) {
		t.Fatalf("day-first fallback: got %v ok=%v", got, ok)
	}

	if _, ok := Triple(14, 13, 2025); ok {
		t.Fatal("invalid triple accepted")
	}
	if _, ok := Triple(2, 29, 1899); ok {
		t.Fatal("out-of-range year accepted")
	}
}

func TestCalendarDateRejectsImpossible(t *testing.T) {
	t.Parallel()

	if _, ok := calendarDate(2023, 2, 30); ok {
		t.Fatal("Feb 30 accepted")
	}
	if _, ok := calendarDate(2024, 2, 29); !ok {
		t.Fatal("leap day rejected")
	}
}
