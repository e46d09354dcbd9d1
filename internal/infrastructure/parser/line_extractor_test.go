package parser

import (
	"context"
	"testing"
	"time"

	"LottoScanner/internal/extract"
)

func TestParseBodyLabeledRows(t *testing.T) {
	t.Parallel()

	body := "Powerball 03 14 2024 05 12 23 44 55 09\n" +
		"Powerball 03 12 2024 01 02 03 04 05 06\n" +
		"not a draw row\n"

	e := NewLineExtractor(nil, testRules(), nil)
	draws := e.ParseBody([]byte(body), "powerball")

	if len(draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(draws))
	}
	want := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)
	if !draws[0].Date.Equal(want) {
		t.Fatalf("unexpected date %s", draws[0].Date)
	}
	if !sameInts(draws[0].Main, []int{5, 12, 23, 44, 55}) {
		t.Fatalf("unexpected main %v", draws[0].Main)
	}
	if !sameInts(draws[0].Bonus, []int{9}) {
		t.Fatalf("unexpected bonus %v", draws[0].Bonus)
	}
}

func TestParseBodyRowLabelOverridesRequestGame(t *testing.T) {
	t.Parallel()

	// The row names lotto (6 main, 1 bonus) even though the request says
	// thunderball; the row label must win.
	body := "Lotto 03 14 2024 1 2 3 4 5 6 7\n"

	e := NewLineExtractor(nil, testRules(), nil)
	draws := e.ParseBody([]byte(body), "thunderball")

	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
	}
	if !sameInts(draws[0].Main, []int{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("row label rule not applied: %v", draws[0].Main)
	}
	if !sameInts(draws[0].Bonus, []int{7}) {
		t.Fatalf("unexpected bonus %v", draws[0].Bonus)
	}
}

func TestLineExtractorFetchesEndpoints(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		bodies: map[string]string{
			"https://example.org/draws.txt": "Thunderball 03 14 2024 1 2 3 4 5 14\n",
		},
	}

	e := NewLineExtractor(fetcher, testRules(), nil)
	result := e.Extract(context.Background(), extract.Request{
		GameID:  "thunderball",
		CSVURLs: []string{"https://example.org/draws.txt"},
	})

	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(result.Draws))
	}
	if !sameInts(result.Draws[0].Bonus, []int{14}) {
		t.Fatalf("unexpected bonus %v", result.Draws[0].Bonus)
	}
}
