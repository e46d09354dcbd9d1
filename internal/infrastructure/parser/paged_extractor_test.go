package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"LottoScanner/internal/extract"
	"LottoScanner/internal/infrastructure/fetch"
)

const pagedPageOne = `
<div class="lottery-result">
  <div class="date"><span>Sat</span><span>14 Jun 2025</span></div>
  <ul><li>1</li><li>2</li><li>3</li><li>4</li><li>5</li><li>6</li><li>7</li></ul>
</div>
<div class="lottery-result">
  <div class="date"><span>Wed</span><span>11 Jun 2025</span></div>
  <ul><li>10</li><li>20</li><li>30</li><li>40</li><li>50</li><li>59</li><li>13</li></ul>
</div>
<a rel="next" href="?page=2">Next</a>`

const pagedPageTwo = `
<div class="lottery-result">
  <div class="date"><span>Wed</span><span>11 Jun 2025</span></div>
  <ul><li>10</li><li>20</li><li>30</li><li>40</li><li>50</li><li>59</li><li>13</li></ul>
</div>
<div class="lottery-result">
  <div class="date"><span>Sat</span><span>7 Jun 2025</span></div>
  <ul><li>8</li><li>9</li><li>11</li><li>12</li><li>14</li><li>15</li><li>16</li></ul>
</div>`

func TestPagedExtractorWalksAndDeduplicates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(pagedPageTwo))
			return
		}
		_, _ = w.Write([]byte(pagedPageOne))
	}))
	defer server.Close()

	e := NewPagedExtractor(fetch.New(5*time.Second), testRules(), time.Millisecond, nil)
	result := e.Extract(context.Background(), extract.Request{
		GameID:   "lotto",
		PagedURL: server.URL + "/lotto/results/archive",
	})

	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Draws) != 3 {
		t.Fatalf("expected 3 deduplicated draws, got %d", len(result.Draws))
	}

	for i := 1; i < len(result.Draws); i++ {
		if result.Draws[i].Date.After(result.Draws[i-1].Date) {
			t.Fatalf("draws not ordered newest first: %v then %v",
				result.Draws[i-1].Date, result.Draws[i].Date)
		}
	}
	if !sameInts(result.Draws[0].Main, []int{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("unexpected main %v", result.Draws[0].Main)
	}
	if !sameInts(result.Draws[0].Bonus, []int{7}) {
		t.Fatalf("unexpected bonus %v", result.Draws[0].Bonus)
	}
}

func TestPagedExtractorStopsAtCutoff(t *testing.T) {
	t.Parallel()

	var pagesServed int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		_, _ = w.Write([]byte(pagedPageOne))
	}))
	defer server.Close()

	e := NewPagedExtractor(fetch.New(5*time.Second), testRules(), time.Millisecond, nil)
	result := e.Extract(context.Background(), extract.Request{
		GameID:   "lotto",
		PagedURL: server.URL + "/lotto/results/archive",
		Cutoff:   time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC),
	})

	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if pagesServed != 1 {
		t.Fatalf("expected traversal to stop after page 1, served %d", pagesServed)
	}
	if len(result.Draws) != 2 {
		t.Fatalf("expected 2 draws from the first page, got %d", len(result.Draws))
	}
}

func TestPagedExtractorFetchFailureYieldsReason(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	e := NewPagedExtractor(fetch.New(5*time.Second), testRules(), time.Millisecond, nil)
	result := e.Extract(context.Background(), extract.Request{
		GameID:   "lotto",
		PagedURL: server.URL + "/archive",
	})

	if result.Err == nil {
		t.Fatal("expected an error when every page fails")
	}
	if len(result.Draws) != 0 {
		t.Fatalf("expected no draws, got %d", len(result.Draws))
	}
}
