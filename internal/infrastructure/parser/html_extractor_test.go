package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestParsePrimaryContainer(t *testing.T) {
	t.Parallel()

	html := `
	<div id="draw_history_lotto">
	  <ul class="list_table_presentation">
	    <li><span class="table_cell_block">Sat 14 Jun 2025</span></li>
	    <li><span class="table_cell_block">Draw 2984</span></li>
	    <li><span class="table_cell_block">1 2 3 4 5 6</span></li>
	    <li><span class="table_cell_block">7</span></li>
	  </ul>
	  <ul class="list_table_presentation">
	    <li><span class="table_cell_block">Wed 11 Jun 2025</span></li>
	    <li><span class="table_cell_block">Draw 2983</span></li>
	    <li><span class="table_cell_block">10 20 30 40 50 59</span></li>
	    <li><span class="table_cell_block">13</span></li>
	  </ul>
	</div>`

	e := NewHTMLExtractor(nil, testRules(), nil)
	draws := e.ParseDocument(docFromHTML(t, html), "lotto", "lotto")

	if len(draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(draws))
	}
	want := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)
	if !draws[0].Date.Equal(want) {
		t.Fatalf("unexpected date %s", draws[0].Date)
	}
	if !sameInts(draws[0].Main, []int{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("unexpected main %v", draws[0].Main)
	}
	if !sameInts(draws[0].Bonus, []int{7}) {
		t.Fatalf("unexpected bonus %v", draws[0].Bonus)
	}
}

func TestParseGenericTableRows(t *testing.T) {
	t.Parallel()

	html := `
	<table><tbody>
	  <tr><td>14/03/2024</td><td>5 12 23 44 55</td><td>9 11</td></tr>
	</tbody></table>`

	e := NewHTMLExtractor(nil, testRules(), nil)
	draws := e.ParseDocument(docFromHTML(t, html), "missing-page", "euromillions")

	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
	}
	if !sameInts(draws[0].Main, []int{5, 12, 23, 44, 55}) {
		t.Fatalf("unexpected main %v", draws[0].Main)
	}
	if !sameInts(draws[0].Bonus, []int{9, 11}) {
		t.Fatalf("unexpected bonus %v", draws[0].Bonus)
	}
}

func TestParseBlockScanLeafElements(t *testing.T) {
	t.Parallel()

	html := `
	<main>
	  <div>Results for 14 March 2024: 5 12 23 44 55 9</div>
	  <div>About this page</div>
	</main>`

	e := NewHTMLExtractor(nil, testRules(), nil)
	draws := e.ParseDocument(docFromHTML(t, html), "", "")

	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
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

func TestParseBlockReadsDataAttributes(t *testing.T) {
	t.Parallel()

	html := `
	<ul class="results">
	  <li>14 Mar 2024
	    <span data-ball="5"></span><span data-ball="12"></span><span data-ball="23"></span>
	    <span data-ball="44"></span><span data-ball="55"></span><span data-ball="9"></span>
	  </li>
	</ul>`

	e := NewHTMLExtractor(nil, testRules(), nil)
	draws := e.ParseDocument(docFromHTML(t, html), "", "")

	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
	}
	if !sameInts(draws[0].Main, []int{5, 12, 23, 44, 55}) {
		t.Fatalf("unexpected main %v", draws[0].Main)
	}
	if !sameInts(draws[0].Bonus, []int{9}) {
		t.Fatalf("unexpected bonus %v", draws[0].Bonus)
	}
}

func TestParseDocumentDeduplicates(t *testing.T) {
	t.Parallel()

	html := `
	<main>
	  <div>Draw 14 March 2024: 5 12 23 44 55 9</div>
	  <div>Draw 14 March 2024: 5 12 23 44 55 9</div>
	</main>`

	e := NewHTMLExtractor(nil, testRules(), nil)
	draws := e.ParseDocument(docFromHTML(t, html), "", "")

	if len(draws) != 1 {
		t.Fatalf("expected duplicates collapsed to 1 draw, got %d", len(draws))
	}
}
