package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"LottoScanner/internal/dateparse"
	"LottoScanner/internal/domain"
	"LottoScanner/internal/extract"
	"LottoScanner/internal/normalize"
	"LottoScanner/internal/ports"
)

// Fallback slice widths for the generic block scan when no rule exists.
const (
	genericMainCount  = 5
	genericBonusLimit = 3
)

// minBlockNumbers is the least numeric-token count for a block element to be
// considered a draw candidate during the generic scan.
const minBlockNumbers = 3

// Alternative selectors for common result-list shapes, tried after the
// page-specific container fails.
var genericSelectors = []string{
	"table tbody tr",
	"table tr",
	"ul.results li",
	"ol.results li",
	"div[class*=result] li",
	"div[class*=draw] li",
}

// HTMLExtractor scrapes draw-history pages: a page-id keyed primary
// container first, generic result-list selectors second, and a scan over
// arbitrary block elements as the last tier.
type HTMLExtractor struct {
	fetcher ports.Fetcher
	rules   domain.RuleTable
	norm    normalize.Normalizer
	logger  *slog.Logger
}

var _ extract.Extractor = (*HTMLExtractor)(nil)

// NewHTMLExtractor wires the shared fetcher and rule table.
func NewHTMLExtractor(fetcher ports.Fetcher, rules domain.RuleTable, logger *slog.Logger) *HTMLExtractor {
	return &HTMLExtractor{
		fetcher: fetcher,
		rules:   rules,
		norm:    normalize.New(rules),
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (e *HTMLExtractor) Name() string {
	return "html"
}

// Extract fetches the results page and runs the selector cascade.
func (e *HTMLExtractor) Extract(ctx context.Context, req extract.Request) extract.Result {
	if req.HTMLURL == "" {
		return extract.Result{Stage: e.Name(), Err: errors.New("no html url configured")}
	}

	res, err := e.fetcher.Get(ctx, req.HTMLURL, nil)
	if err != nil {
		return extract.Result{Stage: e.Name(), Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return extract.Result{Stage: e.Name(), Err: fmt.Errorf("parse document: %w", err)}
	}

	draws := e.ParseDocument(doc, req.PageID, req.GameID)
	if len(draws) == 0 {
		return extract.Result{Stage: e.Name(), Err: errors.New("no draw blocks recognized")}
	}
	return extract.Result{Stage: e.Name(), Draws: draws}
}

// ParseDocument runs the three-tier cascade over an already-parsed document.
func (e *HTMLExtractor) ParseDocument(doc *goquery.Document, pageID, gameID string) []domain.Draw {
	if draws := e.parsePrimary(doc, pageID, gameID); len(draws) > 0 {
		return draws
	}
	if draws := e.parseGenericSelectors(doc, gameID); len(draws) > 0 {
		return draws
	}
	return e.parseBlockScan(doc, gameID)
}

// parsePrimary reads the known draw-history container keyed by page id:
// repeated presentation lists whose cells hold date, main and bonus spans.
func (e *HTMLExtractor) parsePrimary(doc *goquery.Document, pageID, gameID string) []domain.Draw {
	if pageID == "" {
		return nil
	}

	selector := fmt.Sprintf("#draw_history_%s ul.list_table_presentation", pageID)
	var draws []domain.Draw

	doc.Find(selector).Each(func(_ int, entry *goquery.Selection) {
		cells := entry.Find("span.table_cell_block")
		if cells.Length() < 3 {
			return
		}

		date, ok := dateparse.Parse(collapseText(cells.Eq(0)))
		if !ok {
			return
		}

		main := extract.Numbers(collapseText(cells.Eq(2)), 2)
		var bonus []int
		if cells.Length() >= 4 {
			bonus = extract.Numbers(collapseText(cells.Eq(3)), 2)
		}

		draw := e.norm.Normalize(date, main, bonus, gameID)
		if len(draw.Main) == 0 {
			return
		}
		draws = append(draws, draw)
	})

	return draws
}

// parseGenericSelectors tries common result-list shapes, accepting the first
// selector whose rows parse into at least one draw.
func (e *HTMLExtractor) parseGenericSelectors(doc *goquery.Document, gameID string) []domain.Draw {
	for _, selector := range genericSelectors {
		var draws []domain.Draw
		doc.Find(selector).Each(func(_ int, row *goquery.Selection) {
			if draw, ok := e.parseBlock(row, gameID); ok {
				draws = append(draws, draw)
			}
		})
		if len(draws) > 0 {
			e.debug("generic selector matched", "selector", selector, "draws", len(draws))
			return dedupe(draws)
		}
	}
	return nil
}

// parseBlockScan is the last tier: every block-level element whose visible
// text holds enough numeric tokens and a locatable date becomes a candidate.
func (e *HTMLExtractor) parseBlockScan(doc *goquery.Document, gameID string) []domain.Draw {
	var draws []domain.Draw
	doc.Find("div, li, tr, p, article, section").Each(func(_ int, block *goquery.Selection) {
		// Leaf-most blocks only; a parent repeating its children's text
		// would double-count every draw.
		if block.Find("div, li, tr, p, article, section").Length() > 0 {
			return
		}
		if draw, ok := e.parseBlock(block, gameID); ok {
			draws = append(draws, draw)
		}
	})
	return dedupe(draws)
}

// parseBlock recovers one draw from an arbitrary element: date from the text,
// numbers from the remaining text plus data attributes, year dropped, main
// and bonus sliced by the game rule (5 main plus up to 3 bonus without one).
func (e *HTMLExtractor) parseBlock(block *goquery.Selection, gameID string) (domain.Draw, bool) {
	text := collapseText(block)

	nums := extract.Numbers(dateparse.Strip(text), 2)
	nums = append(nums, attributeNumbers(block)...)
	if len(nums) < minBlockNumbers {
		return domain.Draw{}, false
	}

	date, ok := dateparse.Find(text)
	if !ok {
		return domain.Draw{}, false
	}
	nums = extract.WithoutYear(nums, date.Year())
	if len(nums) == 0 {
		return domain.Draw{}, false
	}

	var main, bonus []int
	if rule, hasRule := e.rules.Lookup(gameID); hasRule {
		main, bonus = sliceBalls(nums, rule, true)
	} else {
		main = nums
		if len(nums) > genericMainCount {
			main = nums[:genericMainCount]
			bonus = nums[genericMainCount:]
			if len(bonus) > genericBonusLimit {
				bonus = bonus[:genericBonusLimit]
			}
		}
	}

	draw := e.norm.Normalize(date, main, bonus, gameID)
	if len(draw.Main) == 0 {
		return domain.Draw{}, false
	}
	return draw, true
}

// attributeNumbers collects numbers that pages expose via data attributes
// instead of text content.
func attributeNumbers(block *goquery.Selection) []int {
	var nums []int
	for _, node := range block.Nodes {
		for _, attr := range node.Attr {
			if !strings.HasPrefix(attr.Key, "data-") {
				continue
			}
			if !strings.Contains(attr.Key, "number") && !strings.Contains(attr.Key, "ball") {
				continue
			}
			if n, ok := atoiAll(strings.TrimSpace(attr.Val)); ok {
				nums = append(nums, n)
			}
		}
	}
	block.Find("[data-number], [data-ball]").Each(func(_ int, el *goquery.Selection) {
		for _, key := range []string{"data-number", "data-ball"} {
			if val, exists := el.Attr(key); exists {
				if n, ok := atoiAll(strings.TrimSpace(val)); ok {
					nums = append(nums, n)
				}
			}
		}
	})
	return nums
}

func collapseText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func dedupe(draws []domain.Draw) []domain.Draw {
	seen := map[string]struct{}{}
	kept := draws[:0]
	for _, draw := range draws {
		key := draw.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, draw)
	}
	return kept
}

func (e *HTMLExtractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
