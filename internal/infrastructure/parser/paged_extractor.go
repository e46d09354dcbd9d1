package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"LottoScanner/internal/dateparse"
	"LottoScanner/internal/domain"
	"LottoScanner/internal/extract"
	"LottoScanner/internal/normalize"
	"LottoScanner/internal/ports"
)

const (
	defaultPageCap   = 50
	defaultPageDelay = 500 * time.Millisecond
)

// Selectors for repeating result blocks on aggregator pages, most specific
// first.
var pagedBlockSelectors = []string{
	"div.lottery-result",
	"div[class*=result]",
	"tr.result",
	"article",
	"li[class*=draw]",
}

// PagedExtractor walks a multi-page aggregator: page 1, 2, 3, ... via a page
// query parameter, stopping at the last page, at the recency cutoff, at the
// hard page cap, or on the first failed fetch.
type PagedExtractor struct {
	fetcher ports.Fetcher
	rules   domain.RuleTable
	norm    normalize.Normalizer
	logger  *slog.Logger
	delay   time.Duration
	pageCap int
}

var _ extract.Extractor = (*PagedExtractor)(nil)

// NewPagedExtractor wires the shared fetcher and rule table. The delay paces
// page requests; zero selects the default polite interval.
func NewPagedExtractor(fetcher ports.Fetcher, rules domain.RuleTable, delay time.Duration, logger *slog.Logger) *PagedExtractor {
	if delay <= 0 {
		delay = defaultPageDelay
	}
	return &PagedExtractor{
		fetcher: fetcher,
		rules:   rules,
		norm:    normalize.New(rules),
		logger:  logger,
		delay:   delay,
		pageCap: defaultPageCap,
	}
}

// Name identifies the strategy inside the registry.
func (e *PagedExtractor) Name() string {
	return "paged"
}

// Extract traverses the aggregator and returns the deduplicated, newest-first
// draw list.
func (e *PagedExtractor) Extract(ctx context.Context, req extract.Request) extract.Result {
	if req.PagedURL == "" {
		return extract.Result{Stage: e.Name(), Err: errors.New("no aggregator url configured")}
	}

	pageCap := e.pageCap
	if req.MaxPages > 0 && req.MaxPages < pageCap {
		pageCap = req.MaxPages
	}

	var all []domain.Draw
	var lastErr error

	for page := 1; page <= pageCap; page++ {
		if page > 1 {
			if err := sleepCtx(ctx, e.delay); err != nil {
				break
			}
		}

		pageURL, err := withPageParam(req.PagedURL, page)
		if err != nil {
			lastErr = err
			break
		}

		res, err := e.fetcher.Get(ctx, pageURL, nil)
		if err != nil {
			lastErr = err
			e.debug("page fetch failed", "url", pageURL, "error", err)
			break
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
		if err != nil {
			lastErr = fmt.Errorf("parse page %d: %w", page, err)
			break
		}

		draws, oldest := e.parsePage(doc, req.GameID)
		if len(draws) == 0 {
			break
		}
		all = append(all, draws...)
		e.debug("page parsed", "page", page, "draws", len(draws))

		if isLastPage(doc) {
			break
		}
		if !req.Cutoff.IsZero() && oldest.Before(req.Cutoff) {
			break
		}
	}

	all = dedupe(all)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})

	if len(all) == 0 {
		if lastErr == nil {
			lastErr = errors.New("no result blocks recognized")
		}
		return extract.Result{Stage: e.Name(), Err: lastErr}
	}
	return extract.Result{Stage: e.Name(), Draws: all}
}

// parsePage locates repeating result blocks and reports the oldest draw date
// seen, which drives the recency stop condition.
func (e *PagedExtractor) parsePage(doc *goquery.Document, gameID string) ([]domain.Draw, time.Time) {
	var draws []domain.Draw

	for _, selector := range pagedBlockSelectors {
		doc.Find(selector).Each(func(_ int, block *goquery.Selection) {
			if draw, ok := e.parseResultBlock(block, gameID); ok {
				draws = append(draws, draw)
			}
		})
		if len(draws) > 0 {
			break
		}
	}

	var oldest time.Time
	for _, draw := range draws {
		if oldest.IsZero() || draw.Date.Before(oldest) {
			oldest = draw.Date
		}
	}
	return draws, oldest
}

// parseResultBlock resolves the date from a pair of date sub-elements or the
// block's free text, then the numbers from a nested ball list or the block's
// trailing numeric tokens.
func (e *PagedExtractor) parseResultBlock(block *goquery.Selection, gameID string) (domain.Draw, bool) {
	date, ok := blockDate(block)
	if !ok {
		return domain.Draw{}, false
	}

	nums := nestedBallNumbers(block)
	if len(nums) < genericMainCount {
		text := collapseText(block)
		nums = extract.WithoutYear(extract.Numbers(dateparse.Strip(text), 2), date.Year())
	}
	if len(nums) == 0 {
		return domain.Draw{}, false
	}

	rule, hasRule := e.rules.Lookup(gameID)
	main, bonus := sliceBalls(nums, rule, hasRule)

	draw := e.norm.Normalize(date, main, bonus, gameID)
	if len(draw.Main) == 0 {
		return domain.Draw{}, false
	}
	return draw, true
}

func blockDate(block *goquery.Selection) (time.Time, bool) {
	dateParts := block.Find(".date span, .date div, time")
	if dateParts.Length() >= 1 {
		var fragments []string
		dateParts.Each(func(_ int, part *goquery.Selection) {
			fragments = append(fragments, collapseText(part))
		})
		if date, ok := dateparse.Parse(strings.Join(fragments, " ")); ok {
			return date, true
		}
	}
	return dateparse.Find(collapseText(block))
}

func nestedBallNumbers(block *goquery.Selection) []int {
	var nums []int
	block.Find("ul li, .ball, .result-ball, span[class*=ball]").Each(func(_ int, el *goquery.Selection) {
		if n, ok := atoiAll(strings.TrimSpace(el.Text())); ok {
			nums = append(nums, n)
		}
	})
	return nums
}

// isLastPage reports whether the page explicitly declares itself final: no
// next-style pagination link and no further page anchors.
func isLastPage(doc *goquery.Document) bool {
	if doc.Find("a[rel=next]").Length() > 0 {
		return false
	}
	next := false
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		if text == "next" || text == "older results" || strings.HasPrefix(text, "next ") {
			next = true
			return false
		}
		return true
	})
	return !next
}

func withPageParam(base string, page int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid aggregator url %s: %w", base, err)
	}
	query := parsed.Query()
	query.Set("page", strconv.Itoa(page))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *PagedExtractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
