package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"LottoScanner/internal/dateparse"
	"LottoScanner/internal/domain"
	"LottoScanner/internal/extract"
	"LottoScanner/internal/normalize"
	"LottoScanner/internal/ports"
)

var (
	apiDateKeys  = []string{"draw_date", "drawDate", "drawdate", "date", "drawn_on", "play_date", "playDate"}
	apiListKeys  = []string{"draws", "results", "data"}
	apiMainKeys  = []string{"numbers", "winning_numbers", "winningNumbers", "main", "balls"}
	apiBonusKeys = []string{"bonus", "powerball", "mega_ball", "megaBall", "megaball", "megaplier", "thunderball", "lucky_stars", "luckyStars", "life_ball", "bonus_ball"}

	apiDateLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
	}

	downloadPathExpr = regexp.MustCompile(`/results/([A-Za-z0-9-]+)/download`)
	gameIDAssignExpr = regexp.MustCompile(`game[_ ]?[iI]d["']?\s*[:=]\s*["']?([A-Za-z0-9-]+)`)
)

// APIExtractor pulls draw histories from JSON endpoints. Responses vary per
// provider: an object wrapping a list under a draws/results key, a bare
// list, or a CSV body mislabeled as JSON; item shapes vary just as much, so
// number resolution is a tagged ladder ending in an explicit catch-all
// heuristic.
type APIExtractor struct {
	fetcher ports.Fetcher
	rules   domain.RuleTable
	norm    normalize.Normalizer
	csv     *CSVExtractor
	logger  *slog.Logger
}

var _ extract.Extractor = (*APIExtractor)(nil)

// NewAPIExtractor wires the shared fetcher and the CSV extractor used for
// mislabeled plain-text responses.
func NewAPIExtractor(fetcher ports.Fetcher, rules domain.RuleTable, csv *CSVExtractor, logger *slog.Logger) *APIExtractor {
	return &APIExtractor{
		fetcher: fetcher,
		rules:   rules,
		norm:    normalize.New(rules),
		csv:     csv,
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (e *APIExtractor) Name() string {
	return "api"
}

// Extract requests the endpoint (discovering it from the HTML page when
// configured that way) and normalizes whatever response shape comes back.
func (e *APIExtractor) Extract(ctx context.Context, req extract.Request) extract.Result {
	apiURL := req.APIURL
	if apiURL == "" && req.DiscoverAPI && req.HTMLURL != "" {
		discovered, err := e.discoverDownloadURL(ctx, req.HTMLURL)
		if err != nil {
			return extract.Result{Stage: e.Name(), Err: err}
		}
		apiURL = discovered
	}
	if apiURL == "" {
		return extract.Result{Stage: e.Name(), Err: errors.New("no api endpoint configured")}
	}

	res, err := e.fetcher.Get(ctx, apiURL, apiHeaders(apiURL, req.DeviceID))
	if err != nil {
		return extract.Result{Stage: e.Name(), Err: err}
	}

	body := bytes.TrimSpace(res.Body)
	if !looksLikeJSON(res.ContentType, body) {
		// Some providers serve CSV with a JSON content type and vice
		// versa; hand the body to the delimited parser.
		if e.csv != nil {
			if draws := e.csv.Parse(res.Body, req.GameID); len(draws) > 0 {
				return extract.Result{Stage: e.Name(), Draws: draws}
			}
		}
		return extract.Result{Stage: e.Name(), Err: errors.New("response is neither json nor parseable text")}
	}

	items, err := resolveItems(body)
	if err != nil {
		return extract.Result{Stage: e.Name(), Err: err}
	}

	var draws []domain.Draw
	for _, item := range items {
		draw, ok := e.parseItem(item, req.GameID)
		if !ok {
			continue
		}
		draws = append(draws, draw)
	}

	if len(draws) == 0 {
		return extract.Result{Stage: e.Name(), Err: errors.New("no draw items recognized in response")}
	}
	return extract.Result{Stage: e.Name(), Draws: draws}
}

// apiHeaders builds the origin/referer/accept set providers expect, plus the
// optional device identifier header; absence of the identifier just skips
// the header.
func apiHeaders(apiURL, deviceID string) map[string]string {
	headers := map[string]string{
		"accept": "application/json",
	}
	if parsed, err := url.Parse(apiURL); err == nil && parsed.Host != "" {
		origin := parsed.Scheme + "://" + parsed.Host
		headers["origin"] = origin
		headers["referer"] = origin + "/"
	}
	if deviceID != "" {
		headers["x-device-id"] = deviceID
	}
	return headers
}

func looksLikeJSON(contentType string, body []byte) bool {
	if len(body) > 0 && (body[0] == '{' || body[0] == '[') {
		return true
	}
	return strings.Contains(strings.ToLower(contentType), "json") && len(body) > 0 && body[0] != '"'
}

// resolveItems accepts either a bare JSON list or an object wrapping the
// list under a known key.
func resolveItems(body []byte) ([]map[string]any, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var list []any
	switch v := raw.(type) {
	case []any:
		list = v
	case map[string]any:
		for _, key := range apiListKeys {
			if nested, ok := v[key].([]any); ok {
				list = nested
				break
			}
		}
		if list == nil {
			return nil, errors.New("response object carries no known draw list key")
		}
	default:
		return nil, errors.New("unexpected response shape")
	}

	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if item, ok := entry.(map[string]any); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// parseItem resolves one response item to a draw. Number shapes, in order:
// an explicit main/bonus pair of fields, a flat list under a known key,
// numbered scalar fields (num1..numN), and finally the catch-all flatten of
// every all-numeric list field — a heuristic, not a guarantee.
func (e *APIExtractor) parseItem(item map[string]any, gameID string) (domain.Draw, bool) {
	date, ok := itemDate(item)
	if !ok {
		return domain.Draw{}, false
	}

	main, bonus := itemNumbers(item)
	if len(main) == 0 {
		main, bonus = flattenNumericFields(item)
	}
	if len(main) == 0 {
		return domain.Draw{}, false
	}

	// A flat list with no separate bonus still needs slicing for games
	// with a bonus position.
	if len(bonus) == 0 {
		if rule, hasRule := e.rules.Lookup(gameID); hasRule && rule.MainCount > 0 && len(main) > rule.MainCount {
			main, bonus = sliceBalls(main, rule, true)
		}
	}

	draw := e.norm.Normalize(date, main, bonus, gameID)
	if len(draw.Main) == 0 {
		return domain.Draw{}, false
	}
	return draw, true
}

func itemDate(item map[string]any) (time.Time, bool) {
	for _, key := range apiDateKeys {
		raw, ok := item[key]
		if !ok {
			continue
		}
		text, ok := raw.(string)
		if !ok {
			continue
		}
		for _, layout := range apiDateLayouts {
			if parsed, err := time.Parse(layout, text); err == nil {
				return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), true
			}
		}
		if date, ok := dateparse.Parse(text); ok {
			return date, true
		}
	}
	return time.Time{}, false
}

func itemNumbers(item map[string]any) ([]int, []int) {
	var main, bonus []int

	for _, key := range apiMainKeys {
		if raw, ok := item[key]; ok {
			if nums := coerceInts(raw); len(nums) > 0 {
				main = nums
				break
			}
		}
	}

	// Numbered scalar fields: num1..numN / n1..nN.
	if len(main) == 0 {
		for i := 1; i <= 12; i++ {
			found := false
			for _, prefix := range []string{"num", "n"} {
				if raw, ok := item[fmt.Sprintf("%s%d", prefix, i)]; ok {
					if nums := coerceInts(raw); len(nums) > 0 {
						main = append(main, nums...)
						found = true
						break
					}
				}
			}
			if !found {
				break
			}
		}
	}

	// First bonus key that yields numbers wins; providers that expose both
	// a ball field and a multiplier field must not contribute twice.
	for _, key := range apiBonusKeys {
		if raw, ok := item[key]; ok {
			if nums := coerceInts(raw); len(nums) > 0 {
				bonus = nums
				break
			}
		}
	}

	return main, bonus
}

// coerceInts turns the value shapes providers use for ball lists into a flat
// int slice: a scalar, a digits string, a list of scalars, or a list of
// {value}/{number}-style objects. Non-numeric values yield nothing.
func coerceInts(raw any) []int {
	switch v := raw.(type) {
	case float64:
		if v == float64(int(v)) {
			return []int{int(v)}
		}
	case string:
		return extract.Numbers(v, 2)
	case []any:
		var nums []int
		for _, entry := range v {
			got := coerceInts(entry)
			if len(got) == 0 {
				return nil
			}
			nums = append(nums, got...)
		}
		return nums
	case map[string]any:
		for _, key := range []string{"value", "number", "ball"} {
			if nested, ok := v[key]; ok {
				return coerceInts(nested)
			}
		}
	}
	return nil
}

// flattenNumericFields is the last-resort shape: every list-valued field
// whose entries are all numeric contributes, longest list first as main,
// second longest as bonus.
func flattenNumericFields(item map[string]any) ([]int, []int) {
	type field struct {
		key  string
		nums []int
	}
	var fields []field
	for key, raw := range item {
		if _, ok := raw.([]any); !ok {
			continue
		}
		if nums := coerceInts(raw); len(nums) > 0 {
			fields = append(fields, field{key: key, nums: nums})
		}
	}
	if len(fields) == 0 {
		return nil, nil
	}

	sort.SliceStable(fields, func(i, j int) bool {
		if len(fields[i].nums) != len(fields[j].nums) {
			return len(fields[i].nums) > len(fields[j].nums)
		}
		return fields[i].key < fields[j].key
	})

	main := fields[0].nums
	var bonus []int
	if len(fields) > 1 {
		bonus = fields[1].nums
	}
	return main, bonus
}

// discoverDownloadURL scrapes the results page for a downloadable history
// endpoint: anchor hrefs first, then inline script text, then data
// attributes carrying a game id.
func (e *APIExtractor) discoverDownloadURL(ctx context.Context, htmlURL string) (string, error) {
	res, err := e.fetcher.Get(ctx, htmlURL, nil)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return "", fmt.Errorf("parse discovery page: %w", err)
	}

	base, err := url.Parse(htmlURL)
	if err != nil {
		return "", fmt.Errorf("invalid html url %s: %w", htmlURL, err)
	}

	found := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if downloadPathExpr.MatchString(href) {
			found = href
			return false
		}
		return true
	})
	if found != "" {
		resolved, err := base.Parse(found)
		if err != nil {
			return "", fmt.Errorf("resolve download href: %w", err)
		}
		return resolved.String(), nil
	}

	gameID := ""
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		if match := gameIDAssignExpr.FindStringSubmatch(script.Text()); match != nil {
			gameID = match[1]
			return false
		}
		return true
	})
	if gameID == "" {
		doc.Find("[data-game-id]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if val, exists := el.Attr("data-game-id"); exists && val != "" {
				gameID = val
				return false
			}
			return true
		})
	}
	if gameID == "" {
		e.debug("game id discovery failed", "url", htmlURL)
		return "", errors.New("no downloadable game id discovered")
	}

	return base.Scheme + "://" + base.Host + "/results/" + gameID + "/download", nil
}

func (e *APIExtractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
