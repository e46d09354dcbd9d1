package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"LottoScanner/internal/dateparse"
	"LottoScanner/internal/domain"
	"LottoScanner/internal/extract"
	"LottoScanner/internal/normalize"
	"LottoScanner/internal/ports"
)

const (
	// Trailing all-digit cells at least this wide are supplementary ticket
	// identifiers (Joker-style), not balls.
	longIdentifierWidth = 6
	sniffLineLimit      = 40
)

// Keywords that mark a line as a known draw-history header, used both for
// delimiter detection and for locating columns.
var headerKeywords = []string{"winning number", "powerball", "draw date", "draw number", "draw"}

var (
	ballColumnExpr = regexp.MustCompile(`(?:winning\s*number|ball|number)\s*(\d+)`)
	bonusKeywords  = []string{"powerball", "mega ball", "megaball", "bonus", "lucky star", "thunderball", "life ball"}
)

// CSVExtractor handles delimited draw-history downloads: headered CSV/TSV
// with named winning-number columns, Spanish-language sheets, and column-less
// date+numbers rows. Strategies run in a fixed ladder; the first one that
// yields a record wins.
type CSVExtractor struct {
	fetcher ports.Fetcher
	rules   domain.RuleTable
	norm    normalize.Normalizer
	logger  *slog.Logger
}

var _ extract.Extractor = (*CSVExtractor)(nil)

// NewCSVExtractor wires the shared fetcher and rule table.
func NewCSVExtractor(fetcher ports.Fetcher, rules domain.RuleTable, logger *slog.Logger) *CSVExtractor {
	return &CSVExtractor{
		fetcher: fetcher,
		rules:   rules,
		norm:    normalize.New(rules),
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (e *CSVExtractor) Name() string {
	return "csv"
}

// Extract walks the candidate URL ladder (declared CSV endpoints, their
// download-query variants, then a "/csv" path derived from the HTML page)
// and parses the first body that yields draws.
func (e *CSVExtractor) Extract(ctx context.Context, req extract.Request) extract.Result {
	urls := csvCandidates(req)
	if len(urls) == 0 {
		return extract.Result{Stage: e.Name(), Err: errors.New("no csv endpoints configured")}
	}

	var lastErr error
	for _, u := range urls {
		res, err := e.fetcher.Get(ctx, u, nil)
		if err != nil {
			lastErr = err
			e.debug("csv fetch failed", "url", u, "error", err)
			continue
		}
		if draws := e.Parse(res.Body, req.GameID); len(draws) > 0 {
			e.debug("csv parsed", "url", u, "draws", len(draws))
			return extract.Result{Stage: e.Name(), Draws: draws}
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no rows recovered from csv endpoints")
	}
	return extract.Result{Stage: e.Name(), Err: lastErr}
}

func csvCandidates(req extract.Request) []string {
	var urls []string
	seen := map[string]struct{}{}
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	for _, u := range req.CSVURLs {
		add(u)
	}
	for _, u := range req.CSVURLs {
		if !strings.Contains(u, "?") {
			add(u + "?download=csv")
		}
	}
	if req.HTMLURL != "" {
		add(strings.TrimSuffix(req.HTMLURL, "/") + "/csv")
	}
	return urls
}

// Parse applies the strategy ladder to one delimited body. It never fails:
// unusable input degrades to zero records.
func (e *CSVExtractor) Parse(body []byte, gameID string) []domain.Draw {
	text := strings.TrimPrefix(string(body), "\ufeff")
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return nil
	}

	delim := detectDelimiter(lines)
	records := readRecords(lines, delim)

	if draws := e.parseHeaderColumns(records, gameID); len(draws) > 0 {
		return draws
	}
	if draws := e.parseRowOriented(records, gameID); len(draws) > 0 {
		return draws
	}
	if draws := e.parseTokenLines(lines, gameID); len(draws) > 0 {
		return draws
	}
	return e.parseLastResort(lines, gameID)
}

// detectDelimiter prefers the delimiter whose header cells contain a known
// draw-history keyword, then falls back to a generic sniff over the first
// lines, then to "tab if present, else comma".
func detectDelimiter(lines []string) rune {
	candidates := []rune{',', '\t', ';'}

	for _, delim := range candidates {
		cells := strings.Split(lines[0], string(delim))
		if len(cells) < 2 {
			continue
		}
		for _, cell := range cells {
			lowered := strings.ToLower(strings.TrimSpace(cell))
			for _, kw := range headerKeywords {
				if strings.Contains(lowered, kw) {
					return delim
				}
			}
		}
	}

	sample := lines
	if len(sample) > sniffLineLimit {
		sample = sample[:sniffLineLimit]
	}
	best, bestCount := rune(0), 0
	for _, delim := range candidates {
		total := 0
		consistent := true
		for _, line := range sample {
			n := strings.Count(line, string(delim))
			if n == 0 {
				consistent = false
				break
			}
			total += n
		}
		if consistent && total > bestCount {
			best, bestCount = delim, total
		}
	}
	if best != 0 {
		return best
	}

	if strings.Contains(lines[0], "\t") {
		return '\t'
	}
	return ','
}

func readRecords(lines []string, delim rune) [][]string {
	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err == nil {
		return records
	}

	// Malformed quoting: degrade to a plain split per line.
	records = records[:0]
	for _, line := range lines {
		records = append(records, strings.Split(line, string(delim)))
	}
	return records
}

// parseHeaderColumns handles sheets with explicit numbered ball columns
// ("Winning Number 1".."Winning Number k", "Ball 1", ...) plus any number of
// bonus-style columns ("Powerball", "Lucky Star 1", "Lucky Star 2"). The
// date column is located by header keyword, including the Spanish "fecha".
func (e *CSVExtractor) parseHeaderColumns(records [][]string, gameID string) []domain.Draw {
	if len(records) < 2 {
		return nil
	}

	header := records[0]
	type ballCol struct{ n, idx int }
	var ballCols []ballCol
	var bonusCols []int
	dateCol := -1

	for idx, cell := range header {
		lowered := strings.ToLower(strings.TrimSpace(cell))
		if lowered == "" {
			continue
		}

		if dateCol == -1 && (strings.Contains(lowered, "date") || strings.Contains(lowered, "fecha")) {
			dateCol = idx
			continue
		}
		if isBonusHeader(lowered) {
			bonusCols = append(bonusCols, idx)
			continue
		}
		if match := ballColumnExpr.FindStringSubmatch(lowered); match != nil {
			if n, ok := atoiAll(match[1]); ok {
				ballCols = append(ballCols, ballCol{n: n, idx: idx})
			}
		}
	}

	if dateCol == -1 {
		for idx, cell := range header {
			if strings.Contains(strings.ToLower(cell), "draw") {
				dateCol = idx
				break
			}
		}
	}
	if len(ballCols) == 0 || dateCol == -1 {
		return nil
	}

	for i := 1; i < len(ballCols); i++ {
		for j := i; j > 0 && ballCols[j-1].n > ballCols[j].n; j-- {
			ballCols[j-1], ballCols[j] = ballCols[j], ballCols[j-1]
		}
	}

	var draws []domain.Draw
	for _, row := range records[1:] {
		if dateCol >= len(row) {
			continue
		}
		date, ok := dateparse.Parse(row[dateCol])
		if !ok {
			continue
		}

		var main []int
		for _, col := range ballCols {
			if col.idx < len(row) {
				main = append(main, extract.Numbers(row[col.idx], 2)...)
			}
		}
		var bonus []int
		for _, col := range bonusCols {
			if col < len(row) {
				bonus = append(bonus, extract.Numbers(row[col], 2)...)
			}
		}

		draw := e.norm.Normalize(date, main, bonus, gameID)
		if len(draw.Main) == 0 {
			continue
		}
		draws = append(draws, draw)
	}
	return draws
}

func isBonusHeader(lowered string) bool {
	for _, kw := range bonusKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// parseRowOriented handles loosely structured foreign-language sheets where
// column 0 carries the date and every following non-empty cell carries
// numbers. Triggered by a "combination"-style header keyword or a mostly
// blank header row. A trailing long all-digit cell is a ticket identifier
// and gets dropped before slicing.
func (e *CSVExtractor) parseRowOriented(records [][]string, gameID string) []domain.Draw {
	if len(records) < 2 {
		return nil
	}

	header := records[0]
	blanks := 0
	trigger := false
	for _, cell := range header {
		lowered := strings.ToLower(strings.TrimSpace(cell))
		if lowered == "" {
			blanks++
			continue
		}
		if strings.Contains(lowered, "combinaci") || strings.Contains(lowered, "combination") {
			trigger = true
		}
	}
	if !trigger && blanks <= 2 {
		return nil
	}

	rule, hasRule := e.rules.Lookup(gameID)

	var draws []domain.Draw
	for _, row := range records[1:] {
		if len(row) < 2 {
			continue
		}
		date, ok := dateparse.Parse(row[0])
		if !ok {
			continue
		}

		var cells []string
		for _, cell := range row[1:] {
			if strings.TrimSpace(cell) != "" {
				cells = append(cells, strings.TrimSpace(cell))
			}
		}
		if len(cells) > 0 {
			last := cells[len(cells)-1]
			if _, allDigit := atoiAll(last); allDigit && len(last) >= longIdentifierWidth {
				cells = cells[:len(cells)-1]
			}
		}

		var balls []int
		for _, cell := range cells {
			balls = append(balls, extract.Numbers(cell, 2)...)
		}
		if len(balls) == 0 {
			continue
		}

		main, bonus := sliceBalls(balls, rule, hasRule)
		draw := e.norm.Normalize(date, main, bonus, gameID)
		if len(draw.Main) == 0 {
			continue
		}
		draws = append(draws, draw)
	}
	return draws
}

// parseTokenLines is the headerless positional strategy shared with the
// standalone line extractor.
func (e *CSVExtractor) parseTokenLines(lines []string, gameID string) []domain.Draw {
	var draws []domain.Draw
	for _, line := range lines {
		date, main, bonus, ok := parseTokenLine(line, e.rules, gameID)
		if !ok {
			continue
		}
		draw := e.norm.Normalize(date, main, bonus, gameID)
		if len(draw.Main) == 0 {
			continue
		}
		draws = append(draws, draw)
	}
	return draws
}

// parseLastResort finds any date-shaped substring per line and treats the
// trailing numeric tokens (at most eight, year removed) as balls, sliced by
// the game rule when one exists.
func (e *CSVExtractor) parseLastResort(lines []string, gameID string) []domain.Draw {
	var draws []domain.Draw
	for _, line := range lines {
		date, ok := dateparse.Find(line)
		if !ok {
			continue
		}

		nums := extract.Numbers(dateparse.Strip(line), 2)
		nums = extract.WithoutYear(nums, date.Year())
		if len(nums) == 0 {
			continue
		}
		if len(nums) > 8 {
			nums = nums[len(nums)-8:]
		}

		rule, hasRule := e.rules.Lookup(gameID)
		main, bonus := sliceBalls(nums, rule, hasRule)

		draw := e.norm.Normalize(date, main, bonus, gameID)
		if len(draw.Main) == 0 {
			continue
		}
		draws = append(draws, draw)
	}
	return draws
}

func (e *CSVExtractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
