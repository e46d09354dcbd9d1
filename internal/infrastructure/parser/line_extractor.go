package parser

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"LottoScanner/internal/dateparse"
	"LottoScanner/internal/domain"
	"LottoScanner/internal/extract"
	"LottoScanner/internal/normalize"
	"LottoScanner/internal/ports"
)

// LineExtractor recovers draws from headerless space/tab-separated dumps
// where a 3-token date pattern has to be located positionally.
type LineExtractor struct {
	fetcher ports.Fetcher
	rules   domain.RuleTable
	norm    normalize.Normalizer
	logger  *slog.Logger
}

var _ extract.Extractor = (*LineExtractor)(nil)

// NewLineExtractor wires the shared fetcher and rule table.
func NewLineExtractor(fetcher ports.Fetcher, rules domain.RuleTable, logger *slog.Logger) *LineExtractor {
	return &LineExtractor{
		fetcher: fetcher,
		rules:   rules,
		norm:    normalize.New(rules),
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (e *LineExtractor) Name() string {
	return "lines"
}

// Extract fetches the configured flat-file endpoints and parses them line by
// line. Failures degrade to an empty result with a reason, never an abort.
func (e *LineExtractor) Extract(ctx context.Context, req extract.Request) extract.Result {
	if len(req.CSVURLs) == 0 {
		return extract.Result{Stage: e.Name(), Err: errors.New("no flat-file endpoints configured")}
	}

	var lastErr error
	for _, u := range req.CSVURLs {
		res, err := e.fetcher.Get(ctx, u, nil)
		if err != nil {
			lastErr = err
			e.debug("line fetch failed", "url", u, "error", err)
			continue
		}
		if draws := e.ParseBody(res.Body, req.GameID); len(draws) > 0 {
			return extract.Result{Stage: e.Name(), Draws: draws}
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no token lines recovered")
	}
	return extract.Result{Stage: e.Name(), Err: lastErr}
}

// ParseBody applies the positional token parse to every line of body.
func (e *LineExtractor) ParseBody(body []byte, gameID string) []domain.Draw {
	var draws []domain.Draw
	for _, line := range nonEmptyLines(string(body)) {
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

func (e *LineExtractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

// parseTokenLine scans a whitespace/comma tokenized line for the first index
// where three consecutive all-digit tokens form a plausible date triple
// (month-first tried before day-first, 4-digit year). Tokens before the date
// are the game label, tokens after it are candidate balls.
func parseTokenLine(line string, rules domain.RuleTable, gameID string) (time.Time, []int, []int, bool) {
	tokens := splitTokens(line)

	for i := 0; i+2 < len(tokens); i++ {
		a, okA := atoiAll(tokens[i])
		b, okB := atoiAll(tokens[i+1])
		year, okY := atoiAll(tokens[i+2])
		if !okA || !okB || !okY || len(tokens[i+2]) != 4 {
			continue
		}
		date, ok := dateparse.Triple(a, b, year)
		if !ok {
			continue
		}

		var balls []int
		for _, tok := range tokens[i+3:] {
			if n, ok := atoiAll(tok); ok {
				balls = append(balls, n)
			}
		}
		if len(balls) == 0 {
			return time.Time{}, nil, nil, false
		}

		label := strings.Join(tokens[:i], " ")
		rule, hasRule := ruleFor(label, gameID, rules)
		main, bonus := sliceBalls(balls, rule, hasRule)
		return date, main, bonus, true
	}

	return time.Time{}, nil, nil, false
}

// ruleFor prefers a rule matched from the row's own label over the rule of
// the requesting source's game identifier.
func ruleFor(label, gameID string, rules domain.RuleTable) (domain.GameRule, bool) {
	if _, rule, ok := rules.MatchLabel(label); ok {
		return rule, true
	}
	if rule, ok := rules.Lookup(gameID); ok {
		return rule, true
	}
	return domain.GameRule{}, false
}

// sliceBalls splits a flat ball list into main and bonus picks, by rule
// counts when one is known, otherwise by the fixed count heuristic
// (6 balls: 5+1, 7: 5+2, 8: 7+1, anything else: 5 plus the rest).
func sliceBalls(balls []int, rule domain.GameRule, hasRule bool) ([]int, []int) {
	if hasRule && rule.MainCount > 0 && len(balls) >= rule.MainCount {
		main := balls[:rule.MainCount]
		rest := balls[rule.MainCount:]
		if len(rest) > rule.BonusCount {
			rest = rest[:rule.BonusCount]
		}
		return main, rest
	}

	switch len(balls) {
	case 6:
		return balls[:5], balls[5:]
	case 7:
		return balls[:5], balls[5:]
	case 8:
		return balls[:7], balls[7:]
	default:
		if len(balls) > 5 {
			return balls[:5], balls[5:]
		}
		return balls, nil
	}
}

func splitTokens(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == ';'
	})
}

func atoiAll(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
