package domain

import "strings"

// GameRule describes the expected pick counts and valid ranges for one game.
// A zero max means "no upper bound" for that position.
type GameRule struct {
	MainCount  int
	BonusCount int
	MainMax    int
	BonusMax   int
}

// RuleTable is an immutable lookup of game identifiers to their rules. It is
// built once at startup and passed explicitly into every component that
// slices or range-filters ball lists.
type RuleTable struct {
	rules map[string]GameRule
}

// NewRuleTable copies the provided map so later mutation of the argument
// cannot leak into the table.
func NewRuleTable(rules map[string]GameRule) RuleTable {
	copied := make(map[string]GameRule, len(rules))
	for id, rule := range rules {
		copied[normalizeGameID(id)] = rule
	}
	return RuleTable{rules: copied}
}

// Lookup returns the rule for a game identifier.
func (t RuleTable) Lookup(gameID string) (GameRule, bool) {
	rule, ok := t.rules[normalizeGameID(gameID)]
	return rule, ok
}

// MatchLabel resolves a free-form game label (e.g. the leading tokens of a
// headerless result line) to a rule by prefix match against known game keys.
// Longer keys win so "lotto-hotpicks" is never shadowed by "lotto".
func (t RuleTable) MatchLabel(label string) (string, GameRule, bool) {
	normalized := normalizeGameID(label)
	if normalized == "" {
		return "", GameRule{}, false
	}
	bestID := ""
	var bestRule GameRule
	for id, rule := range t.rules {
		if !strings.HasPrefix(normalized, id) {
			continue
		}
		if len(id) > len(bestID) {
			bestID, bestRule = id, rule
		}
	}
	if bestID == "" {
		return "", GameRule{}, false
	}
	return bestID, bestRule, true
}

func normalizeGameID(id string) string {
	id = strings.ToLower(id)
	id = strings.ReplaceAll(id, " ", "")
	id = strings.ReplaceAll(id, "-", "")
	id = strings.ReplaceAll(id, "_", "")
	return id
}

// DefaultRules covers the games shipped in the default source table.
func DefaultRules() map[string]GameRule {
	return map[string]GameRule{
		"powerball":             {MainCount: 5, BonusCount: 1, MainMax: 69, BonusMax: 26},
		"megamillions":          {MainCount: 5, BonusCount: 1, MainMax: 70, BonusMax: 25},
		"euromillions":          {MainCount: 5, BonusCount: 2, MainMax: 50, BonusMax: 12},
		"lotto":                 {MainCount: 6, BonusCount: 1, MainMax: 59, BonusMax: 59},
		"thunderball":           {MainCount: 5, BonusCount: 1, MainMax: 39, BonusMax: 14},
		"set-for-life":          {MainCount: 5, BonusCount: 1, MainMax: 47, BonusMax: 10},
		"euromillions-hotpicks": {MainCount: 5, BonusCount: 0, MainMax: 50},
		"lotto-hotpicks":        {MainCount: 6, BonusCount: 0, MainMax: 59},
	}
}
