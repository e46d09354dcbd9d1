// Package normalize turns raw candidate ball lists into canonical Draw
// records, applying the per-game range filters exactly once.
package normalize

import (
	"time"

	"LottoScanner/internal/domain"
)

// Normalizer builds canonical Draw records. It always succeeds: empty main
// or bonus lists are valid output, and deciding whether an empty-main record
// carries any signal is the caller's job.
type Normalizer struct {
	rules domain.RuleTable
}

// New wires the rule table used for range filtering.
func New(rules domain.RuleTable) Normalizer {
	return Normalizer{rules: rules}
}

// Normalize produces an immutable Draw from candidate values. Non-positive
// values are dropped; when a rule exists for gameID, values above the rule's
// maxima are dropped as well. Feeding a normalized Draw back through
// Normalize yields the same Draw.
func (n Normalizer) Normalize(date time.Time, main, bonus []int, gameID string) domain.Draw {
	mainMax, bonusMax := 0, 0
	if rule, ok := n.rules.Lookup(gameID); ok {
		mainMax, bonusMax = rule.MainMax, rule.BonusMax
	}
	return domain.Draw{
		Date:  date,
		Main:  filterRange(main, mainMax),
		Bonus: filterRange(bonus, bonusMax),
	}
}

// filterRange keeps positive values bounded by max; max <= 0 disables the
// upper bound.
func filterRange(nums []int, max int) []int {
	kept := make([]int, 0, len(nums))
	for _, v := range nums {
		if v <= 0 {
			continue
		}
		if max > 0 && v > max {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}
