package stats

import (
	"sort"
	"time"

	"LottoScanner/internal/domain"
)

// FilterRecent keeps draws dated inside the trailing window ending at now.
// The boundary day itself is included.
func FilterRecent(draws []domain.Draw, windowDays int, now time.Time) []domain.Draw {
	if windowDays <= 0 {
		return draws
	}

	cutoff := now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, -windowDays)
	var recent []domain.Draw
	for _, draw := range draws {
		if !draw.Date.Before(cutoff) {
			recent = append(recent, draw)
		}
	}
	return recent
}

// ComputeHot counts occurrences and returns the top n, most frequent first,
// ties broken by the smaller number. Numbers outside the rule's range are
// skipped; a zero max disables the bound.
func ComputeHot(numbers []int, max, n int) []domain.HotCount {
	counts := map[int]int{}
	for _, num := range numbers {
		if num <= 0 {
			continue
		}
		if max > 0 && num > max {
			continue
		}
		counts[num]++
	}

	ranked := make([]domain.HotCount, 0, len(counts))
	for num, count := range counts {
		ranked = append(ranked, domain.HotCount{Number: num, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Number < ranked[j].Number
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// BuildReport assembles the per-source summary from the full and windowed
// draw sets. Empty draw sets produce a zero-valued report, not an error.
func BuildReport(source string, all, recent []domain.Draw, rule domain.GameRule, hasRule bool, topN int, now time.Time) domain.HotNumbersReport {
	var mains, bonuses []int
	for _, draw := range recent {
		mains = append(mains, draw.Main...)
		bonuses = append(bonuses, draw.Bonus...)
	}

	mainMax, bonusMax := 0, 0
	if hasRule {
		mainMax, bonusMax = rule.MainMax, rule.BonusMax
	}

	return domain.HotNumbersReport{
		Source:      source,
		FetchedAt:   now.UTC(),
		DrawsTotal:  len(all),
		DrawsRecent: len(recent),
		TopMain:     ComputeHot(mains, mainMax, topN),
		TopBonus:    ComputeHot(bonuses, bonusMax, topN),
	}
}
