package extract

import (
	"regexp"
	"strconv"
)

var digitRuns = map[int]*regexp.Regexp{
	1: regexp.MustCompile(`\d`),
	2: regexp.MustCompile(`\d{1,2}`),
	3: regexp.MustCompile(`\d{1,3}`),
}

// Numbers extracts all digit runs of up to maxWidth digits from text, in
// order. Longer runs are split greedily, so "123" at width 2 yields 12 and 3.
// No range filtering or dedup happens here; that is the rule table's job.
func Numbers(text string, maxWidth int) []int {
	expr, ok := digitRuns[maxWidth]
	if !ok {
		expr = digitRuns[2]
	}
	matches := expr.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	nums := make([]int, 0, len(matches))
	for _, m := range matches {
		if n, err := strconv.Atoi(m); err == nil {
			nums = append(nums, n)
		}
	}
	return nums
}

// WithoutYear drops every value equal to the recognized draw year. Years are
// the single largest source of false-positive ball tokens.
func WithoutYear(nums []int, year int) []int {
	filtered := make([]int, 0, len(nums))
	for _, n := range nums {
		if n == year {
			continue
		}
		filtered = append(filtered, n)
	}
	return filtered
}
