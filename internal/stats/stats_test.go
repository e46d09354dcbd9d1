package stats

import (
	"testing"
	"time"

	"LottoScanner/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFilterRecentIncludesBoundaryDay(t *testing.T) {
	t.Parallel()

	now := day(2024, time.March, 31)
	// March 1 is exactly 30 days back and must be kept; February 29 is one
	// day outside the window.
	draws := []domain.Draw{
		{Date: day(2024, time.March, 30)},
		{Date: day(2024, time.March, 1)},
		{Date: day(2024, time.February, 29)},
	}

	recent := FilterRecent(draws, 30, now)
	if len(recent) != 2 {
		t.Fatalf("expected 2 draws inside window, got %d", len(recent))
	}
	for _, draw := range recent {
		if draw.Date.Before(day(2024, time.March, 1)) {
			t.Fatalf("draw %s should have been filtered out", draw.Date)
		}
	}
}

func TestFilterRecentZeroWindowKeepsAll(t *testing.T) {
	t.Parallel()

	draws := []domain.Draw{{Date: day(1999, time.January, 1)}}
	if got := FilterRecent(draws, 0, day(2024, time.March, 31)); len(got) != 1 {
		t.Fatalf("zero window must disable filtering, got %d draws", len(got))
	}
}

func TestComputeHotTieBreaksOnSmallerNumber(t *testing.T) {
	t.Parallel()

	// 7 and 23 both appear three times; 7 must rank first.
	numbers := []int{23, 7, 23, 7, 23, 7, 11, 11}
	ranked := ComputeHot(numbers, 0, 3)

	if len(ranked) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ranked))
	}
	if ranked[0].Number != 7 || ranked[0].Count != 3 {
		t.Fatalf("expected 7x3 first, got %+v", ranked[0])
	}
	if ranked[1].Number != 23 || ranked[1].Count != 3 {
		t.Fatalf("expected 23x3 second, got %+v", ranked[1])
	}
	if ranked[2].Number != 11 || ranked[2].Count != 2 {
		t.Fatalf("expected 11x2 third, got %+v", ranked[2])
	}
}

func TestComputeHotSkipsOutOfRange(t *testing.T) {
	t.Parallel()

	ranked := ComputeHot([]int{70, 70, 70, 5, 5, 0, -3}, 69, 10)
	if len(ranked) != 1 {
		t.Fatalf("expected only the in-range number, got %+v", ranked)
	}
	if ranked[0].Number != 5 || ranked[0].Count != 2 {
		t.Fatalf("unexpected ranking %+v", ranked[0])
	}
}

func TestComputeHotTruncates(t *testing.T) {
	t.Parallel()

	ranked := ComputeHot([]int{1, 2, 3, 4, 5}, 0, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(ranked))
	}
}

func TestBuildReportEmptyDraws(t *testing.T) {
	t.Parallel()

	now := day(2024, time.March, 31)
	report := BuildReport("lotto", nil, nil, domain.GameRule{}, false, 10, now)

	if report.Source != "lotto" {
		t.Fatalf("unexpected source %q", report.Source)
	}
	if report.DrawsTotal != 0 || report.DrawsRecent != 0 {
		t.Fatalf("empty input must produce zero counts, got %+v", report)
	}
	if len(report.TopMain) != 0 || len(report.TopBonus) != 0 {
		t.Fatalf("empty input must produce empty rankings, got %+v", report)
	}
}

func TestBuildReportCountsMainAndBonusSeparately(t *testing.T) {
	t.Parallel()

	now := day(2024, time.March, 31)
	recent := []domain.Draw{
		{Date: day(2024, time.March, 30), Main: []int{1, 2, 3, 4, 5}, Bonus: []int{9}},
		{Date: day(2024, time.March, 29), Main: []int{1, 2, 3, 4, 6}, Bonus: []int{9}},
	}
	rule := domain.GameRule{MainCount: 5, BonusCount: 1, MainMax: 69, BonusMax: 26}

	report := BuildReport("powerball", recent, recent, rule, true, 4, now)
	if report.DrawsTotal != 2 || report.DrawsRecent != 2 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if len(report.TopMain) != 4 {
		t.Fatalf("expected top 4 main, got %d", len(report.TopMain))
	}
	if report.TopMain[0].Number != 1 || report.TopMain[0].Count != 2 {
		t.Fatalf("unexpected top main %+v", report.TopMain[0])
	}
	if len(report.TopBonus) != 1 || report.TopBonus[0].Number != 9 || report.TopBonus[0].Count != 2 {
		t.Fatalf("unexpected top bonus %+v", report.TopBonus)
	}
}
