package parser

import (
	"context"
	"fmt"

	"LottoScanner/internal/domain"
	"LottoScanner/internal/ports"
)

// stubFetcher serves canned bodies keyed by URL.
type stubFetcher struct {
	bodies map[string]string
	types  map[string]string
	errs   map[string]error
	calls  []string
}

func (f *stubFetcher) Get(_ context.Context, url string, _ map[string]string) (ports.FetchResult, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return ports.FetchResult{}, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return ports.FetchResult{}, fmt.Errorf("no stub body for %s", url)
	}
	return ports.FetchResult{Body: []byte(body), ContentType: f.types[url]}, nil
}

func testRules() domain.RuleTable {
	return domain.NewRuleTable(domain.DefaultRules())
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
