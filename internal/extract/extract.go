package extract

import (
	"context"
	"fmt"
	"time"

	"LottoScanner/internal/domain"
)

// Request carries all parameters required to run one extraction stage for a
// configured source.
type Request struct {
	Source   string
	GameID   string
	PageID   string
	HTMLURL  string
	CSVURLs  []string
	APIURL   string
	PagedURL string
	// DeviceID is an optional provider-specific header value; empty means
	// the header is skipped.
	DeviceID string
	// DiscoverAPI asks the API stage to scrape the HTML page for a
	// downloadable game id when no API URL is configured.
	DiscoverAPI bool
	// Cutoff bounds the paginated-feed traversal; zero disables the check.
	Cutoff   time.Time
	MaxPages int
}

// Result is the outcome of one extraction stage: draws on success, an empty
// slice with a nil error when the stage simply found nothing, or an empty
// slice with a reason when the stage failed outright. Stages never panic and
// never return a fatal error.
type Result struct {
	Stage string
	Draws []domain.Draw
	Err   error
}

// Extractor is a single format-specific extraction strategy.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, req Request) Result
}

// Registry keeps a mapping from stage names to their implementations.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: map[string]Extractor{}}
}

// Register adds or replaces an extractor implementation.
func (r *Registry) Register(ex Extractor) {
	if r.extractors == nil {
		r.extractors = map[string]Extractor{}
	}
	r.extractors[ex.Name()] = ex
}

// Resolve returns an extractor by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Extractor, error) {
	if ex, ok := r.extractors[name]; ok {
		return ex, nil
	}
	return nil, fmt.Errorf("extractor %s is not registered", name)
}
