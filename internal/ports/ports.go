package ports

import (
	"context"
	"time"

	"LottoScanner/internal/domain"
)

// FetchResult is the body plus declared metadata of a successful GET.
type FetchResult struct {
	Body        []byte
	ContentType string
}

// Fetcher performs outbound GETs. Implementations return an error for
// transport failures and non-success statuses; callers treat any error as
// "this stage produced nothing".
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) (FetchResult, error)
}

// DrawSource resolves one configured source key to its draw history. Total
// extraction exhaustion yields an empty slice, not an error.
type DrawSource interface {
	Fetch(ctx context.Context, source string) ([]domain.Draw, error)
}

// DocumentStore persists JSON-like documents with upsert semantics.
type DocumentStore interface {
	Put(ctx context.Context, collection, key string, doc any) error
}

// ReportWriter emits a per-source diagnostic artifact; failures are logged,
// never fatal.
type ReportWriter interface {
	Write(name string, doc any) error
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
