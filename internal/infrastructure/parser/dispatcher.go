package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"LottoScanner/internal/config"
	"LottoScanner/internal/domain"
	"LottoScanner/internal/extract"
	"LottoScanner/internal/ports"
)

// Dispatcher resolves a configured source name to its draw history by running
// the source's extraction stages in priority order. The first stage that
// yields draws wins; a stage failure is a log line and a fallthrough, and
// exhausting every stage is a valid empty outcome.
type Dispatcher struct {
	registry *extract.Registry
	sources  map[string]config.SourceConfig
	deviceID string
	window   time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

var _ ports.DrawSource = (*Dispatcher)(nil)

// NewDispatcher indexes the configured sources by name.
func NewDispatcher(registry *extract.Registry, sources []config.SourceConfig, deviceID string, windowDays int, logger *slog.Logger) *Dispatcher {
	index := make(map[string]config.SourceConfig, len(sources))
	for _, src := range sources {
		index[src.Name] = src
	}
	return &Dispatcher{
		registry: registry,
		sources:  index,
		deviceID: deviceID,
		window:   time.Duration(windowDays) * 24 * time.Hour,
		now:      time.Now,
		logger:   logger,
	}
}

// Fetch runs the stage chain for one source. An unknown source name is a
// configuration error; stage exhaustion is not.
func (d *Dispatcher) Fetch(ctx context.Context, source string) ([]domain.Draw, error) {
	src, ok := d.sources[source]
	if !ok {
		return nil, fmt.Errorf("source %s is not configured", source)
	}

	req := extract.Request{
		Source:      src.Name,
		GameID:      src.Game,
		PageID:      src.PageID,
		HTMLURL:     src.HTMLURL,
		CSVURLs:     src.CSVURLs,
		APIURL:      src.APIURL,
		PagedURL:    src.PagedURL,
		DeviceID:    d.deviceID,
		DiscoverAPI: src.DiscoverAPI,
	}
	if d.window > 0 {
		req.Cutoff = d.now().UTC().Add(-d.window)
	}

	for _, stage := range stageOrder(src) {
		ex, err := d.registry.Resolve(stage)
		if err != nil {
			d.logger.Warn("stage not registered", "source", source, "stage", stage)
			continue
		}

		result := ex.Extract(ctx, req)
		if result.Err != nil {
			d.logger.Debug("stage yielded nothing", "source", source, "stage", result.Stage, "reason", result.Err)
			continue
		}
		if len(result.Draws) > 0 {
			d.logger.Info("source extracted", "source", source, "stage", result.Stage, "draws", len(result.Draws))
			return result.Draws, nil
		}
	}

	d.logger.Warn("all stages exhausted", "source", source)
	return nil, nil
}

// stageOrder derives the priority chain from the source's configured
// endpoints: structured endpoints first, scraping last. An explicit Stages
// list overrides the derivation entirely.
func stageOrder(src config.SourceConfig) []string {
	if len(src.Stages) > 0 {
		return src.Stages
	}

	var stages []string
	if src.APIURL != "" || src.DiscoverAPI {
		stages = append(stages, "api")
	}
	if len(src.CSVURLs) > 0 {
		stages = append(stages, "csv", "lines")
	}
	if src.PagedURL != "" {
		stages = append(stages, "paged")
	}
	if src.HTMLURL != "" {
		stages = append(stages, "html")
	}
	return stages
}
