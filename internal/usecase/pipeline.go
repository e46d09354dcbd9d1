package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"LottoScanner/internal/config"
	"LottoScanner/internal/domain"
	"LottoScanner/internal/ports"
	"LottoScanner/internal/stats"
)

// interSourceDelay paces requests between sources so a run does not hammer
// the providers back to back.
const interSourceDelay = time.Second

// PipelineDeps wires all driven adapters into the scan pipeline.
type PipelineDeps struct {
	Source   ports.DrawSource
	Store    ports.DocumentStore
	Reports  ports.ReportWriter
	Notifier ports.Notifier
	Rules    domain.RuleTable
	Sources  []config.SourceConfig
	Window   config.WindowConfig
	Output   config.OutputConfig
	Logger   *slog.Logger
}

// Pipeline implements the full scan: extract each source, window and rank
// the draws, persist the snapshot, write the artifact, and send one digest.
// A single source failing never stops the run; every configured source gets
// a report, zero-valued when extraction came up empty.
type Pipeline struct {
	source   ports.DrawSource
	store    ports.DocumentStore
	reports  ports.ReportWriter
	notifier ports.Notifier
	rules    domain.RuleTable
	sources  []config.SourceConfig
	window   config.WindowConfig
	output   config.OutputConfig
	logger   *slog.Logger
	delay    time.Duration
	now      func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:   deps.Source,
		store:    deps.Store,
		reports:  deps.Reports,
		notifier: deps.Notifier,
		rules:    deps.Rules,
		sources:  deps.Sources,
		window:   deps.Window,
		output:   deps.Output,
		logger:   logger,
		delay:    interSourceDelay,
		now:      time.Now,
	}
}

// Run scans every configured source. It returns an error only when the run
// could not execute at all; per-source problems are logged and absorbed.
func (p *Pipeline) Run(ctx context.Context, trigger time.Time) error {
	if p.source == nil || len(p.sources) == 0 {
		return nil
	}

	now := p.now().UTC()
	var reports []domain.HotNumbersReport

	for i, src := range p.sources {
		if i > 0 && p.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.delay):
			}
		}

		report := p.scanSource(ctx, src, now)
		reports = append(reports, report)

		p.persist(ctx, src, report)
	}

	if p.notifier != nil {
		digest := buildDigestMessage(reports)
		if err := p.notifier.PublishDigest(ctx, digest); err != nil {
			p.logger.Warn("digest publish failed", "error", err)
		}
	}

	return nil
}

// scanSource produces the report for one source. Extraction failure or an
// empty history degrades to a zero-valued report.
func (p *Pipeline) scanSource(ctx context.Context, src config.SourceConfig, now time.Time) domain.HotNumbersReport {
	draws, err := p.source.Fetch(ctx, src.Name)
	if err != nil {
		p.logger.Error("source fetch failed", "source", src.Name, "error", err)
		draws = nil
	}

	recent := stats.FilterRecent(draws, p.window.Days, now)
	rule, hasRule := p.rules.Lookup(src.Game)

	report := stats.BuildReport(src.Name, draws, recent, rule, hasRule, src.RankCount(), now)
	p.logger.Info("source scanned",
		"source", src.Name,
		"draws_total", report.DrawsTotal,
		"draws_recent", report.DrawsRecent)
	return report
}

// persist writes the snapshot to the document store and the local artifact.
// Both are best effort; a failed write is a log line, not a run failure.
func (p *Pipeline) persist(ctx context.Context, src config.SourceConfig, report domain.HotNumbersReport) {
	if p.store != nil {
		if err := p.store.Put(ctx, p.output.Collection, src.Name, report); err != nil {
			p.logger.Warn("store write failed", "source", src.Name, "error", err)
		}
	}
	if p.reports != nil {
		if err := p.reports.Write(src.Name, report); err != nil {
			p.logger.Warn("report write failed", "source", src.Name, "error", err)
		}
	}
}

func buildDigestMessage(reports []domain.HotNumbersReport) string {
	var b strings.Builder
	b.WriteString("Lottery scan digest\n")
	for _, report := range reports {
		b.WriteString(fmt.Sprintf("- %s: %d draws in window", report.Source, report.DrawsRecent))
		if len(report.TopMain) > 0 {
			b.WriteString(" | hot:")
			for i, hot := range report.TopMain {
				if i >= 5 {
					break
				}
				b.WriteString(fmt.Sprintf(" %d", hot.Number))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
