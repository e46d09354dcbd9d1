package app

import (
	"context"
	"log/slog"

	"LottoScanner/internal/config"
	"LottoScanner/internal/domain"
	"LottoScanner/internal/extract"
	"LottoScanner/internal/infrastructure/fetch"
	"LottoScanner/internal/infrastructure/parser"
	"LottoScanner/internal/infrastructure/report"
	"LottoScanner/internal/infrastructure/scheduler"
	"LottoScanner/internal/infrastructure/storage"
	"LottoScanner/internal/infrastructure/telegram"
	"LottoScanner/internal/logging"
	"LottoScanner/internal/ports"
	"LottoScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Run assembles the adapters, performs an immediate scan, and keeps running
// scheduled scans until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	rules := a.ruleTable()

	fetcher := fetch.New(a.cfg.HTTP.Timeout())

	csvExtractor := parser.NewCSVExtractor(fetcher, rules, a.logger.With("component", "extract.csv"))

	registry := extract.NewRegistry()
	registry.Register(csvExtractor)
	registry.Register(parser.NewLineExtractor(fetcher, rules, a.logger.With("component", "extract.lines")))
	registry.Register(parser.NewHTMLExtractor(fetcher, rules, a.logger.With("component", "extract.html")))
	registry.Register(parser.NewPagedExtractor(fetcher, rules, 0, a.logger.With("component", "extract.paged")))
	registry.Register(parser.NewAPIExtractor(fetcher, rules, csvExtractor, a.logger.With("component", "extract.api")))

	dispatcher := parser.NewDispatcher(registry, a.cfg.Sources, a.cfg.API.DeviceID, a.cfg.Window.Days,
		a.logger.With("component", "dispatcher"))

	store, err := storage.Open(ctx, a.cfg.Database.DSN)
	if err != nil {
		a.logger.Warn("document store unavailable, persisting to files only", "error", err)
	}
	defer func() {
		if store != nil {
			_ = store.Close()
		}
	}()

	var docStore ports.DocumentStore
	if store != nil {
		docStore = store
	}

	var notifier ports.Notifier
	if a.cfg.Notifications.Telegram.BotToken != "" && a.cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(a.cfg.Notifications.Telegram.BotToken, a.cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   dispatcher,
		Store:    docStore,
		Reports:  report.NewFileWriter(a.cfg.Output.Dir),
		Notifier: notifier,
		Rules:    rules,
		Sources:  a.cfg.Sources,
		Window:   a.cfg.Window,
		Output:   a.cfg.Output,
		Logger:   a.logger.With("component", "pipeline"),
	})

	cron := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	runner := usecase.NewScheduler(cron, pipeline)
	if err := runner.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return runner.Stop(context.Background())
}

// ruleTable merges configured game rules over the built-in defaults.
func (a *Application) ruleTable() domain.RuleTable {
	rules := domain.DefaultRules()
	for id, rule := range a.cfg.Games {
		rules[id] = domain.GameRule{
			MainCount:  rule.MainCount,
			BonusCount: rule.BonusCount,
			MainMax:    rule.MainMax,
			BonusMax:   rule.BonusMax,
		}
	}
	return domain.NewRuleTable(rules)
}
