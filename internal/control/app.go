// Package control wires the pipeline together and manages its lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/vietddude/faxroute/internal/classify"
	"github.com/vietddude/faxroute/internal/core/config"
	"github.com/vietddude/faxroute/internal/core/domain"
	"github.com/vietddude/faxroute/internal/core/worker"
	"github.com/vietddude/faxroute/internal/health"
	"github.com/vietddude/faxroute/internal/infra/ai"
	"github.com/vietddude/faxroute/internal/infra/gateway"
	"github.com/vietddude/faxroute/internal/infra/mail"
	"github.com/vietddude/faxroute/internal/infra/ocr"
	"github.com/vietddude/faxroute/internal/infra/redact"
	"github.com/vietddude/faxroute/internal/pipeline"
	"github.com/vietddude/faxroute/internal/processed"
	"github.com/vietddude/faxroute/internal/routing"
)

// App is the assembled application: poller, background workers, and the
// health server.
type App struct {
	cfg          *config.AppConfig
	poller       *pipeline.Poller
	sweeper      *worker.Sweeper
	pruner       *worker.Pruner
	healthServer *health.Server
	redisSet     *processed.RedisSet
	log          *slog.Logger

	cancelWorkers context.CancelFunc
}

// New builds the application from resolved configuration.
func New(cfg *config.AppConfig, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(cfg.Cleanup.TmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	// Processed set: Redis when configured, in-memory otherwise.
	var set processed.Set
	var redisSet *processed.RedisSet
	if cfg.Redis.URL != "" {
		var err error
		redisSet, err = processed.NewRedisSet(cfg.Redis.URL, cfg.Redis.Password)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		set = redisSet
		log.Info("app.processed_set", "backend", "redis")
	} else {
		set = processed.NewMemorySet()
		log.Info("app.processed_set", "backend", "memory")
	}

	gw := gateway.NewHumbleFaxClient(cfg.Gateway)

	var redactor redact.Redactor
	if cfg.Classify.PrivacyMode {
		redactor = redact.NewPresidioClient(cfg.Classify.Redaction)
	}

	aiClient := ai.NewAnthropicClient(cfg.Classify.AI, cfg.Classify.DefaultCategory, keywordHints(cfg.Classify.KeywordRules), log)

	matcher := classify.NewMatcher(cfg.Classify.SenderMappings, keywordRules(cfg.Classify.KeywordRules))
	classifier := classify.New(classify.Config{
		Categories:         cfg.Classify.Categories,
		DefaultCategory:    cfg.Classify.DefaultCategory,
		PrivacyMode:        cfg.Classify.PrivacyMode,
		EmptyTextToDefault: cfg.Classify.OCR.EmptyTextToDefault,
	}, matcher, ocr.NewTesseract(cfg.Classify.OCR, log), redactor, aiClient, log)

	sender, err := mail.NewSMTPSender(cfg.Routing.Mail)
	if err != nil {
		return nil, fmt.Errorf("init mail: %w", err)
	}
	router := routing.New(domain.RoutingTable{
		Routes:             cfg.Routing.Table,
		DefaultDestination: cfg.Routing.DefaultDestination,
	}, sender, routing.RetryConfig{
		MaxAttempts:    cfg.Routing.MaxAttempts,
		InitialBackoff: cfg.Routing.InitialBackoff,
		MaxBackoff:     cfg.Routing.MaxBackoff,
	}, log)

	monitor := health.NewMonitor(cfg.Poll.Interval)

	processor := pipeline.NewProcessor(pipeline.ProcessorConfig{
		TmpDir:           cfg.Cleanup.TmpDir,
		DownloadAttempts: cfg.Poll.DownloadAttempts,
		DownloadBackoff:  cfg.Poll.DownloadBackoff,
	}, gw, classifier, router, set, monitor, log)

	poller := pipeline.NewPoller(pipeline.PollerConfig{
		Interval: cfg.Poll.Interval,
		Workers:  cfg.Poll.Workers,
	}, gw, processor, set, monitor, log)

	return &App{
		cfg:          cfg,
		poller:       poller,
		sweeper:      worker.NewSweeper(cfg.Cleanup, log),
		pruner:       worker.NewPruner(cfg.Cleanup, set, log),
		healthServer: health.NewServer(monitor, cfg.Server.Port),
		redisSet:     redisSet,
		log:          log,
	}, nil
}

// Start launches the health server, the poll loop, and the maintenance
// workers. It returns immediately.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("app.health_server_failed", "error", err)
		}
	}()

	workerCtx, cancel := context.WithCancel(ctx)
	a.cancelWorkers = cancel
	go a.sweeper.Start(workerCtx)
	go a.pruner.Start(workerCtx)

	a.poller.Start(ctx)
	a.log.Info("app.started", "port", a.cfg.Server.Port, "poll_interval", a.cfg.Poll.Interval)
	return nil
}

// Stop shuts the application down, letting the in-flight poll cycle finish.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("app.stopping")

	a.poller.Stop()
	if a.cancelWorkers != nil {
		a.cancelWorkers()
	}
	if a.redisSet != nil {
		if err := a.redisSet.Close(); err != nil {
			a.log.Warn("app.redis_close_failed", "error", err)
		}
	}
	return a.healthServer.Stop(ctx)
}

func keywordRules(rules []config.KeywordRule) []domain.KeywordRule {
	out := make([]domain.KeywordRule, len(rules))
	for i, r := range rules {
		out[i] = domain.KeywordRule{Keyword: r.Keyword, Category: r.Category}
	}
	return out
}

func keywordHints(rules []config.KeywordRule) []string {
	hints := make([]string, len(rules))
	for i, r := range rules {
		hints[i] = fmt.Sprintf("%s: %s", r.Keyword, r.Category)
	}
	return hints
}
