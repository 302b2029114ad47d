package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vietddude/faxroute/internal/classify"
	"github.com/vietddude/faxroute/internal/core/domain"
	"github.com/vietddude/faxroute/internal/health"
	"github.com/vietddude/faxroute/internal/infra/gateway"
	"github.com/vietddude/faxroute/internal/metrics"
	"github.com/vietddude/faxroute/internal/processed"
	"github.com/vietddude/faxroute/internal/routing"
)

// Outcome labels for metrics and logs.
const (
	outcomeRouted         = "routed"
	outcomePartial        = "partial"
	outcomeFailed         = "failed"
	outcomeDownloadFailed = "download_failed"
)

// ProcessorConfig holds per-fax processing settings.
type ProcessorConfig struct {
	TmpDir           string
	DownloadAttempts int
	DownloadBackoff  time.Duration
}

// Processor drives one fax end-to-end: download, classify, route, cleanup.
// Failures are recorded on the record and never propagate to the caller;
// the poll cycle and other faxes are unaffected.
type Processor struct {
	cfg        ProcessorConfig
	gateway    gateway.Client
	classifier *classify.Classifier
	router     *routing.Router
	processed  processed.Set
	monitor    *health.Monitor
	log        *slog.Logger
}

// NewProcessor creates a per-fax processor.
func NewProcessor(
	cfg ProcessorConfig,
	gw gateway.Client,
	classifier *classify.Classifier,
	router *routing.Router,
	set processed.Set,
	monitor *health.Monitor,
	log *slog.Logger,
) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		cfg:        cfg,
		gateway:    gw,
		classifier: classifier,
		router:     router,
		processed:  set,
		monitor:    monitor,
		log:        log,
	}
}

// Process handles a single discovered fax. The returned record carries the
// terminal state for observability; the caller does not act on it.
func (p *Processor) Process(ctx context.Context, sum domain.FaxSummary) *domain.FaxRecord {
	rec := domain.NewFaxRecord(sum)
	log := p.log.With("fax_id", rec.ID)

	scope := newCleanupScope(log)
	defer scope.Release()

	// Download with bounded retries. Exhaustion leaves the identifier out of
	// the processed set so the next cycle rediscovers it.
	blobs, err := p.download(ctx, rec)
	if err != nil {
		rec.Status = domain.StatusFailed
		rec.Error = err.Error()
		metrics.FaxesProcessed.WithLabelValues(outcomeDownloadFailed).Inc()
		p.monitor.RecordDownloadFailure()
		log.Error("pipeline.download_failed", "error", err, "attempts", p.cfg.DownloadAttempts)
		return rec
	}
	rec.Status = domain.StatusDownloaded

	// Spool the document so an operator can recover it if the process dies
	// mid-delivery; the scope (or the sweeper, after a crash) removes it.
	if path, err := p.spoolDocument(rec, blobs.Document); err == nil {
		scope.Track(path)
	} else {
		log.Warn("pipeline.spool_failed", "error", err)
	}

	rec.Status = domain.StatusClassifying
	rec.Category, rec.Method = p.classifier.Classify(ctx, rec, blobs.Raster)
	rec.Status = domain.StatusClassified
	log.Info("pipeline.classified", "category", rec.Category, "method", rec.Method)

	result := p.router.Route(ctx, rec, blobs.Document)

	// Attachments are released before the record goes terminal.
	scope.Release()
	p.finalize(ctx, rec, result, log)
	return rec
}

func (p *Processor) download(ctx context.Context, rec *domain.FaxRecord) (gateway.Blobs, error) {
	rec.Status = domain.StatusDownloading

	var lastErr error
	for attempt := 0; attempt < p.cfg.DownloadAttempts; attempt++ {
		blobs, err := p.gateway.Download(ctx, rec.ID)
		if err == nil {
			return blobs, nil
		}
		lastErr = err

		if !domain.IsTransient(err) {
			break
		}
		if attempt == p.cfg.DownloadAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return gateway.Blobs{}, ctx.Err()
		case <-time.After(p.cfg.DownloadBackoff):
		}
	}
	return gateway.Blobs{}, fmt.Errorf("download failed after %d attempts: %w", p.cfg.DownloadAttempts, lastErr)
}

func (p *Processor) spoolDocument(rec *domain.FaxRecord, document []byte) (string, error) {
	if err := os.MkdirAll(p.cfg.TmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}
	name := fmt.Sprintf("fax_%s_%s.pdf", time.Now().Format("20060102_150405"), rec.ID)
	path := filepath.Join(p.cfg.TmpDir, name)
	if err := os.WriteFile(path, document, 0o600); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
}

// finalize marks the terminal outcome and adds the identifier to the
// processed set exactly once. Every outcome is logged distinctly so an
// operator can identify faxes needing manual attention.
func (p *Processor) finalize(ctx context.Context, rec *domain.FaxRecord, result routing.Result, log *slog.Logger) {
	var outcome string
	switch result {
	case routing.ResultRouted:
		outcome = outcomeRouted
		rec.Status = domain.StatusCleanedUp
		log.Info("pipeline.routed", "category", rec.Category, "destinations", len(rec.Deliveries))
	case routing.ResultPartial:
		outcome = outcomePartial
		rec.Status = domain.StatusCleanedUp
		p.monitor.RecordPartialFailure()
		log.Error("pipeline.partially_routed",
			"category", rec.Category,
			"deliveries", fmt.Sprintf("%+v", rec.Deliveries),
		)
	default:
		outcome = outcomeFailed
		rec.Status = domain.StatusFailed
		log.Error("pipeline.routing_failed", "category", rec.Category, "error", rec.Error)
	}
	metrics.FaxesProcessed.WithLabelValues(outcome).Inc()
	p.monitor.RecordFaxProcessed()

	// Terminal state reached: dedup the identifier. Best effort; a failed
	// add means at worst a re-delivery next cycle.
	if err := p.processed.Add(ctx, rec.ID); err != nil {
		log.Warn("pipeline.processed_add_failed", "error", err)
	}
}
