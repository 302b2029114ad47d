// Package pipeline discovers pending faxes, runs each through the
// download-classify-route sequence, and tracks terminal identifiers so a fax
// is processed at most once.
package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/faxroute/internal/core/domain"
	"github.com/vietddude/faxroute/internal/health"
	"github.com/vietddude/faxroute/internal/infra/gateway"
	"github.com/vietddude/faxroute/internal/metrics"
	"github.com/vietddude/faxroute/internal/processed"
)

// PollerConfig holds the discovery-loop settings.
type PollerConfig struct {
	Interval time.Duration
	Workers  int
}

// Poller runs the discovery loop: list pending faxes, drop the ones already
// seen, and fan the rest out to the processor.
type Poller struct {
	cfg       PollerConfig
	gateway   gateway.Client
	processor *Processor
	processed processed.Set
	monitor   *health.Monitor
	log       *slog.Logger

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// NewPoller creates a poller.
func NewPoller(
	cfg PollerConfig,
	gw gateway.Client,
	processor *Processor,
	set processed.Set,
	monitor *health.Monitor,
	log *slog.Logger,
) *Poller {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{
		cfg:       cfg,
		gateway:   gw,
		processor: processor,
		processed: set,
		monitor:   monitor,
		log:       log,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs the poll loop until Stop is called or the context is cancelled.
// The first cycle runs immediately rather than waiting one interval.
func (p *Poller) Start(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(p.done)
		p.log.Info("poller.started", "interval", p.cfg.Interval, "workers", p.cfg.Workers)

		p.runCycle(ctx)

		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				p.log.Info("poller.stopped", "reason", "context cancelled")
				return
			case <-p.stop:
				p.log.Info("poller.stopped", "reason", "stop requested")
				return
			case <-ticker.C:
				p.runCycle(ctx)
			}
		}
	}()
}

// Stop signals the loop to exit and waits for the in-flight cycle to finish.
func (p *Poller) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.stop)
	<-p.done
}

// runCycle performs one discovery pass. A listing failure skips the whole
// cycle; already-known faxes still pending at the gateway are skipped
// individually.
func (p *Poller) runCycle(ctx context.Context) {
	summaries, err := p.gateway.ListPending(ctx)
	if err != nil {
		metrics.PollCycles.WithLabelValues("error").Inc()
		p.monitor.RecordCycleError(err)
		p.log.Error("poller.list_failed", "error", err)
		return
	}

	fresh := p.filterNew(ctx, summaries)
	if len(fresh) > 0 {
		p.log.Info("poller.cycle", "pending", len(summaries), "new", len(fresh))
		metrics.FaxesDiscovered.Add(float64(len(fresh)))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.Workers)
		for _, sum := range fresh {
			g.Go(func() error {
				p.processor.Process(gctx, sum)
				return nil
			})
		}
		g.Wait()
	}

	metrics.PollCycles.WithLabelValues("ok").Inc()
	metrics.LastSuccessfulPoll.SetToCurrentTime()
	if size, err := p.processed.Size(ctx); err == nil {
		metrics.ProcessedSetSize.Set(float64(size))
	}
	p.monitor.RecordCycleSuccess()
}

// filterNew drops faxes already in the processed set plus duplicates within
// the listing itself.
func (p *Poller) filterNew(ctx context.Context, summaries []domain.FaxSummary) []domain.FaxSummary {
	seen := make(map[string]struct{}, len(summaries))
	fresh := make([]domain.FaxSummary, 0, len(summaries))

	for _, sum := range summaries {
		if sum.ID == "" {
			continue
		}
		if _, dup := seen[sum.ID]; dup {
			continue
		}
		seen[sum.ID] = struct{}{}

		known, err := p.processed.Contains(ctx, sum.ID)
		if err != nil {
			// Degrade toward re-processing rather than dropping a fax.
			p.log.Warn("poller.dedup_check_failed", "fax_id", sum.ID, "error", err)
		}
		if known {
			continue
		}
		fresh = append(fresh, sum)
	}
	return fresh
}
