package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/faxroute/internal/core/config"
	"github.com/vietddude/faxroute/internal/processed"
)

// Pruner trims old identifiers from the processed set so it does not grow
// without bound. The gateway's listing window is far shorter than the TTL,
// so pruned identifiers can no longer be rediscovered.
type Pruner struct {
	cfg config.CleanupConfig
	set processed.Set
	log *slog.Logger
}

// NewPruner creates a pruner.
func NewPruner(cfg config.CleanupConfig, set processed.Set, log *slog.Logger) *Pruner {
	if log == nil {
		log = slog.Default()
	}
	return &Pruner{cfg: cfg, set: set, log: log}
}

// Start runs the prune loop until the context is cancelled.
func (p *Pruner) Start(ctx context.Context) {
	if p.cfg.ProcessedTTL <= 0 || p.cfg.PruneInterval <= 0 {
		return
	}

	ticker := time.NewTicker(p.cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	cutoff := time.Now().Add(-p.cfg.ProcessedTTL)
	removed, err := p.set.PruneOlderThan(ctx, cutoff)
	if err != nil {
		p.log.Warn("pruner.prune_failed", "error", err)
		return
	}
	if removed > 0 {
		p.log.Info("pruner.pruned", "removed", removed, "cutoff", cutoff)
	}
}
