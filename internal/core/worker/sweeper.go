// Package worker holds the background maintenance loops: the tmp-file
// sweeper and the processed-set pruner.
package worker

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vietddude/faxroute/internal/core/config"
	"github.com/vietddude/faxroute/internal/metrics"
)

// Sweeper removes stale spooled files from the tmp directory. Files normally
// disappear with their fax's cleanup scope; the sweeper catches the ones left
// behind by a crash or kill.
type Sweeper struct {
	cfg config.CleanupConfig
	log *slog.Logger
}

// NewSweeper creates a sweeper.
func NewSweeper(cfg config.CleanupConfig, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{cfg: cfg, log: log}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	if s.cfg.SweepInterval <= 0 || s.cfg.MaxAge <= 0 {
		return
	}

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	entries, err := os.ReadDir(s.cfg.TmpDir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("sweeper.read_dir_failed", "dir", s.cfg.TmpDir, "error", err)
		}
		return
	}

	cutoff := time.Now().Add(-s.cfg.MaxAge)
	var swept int
	for _, entry := range entries {
		if entry.IsDir() || !sweepable(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.cfg.TmpDir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.log.Warn("sweeper.remove_failed", "path", path, "error", err)
			continue
		}
		swept++
	}

	if swept > 0 {
		metrics.TmpFilesSwept.Add(float64(swept))
		s.log.Info("sweeper.swept", "files", swept, "dir", s.cfg.TmpDir)
	}
}

// sweepable restricts the sweeper to the artifacts the pipeline spools, so
// an operator file dropped into the directory survives.
func sweepable(name string) bool {
	if !strings.HasPrefix(name, "fax_") && !strings.HasPrefix(name, "faxroute_") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".tif", ".tiff":
		return true
	}
	return false
}
