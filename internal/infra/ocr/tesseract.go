package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vietddude/faxroute/internal/core/config"
	"github.com/vietddude/faxroute/internal/core/domain"
	"github.com/vietddude/faxroute/internal/metrics"
)

// Runner lets us stub the external command in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// Tesseract implements Extractor by shelling out to the tesseract binary.
// Multi-page TIFF input produces the text of all pages.
type Tesseract struct {
	cfg    config.OCRConfig
	runner Runner
	log    *slog.Logger
}

// NewTesseract creates a new tesseract-backed extractor.
func NewTesseract(cfg config.OCRConfig, log *slog.Logger) *Tesseract {
	if log == nil {
		log = slog.Default()
	}
	return &Tesseract{cfg: cfg, runner: execRunner{}, log: log}
}

// ExtractText writes the raster to a temp file and runs tesseract over it.
func (t *Tesseract) ExtractText(ctx context.Context, raster []byte) (string, error) {
	start := time.Now()

	tmp, err := os.CreateTemp("", "faxroute_ocr_*.tif")
	if err != nil {
		return "", domain.Transient(domain.BoundaryOCR, fmt.Errorf("create temp raster: %w", err))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raster); err != nil {
		tmp.Close()
		return "", domain.Transient(domain.BoundaryOCR, fmt.Errorf("write temp raster: %w", err))
	}
	tmp.Close()

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	// --psm 6: assume a uniform block of text
	args := []string{tmp.Name(), "stdout", "-l", t.cfg.Language, "--psm", "6"}
	stdout, stderr, err := t.runner.Run(ctx, t.cfg.Command, args...)

	metrics.BoundaryLatency.WithLabelValues(domain.BoundaryOCR).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryOCR, "transient").Inc()
		t.log.Error("ocr.extract.failed",
			"cmd", t.cfg.Command,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", truncate(string(stderr), 8<<10),
		)
		return "", domain.Transient(domain.BoundaryOCR, fmt.Errorf("tesseract: %w", err))
	}

	text := strings.TrimSpace(string(stdout))
	t.log.Debug("ocr.extract.ok",
		"duration_ms", time.Since(start).Milliseconds(),
		"text_len", len(text),
	)
	return text, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
