package ocr

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/vietddude/faxroute/internal/core/config"
	"github.com/vietddude/faxroute/internal/core/domain"
)

type stubRunner struct {
	stdout  []byte
	stderr  []byte
	err     error
	gotName string
	gotArgs []string
}

func (r *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.gotName = name
	r.gotArgs = args
	return r.stdout, r.stderr, r.err
}

func newTestTesseract(runner Runner) *Tesseract {
	t := NewTesseract(config.OCRConfig{
		Command:  "tesseract",
		Language: "eng",
		Timeout:  5 * time.Second,
	}, nil)
	t.runner = runner
	return t
}

func TestExtractText(t *testing.T) {
	runner := &stubRunner{stdout: []byte("  PATIENT LAB REPORT\n\n")}
	ts := newTestTesseract(runner)

	text, err := ts.ExtractText(context.Background(), []byte("raster"))
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != "PATIENT LAB REPORT" {
		t.Errorf("Expected trimmed text, got %q", text)
	}
	if runner.gotName != "tesseract" {
		t.Errorf("Expected tesseract command, got %q", runner.gotName)
	}
	// raster goes through a temp file which must be cleaned up
	if len(runner.gotArgs) == 0 {
		t.Fatal("Expected args")
	}
	if _, err := os.Stat(runner.gotArgs[0]); !os.IsNotExist(err) {
		t.Errorf("Expected temp raster %s to be removed", runner.gotArgs[0])
	}
}

func TestExtractText_EngineFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("exit status 1"), stderr: []byte("cannot read image")}
	ts := newTestTesseract(runner)

	_, err := ts.ExtractText(context.Background(), []byte("bad"))
	if err == nil {
		t.Fatal("Expected error from engine failure")
	}
	var be *domain.BoundaryError
	if !errors.As(err, &be) || be.Boundary != domain.BoundaryOCR {
		t.Errorf("Expected OCR boundary error, got %v", err)
	}
}
