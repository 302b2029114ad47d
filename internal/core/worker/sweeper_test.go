package worker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vietddude/faxroute/internal/core/config"
)

func touch(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSweeper_RemovesOnlyStaleSpoolFiles(t *testing.T) {
	dir := t.TempDir()
	stale := touch(t, dir, "fax_20260101_000000_abc.pdf", 2*time.Hour)
	fresh := touch(t, dir, "fax_20260101_000000_def.pdf", time.Minute)
	foreign := touch(t, dir, "notes.pdf", 2*time.Hour)
	wrongExt := touch(t, dir, "fax_dump.log", 2*time.Hour)

	s := NewSweeper(config.CleanupConfig{
		TmpDir:        dir,
		MaxAge:        time.Hour,
		SweepInterval: time.Hour,
	}, nil)
	s.sweep()

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale spool file should be removed")
	}
	for _, path := range []string{fresh, foreign, wrongExt} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s should survive the sweep: %v", filepath.Base(path), err)
		}
	}
}

func TestSweeper_MissingDirIsNotAnError(t *testing.T) {
	s := NewSweeper(config.CleanupConfig{
		TmpDir:        filepath.Join(t.TempDir(), "nope"),
		MaxAge:        time.Hour,
		SweepInterval: time.Hour,
	}, nil)
	s.sweep()
}
