package pipeline

import (
	"log/slog"
	"os"
	"sync"
)

// cleanupScope owns the temporary artifacts acquired for one fax and
// guarantees they are released exactly once on every exit path. Callers
// defer Release as a backstop and may also call it explicitly before
// marking the record terminal; the second call is a no-op. A failed removal
// is logged and never blocks pipeline completion; the sweeper reaps
// leftovers later.
type cleanupScope struct {
	log *slog.Logger

	mu       sync.Mutex
	released bool
	paths    []string
}

func newCleanupScope(log *slog.Logger) *cleanupScope {
	return &cleanupScope{log: log}
}

// Track registers a temporary file for release.
func (s *cleanupScope) Track(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
}

// Release removes all tracked files. Only the first call acts.
func (s *cleanupScope) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true

	for _, path := range s.paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Error("cleanup.remove_failed", "path", path, "error", err)
			continue
		}
		s.log.Debug("cleanup.removed", "path", path)
	}
}
