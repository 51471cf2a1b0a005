package audio

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Invalidator drops cached sounds.
type Invalidator interface {
	InvalidateCache(path string)
}

// Watcher polls sound files and invalidates the player cache when one
// changes, so edited sounds are picked up without a restart.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger
	cache  Invalidator

	watchedPaths map[string]time.Time
	pollInterval time.Duration

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher invalidating entries in cache.
func NewWatcher(cache Invalidator, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:       logger,
		cache:        cache,
		watchedPaths: make(map[string]time.Time),
		pollInterval: 2 * time.Second,
	}
}

// SetPollInterval sets the polling interval. It takes effect on the next Start.
func (w *Watcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pollInterval = interval
}

// Watch adds a path to the watch list.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	var modTime time.Time
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}
	w.watchedPaths[path] = modTime
}

// Reset replaces the watch list with paths.
func (w *Watcher) Reset(paths ...string) {
	w.mu.Lock()
	w.watchedPaths = make(map[string]time.Time)
	w.mu.Unlock()
	for _, p := range paths {
		w.Watch(p)
	}
}

// Start begins polling.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.watchLoop(ctx, w.pollInterval)
	w.logger.Debug("audio watcher started", "interval", w.pollInterval)
}

// Stop stops polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	w.logger.Debug("audio watcher stopped")
}

func (w *Watcher) watchLoop(ctx context.Context, interval time.Duration) {
	defer close(w.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

func (w *Watcher) checkForChanges() {
	w.mu.Lock()
	var changed []string
	for path, last := range w.watchedPaths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().After(last) {
			w.watchedPaths[path] = info.ModTime()
			changed = append(changed, path)
		}
	}
	w.mu.Unlock()

	for _, path := range changed {
		w.logger.Debug("sound file changed, invalidating cache", "path", path)
		w.cache.InvalidateCache(path)
	}
}
