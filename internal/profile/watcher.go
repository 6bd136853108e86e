package profile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a Store when one of its source files changes on disk.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	store    *Store
	logger   *zap.Logger
	files    map[string]bool
	debounce time.Duration
	pending  time.Time // zero when no reload is due
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher watches the directories of every store source.
func NewWatcher(store *Store, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		watcher:  fw,
		store:    store,
		logger:   logger.Named("watcher"),
		files:    make(map[string]bool),
		debounce: 300 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, src := range store.Sources() {
		w.files[filepath.Clean(src.Path)] = true
	}
	return w, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		// A missing plugin folder is created so a file dropped in later is picked up.
		if err := os.MkdirAll(d, 0o755); err != nil {
			w.logger.Warn("cannot create profile directory", zap.String("dir", d), zap.Error(err))
			continue
		}
		if err := w.watcher.Add(d); err != nil {
			w.logger.Warn("cannot watch profile directory", zap.String("dir", d), zap.Error(err))
			continue
		}
		w.logger.Info("watching profile directory", zap.String("dir", d))
	}

	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and waits for it.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		case now := <-ticker.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && now.After(w.pending)
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()
			if due {
				w.store.Reload()
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !w.files[filepath.Clean(ev.Name)] {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.logger.Debug("profile file changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
	w.mu.Lock()
	w.pending = time.Now().Add(w.debounce)
	w.mu.Unlock()
}
