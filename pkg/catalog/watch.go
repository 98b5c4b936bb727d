package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is how long Watch waits after the last write before
// reloading.
const DefaultWatchDebounce = 500 * time.Millisecond

// Watch reloads h whenever the SQLite database at dbPath, or its WAL file,
// is written. Bursts of writes within debounce collapse into one reload.
// Watch blocks until ctx is done.
func Watch(ctx context.Context, dbPath string, h *Holder, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dbPath, err)
	}
	// Watch the directory: SQLite replaces and creates sidecar files.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	relevant := map[string]bool{abs: true, abs + "-wal": true}

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	reload := func() {
		defer wg.Done()
		if ctx.Err() != nil {
			return
		}
		if err := h.Reload(ctx); err != nil {
			h.logger.Error("catalog reload after change failed", "error", err)
		}
	}
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		wg.Add(1)
		timer = time.AfterFunc(debounce, reload)
	}
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	h.logger.Info("watching catalog for changes", "path", abs, "debounce", debounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn("catalog watcher error", "error", err)
		}
	}
}
