// Package watch keeps generated lines in sync while files are edited: it
// watches a tree with fsnotify and reprocesses each Go file once its saves
// settle.
package watch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gofstring/internal/document"
	"gofstring/internal/logging"
	"gofstring/internal/workspace"

	"github.com/fsnotify/fsnotify"
)

const tickInterval = 100 * time.Millisecond

// Stats tracks watcher activity.
type Stats struct {
	FilesCreated   int
	FilesModified  int
	FilesDeleted   int
	Reprocessed    int
	Rewritten      int
	SelfWritesSeen int
	Errors         int
	LastEventTime  time.Time
	LastEventPath  string
	LastEventType  string
}

// Watcher rewrites files under a root whenever their f-string comments change.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	proc        *document.Processor
	root        string
	scope       workspace.Scope
	debounceMap map[string]time.Time
	debounceDur time.Duration
	// written holds the hash of the last content this watcher wrote per path,
	// so the event caused by our own write is not reprocessed.
	written   map[string][sha256.Size]byte
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
	closeOnce sync.Once

	stats Stats
}

// New creates a watcher for root. Nothing is watched until Start.
func New(root string, proc *document.Processor, scope workspace.Scope, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		watcher:     fw,
		proc:        proc,
		root:        root,
		scope:       scope,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		written:     make(map[string][sha256.Size]byte),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start adds root and every non-ignored subdirectory to the watch list and
// starts the event loop. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		w.closeWatcher()
		return err
	}
	logging.Watch("watching %s (%d dirs, debounce %s)", w.root, len(w.watcher.WatchList()), w.debounceDur)

	go w.run(ctx)
	return nil
}

// Stop ends the event loop, if it is running, and releases the fsnotify
// watcher. It is safe to call without Start and more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	w.closeWatcher()
}

func (w *Watcher) closeWatcher() {
	w.closeOnce.Do(func() {
		if err := w.watcher.Close(); err != nil {
			logging.Get(logging.CategoryWatch).Error("error closing watcher: %v", err)
		}
		logging.Watch("stopped")
	})
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(p string) bool {
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return false
	}
	return workspace.IsIgnored(rel, filepath.Base(p), w.scope.Ignore)
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("fsnotify error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.ignored(event.Name) {
				if err := w.addTree(event.Name); err != nil {
					logging.Get(logging.CategoryWatch).Warn("failed to watch new dir %s: %v", event.Name, err)
				}
			}
			return
		}
	}

	if !w.scope.Matches(event.Name) || w.ignored(event.Name) {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}

	logging.WatchDebug("%s event for %s", eventType, event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventType = eventType

	switch eventType {
	case "create":
		w.stats.FilesCreated++
	case "modify":
		w.stats.FilesModified++
	case "delete", "rename":
		w.stats.FilesDeleted++
		delete(w.written, event.Name)
		delete(w.debounceMap, event.Name)
		return
	}
	w.debounceMap[event.Name] = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for p, t := range w.debounceMap {
		if now.Sub(t) >= w.debounceDur {
			ready = append(ready, p)
			delete(w.debounceMap, p)
		}
	}
	w.mu.Unlock()

	for _, p := range ready {
		if _, err := w.Reprocess(ctx, p); err != nil {
			logging.Get(logging.CategoryWatch).Error("%v", err)
		}
	}
}

// Reprocess runs the document processor over path and writes the result
// back if it changed. It reports whether the file was rewritten.
func (w *Watcher) Reprocess(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		w.countError()
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	sum := sha256.Sum256(data)
	w.mu.Lock()
	last, ok := w.written[path]
	if ok && last == sum {
		w.stats.SelfWritesSeen++
		w.mu.Unlock()
		logging.WatchDebug("skipping own write to %s", path)
		return false, nil
	}
	w.stats.Reprocessed++
	w.mu.Unlock()

	outcome, err := w.proc.Process(ctx, string(data))
	if err != nil {
		w.countError()
		return false, fmt.Errorf("failed to process %s: %w", path, err)
	}
	if !outcome.Changed() {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		w.countError()
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	out := []byte(outcome.Text)
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		w.countError()
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}

	w.mu.Lock()
	w.written[path] = sha256.Sum256(out)
	w.stats.Rewritten++
	w.mu.Unlock()

	logging.Watch("rewrote %s (%d edits, import added=%v)", path, len(outcome.Edits), outcome.ImportAdded)
	return true, nil
}

func (w *Watcher) countError() {
	w.mu.Lock()
	w.stats.Errors++
	w.mu.Unlock()
}

// GetStats returns a snapshot of the watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// WatchedDirs returns the directories currently watched.
func (w *Watcher) WatchedDirs() []string {
	return w.watcher.WatchList()
}
