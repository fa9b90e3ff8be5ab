// Package watcher watches the scanned paths and reports batches of relevant
// file changes, so a scan can be re-run when sources change.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/imyousuf/schemascan/internal/loader"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	Create EventOp = iota
	Write
	Remove
	Rename
)

// String returns the string representation of EventOp.
func (op EventOp) String() string {
	switch op {
	case Create:
		return "Create"
	case Write:
		return "Write"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	default:
		return "Unknown"
	}
}

// Event represents a file system change event.
type Event struct {
	Path string
	Op   EventOp
	Time time.Time
}

// DefaultDebounce is the quiet period that closes a batch.
const DefaultDebounce = 250 * time.Millisecond

// Config holds configuration for the file system watcher.
type Config struct {
	Paths   []string
	Exclude []string
	// Debounce is the quiet period after the last change before a batch is
	// emitted. Zero means DefaultDebounce.
	Debounce time.Duration
	// Accept filters changed files by path. Nil accepts everything.
	Accept func(path string) bool
	Logger *slog.Logger
}

// Watcher watches file system paths and emits debounced batches of events.
type Watcher struct {
	cfg     Config
	matcher *loader.IgnoreMatcher
	logger  *slog.Logger
	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	closed  bool
}

// New creates a watcher for cfg.Paths.
func New(cfg Config) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	matcher := loader.NewIgnoreMatcher(cfg.Paths, cfg.Exclude)
	if err := matcher.Load(); err != nil {
		return nil, err
	}
	return &Watcher{cfg: cfg, matcher: matcher, logger: logger}, nil
}

// Start begins watching and returns a channel of event batches. Each batch
// holds the latest event per path, sorted by path. The channel is closed when
// ctx is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) (<-chan []Event, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	for _, root := range w.cfg.Paths {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
	}

	out := make(chan []Event, 1)
	go w.eventLoop(ctx, fsw, out)
	return out, nil
}

// Close shuts down the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (loader.SkipDir(d.Name()) || w.matcher.Match(path)) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- []Event) {
	defer close(out)

	pending := make(map[string]Event)
	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case fsEvent, ok := <-fsw.Events:
			if !ok {
				return
			}
			op, valid := convertOp(fsEvent.Op)
			if !valid || w.matcher.Match(fsEvent.Name) {
				continue
			}

			// New directories are watched too.
			if op == Create {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(fsEvent.Name); err != nil {
						w.logger.Warn("watch new directory failed", "path", fsEvent.Name, "error", err)
					}
					continue
				}
			}
			if w.cfg.Accept != nil && !w.cfg.Accept(fsEvent.Name) {
				continue
			}

			pending[fsEvent.Name] = Event{Path: fsEvent.Name, Op: op, Time: time.Now()}
			timer.Reset(w.cfg.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]Event, 0, len(pending))
			for _, e := range pending {
				batch = append(batch, e)
			}
			sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
			pending = make(map[string]Event)

			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func convertOp(op fsnotify.Op) (EventOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
