package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// batchChannelBuffer is the size of the change batch channel.
const batchChannelBuffer = 16

// DefaultDebounce is how long the watcher waits for more changes.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches the record directories of a FileSource and emits batches
// of changed record files. Changes are debounced, and files whose content
// did not change are not reported.
type Watcher struct {
	files    *FileSource
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]bool

	hashMu sync.Mutex
	hashes map[string]string

	batches chan []string
}

// NewWatcher creates a watcher for the files of src.
func NewWatcher(src *FileSource, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		files:    src,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]bool),
		hashes:   make(map[string]string),
		batches:  make(chan []string, batchChannelBuffer),
	}, nil
}

// Batches returns the channel of changed file batches. It is closed when the
// watcher stops.
func (w *Watcher) Batches() <-chan []string {
	return w.batches
}

// Start adds watches for every directory under the pattern bases and starts
// processing events until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.files.Dirs() {
		if err := w.addWatchesRecursive(dir); err != nil {
			return err
		}
	}
	go w.processEvents(ctx)

	w.logger.Info("Record watcher started",
		"patterns", w.files.Patterns(),
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher. The batch channel is closed by processEvents when
// it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Prime records the current content of paths so unchanged files are not
// reported on their first event.
func (w *Watcher) Prime(paths []string) {
	for _, p := range paths {
		if hash, ok := fileHash(p); ok {
			w.hashMu.Lock()
			w.hashes[p] = hash
			w.hashMu.Unlock()
		}
	}
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && path != root && base != "." {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.batches)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(path); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}
	if !w.files.Matches(path) {
		return
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.hashMu.Lock()
		delete(w.hashes, path)
		w.hashMu.Unlock()
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = true
	w.pendingMu.Unlock()
	w.logger.Debug("Record change detected", "path", path, "op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := make([]string, 0, len(w.pending))
	for p := range w.pending {
		toProcess = append(toProcess, p)
	}
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	slices.Sort(toProcess)
	var changed []string
	for _, path := range toProcess {
		hash, ok := fileHash(path)
		if !ok {
			continue
		}
		w.hashMu.Lock()
		old, had := w.hashes[path]
		w.hashes[path] = hash
		w.hashMu.Unlock()
		if had && old == hash {
			continue
		}
		changed = append(changed, path)
	}
	if len(changed) == 0 {
		return
	}

	select {
	case w.batches <- changed:
	case <-ctx.Done():
	}
}

func fileHash(path string) (string, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), true
}
