package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"screener/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// DropFolder watches a directory and hands every new or rewritten file to a
// callback once writes to it have settled.
type DropFolder struct {
	mu sync.Mutex

	dir string

	// Files seen since the last flush, and the mod time last handled per file
	pending     map[string]struct{}
	lastModTime map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan  chan struct{}
	flushChan chan struct{}
	done      chan struct{}

	handle func(path string)
	logger *errors.Logger

	running bool
}

// NewDropFolder creates a watcher for dir. handle runs on the watcher's
// goroutine, one file at a time.
func NewDropFolder(dir string, debounceDelay time.Duration, handle func(path string), logger *errors.Logger) *DropFolder {
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}
	if logger == nil {
		logger = errors.Nop()
	}
	return &DropFolder{
		dir:           dir,
		pending:       make(map[string]struct{}),
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		flushChan:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		handle:        handle,
		logger:        logger,
	}
}

// Start begins watching the directory
func (df *DropFolder) Start() error {
	df.mu.Lock()
	defer df.mu.Unlock()

	if df.running {
		return fmt.Errorf("drop folder watcher is already running")
	}

	info, err := os.Stat(df.dir)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotFound, "drop folder is not accessible", err).
			WithContext("dir", df.dir)
	}
	if !info.IsDir() {
		return errors.NewIOError(errors.ErrCodeInvalidFormat, "drop folder is not a directory", nil).
			WithContext("dir", df.dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(df.dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			df.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to watch directory %s: %w", df.dir, err)
	}
	df.fsWatcher = watcher

	df.running = true
	go df.watchLoop()

	df.logger.Info("Drop folder watcher started",
		"dir", df.dir,
		"debounce_delay", df.debounceDelay)
	return nil
}

// Stop stops the watcher and waits for an in-progress callback to return
func (df *DropFolder) Stop() error {
	df.mu.Lock()

	if !df.running {
		df.mu.Unlock()
		return nil
	}

	close(df.stopChan)
	if df.debounceTimer != nil {
		df.debounceTimer.Stop()
	}
	df.running = false
	df.mu.Unlock()

	<-df.done

	if err := df.fsWatcher.Close(); err != nil {
		df.logger.LogError(err, "Failed to close file system watcher")
		return err
	}

	df.logger.Info("Drop folder watcher stopped", "dir", df.dir)
	return nil
}

// IsRunning returns whether the watcher is currently running
func (df *DropFolder) IsRunning() bool {
	df.mu.Lock()
	defer df.mu.Unlock()
	return df.running
}

// Dir returns the watched directory
func (df *DropFolder) Dir() string {
	return df.dir
}

func (df *DropFolder) watchLoop() {
	defer close(df.done)
	for {
		select {
		case event, ok := <-df.fsWatcher.Events:
			if !ok {
				return
			}
			if shouldProcessEvent(event) {
				df.schedule(event.Name)
			}

		case err, ok := <-df.fsWatcher.Errors:
			if !ok {
				return
			}
			df.logger.LogError(err, "File watcher error", "dir", df.dir)

		case <-df.flushChan:
			for _, path := range df.takeChanged() {
				df.handle(path)
			}

		case <-df.stopChan:
			return
		}
	}
}

// shouldProcessEvent keeps writes and creations of visible files
func shouldProcessEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

// schedule records path and restarts the debounce timer
func (df *DropFolder) schedule(path string) {
	df.mu.Lock()
	defer df.mu.Unlock()

	df.pending[path] = struct{}{}

	if df.debounceTimer != nil {
		df.debounceTimer.Stop()
	}
	df.debounceTimer = time.AfterFunc(df.debounceDelay, func() {
		select {
		case df.flushChan <- struct{}{}:
		default:
		}
	})
}

// takeChanged drains the pending set, keeping regular files whose
// modification time moved since they were last handled
func (df *DropFolder) takeChanged() []string {
	df.mu.Lock()
	defer df.mu.Unlock()

	var changed []string
	for path := range df.pending {
		delete(df.pending, path)

		stat, err := os.Stat(path)
		if err != nil || !stat.Mode().IsRegular() {
			continue
		}
		if last, seen := df.lastModTime[path]; seen && !stat.ModTime().After(last) {
			continue
		}
		df.lastModTime[path] = stat.ModTime()
		changed = append(changed, path)
	}
	slices.Sort(changed)
	return changed
}
