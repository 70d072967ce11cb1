package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"sbrenamer/internal/util/logger/sl"
)

// FileWatcher is a non-recursive watch subscription on a single directory.
// Created and written files matching one of the configured patterns are
// delivered to the handler from a background goroutine.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	handler  Handler
	errors   chan error
	config   Config
	logger   *slog.Logger
	metrics  *WatcherMetrics
	stopChan chan struct{}
	wg       sync.WaitGroup
	alive    atomic.Bool
	once     sync.Once
}

// NewFileWatcher subscribes to dir and starts delivering events to handler.
func NewFileWatcher(dir string, handler Handler, config Config) (*FileWatcher, error) {
	if len(config.Patterns) == 0 {
		return nil, ErrNoPatterns
	}
	if config.IgnorePatterns == nil {
		config.IgnorePatterns = IgnoredPatterns
	}
	if config.BufferSize == 0 {
		config.BufferSize = DefaultBufferSize
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	fw := &FileWatcher{
		watcher:  watcher,
		dir:      dir,
		handler:  handler,
		errors:   make(chan error, config.BufferSize),
		config:   config,
		logger:   config.Logger.With(slog.String("component", "watcher"), slog.String("dir", dir)),
		metrics:  NewWatcherMetrics(),
		stopChan: make(chan struct{}),
	}

	fw.alive.Store(true)
	fw.wg.Add(1)
	go fw.run()

	return fw, nil
}

func (fw *FileWatcher) run() {
	defer fw.wg.Done()
	defer close(fw.errors)
	defer fw.alive.Store(false)

	for {
		select {
		case <-fw.stopChan:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.metrics.RecordEvent()
			if fw.shouldProcessEvent(event) {
				fw.processEvent(event)
			} else {
				fw.metrics.RecordIgnored()
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.handleError(err)
		}
	}
}

func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	// Проверяем, что это событие, которое нас интересует
	if event.Op&WatchedEvents == 0 {
		return false
	}

	// Проверяем игнорируемые паттерны
	for _, pattern := range fw.config.IgnorePatterns {
		if strings.Contains(event.Name, pattern) {
			fw.logger.Debug("Ignoring file", slog.String("file", event.Name), slog.String("pattern", pattern))
			return false
		}
	}

	return MatchAny(fw.config.Patterns, filepath.Base(event.Name))
}

func (fw *FileWatcher) processEvent(event fsnotify.Event) {
	kind := Modified
	if event.Has(fsnotify.Create) {
		kind = Created
	}

	fw.metrics.RecordDispatched()
	fw.handler.HandleEvent(Event{
		Path:      event.Name,
		Kind:      kind,
		Timestamp: time.Now(),
	})
}

func (fw *FileWatcher) handleError(err error) {
	fw.metrics.RecordError()
	fw.logger.Warn("Watcher error", sl.Err(err))

	select {
	case fw.errors <- err:
	default:
		fw.logger.Debug("Error buffer full, dropping error", sl.Err(err))
	}
}

// Close stops the subscription and waits for its goroutine to exit.
func (fw *FileWatcher) Close() error {
	var err error

	fw.once.Do(func() {
		close(fw.stopChan)
		fw.wg.Wait()

		if cerr := fw.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}
	})

	return err
}

// Alive reports whether the background goroutine is still running.
func (fw *FileWatcher) Alive() bool {
	return fw.alive.Load()
}

func (fw *FileWatcher) Dir() string {
	return fw.dir
}

func (fw *FileWatcher) Errors() <-chan error {
	return fw.errors
}

func (fw *FileWatcher) Metrics() *WatcherMetrics {
	return fw.metrics
}

// MatchAny reports whether name matches one of the glob patterns,
// ignoring case.
func MatchAny(patterns []string, name string) bool {
	name = strings.ToLower(name)
	for _, p := range patterns {
		if ok, _ := filepath.Match(strings.ToLower(p), name); ok {
			return true
		}
	}
	return false
}
