// Package monitor starts and stops the directory subscription that feeds the
// renamer.
package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sbrenamer/internal/settings"
	"sbrenamer/internal/util/logger/sl"
	"sbrenamer/internal/watcher"
)

var (
	ErrAlreadyRunning = errors.New("monitoring is already running")
	ErrNotRunning     = errors.New("monitoring is not running")
)

const (
	DefaultAutoStartDelay = 3 * time.Second

	LabelStart = "Start"
	LabelStop  = "Stop"
)

type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Settings is what the controller reads from, and reports to, the settings
// store.
type Settings interface {
	SourceDir() string
	FmsMode() settings.FmsMode
	AutoStart() bool
	SetMonitoring(bool)
}

// Subscription is a live watch on a directory.
type Subscription interface {
	Close() error
	Alive() bool
}

// Subscriber opens a subscription on dir delivering to h.
type Subscriber func(dir string, h watcher.Handler, cfg watcher.Config) (Subscription, error)

// FileWatcherSubscriber subscribes through fsnotify.
func FileWatcherSubscriber(dir string, h watcher.Handler, cfg watcher.Config) (Subscription, error) {
	fw, err := watcher.NewFileWatcher(dir, h, cfg)
	if err != nil {
		return nil, err
	}
	return fw, nil
}

// Patterns returns the globs watched for the given fms mode.
func Patterns(mode settings.FmsMode) []string {
	if mode == settings.FmsNone {
		return []string{"*.xml"}
	}
	return []string{"*.xml", "*.fms"}
}

type Controller struct {
	settings  Settings
	handler   watcher.Handler
	subscribe Subscriber
	log       *slog.Logger

	mu    sync.Mutex
	sub   Subscription
	state State
}

func NewController(s Settings, h watcher.Handler, subscribe Subscriber, log *slog.Logger) *Controller {
	if subscribe == nil {
		subscribe = FileWatcherSubscriber
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		settings:  s,
		handler:   h,
		subscribe: subscribe,
		log:       log.With(slog.String("component", "monitor")),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start subscribes to the configured source directory.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.startLocked()
}

func (c *Controller) startLocked() error {
	if c.state == Running {
		return ErrAlreadyRunning
	}

	dir := c.settings.SourceDir()
	patterns := Patterns(c.settings.FmsMode())

	sub, err := c.subscribe(dir, c.handler, watcher.Config{
		Patterns: patterns,
		Logger:   c.log,
	})
	if err != nil {
		c.log.Error("cannot start monitoring", slog.String("dir", dir), sl.Err(err))
		return fmt.Errorf("start monitoring %s: %w", dir, err)
	}

	c.sub = sub
	c.state = Running
	c.settings.SetMonitoring(true)
	c.log.Info("Monitoring started", slog.String("dir", dir), slog.Any("patterns", patterns))

	return nil
}

// Stop closes the subscription and waits for it to finish. Dispatches
// already scheduled still run.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stopLocked()
}

func (c *Controller) stopLocked() error {
	if c.state != Running {
		return ErrNotRunning
	}

	err := c.sub.Close()
	c.state = Stopped
	c.settings.SetMonitoring(false)

	if err != nil {
		c.log.Warn("subscription closed with error", sl.Err(err))
	}
	c.log.Info("Monitoring stopped")

	return err
}

// Toggle stops when label is "Stop" and starts otherwise. It returns the
// label the control should show next.
func (c *Controller) Toggle(label string) (string, error) {
	if label == LabelStop {
		if err := c.Stop(); err != nil {
			return LabelStop, err
		}
		return LabelStart, nil
	}

	if err := c.Start(); err != nil {
		return LabelStart, err
	}
	return LabelStop, nil
}

// Label is the toggle label matching the current state.
func (c *Controller) Label() string {
	if c.State() == Running {
		return LabelStop
	}
	return LabelStart
}

// IsActive reports whether the subscription goroutine is alive.
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	sub := c.sub
	c.mu.Unlock()

	if sub == nil {
		c.log.Warn("Monitoring was never started")
		return false
	}
	return sub.Alive()
}

// Stats returns the counters of the current subscription, nil when it
// keeps none.
func (c *Controller) Stats() map[string]interface{} {
	c.mu.Lock()
	sub := c.sub
	c.mu.Unlock()

	if m, ok := sub.(interface{ Metrics() *watcher.WatcherMetrics }); ok {
		return m.Metrics().GetStats()
	}
	return nil
}

// Restart resubscribes with the current settings.
func (c *Controller) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Running {
		if err := c.stopLocked(); err != nil {
			c.log.Warn("restart: stop failed", sl.Err(err))
		}
	}
	return c.startLocked()
}

// ScheduleAutoStart starts monitoring after delay when auto_start is set.
// It reports whether a start was scheduled.
func (c *Controller) ScheduleAutoStart(delay time.Duration) bool {
	if !c.settings.AutoStart() {
		return false
	}
	if delay <= 0 {
		delay = DefaultAutoStartDelay
	}

	c.log.Debug("Auto start scheduled", slog.Duration("delay", delay))
	time.AfterFunc(delay, func() {
		if err := c.Start(); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			c.log.Error("auto start failed", sl.Err(err))
		}
	})

	return true
}
