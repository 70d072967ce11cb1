// Package app wires the settings store, renamer, sweeper and monitor into a
// running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"sbrenamer/internal/config"
	"sbrenamer/internal/history"
	"sbrenamer/internal/monitor"
	"sbrenamer/internal/notify"
	"sbrenamer/internal/renamer"
	"sbrenamer/internal/settings"
	"sbrenamer/internal/sweeper"
	"sbrenamer/internal/util/logger/handlers/slogline"
	"sbrenamer/internal/util/logger/handlers/slogmulti"
	"sbrenamer/internal/util/logger/logfile"
	"sbrenamer/internal/util/logger/sl"
	"sbrenamer/internal/watcher"
)

// Options overrides the collaborators App builds by default.
type Options struct {
	Out        io.Writer
	Fs         afero.Fs
	Subscriber monitor.Subscriber
	Fatal      func(error)
}

type App struct {
	Cfg        *config.Config
	Log        *slog.Logger
	Settings   *settings.Store
	Dispatcher *renamer.Dispatcher
	Controller *monitor.Controller
	Sweeps     *sweeper.Scheduler
	// History is nil when the ledger could not be opened.
	History *history.Store
	LogView *LogView

	fs      afero.Fs
	logFile *logfile.Sink
}

// New builds the application. A missing settings file is returned as an
// error; the caller exits with status 1.
func New(cfg *config.Config, opts Options) (*App, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	lines := slogline.New(slog.LevelInfo)
	sink := logfile.New()
	log := slog.New(slogmulti.Fanout(setupHandler(cfg.Env, opts.Out), lines, sink))

	store, err := settings.Open(cfg.SettingsFile, settings.Options{
		Logger:      log,
		Lines:       lines,
		File:        sink,
		LogFileName: cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}

	a := &App{
		Cfg:      cfg,
		Log:      log,
		Settings: store,
		LogView:  NewLogView(DefaultLogViewSize),
		fs:       opts.Fs,
		logFile:  sink,
	}
	store.SetLogListener(a.LogView.Append)

	a.Dispatcher = renamer.NewDispatcher(store, renamer.Config{
		Fs:     opts.Fs,
		Cache:  watcher.NewDebounceCache(cfg.Timing.DebounceTTL),
		Delay:  cfg.Timing.DispatchDelay,
		Title:  cfg.NotifyTitle,
		Fatal:  opts.Fatal,
		Logger: log,
	})
	a.Dispatcher.SetNotifier(notify.NewConsole(opts.Out).Notify)

	if h, err := history.Open(history.Config{Path: cfg.HistoryFile}); err != nil {
		log.Warn("history disabled", slog.String("path", cfg.HistoryFile), sl.Err(err))
	} else {
		a.History = h
		a.Dispatcher.SetRecorder(h)
	}

	a.Controller = monitor.NewController(store, a.Dispatcher, opts.Subscriber, log)
	a.Sweeps = sweeper.NewScheduler(a.newSweeper(store.Values()), log)

	store.SetSaveListener(a.onSave)

	return a, nil
}

func (a *App) newSweeper(v settings.Values) *sweeper.Sweeper {
	return sweeper.New(a.fs, v.SourceDir, v.RetentionDays,
		sweeper.WithLogger(a.Log),
		sweeper.WithKeep(a.Cfg.SettingsFile, a.Cfg.HistoryFile, a.Cfg.LogFile),
	)
}

// onSave applies saved settings to the running components.
func (a *App) onSave(old, new settings.Values) {
	if old.RetentionDays != new.RetentionDays || old.SourceDir != new.SourceDir {
		a.Sweeps.Reconfigure(a.newSweeper(new))
	}

	if !a.Cfg.RestartOnSave || a.Controller.State() != monitor.Running {
		return
	}
	if old.SourceDir != new.SourceDir || old.FmsMode != new.FmsMode {
		if err := a.Controller.Restart(); err != nil {
			a.Log.Error("cannot restart monitoring", sl.Err(err))
		}
	}
}

// Worker runs until ctx is done. A worker returning ends the application.
type Worker func(ctx context.Context) error

// Run schedules auto start and the sweeper, then runs workers until ctx is
// cancelled or one of them returns.
func (a *App) Run(ctx context.Context, workers ...Worker) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.Controller.ScheduleAutoStart(a.Cfg.Timing.AutoStartDelay)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Sweeps.Run(gctx, a.Cfg.Timing.SweepDelay, a.Cfg.Timing.SweepInterval)
	})

	for _, w := range workers {
		g.Go(func() error {
			defer cancel()
			return w(gctx)
		})
	}

	a.Log.Info("Application started")
	err := g.Wait()
	a.Log.Info("Application shutting down")

	return err
}

// Rename dispatches paths right away, bypassing the debounce delay.
func (a *App) Rename(paths ...string) []renamer.Outcome {
	out := make([]renamer.Outcome, 0, len(paths))
	for _, p := range paths {
		out = append(out, a.Dispatcher.Process(p))
	}
	return out
}

// Sweep runs one sweep. days < 0 uses the saved retention.
func (a *App) Sweep(days int) (sweeper.Report, error) {
	if days < 0 {
		return a.Sweeps.SweepNow()
	}
	v := a.Settings.Values()
	v.RetentionDays = days
	return a.newSweeper(v).Sweep()
}

func (a *App) Close() error {
	var errs []error

	if a.Controller.State() == monitor.Running {
		if err := a.Controller.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}
	}
	if a.logFile.Active() {
		if err := a.logFile.Disable(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
