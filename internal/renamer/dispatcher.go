// Package renamer turns freshly downloaded flight plan files into the fixed
// names the simulator add-on reads.
package renamer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"sbrenamer/internal/util/logger/sl"
	"sbrenamer/internal/watcher"
)

type Config struct {
	Fs    afero.Fs
	Cache *watcher.DebounceCache
	// Delay between an accepted event and processing of the file.
	Delay time.Duration
	Title string
	// After schedules f; defaults to time.AfterFunc.
	After func(d time.Duration, f func())
	Now   func() time.Time
	// Fatal is called when an existing destination cannot be moved aside.
	Fatal  func(error)
	Logger *slog.Logger
}

type Dispatcher struct {
	settings Settings
	fs       afero.Fs
	cache    *watcher.DebounceCache
	delay    time.Duration
	title    string
	after    func(time.Duration, func())
	now      func() time.Time
	fatal    func(error)
	log      *slog.Logger

	mu          sync.Mutex
	notify      func(message, title string)
	recorder    Recorder
	lastCreated string
}

func NewDispatcher(s Settings, cfg Config) *Dispatcher {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Cache == nil {
		cfg.Cache = watcher.NewDebounceCache(watcher.DefaultDebounceTTL)
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.After == nil {
		cfg.After = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	d := &Dispatcher{
		settings: s,
		fs:       cfg.Fs,
		cache:    cfg.Cache,
		delay:    cfg.Delay,
		title:    cfg.Title,
		after:    cfg.After,
		now:      cfg.Now,
		fatal:    cfg.Fatal,
		log:      cfg.Logger.With(slog.String("component", "renamer")),
	}
	if d.fatal == nil {
		d.fatal = func(err error) {
			d.log.Error("fatal error, exiting", sl.Err(err))
			os.Exit(1)
		}
	}

	return d
}

// SetNotifier registers the receiver of success notifications. nil removes it.
func (d *Dispatcher) SetNotifier(fn func(message, title string)) {
	d.mu.Lock()
	d.notify = fn
	d.mu.Unlock()
}

func (d *Dispatcher) SetRecorder(r Recorder) {
	d.mu.Lock()
	d.recorder = r
	d.mu.Unlock()
}

// LastCreated returns the target name of the most recent dispatch.
func (d *Dispatcher) LastCreated() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastCreated
}

func (d *Dispatcher) Cache() *watcher.DebounceCache {
	return d.cache
}

// HandleEvent debounces ev and schedules processing of its file.
func (d *Dispatcher) HandleEvent(ev watcher.Event) {
	name := filepath.Base(ev.Path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	if IsBackupStem(stem) {
		d.log.Debug("Ignoring backup file", slog.String("file", name))
		return
	}

	if d.cache.Contains(name) && !strings.Contains(stem, DuplicateMarker) {
		d.log.Debug("Ignoring event", slog.String("file", name), slog.String("kind", ev.Kind.String()))
		return
	}

	d.cache.Append(name)
	d.log.Debug("New file event", slog.String("file", ev.Path), slog.String("kind", ev.Kind.String()))

	path := ev.Path
	d.after(d.delay, func() {
		d.Process(path)
	})
}

// Process copies or renames path to its target name next to it.
func (d *Dispatcher) Process(path string) Outcome {
	const op = "renamer.Process"
	log := d.log.With(slog.String("op", op), slog.String("file", path))

	out := Outcome{
		ID:     uuid.New(),
		Time:   d.now(),
		Source: path,
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)

	if IsBackupStem(stem) {
		log.Debug("Backup file, nothing to do")
		out.Action = ActionSkipped
		out.Err = ErrBackupSource.Error()
		return out
	}

	target, ok := ResolveTarget(stem, ext, d.settings.FileFormat(), d.settings.FmsMode())
	if !ok {
		log.Debug("File type not handled")
		out.Action = ActionSkipped
		out.Err = ErrUnsupportedFile.Error()
		return out
	}

	dest := filepath.Join(filepath.Dir(path), target)
	out.Destination = dest

	// a second dispatch of the same file finds it already gone;
	// the destination must stay untouched then
	if found, err := afero.Exists(d.fs, path); err != nil || !found {
		if err == nil {
			err = fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return d.fail(log, out, err)
	}

	exists, err := afero.Exists(d.fs, dest)
	if err != nil {
		return d.fail(log, out, fmt.Errorf("%s: stat %s: %w", op, dest, err))
	}
	if exists && filepath.Base(dest) == filepath.Base(path) {
		log.Debug("Destination is the source, nothing to do")
		out.Action = ActionSkipped
		out.Err = ErrSameFile.Error()
		return out
	}

	d.cache.Append(target)
	d.mu.Lock()
	d.lastCreated = target
	d.mu.Unlock()

	if exists {
		if d.settings.BackupExisting() {
			backup, err := freeBackupPath(d.fs, filepath.Dir(dest), target, d.now())
			if err == nil {
				// the watcher reports the moved file as a new one
				d.cache.Append(filepath.Base(backup))
				err = d.fs.Rename(dest, backup)
			}
			if err != nil {
				err = fmt.Errorf("%w: %s: %v", ErrBackupFailed, dest, err)
				out = d.fail(log, out, err)
				d.fatal(err)
				return out
			}
			out.Backup = backup
			log.Info("Existing file moved aside", slog.String("backup", backup))
		} else if err := d.fs.Remove(dest); err != nil {
			return d.fail(log, out, fmt.Errorf("%w: %s: %v", ErrRemoveFailed, dest, err))
		}
	}

	if keepsSource(ext, d.settings) {
		sum, err := copyFile(d.fs, path, dest)
		if err != nil {
			return d.fail(log, out, err)
		}
		out.Action = ActionCopied
		out.Fingerprint = sum
	} else {
		if err := d.fs.Rename(path, dest); err != nil {
			return d.fail(log, out, fmt.Errorf("rename %s: %w", path, err))
		}
		out.Action = ActionRenamed
		if sum, err := fingerprint(d.fs, dest); err == nil {
			out.Fingerprint = sum
		} else {
			log.Warn("cannot fingerprint file", sl.Err(err))
		}
	}

	msg := fmt.Sprintf("filename: %s %s to %s", filepath.Base(path), out.Action, target)
	log.Info(msg)

	d.mu.Lock()
	notify := d.notify
	d.mu.Unlock()
	if notify != nil {
		notify(msg, d.title)
	}

	d.record(log, out)
	return out
}

func (d *Dispatcher) fail(log *slog.Logger, out Outcome, err error) Outcome {
	log.Error("cannot process file", sl.Err(err))
	out.Action = ActionFailed
	out.Err = err.Error()
	d.record(log, out)
	return out
}

func (d *Dispatcher) record(log *slog.Logger, out Outcome) {
	d.mu.Lock()
	r := d.recorder
	d.mu.Unlock()
	if r == nil {
		return
	}

	if err := r.Record(out); err != nil {
		log.Warn("cannot record outcome", sl.Err(err))
	}
}
