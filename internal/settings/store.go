// Package settings is the persisted preference store of the renamer.
//
// Settings live in a single INI section. Every setter compares the new value
// with the value in effect and only marks the store dirty, and notifies the
// change listener, when they differ. Save writes the file and clears the
// dirty flag.
package settings

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"gopkg.in/ini.v1"

	"sbrenamer/internal/util/logger/handlers/slogline"
	"sbrenamer/internal/util/logger/logfile"
	"sbrenamer/internal/util/logger/sl"
)

const DefaultLogFileName = "log.txt"

// Options wires the store to the log sinks it drives.
type Options struct {
	Logger *slog.Logger
	// Lines receives formatted log lines for display; pinned at INFO.
	Lines *slogline.Handler
	// File mirrors logs into LogFileName while log_to_file is set.
	File        *logfile.Sink
	LogFileName string
}

type Store struct {
	mu   sync.RWMutex
	path string
	file *ini.File

	dirty      bool
	monitoring bool
	saved      Values

	onChange func()
	onSave   func(old, new Values)

	lines       *slogline.Handler
	logFile     *logfile.Sink
	logFileName string
	log         *slog.Logger
}

// Open loads path. A missing or unreadable file is a configuration error.
func Open(path string, opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LogFileName == "" {
		opts.LogFileName = DefaultLogFileName
	}

	if _, err := os.Stat(path); err != nil {
		opts.Logger.Error("No configfile found", slog.String("path", path))
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigNotFound, path, err)
	}

	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigUnreadable, path, err)
	}
	f.Section(Section)

	s := &Store{
		path:        path,
		file:        f,
		lines:       opts.Lines,
		logFile:     opts.File,
		logFileName: opts.LogFileName,
		log:         opts.Logger.With(slog.String("component", "settings")),
	}
	s.saved = s.valuesLocked()

	s.applyLogging(true)
	s.log.Info("Configuration loaded", slog.String("path", path))

	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) section() *ini.Section {
	return s.file.Section(Section)
}

// getLocked returns the canonical value in effect for a known key.
func (s *Store) getLocked(name string, spec keySpec) string {
	key, err := s.section().GetKey(name)
	if err != nil {
		return spec.def
	}
	v, err := spec.normalize(key.String())
	if err != nil {
		return spec.def
	}
	return v
}

func (s *Store) get(name string) string {
	name, spec, _ := lookupSpec(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLocked(name, spec)
}

// Get returns the canonical value of key as a string.
func (s *Store) Get(key string) (string, error) {
	name, spec, ok := lookupSpec(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLocked(name, spec), nil
}

// Set validates and stores value under key. It reports whether the value in
// effect changed.
func (s *Store) Set(key, value string) (bool, error) {
	name, spec, ok := lookupSpec(key)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	v, err := spec.normalize(value)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	current := s.getLocked(name, spec)
	if current == v {
		s.mu.Unlock()
		s.log.Debug("New value is the same as current",
			slog.String("key", name),
			slog.String("value", v),
		)
		return false, nil
	}

	if k, err := s.section().GetKey(name); err == nil {
		k.SetValue(v)
	} else if _, err := s.section().NewKey(name, v); err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("store %s: %w", name, err)
	}
	s.dirty = true
	cb := s.onChange
	s.mu.Unlock()

	s.log.Debug("SetValue", slog.String("key", name), slog.String("value", v))

	switch name {
	case KeyLogLevel, KeyLogToFile:
		s.applyLogging(name == KeyLogToFile)
	}

	if cb != nil {
		cb()
	}

	return true, nil
}

func (s *Store) mustSet(key, value string) bool {
	changed, err := s.Set(key, value)
	if err != nil {
		// only reachable through a typed setter, whose values always normalize
		s.log.Error("cannot store setting", slog.String("key", key), sl.Err(err))
		return false
	}
	return changed
}

func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Monitoring reports whether the file watcher is active. It is not persisted.
func (s *Store) Monitoring() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monitoring
}

func (s *Store) SetMonitoring(v bool) {
	s.mu.Lock()
	s.monitoring = v
	s.mu.Unlock()
}

func (s *Store) SourceDir() string {
	return s.get(KeySourceDir)
}

func (s *Store) SetSourceDir(dir string) (bool, error) {
	changed, err := s.Set(KeySourceDir, dir)
	if changed {
		s.log.Info("New directory is set", slog.String("dir", dir))
	}
	return changed, err
}

func (s *Store) FileFormat() FileFormat {
	return FileFormat(s.get(KeyFileFormat))
}

func (s *Store) SetFileFormat(f FileFormat) (bool, error) {
	changed, err := s.Set(KeyFileFormat, string(f))
	if changed {
		s.log.Info("Changed filename format", slog.String("format", string(f)))
	}
	return changed, err
}

// SaveXML reports whether the original file is kept (copy) instead of renamed.
func (s *Store) SaveXML() bool {
	v, _ := parseBool(s.get(KeySaveXML))
	return v
}

func (s *Store) SetSaveXML(v bool) bool {
	changed := s.mustSet(KeySaveXML, formatBool(v))
	if changed {
		s.log.Info("Changed save_XML", slog.Bool("value", v))
	}
	return changed
}

// BackupExisting reports whether an existing destination is renamed aside
// instead of deleted.
func (s *Store) BackupExisting() bool {
	v, _ := parseBool(s.get(KeyBackupExisting))
	return v
}

func (s *Store) SetBackupExisting(v bool) bool {
	changed := s.mustSet(KeyBackupExisting, formatBool(v))
	if changed {
		s.log.Info("Changed backup_existing", slog.Bool("value", v))
	}
	return changed
}

func (s *Store) FmsMode() FmsMode {
	return FmsMode(s.get(KeyFmsFormat))
}

func (s *Store) SetFmsMode(m FmsMode) (bool, error) {
	changed, err := s.Set(KeyFmsFormat, string(m))
	if changed {
		s.log.Info("Changed fms format", slog.String("mode", string(m)))
	}
	return changed, err
}

// RetentionDays is the age in days after which the sweeper deletes files.
// 0 disables deletion.
func (s *Store) RetentionDays() int {
	n, _ := strconv.Atoi(s.get(KeyNumberOfDays))
	return n
}

// SetRetentionDays takes raw user input; an empty string means 0.
func (s *Store) SetRetentionDays(value string) (bool, error) {
	return s.Set(KeyNumberOfDays, value)
}

func (s *Store) AutoStart() bool {
	v, _ := parseBool(s.get(KeyAutoStart))
	return v
}

func (s *Store) SetAutoStart(v bool) bool {
	changed := s.mustSet(KeyAutoStart, formatBool(v))
	if changed {
		s.log.Info("Changed autostart", slog.Bool("value", v))
	}
	return changed
}

func (s *Store) AutoHide() bool {
	v, _ := parseBool(s.get(KeyAutoHide))
	return v
}

func (s *Store) SetAutoHide(v bool) bool {
	changed := s.mustSet(KeyAutoHide, formatBool(v))
	if changed {
		s.log.Info("Changed auto_hide", slog.Bool("value", v))
	}
	return changed
}

func (s *Store) LogLevel() string {
	return s.get(KeyLogLevel)
}

func (s *Store) SetLogLevel(level string) (bool, error) {
	changed, err := s.Set(KeyLogLevel, level)
	if changed {
		s.log.Info("Altered log level", slog.String("level", s.LogLevel()))
	}
	return changed, err
}

func (s *Store) LogToFile() bool {
	v, _ := parseBool(s.get(KeyLogToFile))
	return v
}

func (s *Store) SetLogToFile(v bool) bool {
	return s.mustSet(KeyLogToFile, formatBool(v))
}

func (s *Store) valuesLocked() Values {
	str := func(key string) string {
		return s.getLocked(key, specs[key])
	}
	boolean := func(key string) bool {
		v, _ := parseBool(str(key))
		return v
	}
	days, _ := strconv.Atoi(str(KeyNumberOfDays))

	return Values{
		SourceDir:      str(KeySourceDir),
		FileFormat:     FileFormat(str(KeyFileFormat)),
		SaveXML:        boolean(KeySaveXML),
		BackupExisting: boolean(KeyBackupExisting),
		FmsMode:        FmsMode(str(KeyFmsFormat)),
		RetentionDays:  days,
		AutoStart:      boolean(KeyAutoStart),
		AutoHide:       boolean(KeyAutoHide),
		LogLevel:       str(KeyLogLevel),
		LogToFile:      boolean(KeyLogToFile),
	}
}

// Values returns a snapshot of the settings in effect.
func (s *Store) Values() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.valuesLocked()
}

// Save persists all settings, clears the dirty flag and notifies the change
// listener, then the save listener with the previously saved values.
func (s *Store) Save() error {
	s.mu.Lock()
	if err := s.file.SaveTo(s.path); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save settings to %s: %w", s.path, err)
	}

	old := s.saved
	s.saved = s.valuesLocked()
	current := s.saved
	s.dirty = false
	onChange, onSave := s.onChange, s.onSave
	s.mu.Unlock()

	s.log.Info("Saved configuration", slog.String("path", s.path))

	if onChange != nil {
		onChange()
	}
	if onSave != nil {
		onSave(old, current)
	}

	return nil
}

// SetChangeListener registers the callback fired on every effective change
// and on save. nil removes it.
func (s *Store) SetChangeListener(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// SetSaveListener registers the callback fired after a successful save.
func (s *Store) SetSaveListener(fn func(old, new Values)) {
	s.mu.Lock()
	s.onSave = fn
	s.mu.Unlock()
}

// SetLogListener registers the receiver of formatted log lines.
func (s *Store) SetLogListener(fn func(line string)) {
	if s.lines == nil {
		return
	}
	s.lines.SetListener(fn)
}

// applyLogging brings the file sink in line with loglevel and log_to_file.
// The log file is truncated when file logging is switched on.
func (s *Store) applyLogging(toggled bool) {
	if s.logFile == nil {
		return
	}

	if level, err := ParseLogLevel(s.LogLevel()); err == nil {
		s.logFile.SetLevel(level)
	}

	if !toggled {
		return
	}

	if s.LogToFile() {
		if s.logFile.Active() {
			return
		}
		if err := s.logFile.Enable(s.logFileName); err != nil {
			s.log.Error("cannot enable file logging", sl.Err(err))
			return
		}
		s.log.Info("Added file handler for logging", slog.String("file", s.logFileName))
		return
	}

	if s.logFile.Active() {
		if err := s.logFile.Disable(); err != nil {
			s.log.Warn("cannot close log file", sl.Err(err))
		}
		s.log.Info("Removed file handler for logging")
	}
}
