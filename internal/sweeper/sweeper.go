// Package sweeper deletes files that have been lying in the flight plan
// directory for longer than the configured number of days.
package sweeper

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"sbrenamer/internal/util/logger/sl"
)

const day = 24 * time.Hour

var ErrListDir = errors.New("cannot list directory")

// Report summarizes a single sweep.
type Report struct {
	Scanned int
	Deleted []string
	Failed  int
}

type Option func(*Sweeper)

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Sweeper) {
		s.log = log
	}
}

// WithKeep protects paths from deletion. Paths are compared in absolute form.
func WithKeep(paths ...string) Option {
	return func(s *Sweeper) {
		for _, p := range paths {
			if p == "" {
				continue
			}
			s.keep[absPath(p)] = struct{}{}
		}
	}
}

type Sweeper struct {
	fs      afero.Fs
	dir     string
	maxDays int
	now     func() time.Time
	log     *slog.Logger
	keep    map[string]struct{}
}

// New returns a sweeper for dir. maxDays 0 disables deletion.
func New(fs afero.Fs, dir string, maxDays int, opts ...Option) *Sweeper {
	s := &Sweeper{
		fs:      fs,
		dir:     dir,
		maxDays: maxDays,
		now:     time.Now,
		log:     slog.Default(),
		keep:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(slog.String("component", "sweeper"))

	return s
}

func (s *Sweeper) Dir() string {
	return s.dir
}

func (s *Sweeper) MaxDays() int {
	return s.maxDays
}

// Sweep removes every regular file in the directory whose age in whole days
// exceeds the limit. Only a listing failure is returned as an error; failed
// deletions are logged and counted.
func (s *Sweeper) Sweep() (Report, error) {
	const op = "sweeper.Sweep"
	log := s.log.With(slog.String("op", op), slog.String("dir", s.dir))

	var report Report

	if s.maxDays <= 0 {
		log.Info("File deletion disabled")
		return report, nil
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return report, fmt.Errorf("%s: %w: %v", op, ErrListDir, err)
	}

	now := s.now()
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if _, ok := s.keep[absPath(path)]; ok {
			log.Debug("Keeping protected file", slog.String("file", path))
			continue
		}
		report.Scanned++

		age := int(now.Sub(entry.ModTime()) / day)
		if age <= s.maxDays {
			continue
		}

		if err := s.fs.Remove(path); err != nil {
			report.Failed++
			log.Error("cannot delete file", slog.String("file", path), sl.Err(err))
			continue
		}

		report.Deleted = append(report.Deleted, path)
		log.Info("Deleted file", slog.String("file", path), slog.Int("age_days", age))
	}

	log.Debug("Sweep finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("deleted", len(report.Deleted)),
		slog.Int("failed", report.Failed),
	)

	return report, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
