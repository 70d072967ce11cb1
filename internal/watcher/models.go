package watcher

import (
	"log/slog"
	"time"
)

// Kind is the type of change reported for a watched file.
type Kind int

const (
	Created Kind = iota + 1
	Modified
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Event представляет событие файловой системы
type Event struct {
	Path      string
	Kind      Kind
	Timestamp time.Time
}

// Handler receives events from a FileWatcher. HandleEvent runs on the
// watcher goroutine and should return quickly.
type Handler interface {
	HandleEvent(Event)
}

type HandlerFunc func(Event)

func (f HandlerFunc) HandleEvent(ev Event) {
	f(ev)
}

// Config содержит настройки для FileWatcher
type Config struct {
	// Patterns are shell globs matched against the file name, e.g. "*.xml".
	Patterns       []string
	IgnorePatterns []string
	BufferSize     int
	Logger         *slog.Logger
}
