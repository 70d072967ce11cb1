package renamer

import (
	"time"

	"github.com/google/uuid"

	"sbrenamer/internal/settings"
)

// DuplicateMarker is the stem fragment browsers append to a re-downloaded
// file. Such names bypass the debounce cache.
const DuplicateMarker = "(1)"

const (
	DefaultDelay = 2 * time.Second
	DefaultTitle = "SimBrief Renamer"
)

// Settings is the part of the settings store the dispatcher reads at the
// moment a file is processed.
type Settings interface {
	FileFormat() settings.FileFormat
	FmsMode() settings.FmsMode
	SaveXML() bool
	BackupExisting() bool
}

// Recorder persists dispatch outcomes.
type Recorder interface {
	Record(Outcome) error
}

type Action string

const (
	ActionCopied  Action = "copied"
	ActionRenamed Action = "renamed"
	ActionSkipped Action = "skipped"
	ActionFailed  Action = "failed"
)

// Outcome is the result of processing one file.
type Outcome struct {
	ID          uuid.UUID
	Time        time.Time
	Source      string
	Destination string
	Action      Action
	// Backup is the name the previous destination was moved to, if any.
	Backup      string
	Fingerprint uint64
	Err         string
}

func (o Outcome) Succeeded() bool {
	return o.Action == ActionCopied || o.Action == ActionRenamed
}
