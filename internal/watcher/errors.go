package watcher

import "errors"

var (
	ErrInvalidPath  = errors.New("invalid path")
	ErrNotDirectory = errors.New("path is not a directory")
	ErrNoPatterns   = errors.New("no file patterns to watch")
)
