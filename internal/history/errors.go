package history

import "errors"

var (
	ErrNilDB          = errors.New("database connection is nil")
	ErrBucketNotFound = errors.New("bucket not found")
	ErrEntryNotFound  = errors.New("history entry not found")
)
