package renamer

import "errors"

var (
	ErrUnsupportedFile = errors.New("file type is not handled")
	ErrSameFile        = errors.New("source and destination are the same file")
	ErrBackupFailed    = errors.New("cannot move existing file aside")
	ErrRemoveFailed    = errors.New("cannot remove existing file")
	ErrSourceMissing   = errors.New("source file does not exist")
	ErrBackupSource    = errors.New("file is a backup of an earlier target")
)
