package settings

import "errors"

var (
	ErrConfigNotFound   = errors.New("no config file found")
	ErrConfigUnreadable = errors.New("config file cannot be read")
	ErrInvalidValue     = errors.New("invalid setting value")
	ErrUnknownKey       = errors.New("unknown setting")
)
