package settings

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"sbrenamer/internal/util/logger/handlers/slogline"
)

// Section is the single INI section holding every setting.
const Section = "BaseSettings"

const (
	KeySourceDir      = "source_dir"
	KeyFileFormat     = "file_format"
	KeySaveXML        = "save_XML"
	KeyBackupExisting = "backup_existing"
	KeyFmsFormat      = "fms_format"
	KeyNumberOfDays   = "number_of_days"
	KeyAutoStart      = "auto_start"
	KeyAutoHide       = "auto_hide"
	KeyLogLevel       = "loglevel"
	KeyLogToFile      = "log_to_file"
)

// FileFormat selects how a flight plan stem is turned into the target name.
type FileFormat string

const (
	FormatShort FileFormat = "ICAOICOA.xml"
	FormatZero  FileFormat = "ICAOICOA01.xml"
	FormatB738  FileFormat = "b738x.xml"
)

func FileFormats() []FileFormat {
	return []FileFormat{FormatB738, FormatShort, FormatZero}
}

// FmsMode controls handling of the companion navigation file.
type FmsMode string

const (
	FmsNone    FmsMode = "NO"
	FmsReplace FmsMode = "b738x"
	FmsBoth    FmsMode = "BOTH"
)

func FmsModes() []FmsMode {
	return []FmsMode{FmsNone, FmsReplace, FmsBoth}
}

func LogLevels() []string {
	return []string{"CRITICAL", "ERROR", "WARNING", "INFO", "DEBUG"}
}

// ParseLogLevel converts a settings log level name into a slog level.
func ParseLogLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "CRITICAL":
		return slogline.LevelCritical, nil
	case "ERROR":
		return slog.LevelError, nil
	case "WARNING":
		return slog.LevelWarn, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	}
	return 0, fmt.Errorf("%w: log level %q", ErrInvalidValue, name)
}

// Values is a point in time copy of all settings.
type Values struct {
	SourceDir      string
	FileFormat     FileFormat
	SaveXML        bool
	BackupExisting bool
	FmsMode        FmsMode
	RetentionDays  int
	AutoStart      bool
	AutoHide       bool
	LogLevel       string
	LogToFile      bool
}

type keySpec struct {
	def       string
	normalize func(string) (string, error)
}

var specs = map[string]keySpec{
	KeySourceDir:      {def: ".", normalize: normalizeDir},
	KeyFileFormat:     {def: string(FormatShort), normalize: normalizeFileFormat},
	KeySaveXML:        {def: "True", normalize: normalizeBool},
	KeyBackupExisting: {def: "True", normalize: normalizeBool},
	KeyFmsFormat:      {def: string(FmsBoth), normalize: normalizeFmsMode},
	KeyNumberOfDays:   {def: "0", normalize: normalizeDays},
	KeyAutoStart:      {def: "False", normalize: normalizeBool},
	KeyAutoHide:       {def: "False", normalize: normalizeBool},
	KeyLogLevel:       {def: "ERROR", normalize: normalizeLogLevel},
	KeyLogToFile:      {def: "False", normalize: normalizeBool},
}

// Keys lists the known setting names in file order.
func Keys() []string {
	return []string{
		KeySourceDir, KeyFileFormat, KeySaveXML, KeyBackupExisting, KeyFmsFormat,
		KeyNumberOfDays, KeyAutoStart, KeyAutoHide, KeyLogLevel, KeyLogToFile,
	}
}

func lookupSpec(key string) (string, keySpec, bool) {
	for name, spec := range specs {
		if strings.EqualFold(name, key) {
			return name, spec, true
		}
	}
	return "", keySpec{}, false
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// parseBool accepts the same spellings as python's configparser.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
}

func normalizeBool(s string) (string, error) {
	v, err := parseBool(s)
	if err != nil {
		return "", err
	}
	return formatBool(v), nil
}

func normalizeDir(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: source directory is empty", ErrInvalidValue)
	}
	return s, nil
}

func normalizeDays(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "0", nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return "", fmt.Errorf("%w: number of days should be a number, got %q", ErrInvalidValue, s)
	}
	return strconv.Itoa(n), nil
}

func normalizeFileFormat(s string) (string, error) {
	for _, f := range FileFormats() {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return string(f), nil
		}
	}
	return "", fmt.Errorf("%w: file format %q", ErrInvalidValue, s)
}

func normalizeFmsMode(s string) (string, error) {
	for _, m := range FmsModes() {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return string(m), nil
		}
	}
	return "", fmt.Errorf("%w: fms format %q", ErrInvalidValue, s)
}

func normalizeLogLevel(s string) (string, error) {
	if _, err := ParseLogLevel(s); err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(s)), nil
}
