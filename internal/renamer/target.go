package renamer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"

	"sbrenamer/internal/settings"
)

const (
	fmsTarget  = "b738x.fms"
	stemLength = 8
	backupTime = "20060102150405"
)

// ResolveTarget returns the fixed name a file with the given stem and suffix
// is stored under. ok is false for files that are not handled.
func ResolveTarget(stem, suffix string, format settings.FileFormat, fms settings.FmsMode) (string, bool) {
	switch strings.ToLower(suffix) {
	case ".xml":
		switch format {
		case settings.FormatB738:
			return string(settings.FormatB738), true
		case settings.FormatZero:
			return shorten(stem) + "01.xml", true
		default:
			return shorten(stem) + ".xml", true
		}
	case ".fms":
		if fms == settings.FmsNone {
			return "", false
		}
		return fmsTarget, true
	}
	return "", false
}

func shorten(stem string) string {
	r := []rune(stem)
	if len(r) > stemLength {
		r = r[:stemLength]
	}
	return string(r)
}

// BackupName returns the aside name for an existing destination,
// e.g. OFPABCDE.xml -> OFPABCDE_20240102030405.xml.
func BackupName(target string, t time.Time) string {
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	return stem + "_" + t.Format(backupTime) + ext
}

// freeBackupPath returns a backup path in dir that does not exist yet.
// Backups made within the same second get a counter: stem_TS_1.xml.
func freeBackupPath(fs afero.Fs, dir, target string, t time.Time) (string, error) {
	name := BackupName(target, t)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		path := filepath.Join(dir, candidate)

		exists, err := afero.Exists(fs, path)
		if err != nil {
			return "", err
		}
		if !exists {
			return path, nil
		}
	}
}

var backupStem = regexp.MustCompile(`_\d{14}(_\d+)?$`)

// IsBackupStem reports whether stem looks like a name made by BackupName,
// optionally followed by a collision counter.
func IsBackupStem(stem string) bool {
	return backupStem.MatchString(stem)
}

// keepsSource reports whether the source is copied rather than moved.
func keepsSource(suffix string, s Settings) bool {
	if strings.EqualFold(suffix, ".fms") {
		return s.FmsMode() == settings.FmsBoth
	}
	return s.SaveXML()
}
