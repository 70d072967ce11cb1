package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"sbrenamer/internal/renamer"
	"sbrenamer/internal/settings"
	"sbrenamer/internal/sweeper"
)

func printSettings(w io.Writer, s *settings.Store) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, key := range settings.Keys() {
		v, _ := s.Get(key)
		fmt.Fprintf(tw, "%s\t%s\n", key, v)
	}
	tw.Flush()

	if s.Dirty() {
		fmt.Fprintln(w, "(unsaved changes)")
	}
}

func printKeys(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, key := range settings.Keys() {
		fmt.Fprintf(tw, "%s\t%s\n", key, strings.Join(keyOptions(key), " | "))
	}
	tw.Flush()
}

func keyOptions(key string) []string {
	switch key {
	case settings.KeyFileFormat:
		var out []string
		for _, f := range settings.FileFormats() {
			out = append(out, string(f))
		}
		return out
	case settings.KeyFmsFormat:
		var out []string
		for _, m := range settings.FmsModes() {
			out = append(out, string(m))
		}
		return out
	case settings.KeyLogLevel:
		return settings.LogLevels()
	case settings.KeySaveXML, settings.KeyBackupExisting, settings.KeyAutoStart,
		settings.KeyAutoHide, settings.KeyLogToFile:
		return []string{"True", "False"}
	case settings.KeyNumberOfDays:
		return []string{"<days, 0 disables>"}
	}
	return []string{"<path>"}
}

func printOutcomes(w io.Writer, outcomes []renamer.Outcome) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "no entries")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, o := range outcomes {
		dest := "-"
		if o.Destination != "" {
			dest = filepath.Base(o.Destination)
		}
		detail := o.Err
		if o.Backup != "" {
			detail = "backup " + filepath.Base(o.Backup)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			o.Time.Format("2006-01-02 15:04:05"),
			o.Action,
			filepath.Base(o.Source),
			dest,
			detail,
		)
	}
	tw.Flush()
}

func printReport(w io.Writer, r sweeper.Report) {
	fmt.Fprintf(w, "scanned %d, deleted %d, failed %d\n", r.Scanned, len(r.Deleted), r.Failed)
	for _, p := range r.Deleted {
		fmt.Fprintf(w, "  %s\n", p)
	}
}
