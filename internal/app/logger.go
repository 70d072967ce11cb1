package app

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"sbrenamer/internal/config"
	"sbrenamer/internal/util/logger/handlers/slogpretty"
)

// setupHandler returns the console handler for env. Pretty output is only
// used when out is a terminal.
func setupHandler(env string, out io.Writer) slog.Handler {
	switch env {
	case config.EnvDev:
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	case config.EnvProd:
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	if !isTerminal(out) {
		return slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	return opts.NewPrettyHandler(out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
