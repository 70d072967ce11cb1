// Package cli is the command line of the renamer.
package cli

import (
	"io"

	pcli "sbrenamer/pkg/cli"
)

// New registers every command on a fresh command tree.
func New(appCtx *AppContext) *pcli.CLI {
	c := pcli.NewCLI("sbrenamer", "Rename downloaded flight plans for the simulator")
	c.Root().PersistentFlags().StringVarP(&appCtx.ConfigPath, "config", "c", "", "path to the yaml config file (env CONFIG_PATH)")

	c.RegisterPlugin(NewRunCommand(appCtx))
	c.RegisterPlugin(NewRenameCommand(appCtx))
	c.RegisterPlugin(NewSweepCommand(appCtx))
	c.RegisterPlugin(NewSettingsCommand(appCtx))
	c.RegisterPlugin(NewHistoryCommand(appCtx))

	return c
}

// Run executes args and releases the application afterwards.
func Run(args []string, in io.Reader, out io.Writer) error {
	appCtx := NewAppContext(in, out)
	defer appCtx.Close()

	return New(appCtx).Execute(args, out)
}
