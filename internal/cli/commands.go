package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sbrenamer/internal/app"
	"sbrenamer/internal/renamer"
)

type RunCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewRunCommand(appCtx *AppContext) *RunCommand {
	return &RunCommand{appCtx: appCtx}
}

func (r *RunCommand) Meta() *cobra.Command {
	if r.cmd != nil {
		return r.cmd
	}
	r.cmd = &cobra.Command{
		Use:   "run",
		Short: "Watch the flight plan directory",
		Long:  "Start the sweeper, auto start monitoring when enabled and open the console when attached to a terminal.",
		Args:  cobra.NoArgs,
	}
	r.cmd.Flags().Bool("console", false, "read console commands from stdin even when it is not a terminal")
	r.cmd.Flags().Bool("no-console", false, "never open the console")
	return r.cmd
}

func (r *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	a, err := r.appCtx.App()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	force, _ := cmd.Flags().GetBool("console")
	never, _ := cmd.Flags().GetBool("no-console")

	var workers []app.Worker
	if !never && (force || isTerminal(r.appCtx.In)) {
		console := NewConsole(a, r.appCtx.In, r.appCtx.Out)
		workers = append(workers, console.Run)
	}

	return a.Run(ctx, workers...)
}

type RenameCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewRenameCommand(appCtx *AppContext) *RenameCommand {
	return &RenameCommand{appCtx: appCtx}
}

func (r *RenameCommand) Meta() *cobra.Command {
	if r.cmd != nil {
		return r.cmd
	}
	r.cmd = &cobra.Command{
		Use:   "rename <file>...",
		Short: "Rename or copy flight plan files right away",
		Args:  cobra.MinimumNArgs(1),
	}
	return r.cmd
}

func (r *RenameCommand) Execute(cmd *cobra.Command, args []string) error {
	a, err := r.appCtx.App()
	if err != nil {
		return err
	}

	outcomes := a.Rename(args...)
	printOutcomes(cmd.OutOrStdout(), outcomes)

	failed := 0
	for _, o := range outcomes {
		if o.Action == renamer.ActionFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(outcomes))
	}
	return nil
}

type SweepCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewSweepCommand(appCtx *AppContext) *SweepCommand {
	return &SweepCommand{appCtx: appCtx}
}

func (s *SweepCommand) Meta() *cobra.Command {
	if s.cmd != nil {
		return s.cmd
	}
	s.cmd = &cobra.Command{
		Use:   "sweep",
		Short: "Delete files older than the retention period",
		Args:  cobra.NoArgs,
	}
	s.cmd.Flags().IntP("days", "d", -1, "retention in days, overrides number_of_days")
	return s.cmd
}

func (s *SweepCommand) Execute(cmd *cobra.Command, args []string) error {
	a, err := s.appCtx.App()
	if err != nil {
		return err
	}

	days, err := cmd.Flags().GetInt("days")
	if err != nil {
		return err
	}

	report, err := a.Sweep(days)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

// SettingsCommand shows and edits the settings file. Edits are saved
// immediately.
type SettingsCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewSettingsCommand(appCtx *AppContext) *SettingsCommand {
	return &SettingsCommand{appCtx: appCtx}
}

func (s *SettingsCommand) Meta() *cobra.Command {
	if s.cmd != nil {
		return s.cmd
	}
	s.cmd = &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		Args:  cobra.NoArgs,
	}

	s.cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print all settings",
			Args:  cobra.NoArgs,
			RunE:  s.show,
		},
		&cobra.Command{
			Use:   "set <key> [value]",
			Short: "Change and save a setting; prompts for the value when omitted",
			Args:  cobra.RangeArgs(1, 2),
			RunE:  s.set,
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List keys and accepted values",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				printKeys(cmd.OutOrStdout())
			},
		},
	)
	return s.cmd
}

func (s *SettingsCommand) Execute(cmd *cobra.Command, args []string) error {
	return s.show(cmd, args)
}

func (s *SettingsCommand) show(cmd *cobra.Command, _ []string) error {
	a, err := s.appCtx.App()
	if err != nil {
		return err
	}
	printSettings(cmd.OutOrStdout(), a.Settings)
	return nil
}

func (s *SettingsCommand) set(cmd *cobra.Command, args []string) error {
	a, err := s.appCtx.App()
	if err != nil {
		return err
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		if !isTerminal(s.appCtx.In) {
			return fmt.Errorf("value for %s is required", key)
		}
		if value, err = promptValue(a.Settings, key); err != nil {
			return err
		}
	}

	changed, err := a.Settings.Set(key, value)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged\n", key)
		return nil
	}
	if err := a.Settings.Save(); err != nil {
		return err
	}

	v, _ := a.Settings.Get(key)
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, v)
	return nil
}

type HistoryCommand struct {
	cmd    *cobra.Command
	appCtx *AppContext
}

func NewHistoryCommand(appCtx *AppContext) *HistoryCommand {
	return &HistoryCommand{appCtx: appCtx}
}

func (h *HistoryCommand) Meta() *cobra.Command {
	if h.cmd != nil {
		return h.cmd
	}
	h.cmd = &cobra.Command{
		Use:   "history",
		Short: "Show recent renames and copies",
		Args:  cobra.NoArgs,
	}
	h.cmd.Flags().IntP("number", "n", 10, "number of entries, 0 for all")
	return h.cmd
}

func (h *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	a, err := h.appCtx.App()
	if err != nil {
		return err
	}

	n, err := cmd.Flags().GetInt("number")
	if err != nil {
		return err
	}
	return showHistory(cmd, a, n)
}

func showHistory(cmd *cobra.Command, a *app.App, n int) error {
	if a.History == nil {
		return fmt.Errorf("history is not available")
	}

	outcomes, err := a.History.Recent(n)
	if err != nil {
		return err
	}
	printOutcomes(cmd.OutOrStdout(), outcomes)
	return nil
}

func isTerminal(r interface{}) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
