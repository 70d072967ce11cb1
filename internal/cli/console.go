package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sbrenamer/internal/app"
	"sbrenamer/internal/monitor"
)

const prompt = "> "

var errQuit = errors.New("quit")

// Console reads commands line by line while the application runs. Every
// line is executed against a freshly built command tree, so flag values
// never leak between lines.
type Console struct {
	app *app.App
	in  io.Reader
	out *SwitchWriter
}

func NewConsole(a *app.App, in io.Reader, out *SwitchWriter) *Console {
	return &Console{app: a, in: in, out: out}
}

// Exec runs one console line. quit is true when the user asked to leave.
func (c *Console) Exec(line string) (quit bool, err error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	root := c.root()
	root.SetArgs(parts)
	err = root.Execute()
	if errors.Is(err, errQuit) {
		return true, nil
	}
	return false, err
}

// Run reads lines until ctx is done, the input ends or quit is entered.
func (c *Console) Run(ctx context.Context) error {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return c.runTerminal(ctx, f)
	}
	return c.runLines(ctx)
}

type readResult struct {
	line string
	err  error
}

func (c *Console) loop(ctx context.Context, read func() (string, error)) error {
	lines := make(chan readResult)
	go func() {
		for {
			line, err := read()
			select {
			case lines <- readResult{line, err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-lines:
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					return nil
				}
				return r.err
			}
			quit, err := c.Exec(r.line)
			if err != nil {
				fmt.Fprintln(c.out, err)
			}
			if quit {
				return nil
			}
		}
	}
}

func (c *Console) runLines(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	return c.loop(ctx, func() (string, error) {
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	})
}

func (c *Console) runTerminal(ctx context.Context, f *os.File) error {
	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{f, c.out.Current()}, prompt)
	t.AutoCompleteCallback = c.complete

	// log output goes through the terminal so the prompt is redrawn
	prev := c.out.Set(t)
	defer c.out.Set(prev)

	fmt.Fprintln(c.out, "Type help for commands, Tab completes, quit or Ctrl+D leaves.")

	return c.loop(ctx, t.ReadLine)
}

// complete fills in the command name on Tab.
func (c *Console) complete(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' || strings.Contains(line, " ") {
		return "", 0, false
	}

	matches := getMatchingCommands(c.root(), line)
	switch len(matches) {
	case 0:
		return "", 0, false
	case 1:
		completed := matches[0] + " "
		return completed, len(completed), true
	}

	prefix := commonPrefix(matches)
	if len(prefix) <= len(line) {
		return "", 0, false
	}
	return prefix, len(prefix), true
}

// getMatchingCommands возвращает команды, начинающиеся с prefix
func getMatchingCommands(parentCmd *cobra.Command, prefix string) []string {
	var matches []string
	for _, cmd := range parentCmd.Commands() {
		if !cmd.Hidden && strings.HasPrefix(cmd.Name(), prefix) {
			matches = append(matches, cmd.Name())
		}
	}
	return matches
}

func commonPrefix(words []string) string {
	prefix := words[0]
	for _, w := range words[1:] {
		for !strings.HasPrefix(w, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}

func (c *Console) root() *cobra.Command {
	a := c.app

	root := &cobra.Command{
		Use:           "console",
		SilenceUsage:  true,
		SilenceErrors: true,
		// no completion command inside the console
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}
	root.SetOut(c.out)
	root.SetErr(c.out)

	status := func(cmd *cobra.Command) {
		cmd.Printf("monitoring %s, dir %s\n", a.Controller.State(), a.Settings.SourceDir())
	}

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent log lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := cmd.Flags().GetInt("number")
			if err != nil {
				return err
			}
			for _, line := range a.LogView.Lines(n) {
				cmd.Print(line)
			}
			return nil
		},
	}
	logCmd.Flags().IntP("number", "n", 20, "number of lines, 0 for all")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent renames and copies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := cmd.Flags().GetInt("number")
			if err != nil {
				return err
			}
			return showHistory(cmd, a, n)
		},
	}
	historyCmd.Flags().IntP("number", "n", 10, "number of entries, 0 for all")

	root.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start monitoring",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.Controller.Start(); err != nil {
					return err
				}
				status(cmd)
				return nil
			},
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop monitoring",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.Controller.Stop(); err != nil {
					return err
				}
				status(cmd)
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Start or stop monitoring",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				label, err := a.Controller.Toggle(a.Controller.Label())
				if err != nil {
					return err
				}
				status(cmd)
				cmd.Printf("next: %s\n", label)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show monitoring state and settings",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				status(cmd)
				if a.Controller.State() == monitor.Running && !a.Controller.IsActive() {
					cmd.Println("warning: watcher is not alive")
				}
				if stats := a.Controller.Stats(); stats != nil {
					cmd.Printf("events received %v, dispatched %v, ignored %v\n",
						stats["events_received"], stats["events_dispatched"], stats["events_ignored"])
				}
				if last := a.Dispatcher.LastCreated(); last != "" {
					cmd.Printf("last created %s\n", last)
				}
				printSettings(cmd.OutOrStdout(), a.Settings)
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change a setting, save to apply",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				changed, err := a.Settings.Set(args[0], args[1])
				if err != nil {
					return err
				}
				if changed {
					cmd.Println("changed, not saved")
				} else {
					cmd.Println("unchanged")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List keys and accepted values",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				printKeys(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "save",
			Short: "Save settings and apply them",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.Settings.Save(); err != nil {
					return err
				}
				cmd.Println("saved")
				return nil
			},
		},
		&cobra.Command{
			Use:   "sweep",
			Short: "Delete aged files now",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				report, err := a.Sweep(-1)
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			},
		},
		logCmd,
		historyCmd,
		&cobra.Command{
			Use:     "quit",
			Aliases: []string{"exit"},
			Short:   "Leave the application",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return errQuit
			},
		},
	)

	return root
}
