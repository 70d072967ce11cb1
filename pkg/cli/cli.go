package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// CommandPlugin is a self-describing command. Meta must return the same
// command on every call.
type CommandPlugin interface {
	Meta() *cobra.Command
	Execute(cmd *cobra.Command, args []string) error
}

type CLI struct {
	rootCmd *cobra.Command
	plugins []CommandPlugin
}

func NewCLI(use, short string) *CLI {
	return &CLI{
		rootCmd: &cobra.Command{
			Use:           use,
			Short:         short,
			SilenceUsage:  true,
			SilenceErrors: true,
		},
		plugins: make([]CommandPlugin, 0, 10),
	}
}

func (c *CLI) Root() *cobra.Command {
	return c.rootCmd
}

func (c *CLI) RegisterPlugin(p CommandPlugin) {
	c.plugins = append(c.plugins, p)
	cmd := p.Meta()
	if cmd.RunE == nil && cmd.Run == nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			for _, plugin := range c.plugins {
				if plugin.Meta() == cmd {
					return plugin.Execute(cmd, args)
				}
			}
			return fmt.Errorf("unknown command %q", cmd.Name())
		}
	}
	c.rootCmd.AddCommand(cmd)
}

// Names lists the registered command names.
func (c *CLI) Names() []string {
	names := make([]string, 0, len(c.plugins))
	for _, plugin := range c.plugins {
		names = append(names, plugin.Meta().Name())
	}
	return names
}

func (c *CLI) initCompletion() {
	c.rootCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string,
	) ([]string, cobra.ShellCompDirective) {
		return c.Names(), cobra.ShellCompDirectiveNoFileComp
	}
	completionCmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate completion script",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := "bash"
			if len(args) == 1 {
				shell = args[0]
			}
			switch shell {
			case "bash":
				return c.rootCmd.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return c.rootCmd.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return c.rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return c.rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unsupported shell: %s", shell)
			}
		},
	}
	// source <(sbrenamer completion zsh)
	c.rootCmd.AddCommand(completionCmd)
}

// Execute runs the command line args against the registered plugins.
func (c *CLI) Execute(args []string, out io.Writer) error {
	c.initCompletion()
	c.rootCmd.SetArgs(args)
	if out != nil {
		c.rootCmd.SetOut(out)
		c.rootCmd.SetErr(out)
	}
	return c.rootCmd.Execute()
}
