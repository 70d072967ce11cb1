package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoPlugin struct {
	cmd  *cobra.Command
	args []string
	err  error
}

func (p *echoPlugin) Meta() *cobra.Command {
	if p.cmd == nil {
		p.cmd = &cobra.Command{Use: "echo", Short: "Echo arguments"}
	}
	return p.cmd
}

func (p *echoPlugin) Execute(cmd *cobra.Command, args []string) error {
	p.args = args
	cmd.Print("echo")
	return p.err
}

func TestCLI_DispatchesToPlugin(t *testing.T) {
	c := NewCLI("test", "test cli")
	p := &echoPlugin{}
	c.RegisterPlugin(p)

	var out bytes.Buffer
	require.NoError(t, c.Execute([]string{"echo", "a", "b"}, &out))

	assert.Equal(t, []string{"a", "b"}, p.args)
	assert.Equal(t, "echo", out.String())
	assert.Equal(t, []string{"echo"}, c.Names())
}

func TestCLI_PluginError(t *testing.T) {
	c := NewCLI("test", "test cli")
	boom := errors.New("boom")
	c.RegisterPlugin(&echoPlugin{err: boom})

	err := c.Execute([]string{"echo"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, boom)
}

func TestCLI_Completion(t *testing.T) {
	c := NewCLI("test", "test cli")
	c.RegisterPlugin(&echoPlugin{})

	var out bytes.Buffer
	require.NoError(t, c.Execute([]string{"completion", "bash"}, &out))
	assert.Contains(t, out.String(), "bash completion")
}
