// Package notify delivers (message, title) notifications to the terminal.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Console prints notifications as "[title] message" lines.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	title *color.Color
}

func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{
		out:   out,
		title: color.New(color.FgGreen, color.Bold),
	}
}

// Notify matches the renamer notification listener signature.
func (c *Console) Notify(message, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "%s %s\n", c.title.Sprintf("[%s]", title), message)
}
