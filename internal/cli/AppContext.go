package cli

import (
	"io"
	"sync"

	"sbrenamer/internal/app"
	"sbrenamer/internal/config"
)

// AppContext хранит зависимости, которые будут использоваться в командах CLI
type AppContext struct {
	ConfigPath string
	In         io.Reader
	Out        *SwitchWriter
	// Options are passed to app.New; Out is always the switch writer.
	Options app.Options

	app *app.App
}

func NewAppContext(in io.Reader, out io.Writer) *AppContext {
	return &AppContext{
		In:  in,
		Out: NewSwitchWriter(out),
	}
}

// App loads the configuration and builds the application on first use.
func (c *AppContext) App() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}

	cfg, err := config.Load(config.FetchConfigPath(c.ConfigPath))
	if err != nil {
		return nil, err
	}

	opts := c.Options
	opts.Out = c.Out
	a, err := app.New(cfg, opts)
	if err != nil {
		return nil, err
	}

	c.app = a
	return a, nil
}

func (c *AppContext) Close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// SwitchWriter forwards writes to a replaceable writer. The console points
// it at the raw terminal so log lines do not break the prompt.
type SwitchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewSwitchWriter(w io.Writer) *SwitchWriter {
	return &SwitchWriter{w: w}
}

// Set replaces the target and returns the previous one.
func (s *SwitchWriter) Set(w io.Writer) io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.w
	s.w = w
	return prev
}

func (s *SwitchWriter) Current() io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w
}

func (s *SwitchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
