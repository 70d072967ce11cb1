package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbrenamer/internal/app"
	"sbrenamer/internal/monitor"
	"sbrenamer/internal/watcher"
)

type stubSubscription struct {
	mu     sync.Mutex
	closed bool
}

func (s *stubSubscription) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *stubSubscription) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func stubSubscriber(string, watcher.Handler, watcher.Config) (monitor.Subscription, error) {
	return &stubSubscription{}, nil
}

type env struct {
	ini string
	fs  afero.Fs
}

func setupEnv(t *testing.T, ini string) *env {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(ini), 0644))

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ENV", "local")
	t.Setenv("SETTINGS_FILE", path)
	t.Setenv("HISTORY_FILE", filepath.Join(dir, "history.db"))
	t.Setenv("LOG_FILE", filepath.Join(dir, "log.txt"))

	return &env{ini: path, fs: afero.NewMemMapFs()}
}

func (e *env) context(in string, out *bytes.Buffer) *AppContext {
	appCtx := NewAppContext(strings.NewReader(in), out)
	appCtx.Options = app.Options{
		Fs:         e.fs,
		Subscriber: stubSubscriber,
	}
	return appCtx
}

// run executes one command line against a fresh application.
func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	appCtx := e.context("", &out)
	defer appCtx.Close()

	err := New(appCtx).Execute(args, &out)
	return out.String(), err
}

func TestSettingsCommand_ShowAndSet(t *testing.T) {
	e := setupEnv(t, "[BaseSettings]\nsource_dir = /plans\n")

	out, err := e.run(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "source_dir")
	assert.Contains(t, out, "/plans")
	assert.Contains(t, out, "ICAOICOA.xml")

	out, err = e.run(t, "settings", "set", "number_of_days", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "number_of_days = 5")

	data, err := os.ReadFile(e.ini)
	require.NoError(t, err)
	assert.Contains(t, string(data), "number_of_days")

	out, err = e.run(t, "settings", "set", "number_of_days", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "number_of_days unchanged")
}

func TestSettingsCommand_Errors(t *testing.T) {
	e := setupEnv(t, "[BaseSettings]\n")

	_, err := e.run(t, "settings", "set", "number_of_days", "soon")
	assert.Error(t, err)

	_, err = e.run(t, "settings", "set", "colour", "blue")
	assert.Error(t, err)

	// no terminal to prompt on
	_, err = e.run(t, "settings", "set", "file_format")
	assert.Error(t, err)
}

func TestSettingsCommand_Keys(t *testing.T) {
	e := setupEnv(t, "[BaseSettings]\n")

	out, err := e.run(t, "settings", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "ICAOICOA01.xml")
	assert.Contains(t, out, "BOTH")
	assert.Contains(t, out, "CRITICAL")
}

func TestRenameCommand(t *testing.T) {
	e := setupEnv(t, "[BaseSettings]\nsave_XML = False\n")
	require.NoError(t, afero.WriteFile(e.fs, "/plans/OFPABCDEF123.xml", []byte("plan"), 0644))

	out, err := e.run(t, "rename", "/plans/OFPABCDEF123.xml")
	require.NoError(t, err)
	assert.Contains(t, out, "renamed")
	assert.Contains(t, out, "OFPABCDE.xml")

	ok, err := afero.Exists(e.fs, "/plans/OFPABCDE.xml")
	require.NoError(t, err)
	assert.True(t, ok)

	out, err = e.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "OFPABCDEF123.xml")

	_, err = e.run(t, "rename", "/plans/missing.xml")
	assert.Error(t, err)
}

func TestSweepCommand(t *testing.T) {
	e := setupEnv(t, "[BaseSettings]\nsource_dir = /plans\n")
	require.NoError(t, afero.WriteFile(e.fs, "/plans/old.xml", []byte("x"), 0644))
	old := time.Now().Add(-5 * 24 * time.Hour)
	require.NoError(t, e.fs.Chtimes("/plans/old.xml", old, old))

	out, err := e.run(t, "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 0")

	out, err = e.run(t, "sweep", "--days", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 1")
}

func TestMissingSettingsFile(t *testing.T) {
	e := setupEnv(t, "")
	t.Setenv("SETTINGS_FILE", filepath.Join(t.TempDir(), "missing.ini"))

	_, err := e.run(t, "settings")
	assert.Error(t, err)
}

func newConsole(t *testing.T, e *env, in string) (*Console, *app.App, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	appCtx := e.context(in, &out)
	t.Cleanup(func() { appCtx.Close() })

	a, err := appCtx.App()
	require.NoError(t, err)

	return NewConsole(a, appCtx.In, appCtx.Out), a, &out
}

func TestConsole_Exec(t *testing.T) {
	e := setupEnv(t, "[BaseSettings]\nsource_dir = /plans\n")
	c, a, out := newConsole(t, e, "")

	quit, err := c.Exec("toggle")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, monitor.Running, a.Controller.State())
	assert.Contains(t, out.String(), "next: Stop")

	_, err = c.Exec("start")
	assert.ErrorIs(t, err, monitor.ErrAlreadyRunning)

	_, err = c.Exec("set auto_start True")
	require.NoError(t, err)
	assert.True(t, a.Settings.Dirty())

	_, err = c.Exec("save")
	require.NoError(t, err)
	assert.False(t, a.Settings.Dirty())

	_, err = c.Exec("stop")
	require.NoError(t, err)
	assert.Equal(t, monitor.Stopped, a.Controller.State())

	_, err = c.Exec("fly")
	assert.Error(t, err)

	quit, err = c.Exec("   ")
	require.NoError(t, err)
	assert.False(t, quit)

	quit, err = c.Exec("exit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestConsole_LogShowsInfoLines(t *testing.T) {
	e := setupEnv(t, "[BaseSettings]\n")
	c, _, out := newConsole(t, e, "")

	_, err := c.Exec("start")
	require.NoError(t, err)

	out.Reset()
	_, err = c.Exec("log -n 1")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "INFO - Monitoring started")
}

func TestConsole_RunLines(t *testing.T) {
	e := setupEnv(t, "[BaseSettings]\n")
	c, a, out := newConsole(t, e, "start\nstatus\nquit\nstop\n")

	require.NoError(t, c.Run(context.Background()))

	// stop after quit is never read
	assert.Equal(t, monitor.Running, a.Controller.State())
	assert.Contains(t, out.String(), "monitoring running")
}

func TestConsole_RunEndsAtEOF(t *testing.T) {
	e := setupEnv(t, "[BaseSettings]\n")
	c, _, _ := newConsole(t, e, "status\n")

	assert.NoError(t, c.Run(context.Background()))
}

func TestConsole_Complete(t *testing.T) {
	e := setupEnv(t, "[BaseSettings]\n")
	c, _, _ := newConsole(t, e, "")

	line, pos, ok := c.complete("tog", 3, '\t')
	assert.True(t, ok)
	assert.Equal(t, "toggle ", line)
	assert.Equal(t, 7, pos)

	line, _, ok = c.complete("sa", 2, '\t')
	assert.True(t, ok)
	assert.Equal(t, "save ", line)

	// ambiguous without a longer common prefix
	_, _, ok = c.complete("st", 2, '\t')
	assert.False(t, ok)

	_, _, ok = c.complete("set x", 5, '\t')
	assert.False(t, ok)

	_, _, ok = c.complete("tog", 3, 'x')
	assert.False(t, ok)
}
