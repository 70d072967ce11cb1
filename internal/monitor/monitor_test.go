package monitor

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbrenamer/internal/settings"
	"sbrenamer/internal/watcher"
)

type fakeSettings struct {
	mu         sync.Mutex
	dir        string
	fms        settings.FmsMode
	autoStart  bool
	monitoring bool
}

func (s *fakeSettings) SourceDir() string         { return s.dir }
func (s *fakeSettings) FmsMode() settings.FmsMode { return s.fms }
func (s *fakeSettings) AutoStart() bool           { return s.autoStart }

func (s *fakeSettings) SetMonitoring(v bool) {
	s.mu.Lock()
	s.monitoring = v
	s.mu.Unlock()
}

func (s *fakeSettings) Monitoring() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monitoring
}

type fakeSubscription struct {
	closed atomic.Bool
}

func (f *fakeSubscription) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeSubscription) Alive() bool {
	return !f.closed.Load()
}

type recordingSubscriber struct {
	mu      sync.Mutex
	configs []watcher.Config
	dirs    []string
	subs    []*fakeSubscription
	err     error
}

func (r *recordingSubscriber) subscribe(dir string, _ watcher.Handler, cfg watcher.Config) (Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	sub := &fakeSubscription{}
	r.dirs = append(r.dirs, dir)
	r.configs = append(r.configs, cfg)
	r.subs = append(r.subs, sub)
	return sub, nil
}

func (r *recordingSubscriber) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func newController(s *fakeSettings) (*Controller, *recordingSubscriber) {
	rs := &recordingSubscriber{}
	h := watcher.HandlerFunc(func(watcher.Event) {})
	return NewController(s, h, rs.subscribe, nil), rs
}

func TestPatterns(t *testing.T) {
	assert.Equal(t, []string{"*.xml"}, Patterns(settings.FmsNone))
	assert.Equal(t, []string{"*.xml", "*.fms"}, Patterns(settings.FmsReplace))
	assert.Equal(t, []string{"*.xml", "*.fms"}, Patterns(settings.FmsBoth))
}

func TestController_StartStop(t *testing.T) {
	s := &fakeSettings{dir: "/plans", fms: settings.FmsNone}
	c, rs := newController(s)

	assert.Equal(t, Stopped, c.State())
	assert.ErrorIs(t, c.Stop(), ErrNotRunning)

	require.NoError(t, c.Start())
	assert.Equal(t, Running, c.State())
	assert.True(t, s.Monitoring())
	assert.True(t, c.IsActive())
	assert.Equal(t, []string{"/plans"}, rs.dirs)
	assert.Equal(t, []string{"*.xml"}, rs.configs[0].Patterns)

	assert.ErrorIs(t, c.Start(), ErrAlreadyRunning)
	assert.Equal(t, 1, rs.count())

	require.NoError(t, c.Stop())
	assert.Equal(t, Stopped, c.State())
	assert.False(t, s.Monitoring())
	assert.False(t, c.IsActive())
	assert.True(t, rs.subs[0].closed.Load())
}

func TestController_Toggle(t *testing.T) {
	s := &fakeSettings{dir: "/plans", fms: settings.FmsBoth}
	c, _ := newController(s)

	assert.Equal(t, LabelStart, c.Label())

	label, err := c.Toggle(LabelStart)
	require.NoError(t, err)
	assert.Equal(t, LabelStop, label)
	assert.Equal(t, LabelStop, c.Label())

	label, err = c.Toggle(label)
	require.NoError(t, err)
	assert.Equal(t, LabelStart, label)
	assert.Equal(t, Stopped, c.State())
}

func TestController_IsActiveBeforeStart(t *testing.T) {
	c, _ := newController(&fakeSettings{dir: "/plans"})
	assert.False(t, c.IsActive())
	assert.Nil(t, c.Stats())
}

func TestController_StartFailure(t *testing.T) {
	s := &fakeSettings{dir: "/missing", fms: settings.FmsBoth}
	c, rs := newController(s)
	rs.err = errors.New("boom")

	label, err := c.Toggle(LabelStart)
	assert.Error(t, err)
	assert.Equal(t, LabelStart, label)
	assert.Equal(t, Stopped, c.State())
	assert.False(t, s.Monitoring())
}

func TestController_RestartPicksUpSettings(t *testing.T) {
	s := &fakeSettings{dir: "/plans", fms: settings.FmsBoth}
	c, rs := newController(s)

	require.NoError(t, c.Start())

	s.dir = "/other"
	s.fms = settings.FmsNone
	require.NoError(t, c.Restart())

	require.Equal(t, 2, rs.count())
	assert.True(t, rs.subs[0].closed.Load())
	assert.Equal(t, "/other", rs.dirs[1])
	assert.Equal(t, []string{"*.xml"}, rs.configs[1].Patterns)
	assert.Equal(t, Running, c.State())
}

func TestController_ScheduleAutoStart(t *testing.T) {
	s := &fakeSettings{dir: "/plans", fms: settings.FmsBoth}
	c, rs := newController(s)

	assert.False(t, c.ScheduleAutoStart(time.Millisecond))

	s.autoStart = true
	assert.True(t, c.ScheduleAutoStart(10*time.Millisecond))

	assert.Eventually(t, func() bool {
		return rs.count() == 1 && c.State() == Running
	}, 2*time.Second, 10*time.Millisecond)
}

func TestController_WithFileWatcher(t *testing.T) {
	dir := t.TempDir()

	events := make(chan watcher.Event, 10)
	h := watcher.HandlerFunc(func(ev watcher.Event) { events <- ev })
	c := NewController(&fakeSettings{dir: dir, fms: settings.FmsBoth}, h, nil, nil)

	require.NoError(t, c.Start())
	defer c.Stop()
	assert.True(t, c.IsActive())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "OFPABCDEF123.xml"), []byte("plan"), 0644))

	select {
	case ev := <-events:
		assert.Equal(t, "OFPABCDEF123.xml", filepath.Base(ev.Path))
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	stats := c.Stats()
	require.NotNil(t, stats)
	assert.GreaterOrEqual(t, stats["events_dispatched"].(int64), int64(1))
}
