package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebounceCache_ContainsUntilExpiry(t *testing.T) {
	c := NewDebounceCache(50 * time.Millisecond)

	c.Append("a.xml")
	assert.True(t, c.Contains("a.xml"))
	assert.False(t, c.Contains("b.xml"))
	assert.Equal(t, 1, c.Len())

	assert.Eventually(t, func() bool {
		return !c.Contains("a.xml")
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, c.Len())
}

func TestDebounceCache_ReappendRestartsLifetime(t *testing.T) {
	c := NewDebounceCache(150 * time.Millisecond)

	c.Append("a.xml")
	first, ok := c.InsertedAt("a.xml")
	assert.True(t, ok)

	time.Sleep(100 * time.Millisecond)
	c.Append("a.xml")
	second, _ := c.InsertedAt("a.xml")
	assert.True(t, second.After(first))

	// the first timer fires here but must not remove the newer entry
	time.Sleep(80 * time.Millisecond)
	assert.True(t, c.Contains("a.xml"))

	assert.Eventually(t, func() bool {
		return !c.Contains("a.xml")
	}, time.Second, 10*time.Millisecond)
}

func TestDebounceCache_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultDebounceTTL, NewDebounceCache(0).TTL())
	assert.Equal(t, time.Second, NewDebounceCache(time.Second).TTL())
}
