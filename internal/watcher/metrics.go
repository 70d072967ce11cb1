package watcher

import (
	"sync/atomic"
	"time"
)

type WatcherMetrics struct {
	eventsReceived   int64
	eventsDispatched int64
	eventsIgnored    int64
	errors           int64
	lastEventTime    int64
}

func NewWatcherMetrics() *WatcherMetrics {
	return &WatcherMetrics{}
}

func (m *WatcherMetrics) RecordEvent() {
	atomic.AddInt64(&m.eventsReceived, 1)
	atomic.StoreInt64(&m.lastEventTime, time.Now().UnixNano())
}

func (m *WatcherMetrics) RecordDispatched() {
	atomic.AddInt64(&m.eventsDispatched, 1)
}

func (m *WatcherMetrics) RecordIgnored() {
	atomic.AddInt64(&m.eventsIgnored, 1)
}

func (m *WatcherMetrics) RecordError() {
	atomic.AddInt64(&m.errors, 1)
}

func (m *WatcherMetrics) GetStats() map[string]interface{} {
	var last time.Time
	if ns := atomic.LoadInt64(&m.lastEventTime); ns != 0 {
		last = time.Unix(0, ns)
	}

	return map[string]interface{}{
		"events_received":   atomic.LoadInt64(&m.eventsReceived),
		"events_dispatched": atomic.LoadInt64(&m.eventsDispatched),
		"events_ignored":    atomic.LoadInt64(&m.eventsIgnored),
		"errors":            atomic.LoadInt64(&m.errors),
		"last_event_time":   last,
	}
}
