package app

import "sync"

const DefaultLogViewSize = 500

// LogView keeps the most recent formatted log lines for display.
type LogView struct {
	mu    sync.Mutex
	lines []string
	size  int
}

func NewLogView(size int) *LogView {
	if size <= 0 {
		size = DefaultLogViewSize
	}
	return &LogView{size: size}
}

func (v *LogView) Append(line string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lines = append(v.lines, line)
	if len(v.lines) > v.size {
		v.lines = v.lines[len(v.lines)-v.size:]
	}
}

// Lines returns up to n most recent lines, oldest first. n <= 0 returns all.
func (v *LogView) Lines(n int) []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	start := 0
	if n > 0 && n < len(v.lines) {
		start = len(v.lines) - n
	}
	return append([]string(nil), v.lines[start:]...)
}
