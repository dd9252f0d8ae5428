package logger

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ActivityEntry is one recorded tool invocation log line.
type ActivityEntry struct {
	Time      time.Time `json:"time"`
	Level     string    `json:"level"`
	Tool      string    `json:"tool"`
	ErrorKind string    `json:"error_kind,omitempty"`
	Message   string    `json:"message"`
}

// ActivityHook captures log entries carrying a "tool" field into a bounded
// in-memory history, so the management API can report recent activity
// without any persistent state.
type ActivityHook struct {
	mu      sync.RWMutex
	entries []ActivityEntry
	max     int
}

// NewActivityHook creates a hook keeping at most max entries. Older entries
// are discarded first.
func NewActivityHook(max int) *ActivityHook {
	if max <= 0 {
		max = 100
	}
	return &ActivityHook{max: max}
}

// Levels returns the log levels this hook is interested in.
func (h *ActivityHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}
}

// Fire is called when a log event occurs. Entries without a "tool" field
// are ignored.
func (h *ActivityHook) Fire(entry *logrus.Entry) error {
	tool, ok := entry.Data["tool"].(string)
	if !ok || tool == "" {
		return nil
	}

	record := ActivityEntry{
		Time:    entry.Time,
		Level:   entry.Level.String(),
		Tool:    tool,
		Message: entry.Message,
	}
	if kind, ok := entry.Data["error_kind"]; ok {
		record.ErrorKind = fmt.Sprintf("%v", kind)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, record)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
	return nil
}

// Recent returns a copy of the recorded entries, newest last.
func (h *ActivityHook) Recent() []ActivityEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]ActivityEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
