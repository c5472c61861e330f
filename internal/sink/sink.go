// Package sink provides the append-only output channel that receives status
// lines, generator output, and monitoring events in emission order.
package sink

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Sink receives lines of text. Implementations must be safe for concurrent use.
type Sink interface {
	Append(line string)
}

// Appendf formats and appends one line.
func Appendf(s Sink, format string, args ...interface{}) {
	if s == nil {
		return
	}
	s.Append(fmt.Sprintf(format, args...))
}

// Writer writes timestamped lines to an io.Writer.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewWriter creates a Writer sink on top of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, now: time.Now}
}

// Append writes line prefixed with an RFC3339 timestamp.
func (s *Writer) Append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line = strings.TrimRight(line, "\r\n")
	_, _ = fmt.Fprintf(s.w, "[%s] %s\n", s.now().Format(time.RFC3339), line)
}

// Memory keeps appended lines in memory.
type Memory struct {
	mu    sync.Mutex
	lines []string
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
}

// Lines returns a copy of every appended line.
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

// Contains reports whether any line contains substr.
func (m *Memory) Contains(substr string) bool {
	for _, l := range m.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// Discard drops every line.
var Discard Sink = discard{}

type discard struct{}

func (discard) Append(string) {}

// Multi fans lines out to several sinks in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) Append(line string) {
	for _, s := range m {
		s.Append(line)
	}
}
