package generator

import (
	"bytes"
	"strings"
	"sync"

	"wsdlsync/internal/sink"
)

// lineWriter splits tool output into lines and appends each one to a sink.
// A line longer than maxLineBytes is emitted in pieces.
type lineWriter struct {
	mu     sync.Mutex
	sink   sink.Sink
	prefix string
	buf    []byte
}

func newLineWriter(s sink.Sink, prefix string) *lineWriter {
	return &lineWriter{sink: s, prefix: prefix}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx < 0 {
			break
		}
		w.emit(w.buf[:idx])
		w.buf = w.buf[idx+1:]
	}
	for len(w.buf) >= maxLineBytes {
		w.emit(w.buf[:maxLineBytes])
		w.buf = w.buf[maxLineBytes:]
	}
	return len(p), nil
}

// Flush emits a trailing line that had no newline.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *lineWriter) emit(line []byte) {
	w.sink.Append(w.prefix + strings.TrimRight(string(line), "\r"))
}
