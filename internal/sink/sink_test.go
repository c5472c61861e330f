package sink

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Append(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	w.Append("Generation started\n")
	Appendf(w, "exit code %d", 3)

	assert.Equal(t, "[2026-01-02T03:04:05Z] Generation started\n[2026-01-02T03:04:05Z] exit code 3\n", buf.String())
}

func TestMemory_PreservesOrder(t *testing.T) {
	m := NewMemory()
	m.Append("one")
	m.Append("two")
	m.Append("three")

	assert.Equal(t, []string{"one", "two", "three"}, m.Lines())
	assert.True(t, m.Contains("tw"))
	assert.False(t, m.Contains("four"))
}

func TestMemory_Concurrent(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Append("line")
		}()
	}
	wg.Wait()
	assert.Len(t, m.Lines(), 20)
}

func TestMulti(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	s := Multi(a, Discard, b)
	s.Append("hello")

	assert.Equal(t, []string{"hello"}, a.Lines())
	assert.Equal(t, []string{"hello"}, b.Lines())
}

func TestAppendf_NilSink(t *testing.T) {
	assert.NotPanics(t, func() { Appendf(nil, "x %d", 1) })
}
