// Package notify shows progress and outcome notifications and asks the user
// questions on the terminal.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Notifier reports progress and outcomes to the user.
type Notifier interface {
	// Progress shows an indicator until the returned function is called.
	Progress(message string) (done func())
	Success(message string)
	Failure(message string)
	Info(message string)
}

// ConsoleOptions configures a Console.
type ConsoleOptions struct {
	Writer io.Writer

	// Quiet suppresses success and failure notifications. Progress and
	// info lines are still shown.
	Quiet bool

	// NoSpinner prints a plain progress line instead of an animation.
	NoSpinner bool
}

// Console writes notifications to a terminal.
type Console struct {
	out       io.Writer
	quiet     bool
	noSpinner bool

	mu      sync.Mutex
	spinner *spinner.Spinner
}

// NewConsole creates a Console. A nil writer uses stderr.
func NewConsole(opts ConsoleOptions) *Console {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	return &Console{out: opts.Writer, quiet: opts.Quiet, noSpinner: opts.NoSpinner}
}

// Progress starts a spinner with message. Only one spinner is shown at a
// time; a second call replaces the suffix of the running one.
func (c *Console) Progress(message string) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.noSpinner {
		fmt.Fprintf(c.out, "%s\n", text.FgCyan.Sprint("… "+message))
		return func() {}
	}

	if c.spinner != nil {
		c.spinner.Suffix = " " + message
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.out))
	s.Suffix = " " + message
	s.Start()
	c.spinner = s

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			s.Stop()
			if c.spinner == s {
				c.spinner = nil
			}
		})
	}
}

func (c *Console) Success(message string) {
	if c.quiet {
		return
	}
	c.println(text.FgGreen.Sprint("✓ ") + message)
}

func (c *Console) Failure(message string) {
	if c.quiet {
		return
	}
	c.println(text.FgRed.Sprint("❌ ") + message)
}

func (c *Console) Info(message string) {
	c.println(text.FgBlue.Sprint("ℹ ") + message)
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// Kind classifies a recorded notification.
type Kind string

const (
	KindProgress Kind = "progress"
	KindSuccess  Kind = "success"
	KindFailure  Kind = "failure"
	KindInfo     Kind = "info"
)

// Notification is one message captured by Memory.
type Notification struct {
	Kind    Kind
	Message string
}

// Memory records notifications instead of showing them.
type Memory struct {
	mu    sync.Mutex
	items []Notification
	open  int
}

// NewMemory creates an empty Memory notifier.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Progress(message string) func() {
	m.add(KindProgress, message)
	m.mu.Lock()
	m.open++
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.open--
			m.mu.Unlock()
		})
	}
}

func (m *Memory) Success(message string) { m.add(KindSuccess, message) }
func (m *Memory) Failure(message string) { m.add(KindFailure, message) }
func (m *Memory) Info(message string)    { m.add(KindInfo, message) }

func (m *Memory) add(kind Kind, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, Notification{Kind: kind, Message: message})
}

// All returns every recorded notification in order.
func (m *Memory) All() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, len(m.items))
	copy(out, m.items)
	return out
}

// OfKind returns the messages of one kind in order.
func (m *Memory) OfKind(kind Kind) []string {
	var out []string
	for _, n := range m.All() {
		if n.Kind == kind {
			out = append(out, n.Message)
		}
	}
	return out
}

// OpenProgress returns how many progress indicators have not been closed.
func (m *Memory) OpenProgress() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
