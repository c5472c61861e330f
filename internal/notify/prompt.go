package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"
)

// ErrDeclined is returned when the user dismisses a prompt.
var ErrDeclined = errors.New("prompt dismissed")

// Prompter asks the user questions. Every method honors ctx; a cancelled or
// expired context returns its error.
type Prompter interface {
	// Confirm asks an accept/decline question.
	Confirm(ctx context.Context, question string) (bool, error)

	// Ask reads a line of input. An empty answer yields def. A non-nil
	// validate rejects answers until one passes.
	Ask(ctx context.Context, question, def string, validate func(string) error) (string, error)

	// Choose picks one of options. def is the index used for an empty answer.
	Choose(ctx context.Context, question string, options []string, def int) (string, error)
}

// lineReader is the subset of *readline.Instance used by Terminal.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// Terminal prompts on the controlling terminal with readline. Prompts are
// serialized; a prompt waits for the previous one to finish.
type Terminal struct {
	out  io.Writer
	open func() (lineReader, error)
	sem  chan struct{}

	mu     sync.Mutex
	reader lineReader
}

// NewTerminal creates a Terminal prompter that reads stdin and writes to out.
func NewTerminal(out io.Writer) *Terminal {
	t := &Terminal{out: out, sem: make(chan struct{}, 1)}
	t.open = func() (lineReader, error) {
		rl, err := readline.NewEx(&readline.Config{
			Stdout:          out,
			InterruptPrompt: "^C",
			EOFPrompt:       "",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create readline instance: %w", err)
		}
		return rl, nil
	}
	return t
}

// IsInteractive reports whether stdin and stdout are attached to a terminal.
func IsInteractive() bool {
	return readline.DefaultIsTerminal()
}

// Close releases the terminal.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.reader == nil {
		return nil
	}
	err := t.reader.Close()
	t.reader = nil
	return err
}

func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := t.readLine(ctx, fmt.Sprintf("%s %s ", text.FgYellow.Sprint("?"), question+" [y/N]"))
	if err != nil {
		return false, err
	}
	return parseYes(answer), nil
}

func (t *Terminal) Ask(ctx context.Context, question, def string, validate func(string) error) (string, error) {
	prompt := fmt.Sprintf("%s %s: ", text.FgYellow.Sprint("?"), question)
	if def != "" {
		prompt = fmt.Sprintf("%s %s (%s): ", text.FgYellow.Sprint("?"), question, def)
	}
	for {
		answer, err := t.readLine(ctx, prompt)
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			answer = def
		}
		if validate == nil {
			return answer, nil
		}
		if verr := validate(answer); verr != nil {
			fmt.Fprintf(t.out, "%s\n", text.FgRed.Sprint(verr.Error()))
			continue
		}
		return answer, nil
	}
}

func (t *Terminal) Choose(ctx context.Context, question string, options []string, def int) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options to choose from")
	}
	fmt.Fprintf(t.out, "%s %s\n", text.FgYellow.Sprint("?"), question)
	for i, o := range options {
		marker := " "
		if i == def {
			marker = "*"
		}
		fmt.Fprintf(t.out, " %s %d) %s\n", marker, i+1, o)
	}

	answer, err := t.Ask(ctx, "Select", strconv.Itoa(def+1), func(s string) error {
		_, err := pick(options, s)
		return err
	})
	if err != nil {
		return "", err
	}
	return pick(options, answer)
}

// readLine shows prompt and returns the next line. A cancelled context
// closes the reader so the blocked read returns.
func (t *Terminal) readLine(ctx context.Context, prompt string) (string, error) {
	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-t.sem }()

	reader, err := t.acquireReader()
	if err != nil {
		return "", err
	}
	reader.SetPrompt(prompt)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := reader.Readline()
		ch <- result{line, err}
	}()

	select {
	case r := <-ch:
		if errors.Is(r.err, readline.ErrInterrupt) || errors.Is(r.err, io.EOF) {
			return "", ErrDeclined
		}
		return r.line, r.err
	case <-ctx.Done():
		_ = t.Close()
		return "", ctx.Err()
	}
}

func (t *Terminal) acquireReader() (lineReader, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.reader != nil {
		return t.reader, nil
	}
	r, err := t.open()
	if err != nil {
		return nil, err
	}
	t.reader = r
	return r, nil
}

func pick(options []string, answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(options) {
			return "", fmt.Errorf("choose a number between 1 and %d", len(options))
		}
		return options[n-1], nil
	}
	for _, o := range options {
		if strings.EqualFold(o, answer) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%q is not one of the options", answer)
}

func parseYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Static answers every Confirm with a fixed choice and every Ask or Choose
// with its default. It is used when no terminal is attached.
type Static struct {
	Accept bool
}

func (s Static) Confirm(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.Accept, nil
}

func (s Static) Ask(ctx context.Context, question, def string, validate func(string) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if validate != nil {
		if err := validate(def); err != nil {
			return "", fmt.Errorf("no valid answer for %q: %w", question, err)
		}
	}
	return def, nil
}

func (s Static) Choose(ctx context.Context, question string, options []string, def int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if def < 0 || def >= len(options) {
		return "", fmt.Errorf("no default for %q", question)
	}
	return options[def], nil
}

// Scripted replays queued answers. Confirm with an empty queue blocks until
// ctx is done, which mimics a prompt nobody answers.
type Scripted struct {
	mu       sync.Mutex
	confirms []bool
	answers  []string
	asked    []string
}

// NewScripted creates a Scripted prompter.
func NewScripted(confirms []bool, answers []string) *Scripted {
	return &Scripted{confirms: confirms, answers: answers}
}

func (s *Scripted) Confirm(ctx context.Context, question string) (bool, error) {
	s.mu.Lock()
	s.asked = append(s.asked, question)
	if len(s.confirms) > 0 {
		v := s.confirms[0]
		s.confirms = s.confirms[1:]
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	<-ctx.Done()
	return false, ctx.Err()
}

func (s *Scripted) Ask(ctx context.Context, question, def string, validate func(string) error) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, question)
	for len(s.answers) > 0 {
		a := strings.TrimSpace(s.answers[0])
		s.answers = s.answers[1:]
		if a == "" {
			a = def
		}
		if validate == nil || validate(a) == nil {
			return a, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", ErrDeclined
}

func (s *Scripted) Choose(ctx context.Context, question string, options []string, def int) (string, error) {
	answer, err := s.Ask(ctx, question, strconv.Itoa(def+1), func(a string) error {
		_, err := pick(options, a)
		return err
	})
	if err != nil {
		return "", err
	}
	return pick(options, answer)
}

// Asked returns the questions seen so far.
func (s *Scripted) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.asked))
	copy(out, s.asked)
	return out
}
