// Package prompt is the interactive input boundary. A blank answer at any
// prompt is the operator's way of leaving the tool and surfaces as ErrAbort.
package prompt

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
)

// ErrAbort is returned when the operator enters an empty answer or closes input.
var ErrAbort = stderrors.New("aborted by operator")

// Prompter asks a question and returns the raw answer.
type Prompter interface {
	Prompt(message string) (string, error)
	// Println writes an informational line to the operator.
	Println(a ...any)
	Close() error
}

// ReadlinePrompter reads answers from a terminal with line editing and history.
type ReadlinePrompter struct {
	rl *readline.Instance
}

// NewReadlinePrompter creates a terminal prompter. historyFile may be empty.
func NewReadlinePrompter(historyFile string) (*ReadlinePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	return &ReadlinePrompter{rl: rl}, nil
}

func (p *ReadlinePrompter) Prompt(message string) (string, error) {
	p.rl.SetPrompt(message + " ")
	line, err := p.rl.Readline()
	if err != nil { // io.EOF, readline.ErrInterrupt
		return "", ErrAbort
	}
	return checkBlank(line)
}

func (p *ReadlinePrompter) Println(a ...any) {
	fmt.Fprintln(p.rl.Stdout(), a...)
}

func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}

// LinePrompter reads one answer per line from any reader. It serves piped
// input and tests.
type LinePrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewLinePrompter creates a prompter over in, echoing questions to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	if out == nil {
		out = io.Discard
	}
	return &LinePrompter{scanner: bufio.NewScanner(in), out: out}
}

func (p *LinePrompter) Prompt(message string) (string, error) {
	fmt.Fprint(p.out, message+" ")
	if !p.scanner.Scan() {
		fmt.Fprintln(p.out)
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		return "", ErrAbort
	}
	return checkBlank(p.scanner.Text())
}

func (p *LinePrompter) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *LinePrompter) Close() error {
	return nil
}

// New picks a readline prompter when stdin is a terminal and a line prompter otherwise.
func New(historyFile string) (Prompter, error) {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return NewReadlinePrompter(historyFile)
	}
	return NewLinePrompter(os.Stdin, os.Stdout), nil
}

func checkBlank(line string) (string, error) {
	if strings.TrimSpace(line) == "" {
		return "", ErrAbort
	}
	return line, nil
}
