// Package console abstracts operator interaction so the pipeline can be
// driven interactively from a terminal or scripted in tests.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Prompter collects decisions from a human operator. Every pipeline stage
// that needs confirmation takes one of these instead of reading stdin
// directly.
type Prompter interface {
	// Confirm asks a yes/no question and reports the answer.
	Confirm(question string) (bool, error)
	// Ask prompts for a free-form line of input.
	Ask(question string) (string, error)
	// Select prompts until the operator enters one of the given options.
	Select(question string, options []string) (string, error)
}

// Stdio is the terminal-backed Prompter used by the CLI.
type Stdio struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdio creates a Prompter reading from in and writing to out. Nil
// arguments fall back to os.Stdin and os.Stdout.
func NewStdio(in io.Reader, out io.Writer) *Stdio {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Stdio{in: bufio.NewReader(in), out: out}
}

func (s *Stdio) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", eris.Wrap(err, "console: read input")
	}
	return strings.TrimSpace(line), nil
}

// Confirm accepts y/yes (case-insensitive) as true; anything else is false.
func (s *Stdio) Confirm(question string) (bool, error) {
	fmt.Fprintf(s.out, "%s (y/n): ", question)
	answer, err := s.readLine()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// Ask prompts for a single line and returns it trimmed.
func (s *Stdio) Ask(question string) (string, error) {
	fmt.Fprintf(s.out, "%s: ", question)
	return s.readLine()
}

// Select re-prompts until the answer matches one of options exactly.
func (s *Stdio) Select(question string, options []string) (string, error) {
	valid := make(map[string]bool, len(options))
	for _, o := range options {
		valid[o] = true
	}
	for {
		fmt.Fprintf(s.out, "%s [%s]: ", question, strings.Join(options, ", "))
		answer, err := s.readLine()
		if err != nil {
			return "", err
		}
		if valid[answer] {
			return answer, nil
		}
		fmt.Fprintf(s.out, "invalid choice %q\n", answer)
	}
}
