// Package prompt is the interactive input collaborator: single-line input,
// masked secrets, confirmations, and menu choices. The flows in assignment
// and deploy depend only on the Prompter interface so tests can script it.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Prompter supplies operator input to the collection flows.
type Prompter interface {
	// Line asks for one line of input. The returned string is trimmed.
	Line(label string) (string, error)

	// Secret asks for one line without echoing it (API tokens).
	Secret(label string) (string, error)

	// Confirm asks a yes/no question with a default.
	Confirm(label string, def bool) (bool, error)

	// Choose presents a numbered menu and returns the chosen index.
	Choose(label string, options []string) (int, error)
}

// Terminal is the stdin/stdout Prompter.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal builds a Terminal prompter over stdin/stdout.
func NewTerminal() *Terminal {
	return &Terminal{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// NewTerminalWith builds a Terminal over arbitrary streams, for tests.
func NewTerminalWith(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Line(label string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", label)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Secret(label string) (string, error) {
	fmt.Fprintf(t.out, "%s: ", label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(t.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	// Not a TTY (piped input): fall back to a plain read.
	return t.Line("")
}

func (t *Terminal) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := t.Line(fmt.Sprintf("%s [%s]", label, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(t.out, "Please answer y or n.")
	}
}

func (t *Terminal) Choose(label string, options []string) (int, error) {
	fmt.Fprintln(t.out, label)
	for i, opt := range options {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, opt)
	}
	for {
		answer, err := t.Line(fmt.Sprintf("Choice [1-%d]", len(options)))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(t.out, "Enter a number between 1 and %d.\n", len(options))
	}
}
