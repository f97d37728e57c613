package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/enn-tee/agentic-job-search/internal/discovery"
)

// StdinPrompter drives the discovery dialogue over plain stdin/stdout.
// EOF (ctrl-D) aborts the session.
type StdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewStdinPrompter(in io.Reader, out io.Writer) *StdinPrompter {
	return &StdinPrompter{in: bufio.NewReader(in), out: out}
}

func (p *StdinPrompter) Say(msg string) {
	fmt.Fprintln(p.out, msg)
}

func (p *StdinPrompter) Ask(prompt string) (string, error) {
	fmt.Fprintf(p.out, "%s\n> ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", discovery.ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *StdinPrompter) Confirm(prompt string, def bool) (bool, error) {
	suffix := "[Y/n]"
	if !def {
		suffix = "[y/N]"
	}
	answer, err := p.Ask(prompt + " " + suffix)
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
	return def, nil
}
