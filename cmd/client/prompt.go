package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminal is the process's stdio. Passwords are read without echo when
// stdin is a terminal and as a plain line otherwise, so scripts can pipe
// them in.
type terminal struct {
	in  *bufio.Reader
	out io.Writer
	err io.Writer
	fd  int
	tty bool
}

func newTerminal(in io.Reader, out, errOut io.Writer) *terminal {
	t := &terminal{in: bufio.NewReader(in), out: out, err: errOut, fd: -1}
	if f, ok := in.(*os.File); ok {
		t.fd = int(f.Fd())
		t.tty = term.IsTerminal(t.fd)
	}
	return t
}

// readLine prints prompt on stderr and returns one trimmed line.
func (t *terminal) readLine(prompt string) (string, error) {
	fmt.Fprint(t.err, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword prompts for a secret.
func (t *terminal) readPassword(prompt string) (string, error) {
	if !t.tty {
		return t.readLine(prompt)
	}
	fmt.Fprint(t.err, prompt)
	b, err := term.ReadPassword(t.fd)
	fmt.Fprintln(t.err)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func (t *terminal) confirm(prompt string) (bool, error) {
	answer, err := t.readLine(prompt + " [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// valueOrPrompt returns value, or asks for it when it is empty.
func (t *terminal) valueOrPrompt(value, prompt string, secret bool) (string, error) {
	if value != "" {
		return value, nil
	}
	if secret {
		return t.readPassword(prompt)
	}
	return t.readLine(prompt)
}
