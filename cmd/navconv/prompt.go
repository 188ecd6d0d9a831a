package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// prompter asks for missing settings on an interactive terminal.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// isInteractive reports whether f is a character device such as a terminal.
func isInteractive(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.ErrUnexpectedEOF
	}
	return p.in.Text(), nil
}

// databasePath asks until check accepts the answer. Surrounding quotes, as
// left by drag-and-drop into a terminal, are removed.
func (p *prompter) databasePath(check func(string) error) (string, error) {
	for {
		answer, err := p.ask("Navigation database (.db3) path: ")
		if err != nil {
			return "", err
		}
		path := strings.Trim(strings.TrimSpace(answer), `'"`)
		if err := check(path); err != nil {
			fmt.Fprintf(p.out, "%v, please try again.\n", err)
			continue
		}
		return path, nil
	}
}

// startTerminalID asks until set accepts the answer.
func (p *prompter) startTerminalID(set func(string) error) error {
	for {
		answer, err := p.ask("First TerminalID to convert: ")
		if err != nil {
			return err
		}
		if err := set(answer); err != nil {
			fmt.Fprintf(p.out, "%v, please try again.\n", err)
			continue
		}
		return nil
	}
}

var errNotInteractive = errors.New("stdin is not a terminal")
