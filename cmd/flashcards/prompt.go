package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// prompter asks the user questions on a line-oriented terminal
type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{r: bufio.NewReader(r), w: w}
}

// readLine returns the next input line without its line ending.
// io.EOF is returned only when nothing was read.
func (p *prompter) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Ask prints question and returns the answer, or def when the answer is empty
func (p *prompter) Ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.w, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.w, "%s: ", question)
	}
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) == "" {
		return def, nil
	}
	return line, nil
}

// Confirm asks a yes/no question. Anything but y or yes, including end of
// input, is a no.
func (p *prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.w, "%s [y/N]: ", question)
	line, err := p.readLine()
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Choose lists options and returns the one picked by number or by exact
// name. ok is false when the answer matches no option.
func (p *prompter) Choose(title string, options []string) (choice string, ok bool, err error) {
	fmt.Fprintln(p.w, title)
	for i, opt := range options {
		fmt.Fprintf(p.w, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprint(p.w, "> ")

	line, err := p.readLine()
	if errors.Is(err, io.EOF) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	line = strings.TrimSpace(line)

	if n, convErr := strconv.Atoi(line); convErr == nil && n >= 1 && n <= len(options) {
		return options[n-1], true, nil
	}
	for _, opt := range options {
		if opt == line {
			return opt, true, nil
		}
	}
	return "", false, nil
}
