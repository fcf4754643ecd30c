package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Prompter implements ports.Prompter on a line-oriented reader.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal used for hidden input, or -1.
	fd int
}

// NewPrompter constructs a prompter over in and out, defaulting to stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
		fd:  fd,
	}
}

// Ask prints prompt and returns the trimmed answer.
func (p *Prompter) Ask(prompt string) (string, error) {
	fmt.Fprint(p.out, promptStyle.Render(prompt+": "))
	return p.readLine()
}

// AskSecret reads without echo when attached to a terminal.
func (p *Prompter) AskSecret(prompt string) (string, error) {
	if p.fd < 0 {
		return p.Ask(prompt)
	}
	fmt.Fprint(p.out, promptStyle.Render(prompt+": "))
	secret, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// Confirm accepts y or yes; anything else declines.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	fmt.Fprint(p.out, promptStyle.Render(prompt+" [y/N]: "))
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	line = strings.ToLower(line)
	return line == "y" || line == "yes", nil
}

// Choose lists options numbered from 1 and asks until a valid number is
// entered.
func (p *Prompter) Choose(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("%w: nothing to choose from", domain.ErrInvalidInput)
	}
	fmt.Fprintln(p.out, titleStyle.Render(prompt))
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, opt)
	}
	for {
		answer, err := p.Ask(fmt.Sprintf("Choice [1-%d]", len(options)))
		if err != nil {
			return -1, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", len(options))
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", domain.ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

var _ ports.Prompter = (*Prompter)(nil)
