package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/quack-go/internal/ports"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

// Renderer writes styled output to the terminal. Markdown is rendered with
// glamour; when that fails the raw text is printed.
type Renderer struct {
	out io.Writer

	once     sync.Once
	markdown *glamour.TermRenderer
	plain    bool
}

// NewRenderer writes to out, or stdout when out is nil.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// NewPlainRenderer never styles markdown, for non-terminal output and tests.
func NewPlainRenderer(out io.Writer) *Renderer {
	r := NewRenderer(out)
	r.plain = true
	return r
}

func (r *Renderer) Info(msg string)    { r.line(infoStyle, "ℹ ", msg) }
func (r *Renderer) Success(msg string) { r.line(successStyle, "✓ ", msg) }
func (r *Renderer) Warn(msg string)    { r.line(warnStyle, "! ", msg) }
func (r *Renderer) Error(msg string)   { r.line(errorStyle, "✗ ", msg) }

// Print writes text as-is.
func (r *Renderer) Print(text string) {
	fmt.Fprintln(r.out, text)
}

// Markdown renders assistant output.
func (r *Renderer) Markdown(text string) {
	if r.plain {
		r.Print(text)
		return
	}
	r.once.Do(func() {
		tr, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			r.markdown = tr
		}
	})
	if r.markdown == nil {
		r.Print(text)
		return
	}
	rendered, err := r.markdown.Render(text)
	if err != nil {
		r.Print(text)
		return
	}
	fmt.Fprint(r.out, rendered)
}

// Busy shows a spinner until the returned function is called.
func (r *Renderer) Busy(label string) func() {
	s := NewSpinner(r.out, " "+label)
	s.Start()
	return s.Stop
}

// Title prints a banner line.
func (r *Renderer) Title(text string) {
	fmt.Fprintln(r.out, r.style(titleStyle, text))
}

func (r *Renderer) line(style lipgloss.Style, prefix, msg string) {
	msg = strings.TrimRight(msg, "\n")
	fmt.Fprintln(r.out, r.style(style, prefix+msg))
}

func (r *Renderer) style(style lipgloss.Style, text string) string {
	if r.plain {
		return text
	}
	return style.Render(text)
}

var _ ports.Renderer = (*Renderer)(nil)
