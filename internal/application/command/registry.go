// Package command resolves slash commands. Any input starting with "/" is
// owned by the registry: known commands run their handler and unknown ones
// show help, so such input never reaches intent parsing or the completion
// fallback.
package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/doeshing/quack-go/internal/ports"
)

// Command is one registry entry.
type Command struct {
	// Name includes the leading slash, e.g. "/github".
	Name    string
	Summary string
	Usage   string
	// Run receives everything after the command token, untrimmed of inner
	// whitespace.
	Run func(ctx context.Context, args string) (string, error)
}

// Result describes a dispatch.
type Result struct {
	Handled bool
	// Command is the resolved name, or "/help" for unknown commands.
	Command string
	Output  string
}

// Registry is built once at startup and is read-only afterwards.
type Registry struct {
	renderer ports.Renderer
	commands map[string]Command
	order    []string
}

// NewRegistry builds a registry from cmds plus the built-in /help. Names are
// matched case-insensitively; a later duplicate replaces an earlier one.
func NewRegistry(renderer ports.Renderer, cmds ...Command) *Registry {
	r := &Registry{renderer: renderer, commands: make(map[string]Command, len(cmds)+1)}
	r.add(Command{Name: "/help", Summary: "Show available commands", Usage: "/help [command]", Run: r.help})
	for _, cmd := range cmds {
		r.add(cmd)
	}
	return r
}

func (r *Registry) add(cmd Command) {
	key := strings.ToLower(cmd.Name)
	if _, exists := r.commands[key]; !exists {
		r.order = append(r.order, key)
	}
	r.commands[key] = cmd
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// IsCommand reports whether text uses slash-command syntax.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// Split separates the command token from its arguments. The token is
// lower-cased; the arguments are returned verbatim apart from the single
// separating whitespace run.
func Split(text string) (name, args string) {
	text = strings.TrimSpace(text)
	idx := strings.IndexAny(text, " \t")
	if idx < 0 {
		return strings.ToLower(text), ""
	}
	return strings.ToLower(text[:idx]), strings.TrimLeft(text[idx:], " \t")
}

// Dispatch runs the command named by text. Text without a leading slash is
// not handled. Unknown commands warn and render help, and still count as
// handled.
func (r *Registry) Dispatch(ctx context.Context, text string) (Result, error) {
	if !IsCommand(text) {
		return Result{}, nil
	}
	name, args := Split(text)
	cmd, ok := r.commands[name]
	if !ok {
		r.renderer.Warn(fmt.Sprintf("Unknown command: %s", name))
		out, _ := r.help(ctx, "")
		return Result{Handled: true, Command: "/help", Output: out}, nil
	}
	out, err := cmd.Run(ctx, args)
	return Result{Handled: true, Command: cmd.Name, Output: out}, err
}

func (r *Registry) help(_ context.Context, args string) (string, error) {
	if topic := strings.TrimSpace(args); topic != "" {
		if !strings.HasPrefix(topic, "/") {
			topic = "/" + topic
		}
		if cmd, ok := r.Lookup(topic); ok {
			return fmt.Sprintf("%s - %s\nUsage: %s", cmd.Name, cmd.Summary, cmd.Usage), nil
		}
	}

	names := r.Names()
	sort.Strings(names)
	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range names {
		cmd := r.commands[name]
		fmt.Fprintf(&b, "  %-*s  %s\n", width, cmd.Name, cmd.Summary)
	}
	b.WriteString("\nType /help <command> for usage. Anything else is understood as a request.")
	return b.String(), nil
}
