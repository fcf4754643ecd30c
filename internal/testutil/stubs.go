// Package testutil provides scripted stand-ins for the terminal ports used by
// handler, dispatcher and setup tests.
package testutil

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrScriptExhausted is returned when a prompt has no scripted answer left.
var ErrScriptExhausted = errors.New("prompter script exhausted")

// Prompter answers prompts from queues and records every question asked.
type Prompter struct {
	mu       sync.Mutex
	Answers  []string
	Choices  []int
	Confirms []bool
	Asked    []string
}

func (p *Prompter) record(prompt string) {
	p.Asked = append(p.Asked, prompt)
}

func (p *Prompter) Ask(prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record(prompt)
	if len(p.Answers) == 0 {
		return "", fmt.Errorf("%w: %q", ErrScriptExhausted, prompt)
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return answer, nil
}

func (p *Prompter) AskSecret(prompt string) (string, error) {
	return p.Ask(prompt)
}

func (p *Prompter) Confirm(prompt string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record(prompt)
	if len(p.Confirms) == 0 {
		return false, fmt.Errorf("%w: %q", ErrScriptExhausted, prompt)
	}
	ok := p.Confirms[0]
	p.Confirms = p.Confirms[1:]
	return ok, nil
}

func (p *Prompter) Choose(prompt string, options []string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record(prompt)
	if len(p.Choices) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrScriptExhausted, prompt)
	}
	choice := p.Choices[0]
	p.Choices = p.Choices[1:]
	if choice < 0 || choice >= len(options) {
		return 0, fmt.Errorf("choice %d out of range for %q", choice, prompt)
	}
	return choice, nil
}

// Renderer records everything written to it.
type Renderer struct {
	mu         sync.Mutex
	Lines      []string
	BusyStarts int
	BusyStops  int
}

func (r *Renderer) add(kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, kind+": "+msg)
}

func (r *Renderer) Info(msg string)      { r.add("info", msg) }
func (r *Renderer) Success(msg string)   { r.add("success", msg) }
func (r *Renderer) Warn(msg string)      { r.add("warn", msg) }
func (r *Renderer) Error(msg string)     { r.add("error", msg) }
func (r *Renderer) Print(text string)    { r.add("print", text) }
func (r *Renderer) Markdown(text string) { r.add("markdown", text) }

func (r *Renderer) Busy(label string) func() {
	r.mu.Lock()
	r.BusyStarts++
	r.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.BusyStops++
			r.mu.Unlock()
		})
	}
}

// Output joins every recorded line.
func (r *Renderer) Output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.Lines, "\n")
}

// Contains reports whether any recorded line contains substr.
func (r *Renderer) Contains(substr string) bool {
	return strings.Contains(r.Output(), substr)
}
