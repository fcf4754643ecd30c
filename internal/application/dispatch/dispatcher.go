// Package dispatch routes one input to exactly one handler.
//
// Precedence is fixed and part of the observable behaviour:
//
//  1. "/"-prefixed input goes to the command registry, which always handles it.
//  2. Domain parsers in order: GitHub, Messaging, Email, File, App.
//  3. The phone-number heuristic (low confidence, see intent.PhoneFallback).
//  4. The completion fallback, optionally with a screenshot.
//
// Handler failures and panics are contained here: they are logged, rendered
// as a message, and never end the interactive loop.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/quack-go/internal/application/command"
	"github.com/doeshing/quack-go/internal/application/handlers"
	"github.com/doeshing/quack-go/internal/application/intent"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Stage is a dispatcher state. Every transition is logged at debug level.
type Stage string

const (
	StageIdle           Stage = "idle"
	StageParsingCommand Stage = "parsing_command"
	StageParsingIntents Stage = "parsing_intents"
	StageFallback       Stage = "fallback"
	StageRendering      Stage = "rendering"
)

// BusyLabel is shown while the completion fallback runs.
const BusyLabel = "Processing request..."

// GenericFailure is rendered for errors that carry no user-facing message.
const GenericFailure = "Something went wrong while handling that request. Details were written to the log."

// Commands resolves slash commands.
type Commands interface {
	Dispatch(ctx context.Context, text string) (command.Result, error)
}

// Classifier maps text to an intent, or nil.
type Classifier interface {
	Classify(text string) *domain.Intent
}

// Answerer is the completion fallback.
type Answerer interface {
	Answer(ctx context.Context, request string, image []byte) (string, error)
	BackendName() string
}

// Input is one line from the user.
type Input struct {
	Text string
	// IncludeScreen attaches a screenshot when the input reaches the
	// completion fallback.
	IncludeScreen bool
}

// Outcome reports how an input was handled.
type Outcome struct {
	Route  domain.Route
	Intent *domain.Intent
	Output string
	Err    error
}

// Options configures a Dispatcher. Commands, Parsers and Assistant are
// required.
type Options struct {
	Commands  Commands
	Parsers   Classifier
	Heuristic func(text string) *domain.Intent
	Handlers  map[domain.Domain]handlers.Handler
	Assistant Answerer
	Screen    ports.ScreenshotProvider
	Turns     ports.HistoryRepository
	Renderer  ports.Renderer
	Logger    ports.Logger
	SessionID string
}

// Dispatcher is used from the single interactive loop; it is not safe for
// concurrent Process calls.
type Dispatcher struct {
	commands  Commands
	parsers   Classifier
	heuristic func(text string) *domain.Intent
	handlers  map[domain.Domain]handlers.Handler
	assistant Answerer
	screen    ports.ScreenshotProvider
	turns     ports.HistoryRepository
	renderer  ports.Renderer
	logger    ports.Logger
	sessionID string
	stage     Stage
	now       func() time.Time
}

// New builds a Dispatcher. A missing heuristic defaults to
// intent.PhoneFallback and a missing session ID to a random UUID.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		commands:  opts.Commands,
		parsers:   opts.Parsers,
		heuristic: opts.Heuristic,
		handlers:  opts.Handlers,
		assistant: opts.Assistant,
		screen:    opts.Screen,
		turns:     opts.Turns,
		renderer:  opts.Renderer,
		logger:    opts.Logger,
		sessionID: opts.SessionID,
		stage:     StageIdle,
		now:       time.Now,
	}
	if d.parsers == nil {
		d.parsers = intent.DefaultChain()
	}
	if d.heuristic == nil {
		d.heuristic = intent.PhoneFallback
	}
	if d.sessionID == "" {
		d.sessionID = uuid.NewString()
	}
	return d
}

// SessionID identifies this run in the turn log.
func (d *Dispatcher) SessionID() string { return d.sessionID }

// Stage returns the current state; it is StageIdle between inputs.
func (d *Dispatcher) Stage() Stage { return d.stage }

// Process handles one input and renders the result. It never panics and
// never returns an error: failures are reported in Outcome.Err after being
// shown to the user.
func (d *Dispatcher) Process(ctx context.Context, in Input) (out Outcome) {
	started := d.now()
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("handler panic: %v", r)
			d.logError("handler panicked", out.Err, map[string]interface{}{
				"input": in.Text,
				"stack": string(debug.Stack()),
			})
			d.transition(StageRendering)
			d.renderFailure(out.Err)
		}
		d.record(ctx, in.Text, out, started)
		d.transition(StageIdle)
	}()

	out = d.route(ctx, in)

	d.transition(StageRendering)
	if out.Err != nil {
		d.renderFailure(out.Err)
		return out
	}
	d.render(out)
	return out
}

func (d *Dispatcher) route(ctx context.Context, in Input) Outcome {
	d.transition(StageParsingCommand)
	if command.IsCommand(in.Text) {
		res, err := d.commands.Dispatch(ctx, in.Text)
		if res.Handled {
			return Outcome{
				Route:  domain.RouteCommand,
				Intent: domain.NewIntent(domain.DomainCommand, res.Command, nil),
				Output: res.Output,
				Err:    err,
			}
		}
	}

	d.transition(StageParsingIntents)
	if matched := d.parsers.Classify(in.Text); matched != nil {
		if h, ok := d.handlers[matched.Domain]; ok {
			return d.handle(ctx, domain.RouteIntent, h, matched)
		}
		d.logWarn("no handler registered for domain", map[string]interface{}{"domain": string(matched.Domain)})
	}
	if guessed := d.heuristic(in.Text); guessed != nil {
		if h, ok := d.handlers[guessed.Domain]; ok {
			return d.handle(ctx, domain.RouteHeuristic, h, guessed)
		}
	}

	d.transition(StageFallback)
	return d.fallback(ctx, in)
}

func (d *Dispatcher) handle(ctx context.Context, route domain.Route, h handlers.Handler, in *domain.Intent) Outcome {
	d.logDebug("routing intent", map[string]interface{}{
		"route":     string(route),
		"domain":    string(in.Domain),
		"operation": in.Operation,
	})
	output, err := h.Handle(ctx, in)
	return Outcome{Route: route, Intent: in, Output: output, Err: err}
}

func (d *Dispatcher) fallback(ctx context.Context, in Input) Outcome {
	var image []byte
	if in.IncludeScreen && d.screen != nil {
		captured, err := d.screen.Capture(ctx)
		if err != nil {
			d.renderer.Warn("Could not capture the screen; continuing without it.")
			d.logWarn("screenshot failed", map[string]interface{}{"error": err.Error()})
		} else {
			image = captured
		}
	}

	answer, err := func() (string, error) {
		stop := d.renderer.Busy(BusyLabel)
		defer stop()
		return d.assistant.Answer(ctx, in.Text, image)
	}()

	return Outcome{
		Route:  domain.RouteFallback,
		Intent: domain.NewIntent(domain.DomainNone, "complete", nil),
		Output: answer,
		Err:    err,
	}
}

func (d *Dispatcher) render(out Outcome) {
	if out.Output == "" {
		return
	}
	if out.Route == domain.RouteFallback {
		d.renderer.Markdown(out.Output)
		return
	}
	d.renderer.Print(out.Output)
}

func (d *Dispatcher) renderFailure(err error) {
	var userErr *domain.UserError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, domain.ErrCancelled):
		msg := "Cancelled."
		if errors.As(err, &userErr) {
			msg = userErr.Message
		}
		d.renderer.Info(msg)
	case errors.As(err, &userErr):
		d.logWarn("request failed", map[string]interface{}{"error": err.Error()})
		d.renderer.Error(userErr.Message)
	default:
		d.logError("request failed", err, nil)
		d.renderer.Error(GenericFailure)
	}
}

func (d *Dispatcher) record(ctx context.Context, text string, out Outcome, started time.Time) {
	if d.turns == nil {
		return
	}
	rec := domain.TurnRecord{
		Timestamp: started,
		SessionID: d.sessionID,
		Request:   text,
		Response:  out.Output,
		Route:     out.Route,
		Success:   out.Err == nil,
	}
	if out.Intent != nil {
		rec.Domain = out.Intent.Domain
		rec.Operation = out.Intent.Operation
	}
	if d.assistant != nil {
		rec.Model = d.assistant.BackendName()
	}
	// Cancelled requests are recorded too.
	if err := d.turns.Save(context.WithoutCancel(ctx), rec); err != nil {
		d.logWarn("failed to record turn", map[string]interface{}{"error": err.Error()})
	}
}

func (d *Dispatcher) transition(next Stage) {
	if d.stage == next {
		return
	}
	d.logDebug("dispatch stage", map[string]interface{}{"from": string(d.stage), "to": string(next)})
	d.stage = next
}

func (d *Dispatcher) logDebug(msg string, fields map[string]interface{}) {
	if d.logger != nil {
		d.logger.Debug(msg, fields)
	}
}

func (d *Dispatcher) logWarn(msg string, fields map[string]interface{}) {
	if d.logger != nil {
		d.logger.Warn(msg, fields)
	}
}

func (d *Dispatcher) logError(msg string, err error, fields map[string]interface{}) {
	if d.logger != nil {
		d.logger.Error(msg, err, fields)
	}
}
