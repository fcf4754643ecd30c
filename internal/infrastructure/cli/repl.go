package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/doeshing/quack-go/internal/application/command"
	"github.com/doeshing/quack-go/internal/application/dispatch"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Processor handles one line of input.
type Processor interface {
	Process(ctx context.Context, in dispatch.Input) dispatch.Outcome
}

// Listener turns speech into text.
type Listener interface {
	Available() bool
	Listen(ctx context.Context) (string, error)
}

// Configurator runs the interactive configuration dialog.
type Configurator interface {
	Run(ctx context.Context) error
}

const replMenu = "[S]peak  [T]ype  [C]onfigure  [Q]uit"

// REPL is the interactive session.
type REPL struct {
	Dispatcher Processor
	Speech     Listener
	Menu       Configurator
	Prompter   ports.Prompter
	Renderer   ports.Renderer
	// Connect builds the completion backend; a domain.ErrFatalStartup
	// failure ends the session before the first prompt.
	Connect  func(ctx context.Context) error
	Warnings []string

	// interrupt scopes a request so that SIGINT cancels only that request.
	interrupt func(ctx context.Context) (context.Context, context.CancelFunc)
}

// Run shows the menu until the user quits or input ends.
func (r *REPL) Run(ctx context.Context) error {
	for _, w := range r.Warnings {
		r.Renderer.Warn(w)
	}
	if r.Connect != nil {
		if err := r.Connect(ctx); err != nil {
			return err
		}
	}
	r.Renderer.Success("Quack is ready. Type /help for commands.")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		choice, err := r.Prompter.Ask(replMenu)
		if err != nil {
			if errors.Is(err, domain.ErrCancelled) {
				return nil
			}
			return err
		}

		switch strings.ToLower(choice) {
		case "s", "speak":
			err = r.speak(ctx)
		case "t", "type":
			err = r.typed(ctx)
		case "c", "configure":
			err = r.Menu.Run(ctx)
		case "q", "quit", "exit":
			r.Renderer.Info("Goodbye!")
			return nil
		case "":
			continue
		default:
			r.Renderer.Warn("Please choose S, T, C or Q.")
			continue
		}
		if errors.Is(err, domain.ErrCancelled) {
			return nil
		}
		if err != nil {
			r.Renderer.Error(err.Error())
		}
	}
}

func (r *REPL) speak(ctx context.Context) error {
	if r.Speech == nil || !r.Speech.Available() {
		r.Renderer.Warn("Speech input is not configured. Set screen.speech_command or use [T]ype.")
		return nil
	}

	reqCtx, cancel := r.requestContext(ctx)
	defer cancel()

	stop := r.Renderer.Busy("Listening...")
	text, err := r.Speech.Listen(reqCtx)
	stop()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			r.Renderer.Warn("Cancelled.")
			return nil
		}
		return fmt.Errorf("speech input: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		r.Renderer.Warn("I didn't catch that. Please try again.")
		return nil
	}
	r.Renderer.Info("You said: " + text)
	r.Dispatcher.Process(reqCtx, dispatch.Input{Text: text, IncludeScreen: true})
	return nil
}

func (r *REPL) typed(ctx context.Context) error {
	text, err := r.Prompter.Ask("Enter your question")
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}

	includeScreen := false
	if !command.IsCommand(text) {
		includeScreen, err = r.Prompter.Confirm("Include a screenshot?")
		if err != nil {
			return err
		}
	}

	reqCtx, cancel := r.requestContext(ctx)
	defer cancel()
	r.Dispatcher.Process(reqCtx, dispatch.Input{Text: text, IncludeScreen: includeScreen})
	return nil
}

func (r *REPL) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.interrupt != nil {
		return r.interrupt(ctx)
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
