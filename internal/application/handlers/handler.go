// Package handlers executes one routed intent per call. Each handler owns its
// sub-dialog (prompting for missing parameters, previews, confirmations) and
// turns collaborator failures into messages the user can act on.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Handler executes an intent for one domain and returns text to display.
type Handler interface {
	Handle(ctx context.Context, in *domain.Intent) (string, error)
}

// Drafter generates text without touching the conversation history.
type Drafter interface {
	Draft(ctx context.Context, instruction string) (string, error)
}

// ConfigUpdater persists configuration changes made by setup operations.
type ConfigUpdater interface {
	Update(ctx context.Context, fn func(*domain.Config) error) error
}

func unsupported(in *domain.Intent) error {
	return domain.NewUserError(fmt.Sprintf("I don't know how to %q for %s yet.", in.Operation, in.Domain), domain.ErrInvalidInput)
}

// describe converts a collaborator failure into a UserError. setupHint names
// the slash command that fixes missing credentials.
func describe(service, action string, err error, setupHint string) error {
	if err == nil {
		return nil
	}
	var userErr *domain.UserError
	if errors.As(err, &userErr) {
		return err
	}
	var msg string
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, domain.ErrCancelled):
		return domain.NewUserError("Cancelled.", err)
	case errors.Is(err, domain.ErrAuthMissing):
		msg = fmt.Sprintf("%s credentials are missing or were rejected.", service)
		if setupHint != "" {
			msg += " Run " + setupHint + " to configure them."
		}
	case errors.Is(err, domain.ErrNotFound):
		msg = fmt.Sprintf("Could not %s: not found on %s.", action, service)
	case errors.Is(err, domain.ErrInvalidInput):
		msg = fmt.Sprintf("Could not %s: %s rejected the request (%v).", action, service, rootCause(err))
	case errors.Is(err, domain.ErrRateLimited), errors.Is(err, domain.ErrQuotaExceeded):
		msg = fmt.Sprintf("%s is limiting requests right now. Try again in a minute.", service)
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		msg = fmt.Sprintf("%s did not answer in time while trying to %s.", service, action)
	default:
		msg = fmt.Sprintf("Could not %s on %s: %v", action, service, rootCause(err))
	}
	return domain.NewUserError(msg, err)
}

func rootCause(err error) error {
	var collab *domain.CollaboratorError
	if errors.As(err, &collab) && collab.Err != nil {
		return collab.Err
	}
	return err
}

// busy runs fn while the busy indicator is shown.
func busy[T any](r ports.Renderer, label string, fn func() (T, error)) (T, error) {
	stop := r.Busy(label)
	defer stop()
	return fn()
}

// timed runs fn under the integration timeout while the busy indicator is
// shown.
func timed[T any](ctx context.Context, d time.Duration, r ports.Renderer, label string, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		d = domain.DefaultIntegrationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	stop := r.Busy(label)
	defer stop()
	return fn(ctx)
}

// needParam returns the named parameter, asking for it when absent.
func needParam(p ports.Prompter, in *domain.Intent, key, question string) (string, error) {
	if v, ok := in.Param(key); ok {
		return v, nil
	}
	answer, err := p.Ask(question)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", domain.NewUserError("Nothing entered, cancelled.", domain.ErrCancelled)
	}
	return answer, nil
}
