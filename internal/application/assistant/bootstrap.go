package assistant

import (
	"context"
	"fmt"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Settings is the slice of the configuration service the bootstrapper needs.
type Settings interface {
	Current() domain.Config
	Update(ctx context.Context, fn func(*domain.Config) error) error
}

// Bootstrapper resolves credentials for the configured model and builds its
// backend, asking the user for a key or offering the alternate model when
// none is found.
type Bootstrapper struct {
	Settings    Settings
	Factory     ports.BackendFactory
	Prompter    ports.Prompter
	Renderer    ports.Renderer
	Logger      ports.Logger
	Getenv      func(string) string
	MaxAttempts int
}

// Connect returns a ready backend or an error wrapping domain.ErrFatalStartup
// once the attempts are exhausted or the user quits.
func (b *Bootstrapper) Connect(ctx context.Context) (ports.CompletionBackend, error) {
	attempts := b.MaxAttempts
	if attempts <= 0 {
		attempts = domain.MaxBootstrapAttempts
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cfg := b.Settings.Current()
		model, err := cfg.ActiveModel()
		if err != nil {
			if len(cfg.Models) == 0 {
				return nil, fmt.Errorf("%w: %v", domain.ErrFatalStartup, err)
			}
			first := cfg.Models[0].Name
			b.Renderer.Warn(fmt.Sprintf("%v. Falling back to %s.", err, first))
			if err := b.Settings.Update(ctx, func(c *domain.Config) error { return c.SetActiveModel(first) }); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrFatalStartup, err)
			}
			continue
		}

		key := cfg.ResolveAPIKey(model, b.Getenv)
		if key == "" {
			proceed, err := b.resolveMissingKey(ctx, cfg, model)
			if err != nil {
				return nil, err
			}
			if !proceed {
				return nil, fmt.Errorf("%w: no API key for %s", domain.ErrFatalStartup, model.Name)
			}
			continue
		}

		backend, err := b.Factory.ForModel(model, key)
		if err != nil {
			b.log(err, model.Name, attempt)
			b.Renderer.Warn(fmt.Sprintf("Could not initialise %s: %v", model.Name, err))
			continue
		}
		if b.Logger != nil {
			b.Logger.Info("completion backend ready", map[string]interface{}{"model": model.Name, "attempt": attempt})
		}
		return backend, nil
	}
	return nil, fmt.Errorf("%w: gave up after %d attempts", domain.ErrFatalStartup, attempts)
}

// resolveMissingKey asks for a key or a model switch. It reports false when
// the user chose to quit.
func (b *Bootstrapper) resolveMissingKey(ctx context.Context, cfg domain.Config, model domain.ModelDefinition) (bool, error) {
	b.Renderer.Warn(fmt.Sprintf("No API key found for %s. Set %s or enter one now.", model.Name, domain.APIKeyEnvVar(model)))

	options := []string{fmt.Sprintf("Enter a %s API key", model.Name)}
	alt, hasAlt := cfg.AlternateModel()
	if hasAlt {
		options = append(options, fmt.Sprintf("Switch to %s", alt.Name))
	}
	options = append(options, "Quit")

	choice, err := b.Prompter.Choose("How do you want to continue?", options)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrFatalStartup, err)
	}

	switch {
	case choice == 0:
		key, err := b.Prompter.AskSecret(fmt.Sprintf("%s API key", model.Name))
		if err != nil {
			return false, fmt.Errorf("%w: %v", domain.ErrFatalStartup, err)
		}
		if key == "" {
			return true, nil
		}
		if err := b.Settings.Update(ctx, func(c *domain.Config) error { return c.SetAPIKey(model.Name, key) }); err != nil {
			b.Renderer.Error(err.Error())
		}
		return true, nil
	case hasAlt && choice == 1:
		if err := b.Settings.Update(ctx, func(c *domain.Config) error { return c.SetActiveModel(alt.Name) }); err != nil {
			b.Renderer.Error(err.Error())
		}
		return true, nil
	default:
		return false, nil
	}
}

func (b *Bootstrapper) log(err error, model string, attempt int) {
	if b.Logger != nil {
		b.Logger.Error("backend initialisation failed", err, map[string]interface{}{"model": model, "attempt": attempt})
	}
}
