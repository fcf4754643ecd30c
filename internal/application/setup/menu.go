package setup

import (
	"context"
	"fmt"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Menu options in display order.
const (
	optionModel = iota
	optionRole
	optionAPIKey
	optionBack
)

// Menu is the interactive "Configure" dialog of the REPL.
type Menu struct {
	Settings *Service
	Prompter ports.Prompter
	Renderer ports.Renderer
	// Reconnect rebuilds the completion backend after model or key changes.
	Reconnect func(ctx context.Context) error
	// RoleChanged is notified after the persona changes.
	RoleChanged func(role string)
}

// Run shows the menu until the user goes back.
func (m *Menu) Run(ctx context.Context) error {
	for {
		cfg := m.Settings.Current()
		m.Renderer.Info(fmt.Sprintf("Current model: %s, role: %s", cfg.Model, cfg.GetRole()))
		choice, err := m.Prompter.Choose("Configuration", []string{
			"Change AI model",
			"Change assistant role",
			"Update API key",
			"Back",
		})
		if err != nil {
			return err
		}

		switch choice {
		case optionModel:
			err = m.changeModel(ctx, cfg)
		case optionRole:
			err = m.changeRole(ctx)
		case optionAPIKey:
			err = m.updateKey(ctx, cfg)
		case optionBack:
			return nil
		default:
			m.Renderer.Warn("Invalid choice.")
			continue
		}
		if err != nil {
			m.Renderer.Error(err.Error())
		}
	}
}

func (m *Menu) changeModel(ctx context.Context, cfg domain.Config) error {
	names := make([]string, len(cfg.Models))
	for i, model := range cfg.Models {
		names[i] = fmt.Sprintf("%s (%s)", model.Name, model.ModelID)
	}
	idx, err := m.Prompter.Choose("Select model", names)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(cfg.Models) {
		return fmt.Errorf("invalid model choice")
	}
	name := cfg.Models[idx].Name
	if err := m.Settings.Update(ctx, func(c *domain.Config) error { return c.SetActiveModel(name) }); err != nil {
		return err
	}
	if err := m.reconnect(ctx); err != nil {
		return err
	}
	m.Renderer.Success("Model switched to " + name + ".")
	return nil
}

func (m *Menu) changeRole(ctx context.Context) error {
	idx, err := m.Prompter.Choose("Select role", domain.RoleNames)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(domain.RoleNames) {
		return fmt.Errorf("invalid role choice")
	}
	role := domain.RoleNames[idx]
	if err := m.Settings.Update(ctx, func(c *domain.Config) error { return c.SetRole(role) }); err != nil {
		return err
	}
	if m.RoleChanged != nil {
		m.RoleChanged(role)
	}
	m.Renderer.Success("Role set to " + role + ".")
	return nil
}

func (m *Menu) updateKey(ctx context.Context, cfg domain.Config) error {
	model, err := cfg.ActiveModel()
	if err != nil {
		return err
	}
	key, err := m.Prompter.AskSecret(fmt.Sprintf("Enter API key for %s", model.Name))
	if err != nil {
		return err
	}
	if key == "" {
		m.Renderer.Warn("API key unchanged.")
		return nil
	}
	if err := m.Settings.Update(ctx, func(c *domain.Config) error { return c.SetAPIKey(model.Name, key) }); err != nil {
		return err
	}
	if err := m.reconnect(ctx); err != nil {
		return err
	}
	m.Renderer.Success("API key updated.")
	return nil
}

func (m *Menu) reconnect(ctx context.Context) error {
	if m.Reconnect == nil {
		return nil
	}
	return m.Reconnect(ctx)
}
