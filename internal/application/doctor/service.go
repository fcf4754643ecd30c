// Package doctor runs environment diagnostics for `quack doctor`.
package doctor

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// ToolProbe looks for an external program.
type ToolProbe struct {
	Name string
	// Find returns the tool's location and whether it was found.
	Find func() (string, bool)
	// Hint is shown when the tool is missing.
	Hint string
}

// Service runs environment diagnostics.
type Service struct {
	Config  ports.ConfigStore
	Guard   ports.PathGuard
	History ports.HistoryRepository
	Tools   []ToolProbe
	Getenv  func(string) string
	// Timeout bounds each probe.
	Timeout time.Duration
}

type check func(ctx context.Context, cfg domain.Config) domain.HealthCheck

// Run loads the config, then runs the remaining checks concurrently. The
// report keeps a stable order.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	cfg, err := s.Config.Load(ctx)
	if err != nil {
		return domain.HealthReport{Checks: []domain.HealthCheck{
			fail("Config file", fmt.Sprintf("load failed: %v", err), "run `quack config reset` to restore defaults"),
		}}, err
	}

	checks := []check{
		func(context.Context, domain.Config) domain.HealthCheck {
			return ok("Config file", "format version "+cfg.ConfigFormatVersion)
		},
		s.apiKey,
		s.guardrail,
		s.history,
		credentials("GitHub", (*domain.Config).HasGitHubCredentials, "/github setup"),
		credentials("Email", (*domain.Config).HasEmailCredentials, "/email setup"),
		credentials("WhatsApp", (*domain.Config).HasWhatsAppCredentials, "/whatsapp setup"),
		credentials("Google Calendar", (*domain.Config).HasCalendarCredentials, "/calendar setup"),
	}
	for _, probe := range s.Tools {
		checks = append(checks, tool(probe))
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultToolCheckTimeout
	}
	results := make([]domain.HealthCheck, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range checks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			results[i] = c(cctx, cfg)
			return nil
		})
	}
	// Checks report failures in their results, never as errors.
	_ = g.Wait()
	return domain.HealthReport{Checks: results}, nil
}

func (s *Service) apiKey(_ context.Context, cfg domain.Config) domain.HealthCheck {
	model, err := cfg.ActiveModel()
	if err != nil {
		return fail("API key", err.Error(), "pick a model from the Configure menu")
	}
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if cfg.ResolveAPIKey(model, getenv) == "" {
		return warn("API key", "no key for "+model.Name, "set "+domain.APIKeyEnvVar(model)+" or enter one at startup")
	}
	return ok("API key", "found for "+model.Name)
}

func (s *Service) guardrail(_ context.Context, cfg domain.Config) domain.HealthCheck {
	if !cfg.IsSecurityEnabled() {
		return warn("Path guard", "disabled", "set security.enabled to true")
	}
	if s.Guard == nil {
		return fail("Path guard", "rules failed to load", "check "+cfg.Security.RulesFile)
	}
	assessment, err := s.Guard.Evaluate(domain.OpDeleteFile, "/")
	if err != nil {
		return fail("Path guard", err.Error(), "check "+cfg.Security.RulesFile)
	}
	if assessment.Action != domain.ActionBlock {
		return warn("Path guard", "rules do not protect /", "restore the default rules in "+cfg.Security.RulesFile)
	}
	return ok("Path guard", "rules loaded")
}

func (s *Service) history(ctx context.Context, cfg domain.Config) domain.HealthCheck {
	if !cfg.History.Enabled || s.History == nil {
		return warn("History", "disabled", "set history.enabled to true")
	}
	stats, err := s.History.Stats(ctx)
	if err != nil {
		return fail("History", err.Error(), "check "+cfg.History.Path)
	}
	return ok("History", fmt.Sprintf("%d requests recorded", stats.Total))
}

func credentials(name string, has func(*domain.Config) bool, hint string) check {
	return func(_ context.Context, cfg domain.Config) domain.HealthCheck {
		if !has(&cfg) {
			return warn(name, "not configured", "run "+hint)
		}
		return ok(name, "configured")
	}
}

func tool(probe ToolProbe) check {
	return func(context.Context, domain.Config) domain.HealthCheck {
		if probe.Find == nil {
			return warn(probe.Name, "not found", probe.Hint)
		}
		path, found := probe.Find()
		if !found {
			return warn(probe.Name, "not found", probe.Hint)
		}
		return ok(probe.Name, path)
	}
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details, hint string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details, Hint: hint}
}

func fail(name, details, hint string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details, Hint: hint}
}
