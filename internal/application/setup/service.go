// Package setup owns the live configuration and the interactive flows that
// change it.
package setup

import (
	"context"
	"fmt"
	"sync"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Service holds the current configuration and persists every change.
type Service struct {
	store  ports.ConfigStore
	logger ports.Logger

	mu  sync.RWMutex
	cfg domain.Config
}

// NewService loads the configuration once from store.
func NewService(ctx context.Context, store ports.ConfigStore, logger ports.Logger) (*Service, error) {
	cfg, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &Service{store: store, logger: logger, cfg: cfg}, nil
}

// Current returns a snapshot of the configuration.
func (s *Service) Current() domain.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConfig(s.cfg)
}

// Update applies fn to a copy of the configuration, validates and saves it.
// The live configuration only changes when saving succeeds.
func (s *Service) Update(ctx context.Context, fn func(*domain.Config) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneConfig(s.cfg)
	if err := fn(&next); err != nil {
		return err
	}
	if err := next.ValidateConsistency(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if err := s.store.Save(next); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	s.cfg = next
	if s.logger != nil {
		s.logger.Info("configuration updated", map[string]interface{}{"model": next.Model, "role": next.Role})
	}
	return nil
}

func cloneConfig(cfg domain.Config) domain.Config {
	out := cfg
	out.Models = append([]domain.ModelDefinition(nil), cfg.Models...)
	return out
}
