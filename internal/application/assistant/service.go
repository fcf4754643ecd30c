// Package assistant wraps the completion backend: it builds prompts with the
// role preface and conversation context, maps quota and rate-limit failures to
// advisories, and records successful exchanges.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/quack-go/internal/application/conversation"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Advisories shown instead of an answer.
const (
	QuotaAdvisory = "The API quota for this model has been exceeded. " +
		"Wait for the quota to reset, check your plan and billing, or switch models from the Configure menu."
	RateLimitAdvisory = "The API rate limit was hit. Wait a moment and try again, " +
		"or switch models from the Configure menu."
	EmptyAdvisory   = "I couldn't generate a response. Please try again or try a different model."
	TimeoutAdvisory = "The model took too long to answer. Please try again."
)

// Service is the completion fallback of the dispatcher.
type Service struct {
	history *conversation.History
	timeout time.Duration
	logger  ports.Logger

	mu      sync.RWMutex
	backend ports.CompletionBackend
	role    string
}

// NewService creates the assistant. backend may be set later with SetBackend.
func NewService(backend ports.CompletionBackend, history *conversation.History, role string, timeout time.Duration, logger ports.Logger) *Service {
	if timeout <= 0 {
		timeout = domain.DefaultCompletionTimeout
	}
	return &Service{
		backend: backend,
		history: history,
		role:    role,
		timeout: timeout,
		logger:  logger,
	}
}

// SetBackend swaps the completion backend, e.g. after a model change.
func (s *Service) SetBackend(backend ports.CompletionBackend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backend = backend
}

// SetRole changes the persona used for prompts.
func (s *Service) SetRole(role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
}

// BackendName names the active backend for logs and turn records.
func (s *Service) BackendName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.backend == nil {
		return ""
	}
	return s.backend.Name()
}

// Answer responds to a free-form request using the conversation context and
// an optional screenshot. Only successful exchanges are added to history.
func (s *Service) Answer(ctx context.Context, request string, image []byte) (string, error) {
	s.mu.RLock()
	role := s.role
	s.mu.RUnlock()

	prompt := BuildPrompt(role, s.history.Context(), request)
	answer, err := s.complete(ctx, domain.CompletionRequest{Prompt: prompt, Image: image})
	if err != nil {
		return "", err
	}
	s.history.Add(request, answer)
	return answer, nil
}

// Draft runs a one-off completion without history, used by compose, edit and
// summarise flows.
func (s *Service) Draft(ctx context.Context, instruction string) (string, error) {
	return s.complete(ctx, domain.CompletionRequest{Prompt: instruction})
}

// Describe runs a one-off completion over an image.
func (s *Service) Describe(ctx context.Context, instruction string, image []byte) (string, error) {
	return s.complete(ctx, domain.CompletionRequest{Prompt: instruction, Image: image})
}

func (s *Service) complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	s.mu.RLock()
	backend := s.backend
	s.mu.RUnlock()
	if backend == nil {
		return "", domain.NewUserError("No AI model is configured. Use the Configure menu to set one up.", domain.ErrAuthMissing)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	text, err := backend.Complete(ctx, req)
	fields := map[string]interface{}{
		"backend":     backend.Name(),
		"duration_ms": time.Since(started).Milliseconds(),
		"has_image":   len(req.Image) > 0,
	}
	if err != nil {
		s.logError("completion failed", err, fields)
		return "", advise(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.logWarn("completion returned no text", fields)
		return "", domain.NewUserError(EmptyAdvisory, nil)
	}
	if s.logger != nil {
		s.logger.Debug("completion finished", fields)
	}
	return text, nil
}

// advise maps backend failures to user-facing advisories.
func advise(err error) error {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return domain.NewUserError(QuotaAdvisory, err)
	case errors.Is(err, domain.ErrRateLimited):
		return domain.NewUserError(RateLimitAdvisory, err)
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return domain.NewUserError(TimeoutAdvisory, err)
	case errors.Is(err, domain.ErrAuthMissing):
		return domain.NewUserError("The API key was rejected. Update it from the Configure menu.", err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("generate response: %w", err)
	}
}

func (s *Service) logError(msg string, err error, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Error(msg, err, fields)
	}
}

func (s *Service) logWarn(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, fields)
	}
}
