package ai

import (
	"fmt"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Factory builds completion backends from model definitions.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// ForModel implements ports.BackendFactory.
func (f *Factory) ForModel(model domain.ModelDefinition, apiKey string) (ports.CompletionBackend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: no API key for %s", domain.ErrAuthMissing, model.Name)
	}
	switch strings.ToLower(model.Provider) {
	case domain.ProviderOpenAI:
		return newOpenAIBackend(model, apiKey), nil
	case domain.ProviderGemini:
		return newGeminiBackend(model, apiKey)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q for model %s", domain.ErrInvalidInput, model.Provider, model.Name)
	}
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func valueOrDefaultInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

var _ ports.BackendFactory = (*Factory)(nil)
