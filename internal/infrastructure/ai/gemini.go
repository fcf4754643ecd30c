package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

const defaultGeminiModel = "gemini-1.5-pro"

type geminiBackend struct {
	model  domain.ModelDefinition
	client *genai.Client
}

func newGeminiBackend(model domain.ModelDefinition, apiKey string) (*geminiBackend, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if model.Endpoint != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: model.Endpoint}
	}
	client, err := genai.NewClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiBackend{model: model, client: client}, nil
}

func (b *geminiBackend) Name() string {
	return b.model.Name
}

func (b *geminiBackend) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if len(req.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image, "image/jpeg"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	temperature := b.model.Temperature
	resp, err := b.client.Models.GenerateContent(ctx, valueOrDefault(b.model.ModelID, defaultGeminiModel), contents, &genai.GenerateContentConfig{
		MaxOutputTokens: int32(valueOrDefaultInt(b.model.MaxTokens, domain.DefaultMaxTokens)),
		Temperature:     &temperature,
	})
	if err != nil {
		return "", classify("gemini", err)
	}
	return resp.Text(), nil
}

var _ ports.CompletionBackend = (*geminiBackend)(nil)
