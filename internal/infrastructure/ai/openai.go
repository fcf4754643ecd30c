package ai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

const defaultOpenAIModel = "gpt-4-turbo"

type openAIBackend struct {
	model  domain.ModelDefinition
	client *openai.Client
}

func newOpenAIBackend(model domain.ModelDefinition, apiKey string) *openAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if model.Endpoint != "" {
		cfg.BaseURL = model.Endpoint
	}
	return &openAIBackend{model: model, client: openai.NewClientWithConfig(cfg)}
}

func (b *openAIBackend) Name() string {
	return b.model.Name
}

func (b *openAIBackend) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Image) > 0 {
		message.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(req.Image),
					Detail: openai.ImageURLDetailAuto,
				},
			},
		}
	} else {
		message.Content = req.Prompt
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       valueOrDefault(b.model.ModelID, defaultOpenAIModel),
		Messages:    []openai.ChatCompletionMessage{message},
		MaxTokens:   valueOrDefaultInt(b.model.MaxTokens, domain.DefaultMaxTokens),
		Temperature: b.model.Temperature,
	})
	if err != nil {
		return "", classify("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewCollaboratorError("openai", domain.ErrUnavailable, fmt.Errorf("response had no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

var _ ports.CompletionBackend = (*openAIBackend)(nil)
