package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/doeshing/quack-go/internal/domain"
)

func TestFactory(t *testing.T) {
	f := NewFactory()

	_, err := f.ForModel(domain.ModelDefinition{Name: "openai", Provider: "openai"}, "")
	assert.ErrorIs(t, err, domain.ErrAuthMissing)

	_, err = f.ForModel(domain.ModelDefinition{Name: "claude", Provider: "anthropic"}, "key")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	backend, err := f.ForModel(domain.ModelDefinition{Name: "openai", Provider: "OpenAI"}, "key")
	require.NoError(t, err)
	assert.Equal(t, "openai", backend.Name())

	backend, err = f.ForModel(domain.ModelDefinition{Name: "gemini", Provider: "gemini"}, "key")
	require.NoError(t, err)
	assert.Equal(t, "gemini", backend.Name())
}

func openAIServer(t *testing.T, handler http.HandlerFunc) domain.ModelDefinition {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return domain.ModelDefinition{Name: "openai", Provider: "openai", ModelID: "gpt-test", Endpoint: server.URL + "/v1", MaxTokens: 64}
}

func TestOpenAICompletion(t *testing.T) {
	var got openai.ChatCompletionRequest
	model := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Paris"}}]}`)
	})

	backend := newOpenAIBackend(model, "sk-test")
	text, err := backend.Complete(context.Background(), domain.CompletionRequest{Prompt: "capital of France?"})
	require.NoError(t, err)
	assert.Equal(t, "Paris", text)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 64, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "capital of France?", got.Messages[0].Content)
}

func TestOpenAIAttachesImage(t *testing.T) {
	var raw map[string]interface{}
	model := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"a terminal"}}]}`)
	})

	backend := newOpenAIBackend(model, "sk-test")
	_, err := backend.Complete(context.Background(), domain.CompletionRequest{Prompt: "what is this?", Image: []byte{0xff, 0xd8}})
	require.NoError(t, err)

	encoded, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), "data:image/jpeg;base64,/9g=")
	assert.Contains(t, string(encoded), "what is this?")
}

func TestOpenAIErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"quota", http.StatusTooManyRequests, `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`, domain.ErrQuotaExceeded},
		{"rate limit", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`, domain.ErrRateLimited},
		{"bad key", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, domain.ErrAuthMissing},
		{"server", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, domain.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			backend := newOpenAIBackend(model, "sk-test")
			_, err := backend.Complete(context.Background(), domain.CompletionRequest{Prompt: "hi"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), domain.ErrTimeout},
		{"cancel", context.Canceled, domain.ErrCancelled},
		{"gemini quota", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "Quota exceeded for quota metric"}, domain.ErrQuotaExceeded},
		{"gemini rate", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "Too many requests"}, domain.ErrRateLimited},
		{"gemini key", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, domain.ErrAuthMissing},
		{"gemini model", &genai.APIError{Code: 404, Status: "NOT_FOUND", Message: "models/x is not found"}, domain.ErrNotFound},
		{"network", errors.New("dial tcp: connection refused"), domain.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("gemini", tt.err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, strings.HasPrefix(err.Error(), "gemini"), err.Error())
		})
	}
}
