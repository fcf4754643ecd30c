// Package domain defines the core entities and value objects of quack.
//
// The domain layer carries no infrastructure concerns: intents produced by the
// parsers, conversation turns, configuration with its consistency rules, the
// records persisted for statistics and the typed errors collaborators return.
package domain

// Provider kinds understood by the backend factory.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ModelDefinition describes a completion backend declared in the config file.
type ModelDefinition struct {
	Name        string  `yaml:"name"`
	Provider    string  `yaml:"provider"`
	ModelID     string  `yaml:"model_id"`
	APIKey      string  `yaml:"api_key,omitempty"`
	AuthEnvVar  string  `yaml:"auth_env_var"`
	Endpoint    string  `yaml:"endpoint,omitempty"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// GetMaxTokens returns the configured token limit or the default.
func (m ModelDefinition) GetMaxTokens() int {
	if m.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return m.MaxTokens
}

// GetTemperature returns the sampling temperature or the default.
func (m ModelDefinition) GetTemperature() float32 {
	if m.Temperature <= 0 {
		return DefaultTemperature
	}
	return m.Temperature
}

// CompletionRequest is what the assistant hands to a completion backend.
type CompletionRequest struct {
	Prompt string
	// Image is an optional JPEG screenshot attached to the prompt.
	Image []byte
}
