package domain

import (
	"fmt"
	"strings"
	"time"
)

// ActiveModel retrieves the model named by Config.Model.
func (c *Config) ActiveModel() (ModelDefinition, error) {
	if c.Model == "" {
		return ModelDefinition{}, fmt.Errorf("no model configured")
	}
	if model, ok := c.FindModelByName(c.Model); ok {
		return model, nil
	}
	return ModelDefinition{}, fmt.Errorf("model %s not found in configuration", c.Model)
}

// FindModelByName searches for a model by name, ignoring case.
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if strings.EqualFold(model.Name, name) {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration.
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// SetActiveModel switches the completion backend.
func (c *Config) SetActiveModel(name string) error {
	model, ok := c.FindModelByName(name)
	if !ok {
		return fmt.Errorf("cannot switch model: model %s does not exist", name)
	}
	c.Model = model.Name
	return nil
}

// AlternateModel returns the first configured model other than the active one.
func (c *Config) AlternateModel() (ModelDefinition, bool) {
	for _, model := range c.Models {
		if !strings.EqualFold(model.Name, c.Model) {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// SetAPIKey stores a key for the named model.
func (c *Config) SetAPIKey(name, key string) error {
	for i := range c.Models {
		if strings.EqualFold(c.Models[i].Name, name) {
			c.Models[i].APIKey = strings.TrimSpace(key)
			return nil
		}
	}
	return fmt.Errorf("model %s not found", name)
}

// APIKeyEnvVar returns the environment variable consulted for a model's key.
func APIKeyEnvVar(model ModelDefinition) string {
	if model.AuthEnvVar != "" {
		return model.AuthEnvVar
	}
	return strings.ToUpper(model.Name) + "_API_KEY"
}

// ResolveAPIKey returns the key for model. The environment wins over the
// stored value.
func (c *Config) ResolveAPIKey(model ModelDefinition, getenv func(string) string) string {
	if getenv != nil {
		if key := strings.TrimSpace(getenv(APIKeyEnvVar(model))); key != "" {
			return key
		}
	}
	return strings.TrimSpace(model.APIKey)
}

// GetRole returns the configured role or the default one.
func (c *Config) GetRole() string {
	if _, ok := RolePrompts[c.Role]; ok {
		return c.Role
	}
	return DefaultRole
}

// SetRole changes the assistant persona.
func (c *Config) SetRole(role string) error {
	for name := range RolePrompts {
		if strings.EqualFold(name, role) {
			c.Role = name
			return nil
		}
	}
	return fmt.Errorf("unknown role %q", role)
}

// GetMaxTurns returns how many turns the conversation history keeps.
func (c *Config) GetMaxTurns() int {
	if c.Conversation.MaxTurns <= 0 {
		return DefaultMaxTurns
	}
	return c.Conversation.MaxTurns
}

// GetContextTurns returns how many recent turns are rendered into prompts.
// It never exceeds GetMaxTurns.
func (c *Config) GetContextTurns() int {
	n := c.Conversation.ContextTurns
	if n <= 0 {
		n = DefaultContextTurns
	}
	if limit := c.GetMaxTurns(); n > limit {
		return limit
	}
	return n
}

// CompletionTimeout bounds a single completion call.
func (c *Config) CompletionTimeout() time.Duration {
	if c.Timeouts.CompletionSeconds <= 0 {
		return DefaultCompletionTimeout
	}
	return time.Duration(c.Timeouts.CompletionSeconds) * time.Second
}

// IntegrationTimeout bounds calls to GitHub, mail, messaging and calendar.
func (c *Config) IntegrationTimeout() time.Duration {
	if c.Timeouts.IntegrationSeconds <= 0 {
		return DefaultIntegrationTimeout
	}
	return time.Duration(c.Timeouts.IntegrationSeconds) * time.Second
}

// HasGitHubCredentials reports whether a token is configured.
func (c *Config) HasGitHubCredentials() bool {
	return strings.TrimSpace(c.GitHub.Token) != ""
}

// GetGitHubAPIURL returns the REST base URL.
func (c *Config) GetGitHubAPIURL() string {
	if c.GitHub.APIURL == "" {
		return DefaultGitHubAPIURL
	}
	return strings.TrimRight(c.GitHub.APIURL, "/")
}

// HasEmailCredentials reports whether SMTP sending is configured.
func (c *Config) HasEmailCredentials() bool {
	return c.Email.Address != "" && c.Email.Password != "" && c.Email.SMTPHost != ""
}

// GetSMTPPort returns the submission port.
func (c *Config) GetSMTPPort() int {
	if c.Email.SMTPPort <= 0 {
		return DefaultSMTPPort
	}
	return c.Email.SMTPPort
}

// HasWhatsAppCredentials reports whether the messaging gateway is configured.
func (c *Config) HasWhatsAppCredentials() bool {
	return c.WhatsApp.AccountSID != "" && c.WhatsApp.AuthToken != "" && c.WhatsApp.FromNumber != ""
}

// GetWhatsAppAPIURL returns the gateway base URL.
func (c *Config) GetWhatsAppAPIURL() string {
	if c.WhatsApp.APIURL == "" {
		return DefaultWhatsAppAPIURL
	}
	return strings.TrimRight(c.WhatsApp.APIURL, "/")
}

// HasCalendarCredentials reports whether an access token is configured.
func (c *Config) HasCalendarCredentials() bool {
	return strings.TrimSpace(c.Calendar.AccessToken) != ""
}

// GetCalendarAPIURL returns the Calendar REST base URL.
func (c *Config) GetCalendarAPIURL() string {
	if c.Calendar.APIURL == "" {
		return DefaultCalendarAPIURL
	}
	return strings.TrimRight(c.Calendar.APIURL, "/")
}

// GetCalendarID returns the calendar events are read from and written to.
func (c *Config) GetCalendarID() string {
	if c.Calendar.CalendarID == "" {
		return "primary"
	}
	return c.Calendar.CalendarID
}

// GetMaxPageChars limits how much page text /browse puts into a prompt.
func (c *Config) GetMaxPageChars() int {
	if c.Browser.MaxContentChars <= 0 {
		return DefaultMaxPageChars
	}
	return c.Browser.MaxContentChars
}

// IsSecurityEnabled checks if path guardrails are enabled.
func (c *Config) IsSecurityEnabled() bool {
	return c.Security.Enabled
}

// ValidateConsistency checks cross-field rules that YAML cannot express.
func (c *Config) ValidateConsistency() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("no models are configured")
	}
	if c.Model != "" && !c.HasModel(c.Model) {
		return fmt.Errorf("model %s does not exist in models list", c.Model)
	}
	seen := make(map[string]bool, len(c.Models))
	for _, model := range c.Models {
		key := strings.ToLower(model.Name)
		if seen[key] {
			return fmt.Errorf("model %s is declared twice", model.Name)
		}
		seen[key] = true
		switch strings.ToLower(model.Provider) {
		case ProviderGemini, ProviderOpenAI:
		default:
			return fmt.Errorf("model %s has unsupported provider %q", model.Name, model.Provider)
		}
	}
	if c.Role != "" {
		if _, ok := RolePrompts[c.Role]; !ok {
			return fmt.Errorf("role %s is not a known role", c.Role)
		}
	}
	return nil
}
