package domain

// Config mirrors ~/.quack/config.yaml.
type Config struct {
	ConfigFormatVersion string               `yaml:"config_format_version"`
	Model               string               `yaml:"model"`
	Role                string               `yaml:"role"`
	Models              []ModelDefinition    `yaml:"models"`
	Conversation        ConversationSettings `yaml:"conversation"`
	Timeouts            TimeoutSettings      `yaml:"timeouts"`
	GitHub              GitHubSettings       `yaml:"github"`
	Email               EmailSettings        `yaml:"email"`
	WhatsApp            WhatsAppSettings     `yaml:"whatsapp"`
	Calendar            CalendarSettings     `yaml:"calendar"`
	Files               FileSettings         `yaml:"files"`
	Screen              ScreenSettings       `yaml:"screen"`
	Browser             BrowserSettings      `yaml:"browser"`
	History             HistorySettings      `yaml:"history"`
	Security            SecuritySettings     `yaml:"security"`
}

// ConversationSettings bounds the in-memory conversation history.
type ConversationSettings struct {
	MaxTurns     int `yaml:"max_turns"`
	ContextTurns int `yaml:"context_turns"`
}

// TimeoutSettings bounds collaborator calls.
type TimeoutSettings struct {
	CompletionSeconds  int `yaml:"completion_seconds"`
	IntegrationSeconds int `yaml:"integration_seconds"`
}

// GitHubSettings holds the personal access token used for the REST API.
type GitHubSettings struct {
	Token  string `yaml:"token"`
	APIURL string `yaml:"api_url"`
}

// EmailSettings configures outgoing SMTP mail.
type EmailSettings struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
}

// WhatsAppSettings configures the WhatsApp messaging gateway.
type WhatsAppSettings struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
	APIURL     string `yaml:"api_url"`
}

// CalendarSettings configures the Google Calendar REST client.
type CalendarSettings struct {
	AccessToken string `yaml:"access_token"`
	CalendarID  string `yaml:"calendar_id"`
	APIURL      string `yaml:"api_url"`
	TimeZone    string `yaml:"time_zone"`
}

// FileSettings scopes relative paths used by file operations.
type FileSettings struct {
	WorkspaceRoot string `yaml:"workspace_root"`
}

// ScreenSettings names the external tools used for capture and dictation.
type ScreenSettings struct {
	CaptureCommand string `yaml:"capture_command"`
	SpeechCommand  string `yaml:"speech_command"`
}

// BrowserSettings configures the headless browser used by /browse.
type BrowserSettings struct {
	Headless        bool `yaml:"headless"`
	MaxContentChars int  `yaml:"max_content_chars"`
}

// HistorySettings controls the persistent turn log.
type HistorySettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// SecuritySettings defines path guardrail behavior for file operations.
type SecuritySettings struct {
	Enabled   bool   `yaml:"enabled"`
	RulesFile string `yaml:"rules_file"`
}
