package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
	// FilePermissions is used for files created on the user's behalf
	FilePermissions = 0o644
)

// Timeout and duration constants
const (
	// DefaultCompletionTimeout bounds one completion request
	DefaultCompletionTimeout = 60 * time.Second
	// DefaultIntegrationTimeout bounds one call to an external service
	DefaultIntegrationTimeout = 30 * time.Second
	// ScreenshotCacheTTL is how long a captured screenshot is reused
	ScreenshotCacheTTL = 2 * time.Second
	// DefaultToolCheckTimeout bounds doctor probes of external tools
	DefaultToolCheckTimeout = 2 * time.Second
)

// Conversation constants
const (
	// DefaultMaxTurns is how many turns the conversation history keeps
	DefaultMaxTurns = 50
	// DefaultContextTurns is how many recent turns are sent as context
	DefaultContextTurns = 5
	// MaxComposeAttempts bounds draft/regenerate cycles in a compose dialog
	MaxComposeAttempts = 5
	// MaxBootstrapAttempts bounds credential prompts during startup
	MaxBootstrapAttempts = 3
)

// Listing constants
const (
	// DefaultHistoryLimit is the default number of turn records to display
	DefaultHistoryLimit = 20
	// DefaultCalendarResults is how many upcoming events /calendar list shows
	DefaultCalendarResults = 10
	// DefaultPreviewRows is how many spreadsheet rows are shown
	DefaultPreviewRows = 10
	// DefaultSearchResults caps file search results
	DefaultSearchResults = 50
	// DefaultMaxPageChars caps the page body sent with /browse
	DefaultMaxPageChars = 1500
	// MaxPageHeadings caps the headings sent with /browse
	MaxPageHeadings = 5
	// MaxDocumentChars caps the document body sent with /document
	MaxDocumentChars = 12000
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 2048
	// DefaultTemperature is the default sampling temperature
	DefaultTemperature = 0.7
)

// Service endpoints
const (
	DefaultGitHubAPIURL   = "https://api.github.com"
	DefaultWhatsAppAPIURL = "https://api.twilio.com/2010-04-01"
	DefaultCalendarAPIURL = "https://www.googleapis.com/calendar/v3"
	DefaultSMTPPort       = 587
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
