// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The application core (intent parsing, command dispatch, handlers) talks to
// the outside world only through these interfaces. Adapters in the
// infrastructure layer implement them: completion backends, GitHub, mail,
// WhatsApp, calendar, the file system, the terminal.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., CompletionBackend, GitHubService)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/quack-go/internal/domain"
)

// ConfigStore loads and persists ~/.quack/config.yaml.
type ConfigStore interface {
	Load(context.Context) (domain.Config, error)
	Save(domain.Config) error
}

// CompletionBackend produces text for a prompt, optionally with an image.
// Quota and rate-limit failures are reported as domain.ErrQuotaExceeded and
// domain.ErrRateLimited.
type CompletionBackend interface {
	Name() string
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// BackendFactory builds a completion backend for a model and API key.
type BackendFactory interface {
	ForModel(model domain.ModelDefinition, apiKey string) (CompletionBackend, error)
}

// ScreenshotProvider captures the current screen as JPEG bytes.
type ScreenshotProvider interface {
	Capture(ctx context.Context) ([]byte, error)
}

// SpeechProvider turns one spoken utterance into text. An empty string with a
// nil error means nothing was heard.
type SpeechProvider interface {
	Listen(ctx context.Context) (string, error)
}

// GitHubService executes GitHub operations for the authenticated user.
type GitHubService interface {
	CurrentUser(ctx context.Context) (string, error)
	ListRepos(ctx context.Context) ([]domain.Repository, error)
	CreateRepo(ctx context.Context, name, description string, private bool) (domain.Repository, error)
	ListIssues(ctx context.Context, repo string) ([]domain.Issue, error)
	CreateIssue(ctx context.Context, repo, title, body string) (domain.Issue, error)
	CloseIssue(ctx context.Context, repo string, number int) error
	ListPullRequests(ctx context.Context, repo string) ([]domain.Issue, error)
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

// Messenger sends WhatsApp messages to a phone number.
type Messenger interface {
	Send(ctx context.Context, recipient, body string) error
}

// CalendarService reads and writes calendar events.
type CalendarService interface {
	ListUpcoming(ctx context.Context, limit int) ([]domain.CalendarEvent, error)
	AddEvent(ctx context.Context, draft domain.EventDraft) (domain.CalendarEvent, error)
}

// FileManager performs file system operations relative to the workspace.
type FileManager interface {
	Resolve(path string) string
	List(dir string) ([]domain.FileEntry, error)
	Read(path string) (string, error)
	Create(path, content string) error
	MakeDir(path string) error
	Delete(path string) error
	Move(src, dst string) error
	Copy(src, dst string) error
	Search(root, pattern string, limit int) ([]domain.FileEntry, error)
}

// AppLauncher starts desktop applications.
type AppLauncher interface {
	Launch(ctx context.Context, name string) error
	ListInstalled(ctx context.Context) ([]string, error)
}

// Spreadsheet reads workbooks (.xlsx) and CSV files.
type Spreadsheet interface {
	ListFiles(dir string) ([]domain.FileEntry, error)
	Info(path string) (domain.SheetInfo, error)
	Preview(path, sheet string, rows int) (domain.Table, error)
}

// PageFetcher renders a web page and extracts its readable content.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (domain.WebPage, error)
}

// PathGuard evaluates destructive file operations against protected paths.
type PathGuard interface {
	Evaluate(operation, path string) (domain.RiskAssessment, error)
}

// HistoryRepository persists dispatched turns.
type HistoryRepository interface {
	Save(ctx context.Context, record domain.TurnRecord) error
	Recent(ctx context.Context, limit int) ([]domain.TurnRecord, error)
	Stats(ctx context.Context) (domain.UsageStats, error)
	Clear(ctx context.Context) error
}

// Renderer presents results in the terminal.
type Renderer interface {
	Info(msg string)
	Success(msg string)
	Warn(msg string)
	Error(msg string)
	// Print writes plain text; Markdown renders formatted assistant output.
	Print(text string)
	Markdown(text string)
	// Busy starts the busy indicator. The returned stop function must be
	// called on every exit path; it blocks until the indicator is gone.
	Busy(label string) (stop func())
}

// Prompter asks the user for input during a handler's sub-dialog.
type Prompter interface {
	Ask(prompt string) (string, error)
	AskSecret(prompt string) (string, error)
	Confirm(prompt string) (bool, error)
	// Choose returns the zero-based index of the selected option.
	Choose(prompt string, options []string) (int, error)
}

// Logger provides structured logging capabilities.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
