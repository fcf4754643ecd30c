package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/google/uuid"

	"github.com/doeshing/quack-go/internal/application/assistant"
	"github.com/doeshing/quack-go/internal/application/command"
	"github.com/doeshing/quack-go/internal/application/conversation"
	"github.com/doeshing/quack-go/internal/application/dispatch"
	"github.com/doeshing/quack-go/internal/application/doctor"
	"github.com/doeshing/quack-go/internal/application/handlers"
	"github.com/doeshing/quack-go/internal/application/setup"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/infrastructure/ai"
	"github.com/doeshing/quack-go/internal/infrastructure/config"
	"github.com/doeshing/quack-go/internal/infrastructure/history"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/apps"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/browser"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/calendar"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/files"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/github"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/mail"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/screen"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/spreadsheet"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/whatsapp"
	"github.com/doeshing/quack-go/internal/infrastructure/security"
	"github.com/doeshing/quack-go/internal/pkg/filesystem"
	"github.com/doeshing/quack-go/internal/pkg/logger"
	"github.com/doeshing/quack-go/internal/ports"
)

// Options configures BuildContainer.
type Options struct {
	Verbose bool
	// ConfigPath overrides ~/.quack/config.yaml.
	ConfigPath string
	// LogPath overrides ~/.quack/logs/quack.log.
	LogPath  string
	Prompter ports.Prompter
	Renderer ports.Renderer
	Getenv   func(string) string
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	ConfigLoader *config.FileLoader
	Settings     *setup.Service
	Logger       *logger.ZapLogger
	Dispatcher   *dispatch.Dispatcher
	Commands     *command.Registry
	Assistant    *assistant.Service
	Bootstrapper *assistant.Bootstrapper
	Conversation *conversation.History
	Menu         *setup.Menu
	Doctor       *doctor.Service
	HistoryStore ports.HistoryRepository
	Screen       ports.ScreenshotProvider
	Speech       *screen.Listener
	Renderer     ports.Renderer
	// Warnings collects non-fatal problems found while wiring, for display at
	// startup.
	Warnings []string
}

// BuildContainer loads the configuration and constructs the dependency
// graph. No completion backend is connected yet; call Connect before
// processing input that may reach the assistant.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	verbose := opts.Verbose || opts.Getenv("QUACK_DEBUG") == "1"

	logPath := opts.LogPath
	if logPath == "" {
		logPath = filepath.Join(filesystem.QuackDir(), "logs", "quack.log")
	}
	log, err := logger.New(logPath, verbose)
	if err != nil {
		log = logger.NewNop()
	}

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	settings, err := setup.NewService(ctx, cfgLoader, log)
	if err != nil {
		return nil, err
	}
	cfg := settings.Current()
	c := &Container{
		ConfigLoader: cfgLoader,
		Settings:     settings,
		Logger:       log,
		Renderer:     opts.Renderer,
	}

	var guard ports.PathGuard
	if cfg.IsSecurityEnabled() {
		g, err := security.NewGuardrail(cfg.Security.RulesFile)
		if err != nil {
			log.Error("guardrail rules rejected, using defaults", err, map[string]interface{}{"path": cfg.Security.RulesFile})
			c.Warnings = append(c.Warnings, fmt.Sprintf("Ignoring %s: %v", cfg.Security.RulesFile, err))
			if g, err = security.NewGuardrail(""); err != nil {
				return nil, err
			}
		}
		guard = g
	}

	c.HistoryStore = history.Disabled{}
	if cfg.History.Enabled {
		store, warning := history.Open(filesystem.ExpandPath(cfg.History.Path))
		if warning != "" {
			log.Warn("history fallback", map[string]interface{}{"reason": warning})
			c.Warnings = append(c.Warnings, warning)
		}
		c.HistoryStore = store
	}

	sessionID := uuid.NewString()
	sessionLog := log.With(map[string]interface{}{"session": sessionID})

	c.Conversation = conversation.NewHistory(cfg.GetMaxTurns(), cfg.GetContextTurns())
	c.Assistant = assistant.NewService(nil, c.Conversation, cfg.GetRole(), cfg.CompletionTimeout(), sessionLog)
	c.Bootstrapper = &assistant.Bootstrapper{
		Settings: settings,
		Factory:  ai.NewFactory(),
		Prompter: opts.Prompter,
		Renderer: opts.Renderer,
		Logger:   log,
		Getenv:   opts.Getenv,
	}

	capturer := screen.NewCapturer(cfg.Screen.CaptureCommand)
	c.Screen = capturer
	c.Speech = screen.NewListener(cfg.Screen.SpeechCommand)

	fileManager := files.NewManager(cfg.Files.WorkspaceRoot)
	sheets := spreadsheet.NewReader(fileManager)
	compose := &handlers.ComposeFlow{
		Drafter:  c.Assistant,
		Prompter: opts.Prompter,
		Renderer: opts.Renderer,
		Logger:   log,
	}
	timeout := cfg.IntegrationTimeout()

	githubHandler := &handlers.GitHubHandler{
		Connect:  c.connectGitHub,
		Settings: settings,
		Prompter: opts.Prompter,
		Renderer: opts.Renderer,
		Timeout:  timeout,
	}
	emailHandler := &handlers.EmailHandler{
		Connect:  c.connectMailer,
		Compose:  compose,
		Settings: settings,
		Prompter: opts.Prompter,
		Renderer: opts.Renderer,
		Timeout:  timeout,
	}
	messagingHandler := &handlers.MessagingHandler{
		Connect:  c.connectMessenger,
		Compose:  compose,
		Settings: settings,
		Prompter: opts.Prompter,
		Renderer: opts.Renderer,
		Timeout:  timeout,
	}
	calendarHandler := &handlers.CalendarHandler{
		Connect:  c.connectCalendar,
		Settings: settings,
		Prompter: opts.Prompter,
		Renderer: opts.Renderer,
		Timeout:  timeout,
	}
	spreadsheetHandler := &handlers.SpreadsheetHandler{
		Sheets:   sheets,
		Drafter:  c.Assistant,
		Prompter: opts.Prompter,
		Renderer: opts.Renderer,
	}

	tools := &handlers.Tools{
		Files:        fileManager,
		Guard:        guard,
		Sheets:       sheets,
		Screen:       capturer,
		Pages:        browser.NewFetcher(cfg.Browser.Headless, timeout),
		Drafter:      c.Assistant,
		Describer:    c.Assistant,
		Prompter:     opts.Prompter,
		Renderer:     opts.Renderer,
		Logger:       log,
		MaxPageChars: cfg.GetMaxPageChars(),
	}

	c.Commands = command.NewRegistry(opts.Renderer, command.Builtins(command.Deps{
		GitHub:       githubHandler,
		Email:        emailHandler,
		Messaging:    messagingHandler,
		Calendar:     calendarHandler,
		Spreadsheet:  spreadsheetHandler,
		Tools:        tools,
		Conversation: c.Conversation,
		Turns:        c.HistoryStore,
	})...)

	c.Dispatcher = dispatch.New(dispatch.Options{
		Commands: c.Commands,
		Handlers: map[domain.Domain]handlers.Handler{
			domain.DomainFile: &handlers.FileHandler{
				Files:    fileManager,
				Guard:    guard,
				Prompter: opts.Prompter,
				Logger:   log,
			},
			domain.DomainApp: &handlers.AppHandler{
				Launcher: apps.NewLauncher(),
				Prompter: opts.Prompter,
				Renderer: opts.Renderer,
				Timeout:  timeout,
			},
			domain.DomainGitHub:      githubHandler,
			domain.DomainEmail:       emailHandler,
			domain.DomainMessaging:   messagingHandler,
			domain.DomainCalendar:    calendarHandler,
			domain.DomainSpreadsheet: spreadsheetHandler,
		},
		Assistant: c.Assistant,
		Screen:    capturer,
		Turns:     c.HistoryStore,
		Renderer:  opts.Renderer,
		Logger:    sessionLog,
		SessionID: sessionID,
	})

	c.Menu = &setup.Menu{
		Settings:    settings,
		Prompter:    opts.Prompter,
		Renderer:    opts.Renderer,
		Reconnect:   c.Connect,
		RoleChanged: c.Assistant.SetRole,
	}

	c.Doctor = &doctor.Service{
		Config:  cfgLoader,
		Guard:   guard,
		History: c.HistoryStore,
		Getenv:  opts.Getenv,
		Timeout: domain.DefaultToolCheckTimeout,
		Tools: []doctor.ToolProbe{
			{
				Name: "Screenshot tool",
				Find: func() (string, bool) { return capturer.Tool(), capturer.Available() },
				Hint: "set screen.capture_command, e.g. \"grim {file}\"",
			},
			{
				Name: "Speech command",
				Find: func() (string, bool) { return cfg.Screen.SpeechCommand, c.Speech.Available() },
				Hint: "set screen.speech_command to a program that prints one transcript",
			},
			{
				Name: "Chrome (for /browse)",
				Find: launcher.LookPath,
				Hint: "install Chrome or Chromium",
			},
		},
	}

	sessionLog.Debug("container ready", map[string]interface{}{
		"model":  cfg.Model,
		"config": cfgLoader.Path(),
	})
	return c, nil
}

// Connect (re)builds the completion backend for the active model.
func (c *Container) Connect(ctx context.Context) error {
	backend, err := c.Bootstrapper.Connect(ctx)
	if err != nil {
		return err
	}
	c.Assistant.SetBackend(backend)
	return nil
}

// Close releases the history store and flushes the log.
func (c *Container) Close() error {
	if closer, ok := c.HistoryStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			c.Logger.Error("close history", err, nil)
		}
	}
	_ = c.Logger.Sync()
	return nil
}

// The connectors below read the live configuration on every call so that
// credentials entered through a setup dialog take effect immediately.

func (c *Container) connectGitHub() (ports.GitHubService, error) {
	cfg := c.Settings.Current()
	client, err := github.New(cfg.GitHub.Token, cfg.GetGitHubAPIURL(), cfg.IntegrationTimeout())
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Container) connectMailer() (ports.Mailer, error) {
	cfg := c.Settings.Current()
	settings := cfg.Email
	settings.SMTPPort = cfg.GetSMTPPort()
	m, err := mail.New(settings)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Container) connectMessenger() (ports.Messenger, error) {
	cfg := c.Settings.Current()
	settings := cfg.WhatsApp
	settings.APIURL = cfg.GetWhatsAppAPIURL()
	client, err := whatsapp.New(settings, cfg.IntegrationTimeout())
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Container) connectCalendar() (ports.CalendarService, error) {
	cfg := c.Settings.Current()
	client, err := calendar.New(cfg.Calendar, cfg.IntegrationTimeout())
	if err != nil {
		return nil, err
	}
	return client, nil
}
