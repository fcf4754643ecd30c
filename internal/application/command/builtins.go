package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/quack-go/internal/application/conversation"
	"github.com/doeshing/quack-go/internal/application/handlers"
	"github.com/doeshing/quack-go/internal/application/intent"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Deps are the collaborators the built-in commands delegate to.
type Deps struct {
	GitHub       handlers.Handler
	Email        handlers.Handler
	Messaging    handlers.Handler
	Calendar     handlers.Handler
	Spreadsheet  handlers.Handler
	Tools        *handlers.Tools
	Conversation *conversation.History
	Turns        ports.HistoryRepository
}

// Builtins returns every slash command except /help, which the registry
// provides.
func Builtins(d Deps) []Command {
	return []Command{
		{
			Name:    "/calendar",
			Summary: "List or add Google Calendar events",
			Usage:   intent.CalendarUsage,
			Run:     d.calendar,
		},
		{
			Name:    "/document",
			Summary: "Summarise a document or ask a question about it",
			Usage:   "/document <path> [question]",
			Run: func(ctx context.Context, args string) (string, error) {
				path, question := head(args)
				return d.Tools.Document(ctx, path, question)
			},
		},
		{
			Name:    "/ocr",
			Summary: "Read the text currently on screen",
			Usage:   "/ocr",
			Run: func(ctx context.Context, _ string) (string, error) {
				return d.Tools.OCR(ctx)
			},
		},
		{
			Name:    "/github",
			Summary: "Work with GitHub repositories, issues and pull requests",
			Usage:   "/github setup|status|repos|issues <owner/repo>|prs <owner/repo>|<request>",
			Run:     d.github,
		},
		{
			Name:    "/email",
			Summary: "Send or compose email",
			Usage:   "/email setup|send <to>|compose <to> <instructions>|<request>",
			Run:     d.email,
		},
		{
			Name:    "/whatsapp",
			Summary: "Send or compose WhatsApp messages",
			Usage:   "/whatsapp setup|send <number> <message>|compose <number> <instructions>|<request>",
			Run:     d.whatsapp,
		},
		{
			Name:    "/excel",
			Summary: "Inspect spreadsheets and CSV files",
			Usage:   "/excel list [dir]|show <file>|info <file>|<request>",
			Run:     d.excel,
		},
		{
			Name:    "/code-edit",
			Summary: "Let the assistant edit a file, with a diff preview",
			Usage:   "/code-edit <path> <instruction>",
			Run: func(ctx context.Context, args string) (string, error) {
				path, instruction := head(args)
				return d.Tools.CodeEdit(ctx, path, instruction)
			},
		},
		{
			Name:    "/browse",
			Summary: "Read a web page and answer a question about it",
			Usage:   "/browse <url> [question]",
			Run: func(ctx context.Context, args string) (string, error) {
				url, question := head(args)
				return d.Tools.Browse(ctx, url, question)
			},
		},
		{
			Name:    "/stats",
			Summary: "Show how requests were routed",
			Usage:   "/stats",
			Run:     d.stats,
		},
		{
			Name:    "/history",
			Summary: "Show recent conversation turns",
			Usage:   "/history [count]",
			Run:     d.history,
		},
		{
			Name:    "/clear",
			Summary: "Forget the current conversation",
			Usage:   "/clear",
			Run: func(context.Context, string) (string, error) {
				d.Conversation.Clear()
				return "Conversation history cleared.", nil
			},
		},
	}
}

func (d Deps) calendar(ctx context.Context, args string) (string, error) {
	in, err := intent.ParseCalendarCommand(args)
	if err != nil {
		return "", usageError(err)
	}
	return d.Calendar.Handle(ctx, in)
}

func (d Deps) github(ctx context.Context, args string) (string, error) {
	sub, rest := head(args)
	var in *domain.Intent
	switch strings.ToLower(sub) {
	case "":
		return "", usage("/github setup|status|repos|issues <owner/repo>|prs <owner/repo>|<request>")
	case "setup":
		in = domain.NewIntent(domain.DomainGitHub, domain.OpSetupGitHub, nil)
	case "status", "whoami":
		in = domain.NewIntent(domain.DomainGitHub, domain.OpWhoAmI, nil)
	case "repos":
		in = domain.NewIntent(domain.DomainGitHub, domain.OpListRepos, nil)
	case "issues":
		in = domain.NewIntent(domain.DomainGitHub, domain.OpListIssues, domain.Params{"repo": unquote(rest)})
	case "prs", "pulls":
		in = domain.NewIntent(domain.DomainGitHub, domain.OpListPRs, domain.Params{"repo": unquote(rest)})
	default:
		if in = intent.NewGitHubParser().Parse(args); in == nil {
			return "", usage("I couldn't work out that GitHub request. Try /help github.")
		}
	}
	return d.GitHub.Handle(ctx, in)
}

func (d Deps) email(ctx context.Context, args string) (string, error) {
	sub, rest := head(args)
	var in *domain.Intent
	switch strings.ToLower(sub) {
	case "":
		return "", usage("/email setup|send <to>|compose <to> <instructions>|<request>")
	case "setup":
		in = domain.NewIntent(domain.DomainEmail, domain.OpSetupEmail, nil)
	case "send":
		in = domain.NewIntent(domain.DomainEmail, domain.OpSendEmail, domain.Params{"to": unquote(rest)})
	case "compose", "write", "draft":
		to, instruction := head(rest)
		in = domain.NewIntent(domain.DomainEmail, domain.OpAICompose, domain.Params{"to": to, "instruction": instruction})
	default:
		if in = intent.NewEmailParser().Parse(args); in == nil {
			return "", usage("I couldn't work out that email request. Try /help email.")
		}
	}
	return d.Email.Handle(ctx, in)
}

func (d Deps) whatsapp(ctx context.Context, args string) (string, error) {
	sub, rest := head(args)
	var in *domain.Intent
	switch strings.ToLower(sub) {
	case "":
		return "", usage("/whatsapp setup|send <number> <message>|compose <number> <instructions>|<request>")
	case "setup":
		in = domain.NewIntent(domain.DomainMessaging, domain.OpSetupWhatsApp, nil)
	case "send":
		number, message := head(rest)
		in = domain.NewIntent(domain.DomainMessaging, domain.OpSendWhatsApp, domain.Params{"recipient": number, "message": message})
	case "compose", "write", "draft":
		number, instruction := head(rest)
		in = domain.NewIntent(domain.DomainMessaging, domain.OpAICompose, domain.Params{"recipient": number, "instruction": instruction})
	default:
		if in = intent.NewMessagingParser().Parse(args); in == nil {
			in = intent.PhoneFallback("whatsapp " + args)
		}
		if in == nil {
			return "", usage("I couldn't work out that WhatsApp request. Try /help whatsapp.")
		}
	}
	return d.Messaging.Handle(ctx, in)
}

func (d Deps) excel(ctx context.Context, args string) (string, error) {
	sub, rest := head(args)
	var in *domain.Intent
	switch strings.ToLower(sub) {
	case "":
		return "", usage("/excel list [dir]|show <file>|info <file>|<request>")
	case "list", "ls":
		in = domain.NewIntent(domain.DomainSpreadsheet, domain.OpListFiles, domain.Params{"directory": unquote(rest)})
	case "show", "open", "preview":
		in = domain.NewIntent(domain.DomainSpreadsheet, domain.OpShowSheet, domain.Params{"file_name": unquote(rest)})
	case "info", "analyze", "analyse":
		in = domain.NewIntent(domain.DomainSpreadsheet, domain.OpAnalyze, domain.Params{"file_name": unquote(rest)})
	default:
		if in = intent.NewSpreadsheetParser().Parse(args); in == nil {
			return "", usage("I couldn't work out that spreadsheet request. Try /help excel.")
		}
	}
	return d.Spreadsheet.Handle(ctx, in)
}

func (d Deps) stats(ctx context.Context, _ string) (string, error) {
	if d.Turns == nil {
		return "Request history is disabled.", nil
	}
	stats, err := d.Turns.Stats(ctx)
	if err != nil {
		return "", fmt.Errorf("load usage stats: %w", err)
	}
	return FormatStats(stats), nil
}

// FormatStats renders usage statistics for /stats and `quack history stats`.
func FormatStats(stats domain.UsageStats) string {
	if stats.Total == 0 {
		return "No requests recorded yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s requests in %s sessions, %d failed\n",
		humanize.Comma(int64(stats.Total)), humanize.Comma(int64(stats.Sessions)), stats.Failures)
	fmt.Fprintf(&b, "First: %s, last: %s\n", humanize.Time(stats.First), humanize.Time(stats.Last))
	for _, row := range stats.ByRoute {
		label := string(row.Route)
		if row.Domain != "" && row.Domain != domain.DomainNone {
			label += " " + string(row.Domain)
		}
		if row.Operation != "" {
			label += "/" + row.Operation
		}
		fmt.Fprintf(&b, "  %-36s %6d\n", label, row.Count)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (d Deps) history(_ context.Context, args string) (string, error) {
	limit := domain.DefaultHistoryLimit
	if n, ok := (domain.Params{"n": args}).Int("n"); ok && n > 0 {
		limit = n
	}
	turns := d.Conversation.Turns()
	if len(turns) == 0 {
		return "No conversation yet.", nil
	}
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s] You: %s\nAssistant: %s\n", turn.Timestamp.Format("15:04"), turn.Request, turn.Response)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// head splits off the first argument, honouring double quotes around it.
func head(args string) (first, rest string) {
	args = strings.TrimSpace(args)
	if strings.HasPrefix(args, `"`) {
		if end := strings.Index(args[1:], `"`); end >= 0 {
			return args[1 : end+1], strings.TrimSpace(args[end+2:])
		}
	}
	first, rest, _ = strings.Cut(args, " ")
	return first, strings.TrimSpace(rest)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func usage(msg string) error {
	return domain.NewUserError(msg, domain.ErrInvalidInput)
}

// usageError turns a parser error into a user message without the sentinel
// prefix.
func usageError(err error) error {
	msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
	return domain.NewUserError(msg, err)
}
