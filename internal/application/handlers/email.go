package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

const emailSetupHint = "/email setup"

// EmailHandler executes email intents.
type EmailHandler struct {
	Connect  func() (ports.Mailer, error)
	Compose  *ComposeFlow
	Settings ConfigUpdater
	Prompter ports.Prompter
	Renderer ports.Renderer
	Timeout  time.Duration
}

func (h *EmailHandler) Handle(ctx context.Context, in *domain.Intent) (string, error) {
	switch in.Operation {
	case domain.OpSetupEmail:
		return h.setup(ctx)
	case domain.OpSendEmail:
		return h.send(ctx, in)
	case domain.OpAICompose:
		return h.compose(ctx, in)
	}
	return "", unsupported(in)
}

func (h *EmailHandler) send(ctx context.Context, in *domain.Intent) (string, error) {
	mailer, err := h.Connect()
	if err != nil {
		return "", describe("Email", "connect", err, emailSetupHint)
	}
	to, err := needParam(h.Prompter, in, "to", "Recipient email address")
	if err != nil {
		return "", err
	}
	subject, err := needParam(h.Prompter, in, "subject", "Subject")
	if err != nil {
		return "", err
	}
	body, err := needParam(h.Prompter, in, "body", "Message body")
	if err != nil {
		return "", err
	}
	msg := domain.EmailMessage{To: to, Subject: subject, Body: body}
	if _, err := timed(ctx, h.Timeout, h.Renderer, "Sending email...", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, mailer.Send(ctx, msg)
	}); err != nil {
		return "", describe("Email", "send the email to "+to, err, emailSetupHint)
	}
	return "Email sent to " + to + ".", nil
}

func (h *EmailHandler) compose(ctx context.Context, in *domain.Intent) (string, error) {
	mailer, err := h.Connect()
	if err != nil {
		return "", describe("Email", "connect", err, emailSetupHint)
	}
	result, err := h.Compose.Run(ctx, ComposeRequest{
		Intent:         in,
		RecipientKey:   "to",
		InstructionKey: "instruction",
		Kind:           "email",
		Prompt:         emailPrompt,
		Send: func(ctx context.Context, to, draft string) error {
			subject, body := SplitSubject(draft)
			ctx, cancel := context.WithTimeout(ctx, integrationTimeout(h.Timeout))
			defer cancel()
			return mailer.Send(ctx, domain.EmailMessage{To: to, Subject: subject, Body: body})
		},
	})
	if err != nil {
		return "", describe("Email", "send the email", err, emailSetupHint)
	}
	if result.Stage != StageSent {
		return "Email discarded.", nil
	}
	return "Email sent to " + result.Recipient + ".", nil
}

func (h *EmailHandler) setup(ctx context.Context) (string, error) {
	address, err := h.Prompter.Ask("Email address")
	if err != nil {
		return "", err
	}
	password, err := h.Prompter.AskSecret("Password or app password")
	if err != nil {
		return "", err
	}
	host, err := h.Prompter.Ask("SMTP host (e.g. smtp.gmail.com)")
	if err != nil {
		return "", err
	}
	portText, err := h.Prompter.Ask(fmt.Sprintf("SMTP port (default %d)", domain.DefaultSMTPPort))
	if err != nil {
		return "", err
	}
	if address == "" || password == "" || host == "" {
		return "", domain.NewUserError("Address, password and host are required; email settings unchanged.", domain.ErrInvalidInput)
	}
	port := domain.DefaultSMTPPort
	if portText != "" {
		port, err = strconv.Atoi(portText)
		if err != nil || port <= 0 {
			return "", domain.NewUserError(fmt.Sprintf("%q is not a valid port.", portText), domain.ErrInvalidInput)
		}
	}
	if err := h.Settings.Update(ctx, func(c *domain.Config) error {
		c.Email = domain.EmailSettings{Address: address, Password: password, SMTPHost: host, SMTPPort: port}
		return nil
	}); err != nil {
		return "", fmt.Errorf("save email settings: %w", err)
	}
	return "Email configured for " + address + ".", nil
}

func emailPrompt(to, instruction string) string {
	return fmt.Sprintf("Write an email to %s.\n"+
		"Instructions: %s\n"+
		"Start with a line of the form \"Subject: <subject>\", then a blank line, then the body. "+
		"Do not add any other commentary.", to, instruction)
}

// SplitSubject separates a leading "Subject:" line from a drafted email.
func SplitSubject(draft string) (subject, body string) {
	draft = strings.TrimSpace(draft)
	first, rest, _ := strings.Cut(draft, "\n")
	if s, ok := cutPrefixFold(strings.TrimSpace(first), "subject:"); ok {
		return strings.TrimSpace(s), strings.TrimSpace(rest)
	}
	return "(no subject)", draft
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
