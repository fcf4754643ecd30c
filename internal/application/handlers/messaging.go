package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

const whatsappSetupHint = "/whatsapp setup"

// MessagingHandler executes WhatsApp intents.
type MessagingHandler struct {
	Connect  func() (ports.Messenger, error)
	Compose  *ComposeFlow
	Settings ConfigUpdater
	Prompter ports.Prompter
	Renderer ports.Renderer
	Timeout  time.Duration
}

func (h *MessagingHandler) Handle(ctx context.Context, in *domain.Intent) (string, error) {
	switch in.Operation {
	case domain.OpSetupWhatsApp:
		return h.setup(ctx)
	case domain.OpSendWhatsApp:
		return h.send(ctx, in)
	case domain.OpAICompose:
		return h.compose(ctx, in)
	}
	return "", unsupported(in)
}

func (h *MessagingHandler) send(ctx context.Context, in *domain.Intent) (string, error) {
	messenger, err := h.Connect()
	if err != nil {
		return "", describe("WhatsApp", "connect", err, whatsappSetupHint)
	}
	recipient, err := needParam(h.Prompter, in, "recipient", "Recipient phone number (with country code)")
	if err != nil {
		return "", err
	}
	message, err := needParam(h.Prompter, in, "message", "Message")
	if err != nil {
		return "", err
	}
	if _, err := timed(ctx, h.Timeout, h.Renderer, "Sending WhatsApp message...", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, messenger.Send(ctx, recipient, message)
	}); err != nil {
		return "", describe("WhatsApp", "send the message to "+recipient, err, whatsappSetupHint)
	}
	return "WhatsApp message sent to " + recipient + ".", nil
}

func (h *MessagingHandler) compose(ctx context.Context, in *domain.Intent) (string, error) {
	messenger, err := h.Connect()
	if err != nil {
		return "", describe("WhatsApp", "connect", err, whatsappSetupHint)
	}
	result, err := h.Compose.Run(ctx, ComposeRequest{
		Intent:         in,
		RecipientKey:   "recipient",
		InstructionKey: "instruction",
		Kind:           "WhatsApp message",
		Prompt:         whatsappPrompt,
		Send: func(ctx context.Context, recipient, body string) error {
			ctx, cancel := context.WithTimeout(ctx, integrationTimeout(h.Timeout))
			defer cancel()
			return messenger.Send(ctx, recipient, body)
		},
	})
	if err != nil {
		return "", describe("WhatsApp", "send the message", err, whatsappSetupHint)
	}
	if result.Stage != StageSent {
		return "Message discarded.", nil
	}
	return "WhatsApp message sent to " + result.Recipient + ".", nil
}

func (h *MessagingHandler) setup(ctx context.Context) (string, error) {
	sid, err := h.Prompter.Ask("Twilio account SID")
	if err != nil {
		return "", err
	}
	token, err := h.Prompter.AskSecret("Twilio auth token")
	if err != nil {
		return "", err
	}
	from, err := h.Prompter.Ask("WhatsApp sender number (e.g. +14155238886)")
	if err != nil {
		return "", err
	}
	if sid == "" || token == "" || from == "" {
		return "", domain.NewUserError("All three values are required; WhatsApp settings unchanged.", domain.ErrInvalidInput)
	}
	if err := h.Settings.Update(ctx, func(c *domain.Config) error {
		c.WhatsApp.AccountSID = sid
		c.WhatsApp.AuthToken = token
		c.WhatsApp.FromNumber = from
		return nil
	}); err != nil {
		return "", fmt.Errorf("save whatsapp settings: %w", err)
	}
	return "WhatsApp messaging configured.", nil
}

func whatsappPrompt(recipient, instruction string) string {
	return fmt.Sprintf("Write a short, friendly WhatsApp message to %s.\n"+
		"Instructions: %s\n"+
		"Reply with the message text only, without quotes or a preamble.", recipient, instruction)
}

func integrationTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return domain.DefaultIntegrationTimeout
	}
	return d
}
