// Package whatsapp sends WhatsApp messages through the Twilio Messages API.
package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/rest"
	"github.com/doeshing/quack-go/internal/ports"
)

// Client implements ports.Messenger.
type Client struct {
	api        *rest.Client
	accountSID string
	from       string
}

// New validates the settings and returns a client.
func New(settings domain.WhatsAppSettings, timeout time.Duration) (*Client, error) {
	if settings.AccountSID == "" || settings.AuthToken == "" || settings.FromNumber == "" {
		return nil, fmt.Errorf("%w: WhatsApp account SID, auth token and sender number are required", domain.ErrAuthMissing)
	}
	apiURL := settings.APIURL
	if apiURL == "" {
		apiURL = domain.DefaultWhatsAppAPIURL
	}
	sid, token := settings.AccountSID, settings.AuthToken
	return &Client{
		api: rest.New("WhatsApp", apiURL, timeout, func(r *http.Request) {
			r.SetBasicAuth(sid, token)
		}),
		accountSID: sid,
		from:       settings.FromNumber,
	}, nil
}

// Send delivers body to recipient.
func (c *Client) Send(ctx context.Context, recipient, body string) error {
	to, err := NormalizeNumber(recipient)
	if err != nil {
		return err
	}
	from, err := NormalizeNumber(c.from)
	if err != nil {
		return fmt.Errorf("sender number: %w", err)
	}
	values := url.Values{
		"From": {"whatsapp:" + from},
		"To":   {"whatsapp:" + to},
		"Body": {body},
	}
	var resp struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	path := "/Accounts/" + url.PathEscape(c.accountSID) + "/Messages.json"
	return c.api.Form(ctx, path, values, &resp)
}

// NormalizeNumber strips formatting and returns an E.164 number. Numbers
// without a leading "+" are assumed to include the country code.
func NormalizeNumber(raw string) (string, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "whatsapp:")
	var b strings.Builder
	for i, r := range raw {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", fmt.Errorf("%w: %q is not a phone number", domain.ErrInvalidInput, raw)
		}
	}
	digits := b.String()
	if len(digits) < 10 || len(digits) > 15 {
		return "", fmt.Errorf("%w: %q is not a phone number", domain.ErrInvalidInput, raw)
	}
	return "+" + digits, nil
}

var _ ports.Messenger = (*Client)(nil)
