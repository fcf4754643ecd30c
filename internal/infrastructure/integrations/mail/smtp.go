// Package mail sends email over SMTP with STARTTLS and PLAIN auth.
package mail

import (
	"context"
	"fmt"
	"mime"
	"net"
	netmail "net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer implements ports.Mailer.
type Mailer struct {
	settings domain.EmailSettings
	send     sendFunc
	now      func() time.Time
}

// New validates the settings and returns a mailer.
func New(settings domain.EmailSettings) (*Mailer, error) {
	if settings.Address == "" || settings.Password == "" {
		return nil, fmt.Errorf("%w: email address and app password are required", domain.ErrAuthMissing)
	}
	if settings.SMTPHost == "" {
		return nil, fmt.Errorf("%w: smtp_host is not configured", domain.ErrInvalidInput)
	}
	if settings.SMTPPort <= 0 {
		settings.SMTPPort = domain.DefaultSMTPPort
	}
	return &Mailer{settings: settings, send: smtp.SendMail, now: time.Now}, nil
}

// Send delivers msg. smtp.SendMail does not take a context, so the call runs
// in a goroutine and Send returns early when ctx is done.
func (m *Mailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	to, err := netmail.ParseAddress(strings.TrimSpace(msg.To))
	if err != nil {
		return fmt.Errorf("%w: %q is not an email address", domain.ErrInvalidInput, msg.To)
	}
	raw := m.compose(to.Address, msg)
	addr := net.JoinHostPort(m.settings.SMTPHost, strconv.Itoa(m.settings.SMTPPort))
	auth := smtp.PlainAuth("", m.settings.Address, m.settings.Password, m.settings.SMTPHost)

	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.settings.Address, []string{to.Address}, raw)
	}()
	select {
	case err := <-done:
		if err != nil {
			return domain.NewCollaboratorError("email", classify(err), err)
		}
		return nil
	case <-ctx.Done():
		kind := domain.ErrTimeout
		if ctx.Err() == context.Canceled {
			kind = domain.ErrCancelled
		}
		return domain.NewCollaboratorError("email", kind, ctx.Err())
	}
}

func (m *Mailer) compose(to string, msg domain.EmailMessage) []byte {
	domainPart := "localhost"
	if at := strings.LastIndex(m.settings.Address, "@"); at >= 0 {
		domainPart = m.settings.Address[at+1:]
	}
	var b strings.Builder
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }
	header("From", m.settings.Address)
	header("To", to)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", m.now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainPart))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	b.WriteString("\r\n")
	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// classify maps SMTP reply codes onto domain kinds. 535 is a rejected login.
func classify(err error) error {
	text := err.Error()
	switch {
	case strings.HasPrefix(text, "535"), strings.Contains(text, "Username and Password not accepted"):
		return domain.ErrAuthMissing
	case strings.HasPrefix(text, "421"), strings.HasPrefix(text, "450"), strings.HasPrefix(text, "452"):
		return domain.ErrRateLimited
	case strings.HasPrefix(text, "550"), strings.HasPrefix(text, "553"):
		return domain.ErrInvalidInput
	default:
		return domain.ErrUnavailable
	}
}

var _ ports.Mailer = (*Mailer)(nil)
