// Package rest is the small JSON-over-HTTP client shared by the GitHub,
// WhatsApp and calendar integrations. It maps HTTP status codes onto the
// domain error kinds.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doeshing/quack-go/internal/domain"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client sends requests relative to BaseURL.
type Client struct {
	Name    string
	BaseURL string
	HTTP    *http.Client
	// Authorize decorates every request, typically with a credential header.
	Authorize func(*http.Request)
}

// New returns a client with a bounded HTTP timeout.
func New(name, baseURL string, timeout time.Duration, authorize func(*http.Request)) *Client {
	if timeout <= 0 {
		timeout = domain.DefaultIntegrationTimeout
	}
	return &Client{
		Name:      name,
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		HTTP:      &http.Client{Timeout: timeout},
		Authorize: authorize,
	}
}

// JSON sends body (when non-nil) as JSON and decodes the response into out
// (when non-nil).
func (c *Client) JSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.Name, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.Name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// Form posts url-encoded values and decodes the JSON response into out.
func (c *Client) Form(ctx context.Context, path string, values url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.Name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.Authorize != nil {
		c.Authorize(req)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return c.transportError(req.Context(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.NewCollaboratorError(c.Name, KindForStatus(resp.StatusCode, string(detail)),
			fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, strings.TrimSpace(string(detail))))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewCollaboratorError(c.Name, domain.ErrUnavailable, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) transportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return domain.NewCollaboratorError(c.Name, domain.ErrCancelled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewCollaboratorError(c.Name, domain.ErrTimeout, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewCollaboratorError(c.Name, domain.ErrTimeout, err)
	}
	return domain.NewCollaboratorError(c.Name, domain.ErrUnavailable, err)
}

// KindForStatus maps an HTTP status to a domain error kind.
func KindForStatus(status int, detail string) error {
	switch {
	case status == http.StatusUnauthorized:
		return domain.ErrAuthMissing
	case status == http.StatusForbidden:
		// GitHub reports exhausted rate limits as 403.
		if strings.Contains(strings.ToLower(detail), "rate limit") {
			return domain.ErrRateLimited
		}
		return domain.ErrAuthMissing
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusTooManyRequests:
		if strings.Contains(strings.ToLower(detail), "quota") {
			return domain.ErrQuotaExceeded
		}
		return domain.ErrRateLimited
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return domain.ErrInvalidInput
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return domain.ErrTimeout
	default:
		return domain.ErrUnavailable
	}
}

// PathEscape escapes each segment of a slash-separated path such as
// "owner/repo".
func PathEscape(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
