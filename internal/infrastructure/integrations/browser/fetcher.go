// Package browser renders pages in headless Chrome with rod and extracts
// their readable text with x/net/html.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Fetcher implements ports.PageFetcher. Each Fetch launches a fresh browser
// and tears it down afterwards.
type Fetcher struct {
	Headless bool
	Timeout  time.Duration
}

func NewFetcher(headless bool, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = domain.DefaultIntegrationTimeout
	}
	return &Fetcher{Headless: headless, Timeout: timeout}
}

// Fetch loads url and returns its extracted content.
func (f *Fetcher) Fetch(ctx context.Context, url string) (domain.WebPage, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	l := launcher.New().Headless(f.Headless)
	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return domain.WebPage{}, domain.NewCollaboratorError("browser", domain.ErrUnavailable, fmt.Errorf("launch browser: %w", err))
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return domain.WebPage{}, domain.NewCollaboratorError("browser", domain.ErrUnavailable, fmt.Errorf("connect: %w", err))
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return domain.WebPage{}, pageError(ctx, "open "+url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return domain.WebPage{}, pageError(ctx, "load "+url, err)
	}
	raw, err := page.HTML()
	if err != nil {
		return domain.WebPage{}, pageError(ctx, "read "+url, err)
	}
	return Extract(url, raw)
}

func pageError(ctx context.Context, action string, err error) error {
	kind := domain.ErrUnavailable
	if ctx.Err() == context.DeadlineExceeded {
		kind = domain.ErrTimeout
	}
	return domain.NewCollaboratorError("browser", kind, fmt.Errorf("%s: %w", action, err))
}

var _ ports.PageFetcher = (*Fetcher)(nil)
