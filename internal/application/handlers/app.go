package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// AppHandler launches and lists desktop applications.
type AppHandler struct {
	Launcher ports.AppLauncher
	Prompter ports.Prompter
	Renderer ports.Renderer
	Timeout  time.Duration
}

func (h *AppHandler) Handle(ctx context.Context, in *domain.Intent) (string, error) {
	switch in.Operation {
	case domain.OpLaunchApp:
		name, err := needParam(h.Prompter, in, "app_name", "Which application?")
		if err != nil {
			return "", err
		}
		if _, err := timed(ctx, h.Timeout, h.Renderer, "Launching "+name+"...", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, h.Launcher.Launch(ctx, name)
		}); err != nil {
			return "", describe("the application launcher", "open "+name, err, "")
		}
		return "Opened " + name + ".", nil

	case domain.OpListApps:
		apps, err := timed(ctx, h.Timeout, h.Renderer, "Looking for applications...", func(ctx context.Context) ([]string, error) {
			return h.Launcher.ListInstalled(ctx)
		})
		if err != nil {
			return "", describe("the application launcher", "list applications", err, "")
		}
		if len(apps) == 0 {
			return "No applications found.", nil
		}
		return fmt.Sprintf("Installed applications (%d):\n  %s", len(apps), strings.Join(apps, "\n  ")), nil
	}
	return "", unsupported(in)
}
