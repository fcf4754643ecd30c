package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/quack-go/internal/app"
	"github.com/doeshing/quack-go/internal/application/dispatch"
)

// NewAskCommand dispatches a single request and exits.
func NewAskCommand(provide ContainerFunc) *cobra.Command {
	var screenshot bool

	cmd := &cobra.Command{
		Use:   "ask <request>",
		Short: "Handle one request without starting the interactive session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := provide(cmd.Context())
			if err != nil {
				return err
			}
			return Ask(cmd.Context(), container, strings.Join(args, " "), screenshot)
		},
	}

	cmd.Flags().BoolVarP(&screenshot, "screenshot", "s", false, "Attach a screenshot when the request reaches the model")
	return cmd
}

// Ask dispatches text once. Slash commands and recognised intents work
// without a model, so a failed connection is only logged.
func Ask(ctx context.Context, container *app.Container, text string, screenshot bool) error {
	if err := container.Connect(ctx); err != nil {
		container.Logger.Warn("no completion backend for ask", map[string]interface{}{"error": err.Error()})
	}
	out := container.Dispatcher.Process(ctx, dispatch.Input{Text: text, IncludeScreen: screenshot})
	if out.Err != nil {
		return ErrReported
	}
	return nil
}
