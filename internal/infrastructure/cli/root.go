package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/doeshing/quack-go/internal/app"
	"github.com/doeshing/quack-go/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	In      io.Reader
	Out     io.Writer
}

// NewRootCmd wires the cobra root command. The returned cleanup releases
// the container if one was built.
func NewRootCmd(opts Options) (*cobra.Command, func()) {
	verbose := opts.Verbose
	var (
		configPath string
		once       sync.Once
		container  *app.Container
		buildErr   error
	)
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	renderer := NewRenderer(opts.Out)
	prompter := NewPrompter(opts.In, opts.Out)

	provide := func(ctx context.Context) (*app.Container, error) {
		once.Do(func() {
			container, buildErr = app.BuildContainer(ctx, app.Options{
				Verbose:    verbose,
				ConfigPath: configPath,
				Prompter:   prompter,
				Renderer:   renderer,
			})
		})
		return container, buildErr
	}
	cleanup := func() {
		if container != nil {
			_ = container.Close()
		}
	}

	root := &cobra.Command{
		Use:   "quack [request]",
		Short: "Quack - terminal AI assistant",
		Long: "Quack answers questions with Gemini or OpenAI models and acts on requests " +
			"for files, apps, GitHub, email, WhatsApp, Google Calendar and spreadsheets.\n" +
			"Run without arguments for the interactive session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := provide(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) > 0 {
				return commands.Ask(cmd.Context(), c, strings.Join(args, " "), false)
			}
			repl := &REPL{
				Dispatcher: c.Dispatcher,
				Speech:     c.Speech,
				Menu:       c.Menu,
				Prompter:   prompter,
				Renderer:   renderer,
				Connect:    c.Connect,
				Warnings:   c.Warnings,
			}
			return repl.Run(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", verbose, "Write debug entries to the log")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default ~/.quack/config.yaml)")

	root.AddCommand(commands.NewAskCommand(provide))
	root.AddCommand(commands.NewConfigCommand(&configPath))
	root.AddCommand(commands.NewHistoryCommand(provide))
	root.AddCommand(commands.NewDoctorCommand(provide))
	root.AddCommand(commands.NewVersionCommand())
	return root, cleanup
}
