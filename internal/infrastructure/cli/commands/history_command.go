package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/quack-go/internal/application/command"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// maxPreview bounds request and response previews in `history list`.
const maxPreview = 60

// NewHistoryCommand creates the history command with all subcommands.
func NewHistoryCommand(provide ContainerFunc) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the persistent request log",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd.Context(), provide)
			if err != nil {
				return err
			}
			return listHistoryEntries(cmd.Context(), cmd.OutOrStdout(), store, limit)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")

	historyCmd.AddCommand(
		listCmd,
		&cobra.Command{
			Use:   "stats",
			Short: "Show request counts by route and operation",
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := historyStore(cmd.Context(), provide)
				if err != nil {
					return err
				}
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to load stats: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), command.FormatStats(stats))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every recorded request",
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := historyStore(cmd.Context(), provide)
				if err != nil {
					return err
				}
				if err := store.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear history: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), MsgHistoryCleared)
				return nil
			},
		},
	)

	return historyCmd
}

func historyStore(ctx context.Context, provide ContainerFunc) (ports.HistoryRepository, error) {
	container, err := provide(ctx)
	if err != nil {
		return nil, err
	}
	return container.HistoryStore, nil
}

func listHistoryEntries(ctx context.Context, out io.Writer, store ports.HistoryRepository, limit int) error {
	records, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}
	for _, r := range records {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		route := string(r.Route)
		if r.Operation != "" {
			route += "/" + r.Operation
		}
		fmt.Fprintf(out, "%-14s %-6s %-28s %s\n", humanize.Time(r.Timestamp), status, route, preview(r.Request))
		if r.Response != "" {
			fmt.Fprintf(out, "%51s%s\n", "→ ", preview(r.Response))
		}
	}
	return nil
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > maxPreview {
		return string(runes[:maxPreview-3]) + "..."
	}
	return s
}
