package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/quack-go/internal/app"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/infrastructure/history"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"QUACK_CONFIG", "GITHUB_TOKEN", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"EMAIL_ADDRESS", "EMAIL_PASSWORD", "QUACK_GITHUB_TOKEN", "QUACK_MODEL",
	} {
		t.Setenv(name, "")
	}
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, NewConfigCommand(&path), "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, err = run(t, NewConfigCommand(&path), "get", "github.api_url")
	require.NoError(t, err)
	assert.Contains(t, out, domain.DefaultGitHubAPIURL)

	out, err = run(t, NewConfigCommand(&path), "diff")
	require.NoError(t, err)
	assert.Equal(t, MsgNoDifferencesFromDefault+"\n", out)

	out, err = run(t, NewConfigCommand(&path), "set", "github.token", "ghp_secret")
	require.NoError(t, err)
	assert.Equal(t, "Updated github.token\n", out)

	out, err = run(t, NewConfigCommand(&path), "get", "github.token")
	require.NoError(t, err)
	assert.NotContains(t, out, "ghp_secret")
	assert.Contains(t, out, "********")

	out, err = run(t, NewConfigCommand(&path), "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "ghp_secret")

	out, err = run(t, NewConfigCommand(&path), "diff")
	require.NoError(t, err)
	assert.Contains(t, out, "Token")

	out, err = run(t, NewConfigCommand(&path), "validate")
	require.NoError(t, err)
	assert.Equal(t, MsgConfigurationValid+"\n", out)

	_, err = run(t, NewConfigCommand(&path), "get", "no.such.key")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err = run(t, NewConfigCommand(&path), "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration reset at "+path)

	out, err = run(t, NewConfigCommand(&path), "diff")
	require.NoError(t, err)
	assert.Equal(t, MsgNoDifferencesFromDefault+"\n", out)
}

func TestHistoryCommand(t *testing.T) {
	store := history.NewFileStore(filepath.Join(t.TempDir(), "history.jsonl"))
	provide := func(context.Context) (*app.Container, error) {
		return &app.Container{HistoryStore: store}, nil
	}

	out, err := run(t, NewHistoryCommand(provide), "list")
	require.NoError(t, err)
	assert.Equal(t, MsgNoHistoryRecorded+"\n", out)

	require.NoError(t, store.Save(context.Background(), domain.TurnRecord{
		Timestamp: time.Now().Add(-time.Minute),
		SessionID: "s1",
		Request:   "create a repo called duck-notes",
		Response:  "Created repository duck-notes",
		Route:     domain.RouteIntent,
		Domain:    domain.DomainGitHub,
		Operation: domain.OpCreateRepo,
		Success:   true,
	}))

	out, err = run(t, NewHistoryCommand(provide), "list", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "intent/"+domain.OpCreateRepo)
	assert.Contains(t, out, "create a repo called duck-notes")
	assert.Contains(t, out, "→ Created repository duck-notes")

	out, err = run(t, NewHistoryCommand(provide), "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "1 requests in 1 sessions, 0 failed")

	out, err = run(t, NewHistoryCommand(provide), "clear")
	require.NoError(t, err)
	assert.Equal(t, MsgHistoryCleared+"\n", out)

	out, err = run(t, NewHistoryCommand(provide), "list")
	require.NoError(t, err)
	assert.Equal(t, MsgNoHistoryRecorded+"\n", out)
}

func TestDisplayDoctorReport(t *testing.T) {
	var out bytes.Buffer
	displayDoctorReport(&out, domain.HealthReport{Checks: []domain.HealthCheck{
		{Name: "Config file", Status: domain.HealthOK, Details: "format version 1"},
		{Name: "GitHub", Status: domain.HealthWarn, Details: "not configured", Hint: "/github setup"},
	}})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[OK] Config file - format version 1", lines[0])
	assert.Equal(t, "[WARN] GitHub - not configured", lines[1])
	assert.Contains(t, lines[2], "hint: /github setup")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "send a message to mom", preview("send  a message\nto mom"))
	long := strings.Repeat("quack ", 20)
	got := preview(long)
	assert.Len(t, []rune(got), maxPreview)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, NewVersionCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "quack version "+Version)
}
