package command_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/quack-go/internal/application/command"
	"github.com/doeshing/quack-go/internal/application/conversation"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/testutil"
)

func echo(name string, got *string) command.Command {
	return command.Command{
		Name:    name,
		Summary: "echo " + name,
		Run: func(_ context.Context, args string) (string, error) {
			*got = args
			return "ran " + name, nil
		},
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		text     string
		wantName string
		wantArgs string
	}{
		{"/help", "/help", ""},
		{"/GitHub  repos", "/github", "repos"},
		{`/calendar add "Team  Sync" "9am"`, "/calendar", `add "Team  Sync" "9am"`},
		{"  /ocr\t", "/ocr", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, args := command.Split(tt.text)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestDispatch(t *testing.T) {
	t.Run("known command gets verbatim arguments", func(t *testing.T) {
		var got string
		reg := command.NewRegistry(&testutil.Renderer{}, echo("/calendar", &got))

		res, err := reg.Dispatch(context.Background(), `/CALENDAR add "Team  Sync" "tomorrow at 3pm"`)

		require.NoError(t, err)
		assert.True(t, res.Handled)
		assert.Equal(t, "/calendar", res.Command)
		assert.Equal(t, "ran /calendar", res.Output)
		assert.Equal(t, `add "Team  Sync" "tomorrow at 3pm"`, got)
	})

	t.Run("unknown command is handled with help", func(t *testing.T) {
		renderer := &testutil.Renderer{}
		var got string
		reg := command.NewRegistry(renderer, echo("/ocr", &got))

		res, err := reg.Dispatch(context.Background(), "/unknown please")

		require.NoError(t, err)
		assert.True(t, res.Handled)
		assert.Equal(t, "/help", res.Command)
		assert.Contains(t, res.Output, "/ocr")
		assert.True(t, renderer.Contains("Unknown command: /unknown"))
		assert.Empty(t, got)
	})

	t.Run("plain text is not handled", func(t *testing.T) {
		reg := command.NewRegistry(&testutil.Renderer{})

		res, err := reg.Dispatch(context.Background(), "list my repositories")

		require.NoError(t, err)
		assert.False(t, res.Handled)
	})

	t.Run("command errors are returned", func(t *testing.T) {
		boom := errors.New("boom")
		reg := command.NewRegistry(&testutil.Renderer{}, command.Command{
			Name: "/fail",
			Run:  func(context.Context, string) (string, error) { return "", boom },
		})

		res, err := reg.Dispatch(context.Background(), "/fail")

		assert.True(t, res.Handled)
		assert.ErrorIs(t, err, boom)
	})
}

func TestHelpTopic(t *testing.T) {
	var got string
	cmd := echo("/document", &got)
	cmd.Usage = "/document <path> [question]"
	reg := command.NewRegistry(&testutil.Renderer{}, cmd)

	res, err := reg.Dispatch(context.Background(), "/help document")

	require.NoError(t, err)
	assert.Contains(t, res.Output, "Usage: /document <path> [question]")
}

func TestBuiltinsRegisterEveryCommand(t *testing.T) {
	reg := command.NewRegistry(&testutil.Renderer{}, command.Builtins(command.Deps{})...)

	for _, name := range []string{
		"/help", "/calendar", "/document", "/ocr", "/github", "/email", "/whatsapp",
		"/excel", "/code-edit", "/stats", "/browse", "/history", "/clear",
	} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, "missing %s", name)
	}
}

// recordingHandler captures the intent it was given.
type recordingHandler struct {
	got *domain.Intent
}

func (h *recordingHandler) Handle(_ context.Context, in *domain.Intent) (string, error) {
	h.got = in
	return "ok", nil
}

func TestBuiltinRouting(t *testing.T) {
	tests := []struct {
		input      string
		wantDomain domain.Domain
		wantOp     string
		wantParams domain.Params
	}{
		{"/calendar add \"Team Sync\" \"tomorrow at 3pm\"", domain.DomainCalendar, domain.OpCalendarAdd,
			domain.Params{"summary": "Team Sync", "start": "tomorrow at 3pm"}},
		{"/calendar list 3", domain.DomainCalendar, domain.OpCalendarList, domain.Params{"max_results": 3}},
		{"/github repos", domain.DomainGitHub, domain.OpListRepos, domain.Params{}},
		{"/github issues octo/bot", domain.DomainGitHub, domain.OpListIssues, domain.Params{"repo": "octo/bot"}},
		{"/github setup", domain.DomainGitHub, domain.OpSetupGitHub, domain.Params{}},
		{"/email compose ana@example.com thank her for the review", domain.DomainEmail, domain.OpAICompose,
			domain.Params{"to": "ana@example.com", "instruction": "thank her for the review"}},
		{"/email send ana@example.com", domain.DomainEmail, domain.OpSendEmail, domain.Params{"to": "ana@example.com"}},
		{"/whatsapp send +15551234567 running late", domain.DomainMessaging, domain.OpSendWhatsApp,
			domain.Params{"recipient": "+15551234567", "message": "running late"}},
		{"/whatsapp compose 5551234567 wish happy birthday", domain.DomainMessaging, domain.OpAICompose,
			domain.Params{"recipient": "5551234567", "instruction": "wish happy birthday"}},
		{"/excel show \"Q3 report.xlsx\"", domain.DomainSpreadsheet, domain.OpShowSheet,
			domain.Params{"file_name": "Q3 report.xlsx"}},
		{"/excel list data", domain.DomainSpreadsheet, domain.OpListFiles, domain.Params{"directory": "data"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h := &recordingHandler{}
			deps := command.Deps{GitHub: h, Email: h, Messaging: h, Calendar: h, Spreadsheet: h}
			reg := command.NewRegistry(&testutil.Renderer{}, command.Builtins(deps)...)

			_, err := reg.Dispatch(context.Background(), tt.input)

			require.NoError(t, err)
			require.NotNil(t, h.got)
			assert.Equal(t, tt.wantDomain, h.got.Domain)
			assert.Equal(t, tt.wantOp, h.got.Operation)
			assert.Equal(t, tt.wantParams, h.got.Parameters)
		})
	}
}

func TestCalendarUsageError(t *testing.T) {
	h := &recordingHandler{}
	reg := command.NewRegistry(&testutil.Renderer{}, command.Builtins(command.Deps{Calendar: h})...)

	_, err := reg.Dispatch(context.Background(), `/calendar add "Only title"`)

	var userErr *domain.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "Format: /calendar add")
	assert.Nil(t, h.got)
}

func TestHistoryAndClear(t *testing.T) {
	conv := conversation.NewHistory(10, 5)
	conv.Add("hello", "hi there")
	conv.Add("how are you", "fine")
	reg := command.NewRegistry(&testutil.Renderer{}, command.Builtins(command.Deps{Conversation: conv})...)

	res, err := reg.Dispatch(context.Background(), "/history 1")
	require.NoError(t, err)
	assert.Contains(t, res.Output, "You: how are you")
	assert.NotContains(t, res.Output, "hello")

	_, err = reg.Dispatch(context.Background(), "/clear")
	require.NoError(t, err)
	assert.Equal(t, 0, conv.Len())
}

func TestFormatStats(t *testing.T) {
	assert.Equal(t, "No requests recorded yet.", command.FormatStats(domain.UsageStats{}))

	now := time.Now()
	out := command.FormatStats(domain.UsageStats{
		Total:    1200,
		Failures: 3,
		Sessions: 4,
		First:    now.Add(-48 * time.Hour),
		Last:     now,
		ByRoute: []domain.RouteCount{
			{Route: domain.RouteIntent, Domain: domain.DomainGitHub, Operation: domain.OpListRepos, Count: 7},
			{Route: domain.RouteFallback, Domain: domain.DomainNone, Count: 1193},
		},
	})
	assert.Contains(t, out, "1,200 requests in 4 sessions, 3 failed")
	assert.Contains(t, out, "intent github/list_repos")
	assert.Contains(t, out, "fallback ")
}
