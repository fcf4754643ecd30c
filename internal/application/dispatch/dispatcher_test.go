package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/quack-go/internal/application/command"
	"github.com/doeshing/quack-go/internal/application/dispatch"
	"github.com/doeshing/quack-go/internal/application/handlers"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/testutil"
)

type fakeHandler struct {
	calls  []*domain.Intent
	output string
	err    error
	panics bool
}

func (h *fakeHandler) Handle(_ context.Context, in *domain.Intent) (string, error) {
	h.calls = append(h.calls, in)
	if h.panics {
		panic("handler exploded")
	}
	return h.output, h.err
}

type fakeAnswerer struct {
	requests []string
	images   [][]byte
	answer   string
	err      error
}

func (a *fakeAnswerer) Answer(_ context.Context, request string, image []byte) (string, error) {
	a.requests = append(a.requests, request)
	a.images = append(a.images, image)
	return a.answer, a.err
}

func (a *fakeAnswerer) BackendName() string { return "gemini" }

type fakeScreen struct {
	image []byte
	err   error
}

func (s fakeScreen) Capture(context.Context) ([]byte, error) { return s.image, s.err }

type memoryTurns struct {
	mu      sync.Mutex
	records []domain.TurnRecord
}

func (m *memoryTurns) Save(_ context.Context, rec domain.TurnRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryTurns) Recent(context.Context, int) ([]domain.TurnRecord, error) { return m.records, nil }
func (m *memoryTurns) Stats(context.Context) (domain.UsageStats, error)         { return domain.UsageStats{}, nil }
func (m *memoryTurns) Clear(context.Context) error                              { return nil }

type fixture struct {
	github     *fakeHandler
	messaging  *fakeHandler
	email      *fakeHandler
	file       *fakeHandler
	app        *fakeHandler
	assistant  *fakeAnswerer
	renderer   *testutil.Renderer
	turns      *memoryTurns
	commandRan []string
	dispatcher *dispatch.Dispatcher
}

func newFixture(screen fakeScreen) *fixture {
	f := &fixture{
		github:    &fakeHandler{output: "github done"},
		messaging: &fakeHandler{output: "message sent"},
		email:     &fakeHandler{output: "email sent"},
		file:      &fakeHandler{output: "file done"},
		app:       &fakeHandler{output: "app opened"},
		assistant: &fakeAnswerer{answer: "**Paris**"},
		renderer:  &testutil.Renderer{},
		turns:     &memoryTurns{},
	}
	registry := command.NewRegistry(f.renderer, command.Command{
		Name: "/ocr",
		Run: func(_ context.Context, args string) (string, error) {
			f.commandRan = append(f.commandRan, "/ocr "+args)
			return "screen text", nil
		},
	})
	f.dispatcher = dispatch.New(dispatch.Options{
		Commands: registry,
		Handlers: map[domain.Domain]handlers.Handler{
			domain.DomainGitHub:    f.github,
			domain.DomainMessaging: f.messaging,
			domain.DomainEmail:     f.email,
			domain.DomainFile:      f.file,
			domain.DomainApp:       f.app,
		},
		Assistant: f.assistant,
		Screen:    screen,
		Turns:     f.turns,
		Renderer:  f.renderer,
		SessionID: "session-1",
	})
	return f
}

func TestRouting(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantRoute domain.Route
		wantOp    string
		handler   func(f *fixture) *fakeHandler
	}{
		{
			name:      "github phrase",
			input:     "list my repositories",
			wantRoute: domain.RouteIntent,
			wantOp:    domain.OpListRepos,
			handler:   func(f *fixture) *fakeHandler { return f.github },
		},
		{
			name:      "github wins over messaging",
			input:     `create issue "Send whatsapp message to 5551234567 saying hi" in repo bot`,
			wantRoute: domain.RouteIntent,
			wantOp:    domain.OpCreateIssue,
			handler:   func(f *fixture) *fakeHandler { return f.github },
		},
		{
			name:      "github wins over file",
			input:     `create issue "delete file notes.txt" in repo docs`,
			wantRoute: domain.RouteIntent,
			wantOp:    domain.OpCreateIssue,
			handler:   func(f *fixture) *fakeHandler { return f.github },
		},
		{
			name:      "structured whatsapp",
			input:     "send whatsapp message to 5551234567 saying running late",
			wantRoute: domain.RouteIntent,
			wantOp:    domain.OpSendWhatsApp,
			handler:   func(f *fixture) *fakeHandler { return f.messaging },
		},
		{
			name:      "file operation",
			input:     "delete file notes.txt",
			wantRoute: domain.RouteIntent,
			wantOp:    domain.OpDeleteFile,
			handler:   func(f *fixture) *fakeHandler { return f.file },
		},
		{
			name:      "app launch",
			input:     "open calculator",
			wantRoute: domain.RouteIntent,
			wantOp:    domain.OpLaunchApp,
			handler:   func(f *fixture) *fakeHandler { return f.app },
		},
		{
			name:      "phone number heuristic",
			input:     "send a message to 1234567890 about the meeting",
			wantRoute: domain.RouteHeuristic,
			wantOp:    domain.OpAICompose,
			handler:   func(f *fixture) *fakeHandler { return f.messaging },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(fakeScreen{})

			out := f.dispatcher.Process(context.Background(), dispatch.Input{Text: tt.input})

			require.NoError(t, out.Err)
			assert.Equal(t, tt.wantRoute, out.Route)
			h := tt.handler(f)
			require.Len(t, h.calls, 1)
			assert.Equal(t, tt.wantOp, h.calls[0].Operation)
			assert.Empty(t, f.assistant.requests, "fallback must not run")
			assert.True(t, f.renderer.Contains("print: "+h.output))
		})
	}
}

func TestHeuristicRecipient(t *testing.T) {
	f := newFixture(fakeScreen{})

	out := f.dispatcher.Process(context.Background(), dispatch.Input{Text: "send a message to 1234567890 about the meeting"})

	require.NoError(t, out.Err)
	recipient, _ := out.Intent.Param("recipient")
	instruction, _ := out.Intent.Param("instruction")
	assert.Equal(t, "1234567890", recipient)
	assert.Equal(t, "send a message to 1234567890 about the meeting", instruction)
}

func TestSlashCommands(t *testing.T) {
	t.Run("known command", func(t *testing.T) {
		f := newFixture(fakeScreen{})

		out := f.dispatcher.Process(context.Background(), dispatch.Input{Text: "/OCR now"})

		require.NoError(t, out.Err)
		assert.Equal(t, domain.RouteCommand, out.Route)
		assert.Equal(t, []string{"/ocr now"}, f.commandRan)
		assert.True(t, f.renderer.Contains("print: screen text"))
	})

	t.Run("unknown command shows help and stops", func(t *testing.T) {
		f := newFixture(fakeScreen{})

		out := f.dispatcher.Process(context.Background(), dispatch.Input{Text: "/list my repositories"})

		require.NoError(t, out.Err)
		assert.Equal(t, domain.RouteCommand, out.Route)
		assert.True(t, f.renderer.Contains("Unknown command: /list"))
		assert.True(t, f.renderer.Contains("Available commands"))
		assert.Empty(t, f.github.calls)
		assert.Empty(t, f.assistant.requests)
	})
}

func TestFallback(t *testing.T) {
	t.Run("answers with markdown under the busy indicator", func(t *testing.T) {
		f := newFixture(fakeScreen{})

		out := f.dispatcher.Process(context.Background(), dispatch.Input{Text: "what is the capital of France"})

		require.NoError(t, out.Err)
		assert.Equal(t, domain.RouteFallback, out.Route)
		assert.Equal(t, []string{"what is the capital of France"}, f.assistant.requests)
		assert.Nil(t, f.assistant.images[0])
		assert.True(t, f.renderer.Contains("markdown: **Paris**"))
		assert.Equal(t, 1, f.renderer.BusyStarts)
		assert.Equal(t, 1, f.renderer.BusyStops)
	})

	t.Run("attaches the screenshot when asked", func(t *testing.T) {
		f := newFixture(fakeScreen{image: []byte{0xff, 0xd8}})

		f.dispatcher.Process(context.Background(), dispatch.Input{Text: "what is on my screen", IncludeScreen: true})

		assert.Equal(t, []byte{0xff, 0xd8}, f.assistant.images[0])
	})

	t.Run("screenshot failure is a warning", func(t *testing.T) {
		f := newFixture(fakeScreen{err: errors.New("no display")})

		out := f.dispatcher.Process(context.Background(), dispatch.Input{Text: "what is on my screen", IncludeScreen: true})

		require.NoError(t, out.Err)
		assert.True(t, f.renderer.Contains("warn: Could not capture the screen"))
		assert.Nil(t, f.assistant.images[0])
	})
}

func TestFailuresAreContained(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture)
		input   string
		wantMsg string
	}{
		{
			name: "user error message is shown",
			setup: func(f *fixture) {
				f.github.err = domain.NewUserError("GitHub credentials are missing or were rejected.", domain.ErrAuthMissing)
			},
			input:   "list my repositories",
			wantMsg: "error: GitHub credentials are missing or were rejected.",
		},
		{
			name:    "unexpected error gets the generic message",
			setup:   func(f *fixture) { f.file.err = errors.New("disk on fire") },
			input:   "delete file notes.txt",
			wantMsg: "error: " + dispatch.GenericFailure,
		},
		{
			name:    "panic gets the generic message",
			setup:   func(f *fixture) { f.app.panics = true },
			input:   "open calculator",
			wantMsg: "error: " + dispatch.GenericFailure,
		},
		{
			name:    "completion failure",
			setup:   func(f *fixture) { f.assistant.err = errors.New("backend down") },
			input:   "tell me a joke",
			wantMsg: "error: " + dispatch.GenericFailure,
		},
		{
			name: "cancellation is informational",
			setup: func(f *fixture) {
				f.messaging.err = domain.NewUserError("Message discarded.", domain.ErrCancelled)
			},
			input:   "send a message to 1234567890 about the meeting",
			wantMsg: "info: Message discarded.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(fakeScreen{})
			tt.setup(f)

			out := f.dispatcher.Process(context.Background(), dispatch.Input{Text: tt.input})

			require.Error(t, out.Err)
			assert.True(t, f.renderer.Contains(tt.wantMsg), f.renderer.Output())
			assert.Equal(t, dispatch.StageIdle, f.dispatcher.Stage())
			assert.Equal(t, f.renderer.BusyStarts, f.renderer.BusyStops)

			// The loop keeps going after a failure.
			next := f.dispatcher.Process(context.Background(), dispatch.Input{Text: "/ocr"})
			assert.NoError(t, next.Err)
		})
	}
}

func TestTurnsAreRecorded(t *testing.T) {
	f := newFixture(fakeScreen{})
	f.file.err = errors.New("boom")

	f.dispatcher.Process(context.Background(), dispatch.Input{Text: "list my repositories"})
	f.dispatcher.Process(context.Background(), dispatch.Input{Text: "delete file a.txt"})
	f.dispatcher.Process(context.Background(), dispatch.Input{Text: "hello"})

	require.Len(t, f.turns.records, 3)
	first := f.turns.records[0]
	assert.Equal(t, "session-1", first.SessionID)
	assert.Equal(t, domain.RouteIntent, first.Route)
	assert.Equal(t, domain.DomainGitHub, first.Domain)
	assert.Equal(t, domain.OpListRepos, first.Operation)
	assert.Equal(t, "gemini", first.Model)
	assert.True(t, first.Success)
	assert.False(t, f.turns.records[1].Success)
	assert.Equal(t, domain.RouteFallback, f.turns.records[2].Route)
	assert.Equal(t, "**Paris**", f.turns.records[2].Response)
}

func TestDefaultSessionID(t *testing.T) {
	d := dispatch.New(dispatch.Options{Renderer: &testutil.Renderer{}})
	assert.Len(t, d.SessionID(), 36)
}
