package cli

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/quack-go/internal/application/dispatch"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/testutil"
)

type recordingProcessor struct {
	inputs []dispatch.Input
}

func (p *recordingProcessor) Process(_ context.Context, in dispatch.Input) dispatch.Outcome {
	p.inputs = append(p.inputs, in)
	return dispatch.Outcome{}
}

type stubListener struct {
	available bool
	text      string
	err       error
}

func (l stubListener) Available() bool { return l.available }

func (l stubListener) Listen(context.Context) (string, error) { return l.text, l.err }

type countingMenu struct{ runs int }

func (m *countingMenu) Run(context.Context) error {
	m.runs++
	return nil
}

func newTestREPL(prompter *testutil.Prompter, speech Listener) (*REPL, *recordingProcessor, *countingMenu, *testutil.Renderer) {
	proc := &recordingProcessor{}
	menu := &countingMenu{}
	renderer := &testutil.Renderer{}
	return &REPL{
		Dispatcher: proc,
		Speech:     speech,
		Menu:       menu,
		Prompter:   prompter,
		Renderer:   renderer,
		interrupt:  context.WithCancel,
	}, proc, menu, renderer
}

func TestREPLTypedInput(t *testing.T) {
	prompter := &testutil.Prompter{
		Answers:  []string{"t", "what is on my screen?", "T", "/help", "t", "", "q"},
		Confirms: []bool{true},
	}
	repl, proc, _, renderer := newTestREPL(prompter, nil)

	require.NoError(t, repl.Run(context.Background()))

	assert.Equal(t, []dispatch.Input{
		{Text: "what is on my screen?", IncludeScreen: true},
		{Text: "/help"},
	}, proc.inputs)
	assert.Len(t, prompter.Confirms, 0, "screenshot question asked once, not for slash commands")
	assert.True(t, renderer.Contains("Goodbye!"))
}

func TestREPLSpeak(t *testing.T) {
	tests := []struct {
		name     string
		speech   Listener
		want     []dispatch.Input
		rendered string
	}{
		{
			name:     "transcript is dispatched",
			speech:   stubListener{available: true, text: " open notepad "},
			want:     []dispatch.Input{{Text: "open notepad", IncludeScreen: true}},
			rendered: "You said: open notepad",
		},
		{
			name:     "silence",
			speech:   stubListener{available: true},
			rendered: "didn't catch that",
		},
		{
			name:     "not configured",
			speech:   stubListener{},
			rendered: "Speech input is not configured",
		},
		{
			name:     "listener failure",
			speech:   stubListener{available: true, err: fmt.Errorf("microphone busy")},
			rendered: "speech input: microphone busy",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompter := &testutil.Prompter{Answers: []string{"s", "q"}}
			repl, proc, _, renderer := newTestREPL(prompter, tt.speech)

			require.NoError(t, repl.Run(context.Background()))
			assert.Equal(t, tt.want, proc.inputs)
			assert.True(t, renderer.Contains(tt.rendered), renderer.Output())
			assert.Equal(t, renderer.BusyStarts, renderer.BusyStops)
		})
	}
}

func TestREPLConfigureAndUnknownChoice(t *testing.T) {
	prompter := &testutil.Prompter{Answers: []string{"x", "c", "quit"}}
	repl, proc, menu, renderer := newTestREPL(prompter, nil)

	require.NoError(t, repl.Run(context.Background()))
	assert.Equal(t, 1, menu.runs)
	assert.Empty(t, proc.inputs)
	assert.True(t, renderer.Contains("Please choose S, T, C or Q."))
}

func TestREPLFatalStartup(t *testing.T) {
	prompter := &testutil.Prompter{}
	repl, _, _, _ := newTestREPL(prompter, nil)
	repl.Connect = func(context.Context) error {
		return fmt.Errorf("%w: no API key for Gemini", domain.ErrFatalStartup)
	}

	err := repl.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrFatalStartup)
	assert.Empty(t, prompter.Asked)
}

func TestREPLShowsWarnings(t *testing.T) {
	prompter := &testutil.Prompter{Answers: []string{"q"}}
	repl, _, _, renderer := newTestREPL(prompter, nil)
	repl.Warnings = []string{"history database unavailable"}
	repl.Connect = func(context.Context) error { return nil }

	require.NoError(t, repl.Run(context.Background()))
	assert.True(t, renderer.Contains("warn: history database unavailable"))
	assert.True(t, renderer.Contains("Quack is ready"))
}
