package handlers_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/quack-go/internal/application/handlers"
	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/testutil"
)

func TestPagePrompt(t *testing.T) {
	page := domain.WebPage{
		URL:         "https://example.com",
		Title:       "Example",
		Description: "A sample page",
		Headings:    []string{"h1", "h2", "h3", "h4", "h5", "h6", "h7"},
		Content:     strings.Repeat("a", 40),
	}

	prompt := handlers.PagePrompt(page, "What is this?", 10)

	assert.Contains(t, prompt, "Title: Example")
	assert.Contains(t, prompt, "Main headings: h1, h2, h3, h4, h5\n")
	assert.Contains(t, prompt, "Content:\n"+strings.Repeat("a", 10)+"\n")
	assert.NotContains(t, prompt, strings.Repeat("a", 11))
	assert.True(t, strings.HasSuffix(prompt, "User question: What is this?"))
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"fenced with language": {"```go\npackage main\n```", "package main\n"},
		"fenced with padding":  {"\n```\nx := 1\n```\n\n", "x := 1\n"},
		"plain text untouched": {"package main\n", "package main\n"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, handlers.StripCodeFence(tt.in))
		})
	}
}

func TestUnifiedDiff(t *testing.T) {
	assert.Empty(t, handlers.UnifiedDiff("a.go", "same\n", "same\n"))

	diff := handlers.UnifiedDiff("a.go", "one\ntwo\n", "one\nthree\n")
	assert.Contains(t, diff, "--- a.go")
	assert.Contains(t, diff, "-two")
	assert.Contains(t, diff, "+three")
}

func TestCodeEdit(t *testing.T) {
	t.Run("apply writes the proposal", func(t *testing.T) {
		files := &memoryFiles{files: map[string]string{"main.go": "package main\n"}}
		tools := &handlers.Tools{
			Files:    files,
			Drafter:  &scriptedDrafter{drafts: []string{"```go\npackage main\n\nfunc main() {}\n```"}},
			Prompter: &testutil.Prompter{Choices: []int{0}},
			Renderer: &testutil.Renderer{},
		}

		out, err := tools.CodeEdit(context.Background(), "main.go", "add a main function")

		require.NoError(t, err)
		assert.Equal(t, "package main\n\nfunc main() {}\n", files.files["main.go"])
		assert.Contains(t, out, "Updated")
	})

	t.Run("new instruction is used for the next draft", func(t *testing.T) {
		files := &memoryFiles{files: map[string]string{"main.go": "package main\n"}}
		drafter := &scriptedDrafter{drafts: []string{"package main // a\n", "package main // b\n"}}
		tools := &handlers.Tools{
			Files:    files,
			Drafter:  drafter,
			Prompter: &testutil.Prompter{Choices: []int{1, 3}, Answers: []string{"use comment b"}},
			Renderer: &testutil.Renderer{},
		}

		out, err := tools.CodeEdit(context.Background(), "main.go", "use comment a")

		require.NoError(t, err)
		require.Len(t, drafter.prompts, 2)
		assert.Contains(t, drafter.prompts[1], "Instruction: use comment b")
		assert.Equal(t, "package main\n", files.files["main.go"])
		assert.Contains(t, out, "unchanged")
	})

	t.Run("identical proposal", func(t *testing.T) {
		files := &memoryFiles{files: map[string]string{"main.go": "package main\n"}}
		tools := &handlers.Tools{
			Files:    files,
			Drafter:  &scriptedDrafter{drafts: []string{"package main\n"}},
			Prompter: &testutil.Prompter{},
			Renderer: &testutil.Renderer{},
		}

		out, err := tools.CodeEdit(context.Background(), "main.go", "nothing")

		require.NoError(t, err)
		assert.Contains(t, out, "no changes")
	})
}

func TestDocumentQuestion(t *testing.T) {
	files := &memoryFiles{files: map[string]string{"notes.md": "Meeting moved to Friday."}}
	drafter := &scriptedDrafter{drafts: []string{"Friday."}}
	tools := &handlers.Tools{Files: files, Drafter: drafter, Renderer: &testutil.Renderer{}}

	out, err := tools.Document(context.Background(), "notes.md", "When is the meeting?")

	require.NoError(t, err)
	assert.Equal(t, "Friday.", out)
	require.Len(t, drafter.prompts, 1)
	assert.Contains(t, drafter.prompts[0], "When is the meeting?")
	assert.Contains(t, drafter.prompts[0], "Meeting moved to Friday.")
}

func TestFormatTable(t *testing.T) {
	got := handlers.FormatTable(domain.Table{
		Header: []string{"name", "qty"},
		Rows:   [][]string{{"apple", "3"}, {"fig", "12"}},
	})

	assert.Equal(t, "name  | qty\n------+----\napple | 3  \nfig   | 12 ", got)
}
