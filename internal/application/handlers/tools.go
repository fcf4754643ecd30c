package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Describer answers an instruction about an image.
type Describer interface {
	Describe(ctx context.Context, instruction string, image []byte) (string, error)
}

// Tools backs the AI-assisted slash commands: /document, /ocr, /code-edit and
// /browse. None of them touch the conversation history.
type Tools struct {
	Files     ports.FileManager
	Guard     ports.PathGuard
	Sheets    ports.Spreadsheet
	Screen    ports.ScreenshotProvider
	Pages     ports.PageFetcher
	Drafter   Drafter
	Describer Describer
	Prompter  ports.Prompter
	Renderer  ports.Renderer
	Logger    ports.Logger
	// MaxPageChars bounds the page text sent with /browse.
	MaxPageChars int
	MaxAttempts  int
}

// Document summarises a text or spreadsheet file, or answers question about it.
func (t *Tools) Document(ctx context.Context, path, question string) (string, error) {
	if path == "" {
		return "", domain.NewUserError("Usage: /document <path> [question]", domain.ErrInvalidInput)
	}
	content, err := t.readDocument(path)
	if err != nil {
		return "", describe("the file system", "read "+path, err, "")
	}
	if strings.TrimSpace(content) == "" {
		return filepath.Base(path) + " is empty.", nil
	}
	truncated := false
	if runes := []rune(content); len(runes) > domain.MaxDocumentChars {
		content = string(runes[:domain.MaxDocumentChars])
		truncated = true
	}

	task := "Summarise the following document. Lead with one sentence on what it is, then list the key points."
	if question != "" {
		task = "Answer this question using only the document below: " + question
	}
	prompt := fmt.Sprintf("%s\n\nDocument: %s\n-----\n%s\n-----", task, filepath.Base(path), content)
	if truncated {
		prompt += "\n(The document was truncated.)"
	}
	return busy(t.Renderer, "Reading "+filepath.Base(path)+"...", func() (string, error) {
		return t.Drafter.Draft(ctx, prompt)
	})
}

func (t *Tools) readDocument(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".csv":
		if t.Sheets != nil {
			table, err := t.Sheets.Preview(t.Files.Resolve(path), "", domain.DefaultPreviewRows*10)
			if err != nil {
				return "", err
			}
			return FormatTable(table), nil
		}
	}
	return t.Files.Read(path)
}

// OCR captures the screen and asks the model to transcribe the visible text.
func (t *Tools) OCR(ctx context.Context) (string, error) {
	image, err := busy(t.Renderer, "Capturing screen...", func() ([]byte, error) {
		return t.Screen.Capture(ctx)
	})
	if err != nil {
		return "", describe("the screenshot tool", "capture the screen", err, "")
	}
	return busy(t.Renderer, "Extracting text...", func() (string, error) {
		return t.Describer.Describe(ctx, "Transcribe all readable text in this screenshot. "+
			"Keep the original line breaks and reply with the text only.", image)
	})
}

// Browse renders url, extracts its content and asks the model about it.
func (t *Tools) Browse(ctx context.Context, url, question string) (string, error) {
	if url == "" {
		return "", domain.NewUserError("Usage: /browse <url> [question]", domain.ErrInvalidInput)
	}
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}
	page, err := busy(t.Renderer, "Loading "+url+"...", func() (domain.WebPage, error) {
		return t.Pages.Fetch(ctx, url)
	})
	if err != nil {
		return "", describe("the browser", "load "+url, err, "")
	}
	if question == "" {
		question = "Summarise this page."
	}
	prompt := PagePrompt(page, question, t.MaxPageChars)
	return busy(t.Renderer, "Analysing page...", func() (string, error) {
		return t.Drafter.Draft(ctx, prompt)
	})
}

// PagePrompt assembles the prompt for a fetched page. Only the first headings
// and maxChars of body text are included.
func PagePrompt(page domain.WebPage, question string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = domain.DefaultMaxPageChars
	}
	headings := page.Headings
	if len(headings) > domain.MaxPageHeadings {
		headings = headings[:domain.MaxPageHeadings]
	}
	content := page.Content
	if runes := []rune(content); len(runes) > maxChars {
		content = string(runes[:maxChars])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Website: %s\n", page.URL)
	fmt.Fprintf(&b, "Title: %s\n", page.Title)
	fmt.Fprintf(&b, "Description: %s\n", page.Description)
	fmt.Fprintf(&b, "Main headings: %s\n", strings.Join(headings, ", "))
	fmt.Fprintf(&b, "Content:\n%s\n\n", content)
	fmt.Fprintf(&b, "User question: %s", question)
	return b.String()
}

// Code-edit preview choices in display order.
const (
	editApply = iota
	editNewInstructions
	editRegenerate
	editCancel
)

var editOptions = []string{
	"Apply changes",
	"Change the instruction",
	"Regenerate",
	"Cancel",
}

// CodeEdit asks the model to rewrite a file, shows a unified diff and writes
// the result once the user accepts it.
func (t *Tools) CodeEdit(ctx context.Context, path, instruction string) (string, error) {
	if path == "" {
		return "", domain.NewUserError("Usage: /code-edit <path> <instruction>", domain.ErrInvalidInput)
	}
	original, err := t.Files.Read(path)
	if err != nil {
		return "", describe("the file system", "read "+path, err, "")
	}
	if instruction == "" {
		if instruction, err = t.Prompter.Ask("What should change?"); err != nil {
			return "", err
		}
		if instruction == "" {
			return "No instruction given, file unchanged.", nil
		}
	}

	maxAttempts := t.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = domain.MaxComposeAttempts
	}
	for drafts := 1; ; drafts++ {
		if drafts > maxAttempts {
			return "", domain.NewUserError(
				fmt.Sprintf("Stopped after %d drafts. %s was not changed.", maxAttempts, path), domain.ErrCancelled)
		}
		updated, err := busy(t.Renderer, "Editing "+filepath.Base(path)+"...", func() (string, error) {
			return t.Drafter.Draft(ctx, editPrompt(path, original, instruction))
		})
		if err != nil {
			return "", err
		}
		updated = StripCodeFence(updated)
		diff := UnifiedDiff(path, original, updated)
		if diff == "" {
			return "The model proposed no changes to " + path + ".", nil
		}
		t.Renderer.Print(diff)

		choice, err := t.Prompter.Choose("Apply this change?", editOptions)
		if err != nil {
			return "", err
		}
		switch choice {
		case editApply:
			guard := &FileHandler{Files: t.Files, Guard: t.Guard, Prompter: t.Prompter, Logger: t.Logger}
			if err := guard.guard(domain.OpCreateFile, path); err != nil {
				return "", err
			}
			if err := t.Files.Create(path, updated); err != nil {
				return "", describe("the file system", "write "+path, err, "")
			}
			return "Updated " + t.Files.Resolve(path), nil
		case editNewInstructions:
			next, err := t.Prompter.Ask("New instruction")
			if err != nil {
				return "", err
			}
			if next != "" {
				instruction = next
			}
		case editRegenerate:
		default:
			return "Edit discarded, " + path + " unchanged.", nil
		}
	}
}

func editPrompt(path, content, instruction string) string {
	return fmt.Sprintf("You are editing the file %s.\n"+
		"Instruction: %s\n"+
		"Return the complete updated file and nothing else. Do not add explanations.\n"+
		"-----\n%s", path, instruction, content)
}

// StripCodeFence removes a surrounding Markdown code fence from model output.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	_, body, found := strings.Cut(trimmed, "\n")
	if !found {
		return s
	}
	body = strings.TrimSuffix(strings.TrimRight(body, "\n "), "```")
	return strings.TrimRight(body, "\n") + "\n"
}

// UnifiedDiff returns a unified diff between two versions of path, or "" when
// they are identical.
func UnifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path + " (proposed)",
		Context:  3,
	})
	if err != nil {
		return after
	}
	return diff
}
