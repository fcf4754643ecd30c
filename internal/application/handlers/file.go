package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// maxReadChars bounds how much of a file is printed.
const maxReadChars = 4000

// FileHandler executes file system intents. Destructive operations are
// checked against the path guard and confirmed with the user.
type FileHandler struct {
	Files    ports.FileManager
	Guard    ports.PathGuard
	Prompter ports.Prompter
	Logger   ports.Logger
}

func (h *FileHandler) Handle(ctx context.Context, in *domain.Intent) (string, error) {
	switch in.Operation {
	case domain.OpListFiles:
		dir, ok := in.Param("path")
		if !ok {
			dir = "."
		}
		entries, err := h.Files.List(dir)
		if err != nil {
			return "", describe("the file system", "list "+dir, err, "")
		}
		return formatEntries(h.Files.Resolve(dir), entries), nil

	case domain.OpReadFile:
		path, err := needParam(h.Prompter, in, "path", "Which file?")
		if err != nil {
			return "", err
		}
		content, err := h.Files.Read(path)
		if err != nil {
			return "", describe("the file system", "read "+path, err, "")
		}
		if runes := []rune(content); len(runes) > maxReadChars {
			content = string(runes[:maxReadChars]) + "\n... (truncated)"
		}
		return content, nil

	case domain.OpCreateFile:
		path, err := needParam(h.Prompter, in, "path", "File name")
		if err != nil {
			return "", err
		}
		content, _ := in.Param("content")
		if err := h.guard(domain.OpCreateFile, path); err != nil {
			return "", err
		}
		if err := h.Files.Create(path, content); err != nil {
			return "", describe("the file system", "create "+path, err, "")
		}
		return "Created file " + h.Files.Resolve(path), nil

	case domain.OpCreateDirectory:
		path, err := needParam(h.Prompter, in, "path", "Directory name")
		if err != nil {
			return "", err
		}
		if err := h.guard(domain.OpCreateDirectory, path); err != nil {
			return "", err
		}
		if err := h.Files.MakeDir(path); err != nil {
			return "", describe("the file system", "create "+path, err, "")
		}
		return "Created directory " + h.Files.Resolve(path), nil

	case domain.OpDeleteFile:
		path, err := needParam(h.Prompter, in, "path", "What should be deleted?")
		if err != nil {
			return "", err
		}
		if err := h.guard(domain.OpDeleteFile, path); err != nil {
			return "", err
		}
		ok, err := h.Prompter.Confirm(fmt.Sprintf("Delete %s?", h.Files.Resolve(path)))
		if err != nil {
			return "", err
		}
		if !ok {
			return "Nothing deleted.", nil
		}
		if err := h.Files.Delete(path); err != nil {
			return "", describe("the file system", "delete "+path, err, "")
		}
		return "Deleted " + h.Files.Resolve(path), nil

	case domain.OpMoveFile, domain.OpCopyFile:
		src, err := needParam(h.Prompter, in, "source", "Source path")
		if err != nil {
			return "", err
		}
		dst, err := needParam(h.Prompter, in, "destination", "Destination path")
		if err != nil {
			return "", err
		}
		verb, action, run := "Copied", "copy", h.Files.Copy
		if in.Operation == domain.OpMoveFile {
			verb, action, run = "Moved", "move", h.Files.Move
			if err := h.guard(domain.OpMoveFile, src); err != nil {
				return "", err
			}
		}
		if err := h.guard(in.Operation, dst); err != nil {
			return "", err
		}
		if err := run(src, dst); err != nil {
			return "", describe("the file system", action+" "+src, err, "")
		}
		return fmt.Sprintf("%s %s to %s", verb, h.Files.Resolve(src), h.Files.Resolve(dst)), nil

	case domain.OpSearchFiles:
		pattern, err := needParam(h.Prompter, in, "pattern", "File name pattern (e.g. *.go)")
		if err != nil {
			return "", err
		}
		root, ok := in.Param("path")
		if !ok {
			root = "."
		}
		matches, err := h.Files.Search(root, pattern, domain.DefaultSearchResults)
		if err != nil {
			return "", describe("the file system", "search "+root, err, "")
		}
		if len(matches) == 0 {
			return fmt.Sprintf("No files matching %q under %s.", pattern, h.Files.Resolve(root)), nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Files matching %q (%d):\n", pattern, len(matches))
		for _, m := range matches {
			fmt.Fprintf(&b, "  %s\n", m.Path)
		}
		return strings.TrimSuffix(b.String(), "\n"), nil
	}
	return "", unsupported(in)
}

// guard consults the path guard. Blocked paths fail; risky ones need an
// explicit confirmation.
func (h *FileHandler) guard(operation, path string) error {
	if h.Guard == nil {
		return nil
	}
	assessment, err := h.Guard.Evaluate(operation, h.Files.Resolve(path))
	if err != nil {
		return fmt.Errorf("evaluate path guard: %w", err)
	}
	if h.Logger != nil && assessment.Level != domain.RiskSafe {
		h.Logger.Warn("path guard matched", map[string]interface{}{
			"operation": operation,
			"path":      path,
			"level":     string(assessment.Level),
			"rules":     assessment.MatchedRules,
		})
	}
	switch assessment.Action {
	case domain.ActionBlock:
		return domain.NewUserError(fmt.Sprintf("Refusing to touch %s: %s", path, strings.Join(assessment.Reasons, "; ")), domain.ErrInvalidInput)
	case domain.ActionConfirm:
		ok, err := h.Prompter.Confirm(fmt.Sprintf("%s is %s risk (%s). Continue?", path, assessment.Level, strings.Join(assessment.Reasons, "; ")))
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewUserError("Cancelled.", domain.ErrCancelled)
		}
	}
	return nil
}

func formatEntries(dir string, entries []domain.FileEntry) string {
	if len(entries) == 0 {
		return dir + " is empty."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Contents of %s (%d):\n", dir, len(entries))
	for _, e := range entries {
		if e.IsDir {
			fmt.Fprintf(&b, "  [dir]  %s/\n", e.Name)
			continue
		}
		fmt.Fprintf(&b, "  %8s  %s\n", humanize.Bytes(uint64(e.Size)), e.Name)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
