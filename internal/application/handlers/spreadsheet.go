package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// SpreadsheetHandler lists, previews and summarises workbooks.
type SpreadsheetHandler struct {
	Sheets   ports.Spreadsheet
	Drafter  Drafter
	Prompter ports.Prompter
	Renderer ports.Renderer
}

func (h *SpreadsheetHandler) Handle(ctx context.Context, in *domain.Intent) (string, error) {
	switch in.Operation {
	case domain.OpListFiles:
		dir, ok := in.Param("directory")
		if !ok {
			dir = "."
		}
		files, err := h.Sheets.ListFiles(dir)
		if err != nil {
			return "", describe("the file system", "list spreadsheets in "+dir, err, "")
		}
		if len(files) == 0 {
			return "No spreadsheets found in " + dir + ".", nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Spreadsheets in %s (%d):\n", dir, len(files))
		for _, f := range files {
			fmt.Fprintf(&b, "  %s\n", f.Name)
		}
		return strings.TrimSuffix(b.String(), "\n"), nil

	case domain.OpShowSheet, domain.OpExtractData:
		path, err := needParam(h.Prompter, in, "file_name", "Which spreadsheet?")
		if err != nil {
			return "", err
		}
		sheet, _ := in.Param("sheet_name")
		rows, ok := in.Parameters.Int("row_limit")
		if !ok || rows <= 0 {
			rows = domain.DefaultPreviewRows
		}
		table, err := h.Sheets.Preview(path, sheet, rows)
		if err != nil {
			return "", describe("the spreadsheet reader", "open "+path, err, "")
		}
		return fmt.Sprintf("%s\n%s", filepath.Base(path), FormatTable(table)), nil

	case domain.OpAnalyze:
		path, err := needParam(h.Prompter, in, "file_name", "Which spreadsheet?")
		if err != nil {
			return "", err
		}
		info, err := h.Sheets.Info(path)
		if err != nil {
			return "", describe("the spreadsheet reader", "open "+path, err, "")
		}
		table, err := h.Sheets.Preview(path, "", domain.DefaultPreviewRows)
		if err != nil {
			return "", describe("the spreadsheet reader", "read "+path, err, "")
		}
		overview := fmt.Sprintf("Workbook %s: %d sheet(s) [%s], %d data rows, columns: %s",
			filepath.Base(path), len(info.Sheets), strings.Join(info.Sheets, ", "), info.Rows, strings.Join(info.Columns, ", "))
		if h.Drafter == nil {
			return overview, nil
		}
		summary, err := busy(h.Renderer, "Summarising data...", func() (string, error) {
			return h.Drafter.Draft(ctx, "Summarise what this spreadsheet contains in a few sentences.\n"+
				overview+"\nFirst rows:\n"+FormatTable(table))
		})
		if err != nil {
			return "", err
		}
		return overview + "\n\n" + summary, nil
	}
	return "", unsupported(in)
}

// FormatTable renders a table as aligned, pipe-separated columns.
func FormatTable(t domain.Table) string {
	all := append([][]string{t.Header}, t.Rows...)
	widths := make([]int, 0)
	for _, row := range all {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], len([]rune(cell)))
		}
	}
	var b strings.Builder
	for r, row := range all {
		for i, w := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", w-len([]rune(cell))))
		}
		b.WriteString("\n")
		if r == 0 && len(t.Header) > 0 {
			for i, w := range widths {
				if i > 0 {
					b.WriteString("-+-")
				}
				b.WriteString(strings.Repeat("-", w))
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
