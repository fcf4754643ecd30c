// Package spreadsheet reads .xlsx workbooks with excelize and .csv files with
// encoding/csv.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Extensions lists the file types the reader understands.
var Extensions = []string{".xlsx", ".xlsm", ".csv"}

// csvSheet is the single sheet name reported for CSV files.
const csvSheet = "csv"

// Reader implements ports.Spreadsheet. Relative paths resolve through Files.
type Reader struct {
	Files ports.FileManager
}

func NewReader(files ports.FileManager) *Reader {
	return &Reader{Files: files}
}

func (r *Reader) resolve(path string) string {
	if r.Files == nil {
		return path
	}
	return r.Files.Resolve(path)
}

// ListFiles returns the spreadsheet files directly inside dir.
func (r *Reader) ListFiles(dir string) ([]domain.FileEntry, error) {
	dir = r.resolve(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, wrap(err)
	}
	var out []domain.FileEntry
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, domain.FileEntry{
			Path:    filepath.Join(dir, e.Name()),
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}

// Supported reports whether name has a spreadsheet extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Info describes the workbook: its sheets, the first sheet's header and its
// data row count.
func (r *Reader) Info(path string) (domain.SheetInfo, error) {
	path = r.resolve(path)
	sheets, rows, err := load(path, "")
	if err != nil {
		return domain.SheetInfo{}, err
	}
	info := domain.SheetInfo{Path: path, Sheets: sheets}
	if len(rows) > 0 {
		info.Columns = rows[0]
		info.Rows = len(rows) - 1
	}
	return info, nil
}

// Preview returns the header and up to n data rows of sheet. An empty sheet
// name selects the first one.
func (r *Reader) Preview(path, sheet string, n int) (domain.Table, error) {
	if n <= 0 {
		n = domain.DefaultPreviewRows
	}
	_, rows, err := load(r.resolve(path), sheet)
	if err != nil {
		return domain.Table{}, err
	}
	if len(rows) == 0 {
		return domain.Table{}, nil
	}
	table := domain.Table{Header: rows[0]}
	width := len(table.Header)
	for _, row := range rows[1:] {
		if len(table.Rows) == n {
			break
		}
		if len(row) > width {
			width = len(row)
		}
		table.Rows = append(table.Rows, row)
	}
	table.Header = pad(table.Header, width)
	for i := range table.Rows {
		table.Rows[i] = pad(table.Rows[i], width)
	}
	return table, nil
}

func load(path, sheet string) ([]string, [][]string, error) {
	if !Supported(path) {
		return nil, nil, fmt.Errorf("%w: %s is not a spreadsheet (%s)", domain.ErrInvalidInput, filepath.Base(path), strings.Join(Extensions, ", "))
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err := readCSV(path)
		return []string{csvSheet}, rows, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, wrap(err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !contains(sheets, sheet) {
		return sheets, nil, fmt.Errorf("%w: sheet %q not in %s (sheets: %s)", domain.ErrNotFound, sheet, filepath.Base(path), strings.Join(sheets, ", "))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return sheets, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return sheets, trimEmpty(rows), nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, wrap(err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		rows = append(rows, row)
	}
	return trimEmpty(rows), nil
}

// trimEmpty drops rows whose cells are all blank.
func trimEmpty(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func pad(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func wrap(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}

var _ ports.Spreadsheet = (*Reader)(nil)
