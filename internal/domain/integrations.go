package domain

import "time"

// Repository is a GitHub repository summary.
type Repository struct {
	Name        string
	FullName    string
	Description string
	Private     bool
	URL         string
	Stars       int
}

// Issue is a GitHub issue or pull request summary.
type Issue struct {
	Number int
	Title  string
	State  string
	URL    string
	Author string
}

// EmailMessage is an outgoing message.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

// CalendarEvent is an event read from or written to the calendar.
type CalendarEvent struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Link        string
}

// EventDraft carries the user's textual event fields before times are parsed.
type EventDraft struct {
	Summary     string
	Start       string
	End         string
	Description string
	Location    string
}

// FileEntry is a directory listing row.
type FileEntry struct {
	Path    string
	Name    string
	Size    int64
	IsDir   bool
	ModTime time.Time
}

// SheetInfo describes a spreadsheet workbook.
type SheetInfo struct {
	Path    string
	Sheets  []string
	Columns []string
	Rows    int
}

// Table is a rectangular cell preview.
type Table struct {
	Header []string
	Rows   [][]string
}

// WebPage is the content extracted from a rendered page.
type WebPage struct {
	URL         string
	Title       string
	Description string
	Headings    []string
	Content     string
}
