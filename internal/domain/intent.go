package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Domain names the subsystem an input is routed to.
type Domain string

const (
	DomainNone        Domain = "none"
	DomainFile        Domain = "file"
	DomainApp         Domain = "app"
	DomainGitHub      Domain = "github"
	DomainEmail       Domain = "email"
	DomainMessaging   Domain = "messaging"
	DomainCommand     Domain = "command"
	DomainCalendar    Domain = "calendar"
	DomainSpreadsheet Domain = "spreadsheet"
)

// GitHub operations.
const (
	OpListRepos   = "list_repos"
	OpCreateRepo  = "create_repo"
	OpListIssues  = "list_issues"
	OpCreateIssue = "create_issue"
	OpCloseIssue  = "close_issue"
	OpListPRs     = "list_prs"
	OpWhoAmI      = "whoami"
	OpSetupGitHub = "setup_github"
)

// Messaging and email operations. OpAICompose is shared by both domains.
const (
	OpSendWhatsApp  = "send_whatsapp"
	OpSetupWhatsApp = "setup_whatsapp"
	OpSendEmail     = "send_email"
	OpSetupEmail    = "setup_email"
	OpAICompose     = "ai_compose"
)

// File operations.
const (
	OpListFiles       = "list_files"
	OpReadFile        = "read_file"
	OpCreateFile      = "create_file"
	OpCreateDirectory = "create_directory"
	OpDeleteFile      = "delete_file"
	OpMoveFile        = "move_file"
	OpCopyFile        = "copy_file"
	OpSearchFiles     = "search_files"
)

// App operations.
const (
	OpLaunchApp = "launch_app"
	OpListApps  = "list_apps"
)

// Calendar operations.
const (
	OpCalendarList  = "list"
	OpCalendarAdd   = "add"
	OpCalendarSetup = "setup"
)

// Spreadsheet operations. OpListFiles is reused for directory listings.
const (
	OpShowSheet   = "show_file"
	OpExtractData = "extract_data"
	OpAnalyze     = "analyze"
)

// Params holds the named values extracted from an input. A missing key means
// the handler has to ask the user for it.
type Params map[string]any

// String returns a non-empty string parameter.
func (p Params) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Int returns an integer parameter, accepting numeric strings.
func (p Params) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Bool returns a boolean parameter.
func (p Params) Bool(key string) bool {
	v, _ := p[key].(bool)
	return v
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Intent is the result of classifying a single input. It is built once by the
// parser that matched and is read-only afterwards.
type Intent struct {
	Domain     Domain
	Operation  string
	Parameters Params
}

// NewIntent builds an intent, dropping empty string parameters so that absence
// is the only way to signal "not provided".
func NewIntent(d Domain, operation string, params Params) *Intent {
	clean := make(Params, len(params))
	for k, v := range params {
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			v = s
		}
		clean[k] = v
	}
	return &Intent{Domain: d, Operation: operation, Parameters: clean}
}

// With returns a copy of the intent with key set to value.
func (i *Intent) With(key string, value any) *Intent {
	params := make(Params, len(i.Parameters)+1)
	for k, v := range i.Parameters {
		params[k] = v
	}
	params[key] = value
	return &Intent{Domain: i.Domain, Operation: i.Operation, Parameters: params}
}

// Param is a shorthand for Parameters.String.
func (i *Intent) Param(key string) (string, bool) {
	if i == nil {
		return "", false
	}
	return i.Parameters.String(key)
}

func (i *Intent) String() string {
	if i == nil {
		return "<nil intent>"
	}
	return fmt.Sprintf("%s/%s", i.Domain, i.Operation)
}
