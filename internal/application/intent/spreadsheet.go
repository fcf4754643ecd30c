package intent

import (
	"regexp"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
)

const sheetFile = `(?:(?:excel|spreadsheet|workbook|csv)(?:\s+file)?|file)\s+(?:called\s+|named\s+)?["']?([^"'\s]+)["']?`

var (
	sheetName    = regexp.MustCompile(`(?i)\b(?:sheet|tab)\s+(?:called\s+|named\s+)?["']?([^"'\s]+)["']?`)
	rowLimit     = regexp.MustCompile(`(?i)\b(?:top|first)\s+(\d+)(?:\s+rows?)?`)
	workbookName = regexp.MustCompile(`(?i)([\w\-]+\.(?:xlsx|xlsm|xls|csv))\b`)
	sheetWords   = regexp.MustCompile(`(?i)\b(?:excel|spreadsheet|workbook|sheet|csv)\b`)
)

// NewSpreadsheetParser recognises the free text accepted by /excel.
func NewSpreadsheetParser() Parser {
	return &spreadsheetParser{rules: &ruleParser{
		domain: domain.DomainSpreadsheet,
		rules: []rule{
			{
				op: domain.OpListFiles,
				re: regexp.MustCompile(`(?i)\b(?:list|show|find)\s+(?:all\s+)?(?:my\s+)?(?:excel|spreadsheet|workbook|csv)(?:\s+files)?s?(?:\s+in\s+["']?([^"'\s]+)["']?)?`),
				build: func(m []string) domain.Params {
					return domain.Params{"directory": group(m, 1)}
				},
			},
			{
				op: domain.OpExtractData,
				re: regexp.MustCompile(`(?i)\b(?:extract|get|show)\s+(?:the\s+)?(?:top\s+\d+\s+|first\s+\d+\s+)?(?:data|rows|records)\s+(?:from|in)\s+(?:the\s+)?` + sheetFile),
				build: func(m []string) domain.Params {
					return domain.Params{"file_name": group(m, 1)}
				},
			},
			{
				op: domain.OpAnalyze,
				re: regexp.MustCompile(`(?i)\b(?:analy[sz]e|summari[sz]e|describe)\s+(?:the\s+)?(?:data\s+(?:in|from)\s+(?:the\s+)?)?` + sheetFile),
				build: func(m []string) domain.Params {
					return domain.Params{"file_name": group(m, 1)}
				},
			},
			{
				op: domain.OpShowSheet,
				re: regexp.MustCompile(`(?i)\b(?:show|open|display|view)\s+(?:the\s+)?` + sheetFile),
				build: func(m []string) domain.Params {
					return domain.Params{"file_name": group(m, 1)}
				},
			},
		},
	}}
}

type spreadsheetParser struct {
	rules *ruleParser
}

func (p *spreadsheetParser) Domain() domain.Domain { return domain.DomainSpreadsheet }

// Parse applies the ordered patterns, then enriches the result with sheet and
// row-limit qualifiers. When no pattern matches but the text mentions a
// workbook file, the request is treated as showing that file.
func (p *spreadsheetParser) Parse(text string) *domain.Intent {
	in := p.rules.Parse(text)
	if in == nil {
		file := workbookName.FindString(text)
		if file == "" || (!sheetWords.MatchString(text) && !strings.Contains(strings.ToLower(text), "open")) {
			return nil
		}
		in = domain.NewIntent(domain.DomainSpreadsheet, domain.OpShowSheet, domain.Params{"file_name": file})
	}
	if m := sheetName.FindStringSubmatch(text); m != nil && in.Operation != domain.OpListFiles {
		in = in.With("sheet_name", m[1])
	}
	if m := rowLimit.FindStringSubmatch(text); m != nil {
		if n, ok := (domain.Params{"n": m[1]}).Int("n"); ok && n > 0 {
			in = in.With("row_limit", n)
		}
	}
	return in
}
