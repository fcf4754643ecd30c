package intent

import (
	"regexp"

	"github.com/doeshing/quack-go/internal/domain"
)

// pathArg matches a double-quoted, single-quoted or bare path and spends
// three groups; pathAt picks whichever of them matched.
const pathArg = `(?:"([^"]+)"|'([^']+)'|([^\s"']+))`

func pathAt(m []string, i int) string {
	for j := i; j < i+3; j++ {
		if v := group(m, j); v != "" {
			return v
		}
	}
	return ""
}

// NewFileParser recognises file system requests.
func NewFileParser() Parser {
	path := func(m []string) domain.Params { return domain.Params{"path": pathAt(m, 1)} }
	srcDst := func(m []string) domain.Params {
		return domain.Params{"source": pathAt(m, 1), "destination": pathAt(m, 4)}
	}

	return &ruleParser{
		domain: domain.DomainFile,
		rules: []rule{
			{
				op:    domain.OpCreateDirectory,
				re:    regexp.MustCompile(`(?i)\b(?:create|make|new)\s+(?:a\s+)?(?:new\s+)?(?:directory|folder|dir)\s+(?:called\s+|named\s+)?` + pathArg),
				build: path,
			},
			{
				op: domain.OpCreateFile,
				re: regexp.MustCompile(`(?i)\b(?:create|make|new)\s+(?:a\s+)?(?:new\s+)?file\s+(?:called\s+|named\s+)?` + pathArg + `(?:\s+(?:with|containing)\s+(?:the\s+)?(?:content|text)?\s*(.+?))?\s*$`),
				build: func(m []string) domain.Params {
					return domain.Params{"path": pathAt(m, 1), "content": unquote(group(m, 4))}
				},
			},
			{
				op:    domain.OpDeleteFile,
				re:    regexp.MustCompile(`(?i)\b(?:delete|remove|erase)\s+(?:the\s+)?(?:file|folder|directory)\s+` + pathArg),
				build: path,
			},
			{
				op:    domain.OpMoveFile,
				re:    regexp.MustCompile(`(?i)\b(?:move|rename)\s+(?:the\s+)?(?:file\s+|folder\s+)?` + pathArg + `\s+to\s+` + pathArg),
				build: srcDst,
			},
			{
				op:    domain.OpCopyFile,
				re:    regexp.MustCompile(`(?i)\bcopy\s+(?:the\s+)?(?:file\s+|folder\s+)?` + pathArg + `\s+to\s+` + pathArg),
				build: srcDst,
			},
			{
				op:    domain.OpReadFile,
				re:    regexp.MustCompile(`(?i)\b(?:read|show|display|open|cat|view|print)\s+(?:me\s+)?(?:the\s+)?(?:contents?\s+of\s+)?(?:the\s+)?file\s+` + pathArg),
				build: path,
			},
			{
				op: domain.OpSearchFiles,
				re: regexp.MustCompile(`(?i)\b(?:search|find|look)\s+(?:for\s+)?files?\s+(?:named\s+|called\s+|matching\s+)?` + pathArg + `(?:\s+(?:in|under|inside)\s+` + pathArg + `)?`),
				build: func(m []string) domain.Params {
					return domain.Params{"pattern": pathAt(m, 1), "path": pathAt(m, 4)}
				},
			},
			{
				op:    domain.OpListFiles,
				re:    regexp.MustCompile(`(?i)\b(?:list|show|display)\s+(?:me\s+)?(?:all\s+)?(?:the\s+)?(?:files|contents)(?:\s+(?:in|of|inside|under)\s+(?:the\s+)?(?:directory\s+|folder\s+)?` + pathArg + `)?`),
				build: path,
			},
		},
	}
}
