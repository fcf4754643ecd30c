package intent

import (
	"regexp"

	"github.com/doeshing/quack-go/internal/domain"
)

const emailAddress = `([\w.+\-]+@[\w\-]+(?:\.[\w\-]+)+)`

// NewEmailParser recognises email sends, AI-composed email and setup.
func NewEmailParser() Parser {
	return &ruleParser{
		domain: domain.DomainEmail,
		rules: []rule{
			{
				op: domain.OpSetupEmail,
				re: regexp.MustCompile(`(?i)^(?:set\s?up|configure|connect)\s+(?:my\s+)?e-?mail\b`),
			},
			{
				op: domain.OpAICompose,
				re: regexp.MustCompile(`(?i)\b` + composeVerb + `\s+(?:an?\s+)?(?:ai\s+)?e-?mail\s+(?:to|for)\s+` + emailAddress + `(?:\s+` + topicJoin + `\s+(.+))?\s*$`),
				build: func(m []string) domain.Params {
					return domain.Params{"to": group(m, 1), "instruction": group(m, 2)}
				},
			},
			{
				op: domain.OpSendEmail,
				re: regexp.MustCompile(`(?i)\bsend\s+(?:an?\s+)?e-?mail\s+to\s+` + emailAddress + `(?:\s+(?:with\s+)?subject\s+"([^"]+)")?(?:\s+(?:saying|with\s+body|body|message)\s*[:\-]?\s*(.+?))?\s*$`),
				build: func(m []string) domain.Params {
					return domain.Params{
						"to":      group(m, 1),
						"subject": group(m, 2),
						"body":    unquote(group(m, 3)),
					}
				},
			},
			{
				op: domain.OpSendEmail,
				re: regexp.MustCompile(`(?i)^(?:send|write)\s+(?:an?\s+)?(?:new\s+)?e-?mail\s*$`),
			},
		},
	}
}
