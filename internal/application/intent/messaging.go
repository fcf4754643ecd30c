package intent

import (
	"regexp"

	"github.com/doeshing/quack-go/internal/domain"
)

const (
	phoneOrName = `(\+?\d[\d\s\-()]{5,}\d|[A-Za-z][\w.\-]*)`
	phoneOnly   = `(\+?\d[\d\-()]{5,}\d)`
	composeVerb = `(?:write|compose|draft|generate|prepare)`
	topicJoin   = `(?:about|regarding|saying|asking|telling|to\s+say|that)`
)

// NewMessagingParser recognises WhatsApp sends, AI-composed messages and setup.
// A bare "send a message to <number>" is left to the phone-number heuristic.
func NewMessagingParser() Parser {
	return &ruleParser{
		domain: domain.DomainMessaging,
		rules: []rule{
			{
				op: domain.OpSetupWhatsApp,
				re: regexp.MustCompile(`(?i)^(?:set\s?up|configure|connect)\s+(?:my\s+)?whatsapp\b`),
			},
			{
				op: domain.OpAICompose,
				re: regexp.MustCompile(`(?i)\b` + composeVerb + `\s+(?:an?\s+)?(?:ai\s+)?whatsapp(?:\s+(?:message|msg|text))?\s+(?:to|for)\s+` + phoneOrName + `(?:\s+` + topicJoin + `\s+(.+))?\s*$`),
				build: composeParams,
			},
			{
				op:    domain.OpAICompose,
				re:    regexp.MustCompile(`(?i)\b` + composeVerb + `\s+(?:an?\s+)?(?:ai\s+)?(?:message|msg|text)\s+(?:on\s+whatsapp\s+)?(?:to|for)\s+` + phoneOnly + `(?:\s+` + topicJoin + `\s+(.+))?\s*$`),
				build: composeParams,
			},
			{
				op: domain.OpSendWhatsApp,
				re: regexp.MustCompile(`(?i)\b(?:send\s+)?(?:an?\s+)?whatsapp(?:\s+(?:message|msg))?\s+to\s+` + phoneOrName + `\s+(?:saying|that\s+says|with\s+(?:the\s+)?message)\s*[:\-]?\s*(.+?)\s*$`),
				build: func(m []string) domain.Params {
					return domain.Params{
						"recipient": normalizeRecipient(group(m, 1)),
						"message":   unquote(group(m, 2)),
					}
				},
			},
			{
				op: domain.OpSendWhatsApp,
				re: regexp.MustCompile(`(?i)^(?:send\s+)?(?:an?\s+)?whatsapp(?:\s+(?:message|msg))?(?:\s+to\s+` + phoneOrName + `)?\s*$`),
				build: func(m []string) domain.Params {
					return domain.Params{"recipient": normalizeRecipient(group(m, 1))}
				},
			},
		},
	}
}

func composeParams(m []string) domain.Params {
	return domain.Params{
		"recipient":   normalizeRecipient(group(m, 1)),
		"instruction": group(m, 2),
	}
}
