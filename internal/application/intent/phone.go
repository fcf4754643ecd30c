package intent

import (
	"regexp"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
)

var (
	messagingKeyword = regexp.MustCompile(`(?i)\b(?:messages?|whatsapp)\b`)
	phoneNumber      = regexp.MustCompile(`\+?\d{10,}`)
	// "text" and "msg" are common words, so they only count right before the number.
	textToNumber = regexp.MustCompile(`(?i)\b(?:text|msg)\s+(?:to\s+)?(\+?\d{10,})`)
)

// PhoneFallback catches messaging requests the Messaging parser missed: a
// messaging keyword plus a run of at least ten digits becomes an AI-composed
// message to that number, with the whole input as the instruction. It is a
// low-precision guess and must only run after the domain parsers.
func PhoneFallback(text string) *domain.Intent {
	text = strings.TrimSpace(text)
	var number string
	if messagingKeyword.MatchString(text) {
		number = phoneNumber.FindString(text)
	}
	if number == "" {
		if m := textToNumber.FindStringSubmatch(text); m != nil {
			number = m[1]
		}
	}
	if number == "" {
		return nil
	}
	return domain.NewIntent(domain.DomainMessaging, domain.OpAICompose, domain.Params{
		"recipient":   number,
		"instruction": text,
	})
}
