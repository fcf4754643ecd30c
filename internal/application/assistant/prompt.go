package assistant

import (
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
)

// BuildPrompt assembles the role preface, the rendered conversation context
// and the user's request.
func BuildPrompt(role, context, request string) string {
	preface, ok := domain.RolePrompts[role]
	if !ok {
		preface = domain.RolePrompts[domain.DefaultRole]
	}

	var b strings.Builder
	b.WriteString(preface)
	b.WriteString("\n\n")
	if context != "" {
		b.WriteString("Conversation History:\n")
		b.WriteString(context)
		b.WriteString("\n\n")
	}
	b.WriteString("User Request: ")
	b.WriteString(request)
	b.WriteString("\n")
	return b.String()
}
