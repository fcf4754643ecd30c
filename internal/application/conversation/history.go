// Package conversation keeps the bounded, chronological record of exchanges
// with the completion backend.
package conversation

import (
	"strings"
	"sync"
	"time"

	"github.com/doeshing/quack-go/internal/domain"
)

// History is an append-only list of turns capped at a fixed size. When the
// cap is reached the oldest turn is evicted.
type History struct {
	mu           sync.Mutex
	turns        []domain.ConversationTurn
	maxTurns     int
	contextTurns int
	now          func() time.Time
}

// NewHistory creates a history keeping at most maxTurns turns and rendering
// the last contextTurns of them as prompt context.
func NewHistory(maxTurns, contextTurns int) *History {
	if maxTurns <= 0 {
		maxTurns = domain.DefaultMaxTurns
	}
	if contextTurns <= 0 || contextTurns > maxTurns {
		contextTurns = min(domain.DefaultContextTurns, maxTurns)
	}
	return &History{maxTurns: maxTurns, contextTurns: contextTurns, now: time.Now}
}

// Add appends a turn.
func (h *History) Add(request, response string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, domain.ConversationTurn{
		Request:   request,
		Response:  response,
		Timestamp: h.now(),
	})
	if over := len(h.turns) - h.maxTurns; over > 0 {
		h.turns = append(h.turns[:0:0], h.turns[over:]...)
	}
}

// Context renders the most recent turns oldest first as alternating
// "User:" and "Assistant:" lines. It returns "" for an empty history.
func (h *History) Context() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	start := max(len(h.turns)-h.contextTurns, 0)
	var b strings.Builder
	for _, turn := range h.turns[start:] {
		b.WriteString("User: ")
		b.WriteString(turn.Request)
		b.WriteString("\nAssistant: ")
		b.WriteString(turn.Response)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Turns returns a copy of the stored turns, oldest first.
func (h *History) Turns() []domain.ConversationTurn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.ConversationTurn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len reports the number of stored turns.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Clear drops every turn.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}
