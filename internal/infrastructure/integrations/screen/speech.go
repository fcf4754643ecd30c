package screen

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Listener implements ports.SpeechProvider by running a dictation command
// that prints the recognised utterance on stdout.
type Listener struct {
	command []string
	run     runner
}

func NewListener(command string) *Listener {
	return &Listener{command: strings.Fields(command), run: runCommand}
}

// Available reports whether a speech command is configured.
func (l *Listener) Available() bool {
	return len(l.command) > 0
}

func (l *Listener) Listen(ctx context.Context) (string, error) {
	if len(l.command) == 0 {
		return "", domain.NewUserError("Speech input is not configured. Set screen.speech_command in the config.", domain.ErrUnavailable)
	}
	out, err := l.run(ctx, l.command)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", domain.NewCollaboratorError("speech recognition", domain.ErrUnavailable, fmt.Errorf("%s: %w", l.command[0], err))
	}
	return strings.TrimSpace(string(out)), nil
}

var _ ports.SpeechProvider = (*Listener)(nil)
