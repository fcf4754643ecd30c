package domain_test

import (
	"errors"
	"testing"

	"github.com/doeshing/quack-go/internal/domain"
)

func TestNewIntentDropsBlankStrings(t *testing.T) {
	intent := domain.NewIntent(domain.DomainGitHub, domain.OpCreateRepo, domain.Params{
		"name":        "  demo ",
		"description": "   ",
		"private":     true,
	})

	if got, _ := intent.Param("name"); got != "demo" {
		t.Errorf("name = %q, want trimmed value", got)
	}
	if intent.Parameters.Has("description") {
		t.Error("blank description should be absent")
	}
	if !intent.Parameters.Bool("private") {
		t.Error("private flag lost")
	}
}

func TestIntentWithCopies(t *testing.T) {
	original := domain.NewIntent(domain.DomainMessaging, domain.OpAICompose, domain.Params{
		"recipient":   "1234567890",
		"instruction": "say hi",
	})

	next := original.With("instruction", "say bye")

	if got, _ := original.Param("instruction"); got != "say hi" {
		t.Errorf("original mutated: %q", got)
	}
	if got, _ := next.Param("instruction"); got != "say bye" {
		t.Errorf("next instruction = %q", got)
	}
	if got, _ := next.Param("recipient"); got != "1234567890" {
		t.Errorf("recipient not preserved: %q", got)
	}
}

func TestParamsInt(t *testing.T) {
	params := domain.Params{"a": 3, "b": " 12 ", "c": "x"}
	if n, ok := params.Int("a"); !ok || n != 3 {
		t.Errorf("a = %d %v", n, ok)
	}
	if n, ok := params.Int("b"); !ok || n != 12 {
		t.Errorf("b = %d %v", n, ok)
	}
	if _, ok := params.Int("c"); ok {
		t.Error("c should not parse")
	}
	if _, ok := params.Int("missing"); ok {
		t.Error("missing should not parse")
	}
}

func TestCollaboratorErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("401 Unauthorized")
	err := domain.NewCollaboratorError("github", domain.ErrAuthMissing, cause)

	if !errors.Is(err, domain.ErrAuthMissing) {
		t.Error("expected kind to match")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to match")
	}

	var collab *domain.CollaboratorError
	if !errors.As(error(err), &collab) || collab.Collaborator != "github" {
		t.Errorf("errors.As failed: %+v", collab)
	}

	if got := domain.NewCollaboratorError("smtp", nil, nil); !errors.Is(got, domain.ErrUnavailable) {
		t.Error("nil kind should default to ErrUnavailable")
	}
}
