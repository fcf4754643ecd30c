package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// ComposeStage is a state of the AI compose dialog.
type ComposeStage string

const (
	StageDrafting     ComposeStage = "drafting"
	StagePreviewing   ComposeStage = "previewing"
	StageEditing      ComposeStage = "editing"
	StageRegenerating ComposeStage = "regenerating"
	StageSending      ComposeStage = "sending"
	StageSent         ComposeStage = "sent"
	StageCancelled    ComposeStage = "cancelled"
)

// Preview choices in display order.
const (
	choiceSend = iota
	choiceEdit
	choiceRegenerate
	choiceNewInstructions
	choiceCancel
)

var previewOptions = []string{
	"Send",
	"Edit before sending",
	"Regenerate",
	"Regenerate with new instructions",
	"Cancel",
}

// ComposeRequest describes one compose dialog. The intent carries the
// recipient and instruction under RecipientKey and InstructionKey.
type ComposeRequest struct {
	Intent         *domain.Intent
	RecipientKey   string
	InstructionKey string
	// Kind names the artifact in prompts, e.g. "WhatsApp message".
	Kind string
	// Prompt turns recipient and instruction into a completion prompt.
	Prompt func(recipient, instruction string) string
	// Send delivers the accepted draft.
	Send func(ctx context.Context, recipient, body string) error
}

// ComposeResult reports how the dialog ended.
type ComposeResult struct {
	Stage     ComposeStage
	Recipient string
	Body      string
	Drafts    int
}

// ComposeFlow drives Drafting, Previewing and the transitions out of it as an
// explicit loop. Drafting happens at most MaxAttempts times.
type ComposeFlow struct {
	Drafter     Drafter
	Prompter    ports.Prompter
	Renderer    ports.Renderer
	Logger      ports.Logger
	MaxAttempts int
}

// Run executes the dialog until the draft is sent or the user cancels.
func (f *ComposeFlow) Run(ctx context.Context, req ComposeRequest) (ComposeResult, error) {
	maxAttempts := f.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = domain.MaxComposeAttempts
	}

	current := req.Intent
	recipient, err := needParam(f.Prompter, current, req.RecipientKey, fmt.Sprintf("Who should the %s go to?", req.Kind))
	if err != nil {
		return ComposeResult{Stage: StageCancelled}, err
	}
	current = current.With(req.RecipientKey, recipient)
	instruction, err := needParam(f.Prompter, current, req.InstructionKey, fmt.Sprintf("What should the %s say?", req.Kind))
	if err != nil {
		return ComposeResult{Stage: StageCancelled}, err
	}
	current = current.With(req.InstructionKey, instruction)

	result := ComposeResult{Recipient: recipient}
	stage := StageDrafting
	for {
		f.trace(stage, result.Drafts)
		switch stage {
		case StageDrafting:
			if result.Drafts >= maxAttempts {
				result.Stage = StageCancelled
				return result, domain.NewUserError(
					fmt.Sprintf("Stopped after %d drafts. Nothing was sent.", result.Drafts), domain.ErrCancelled)
			}
			result.Drafts++
			instruction, _ := current.Param(req.InstructionKey)
			draft, err := busy(f.Renderer, "Drafting...", func() (string, error) {
				return f.Drafter.Draft(ctx, req.Prompt(recipient, instruction))
			})
			if err != nil {
				result.Stage = StageCancelled
				return result, err
			}
			result.Body = strings.TrimSpace(draft)
			stage = StagePreviewing

		case StagePreviewing:
			f.Renderer.Print(fmt.Sprintf("--- %s to %s ---\n%s\n---", req.Kind, recipient, result.Body))
			choice, err := f.Prompter.Choose("What would you like to do?", previewOptions)
			if err != nil {
				result.Stage = StageCancelled
				return result, err
			}
			switch choice {
			case choiceSend:
				stage = StageSending
			case choiceEdit:
				stage = StageEditing
			case choiceRegenerate:
				stage = StageRegenerating
			case choiceNewInstructions:
				instruction, err := f.Prompter.Ask("New instructions")
				if err != nil {
					result.Stage = StageCancelled
					return result, err
				}
				if instruction != "" {
					current = current.With(req.InstructionKey, instruction)
				}
				stage = StageRegenerating
			default:
				stage = StageCancelled
			}

		case StageEditing:
			edited, err := f.Prompter.Ask("Enter the final text (leave empty to keep the draft)")
			if err != nil {
				result.Stage = StageCancelled
				return result, err
			}
			if edited != "" {
				result.Body = edited
			}
			stage = StageSending

		case StageRegenerating:
			stage = StageDrafting

		case StageSending:
			_, err := busy(f.Renderer, "Sending...", func() (struct{}, error) {
				return struct{}{}, req.Send(ctx, recipient, result.Body)
			})
			if err != nil {
				result.Stage = StageCancelled
				return result, err
			}
			result.Stage = StageSent
			return result, nil

		case StageCancelled:
			result.Stage = StageCancelled
			return result, nil
		}
	}
}

func (f *ComposeFlow) trace(stage ComposeStage, drafts int) {
	if f.Logger != nil {
		f.Logger.Debug("compose stage", map[string]interface{}{"stage": string(stage), "drafts": drafts})
	}
}
