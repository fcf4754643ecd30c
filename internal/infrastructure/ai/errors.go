package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/doeshing/quack-go/internal/domain"
)

// classify maps provider SDK errors onto the domain error kinds so callers
// can tell quota, rate limit and auth failures apart.
func classify(collaborator string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return domain.NewCollaboratorError(collaborator, domain.ErrCancelled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewCollaboratorError(collaborator, domain.ErrTimeout, err)
	}

	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) {
		return domain.NewCollaboratorError(collaborator, kindFor(openaiErr.HTTPStatusCode, fmt.Sprint(openaiErr.Code)+" "+openaiErr.Message), err)
	}
	var requestErr *openai.RequestError
	if errors.As(err, &requestErr) {
		return domain.NewCollaboratorError(collaborator, kindFor(requestErr.HTTPStatusCode, ""), err)
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return domain.NewCollaboratorError(collaborator, kindFor(genaiErr.Code, genaiErr.Status+" "+genaiErr.Message), err)
	}
	var genaiPtr *genai.APIError
	if errors.As(err, &genaiPtr) {
		return domain.NewCollaboratorError(collaborator, kindFor(genaiPtr.Code, genaiPtr.Status+" "+genaiPtr.Message), err)
	}
	return domain.NewCollaboratorError(collaborator, domain.ErrUnavailable, err)
}

func kindFor(status int, detail string) error {
	detail = strings.ToLower(detail)
	switch {
	case status == http.StatusTooManyRequests:
		if strings.Contains(detail, "quota") {
			return domain.ErrQuotaExceeded
		}
		return domain.ErrRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrAuthMissing
	case status == http.StatusBadRequest && strings.Contains(detail, "api key"):
		return domain.ErrAuthMissing
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return domain.ErrTimeout
	default:
		return domain.ErrUnavailable
	}
}
