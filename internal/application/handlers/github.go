package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

const githubSetupHint = "/github setup"

// GitHubHandler executes GitHub intents.
type GitHubHandler struct {
	// Connect returns a client for the current token.
	Connect  func() (ports.GitHubService, error)
	Settings ConfigUpdater
	Prompter ports.Prompter
	Renderer ports.Renderer
	Timeout  time.Duration
}

func (h *GitHubHandler) Handle(ctx context.Context, in *domain.Intent) (string, error) {
	if in.Operation == domain.OpSetupGitHub {
		return h.setup(ctx)
	}

	client, err := h.Connect()
	if err != nil {
		return "", describe("GitHub", "connect", err, githubSetupHint)
	}

	switch in.Operation {
	case domain.OpWhoAmI:
		login, err := timed(ctx, h.Timeout, h.Renderer, "Contacting GitHub...", func(ctx context.Context) (string, error) {
			return client.CurrentUser(ctx)
		})
		if err != nil {
			return "", describe("GitHub", "look up your account", err, githubSetupHint)
		}
		return "Signed in to GitHub as " + login + ".", nil

	case domain.OpListRepos:
		repos, err := timed(ctx, h.Timeout, h.Renderer, "Fetching repositories...", func(ctx context.Context) ([]domain.Repository, error) {
			return client.ListRepos(ctx)
		})
		if err != nil {
			return "", describe("GitHub", "list repositories", err, githubSetupHint)
		}
		return formatRepos(repos), nil

	case domain.OpCreateRepo:
		name, err := needParam(h.Prompter, in, "name", "Repository name")
		if err != nil {
			return "", err
		}
		description, _ := in.Param("description")
		private := in.Parameters.Bool("private")
		repo, err := timed(ctx, h.Timeout, h.Renderer, "Creating repository...", func(ctx context.Context) (domain.Repository, error) {
			return client.CreateRepo(ctx, name, description, private)
		})
		if err != nil {
			return "", describe("GitHub", "create repository "+name, err, githubSetupHint)
		}
		visibility := "public"
		if repo.Private {
			visibility = "private"
		}
		return fmt.Sprintf("Created %s repository %s\n%s", visibility, repo.FullName, repo.URL), nil

	case domain.OpListIssues, domain.OpListPRs:
		repo, err := needParam(h.Prompter, in, "repo", "Which repository (owner/name)?")
		if err != nil {
			return "", err
		}
		noun, fetch := "issues", client.ListIssues
		if in.Operation == domain.OpListPRs {
			noun, fetch = "pull requests", client.ListPullRequests
		}
		items, err := timed(ctx, h.Timeout, h.Renderer, "Fetching "+noun+"...", func(ctx context.Context) ([]domain.Issue, error) {
			return fetch(ctx, repo)
		})
		if err != nil {
			return "", describe("GitHub", "list "+noun+" for "+repo, err, githubSetupHint)
		}
		return formatIssues(repo, noun, items), nil

	case domain.OpCreateIssue:
		repo, err := needParam(h.Prompter, in, "repo", "Which repository (owner/name)?")
		if err != nil {
			return "", err
		}
		title, err := needParam(h.Prompter, in, "title", "Issue title")
		if err != nil {
			return "", err
		}
		body, _ := in.Param("body")
		issue, err := timed(ctx, h.Timeout, h.Renderer, "Creating issue...", func(ctx context.Context) (domain.Issue, error) {
			return client.CreateIssue(ctx, repo, title, body)
		})
		if err != nil {
			return "", describe("GitHub", "create an issue in "+repo, err, githubSetupHint)
		}
		return fmt.Sprintf("Created issue #%d in %s: %s\n%s", issue.Number, repo, issue.Title, issue.URL), nil

	case domain.OpCloseIssue:
		repo, err := needParam(h.Prompter, in, "repo", "Which repository (owner/name)?")
		if err != nil {
			return "", err
		}
		raw, err := needParam(h.Prompter, in, "number", "Issue number")
		if err != nil {
			return "", err
		}
		number, err := strconv.Atoi(strings.TrimPrefix(raw, "#"))
		if err != nil || number <= 0 {
			return "", domain.NewUserError(fmt.Sprintf("%q is not an issue number.", raw), domain.ErrInvalidInput)
		}
		if _, err := timed(ctx, h.Timeout, h.Renderer, "Closing issue...", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, client.CloseIssue(ctx, repo, number)
		}); err != nil {
			return "", describe("GitHub", fmt.Sprintf("close issue #%d in %s", number, repo), err, githubSetupHint)
		}
		return fmt.Sprintf("Closed issue #%d in %s.", number, repo), nil
	}
	return "", unsupported(in)
}

func (h *GitHubHandler) setup(ctx context.Context) (string, error) {
	token, err := h.Prompter.AskSecret("GitHub personal access token (repo scope)")
	if err != nil {
		return "", err
	}
	if token == "" {
		return "GitHub token unchanged.", nil
	}
	if err := h.Settings.Update(ctx, func(c *domain.Config) error {
		c.GitHub.Token = token
		return nil
	}); err != nil {
		return "", fmt.Errorf("save github token: %w", err)
	}

	client, err := h.Connect()
	if err != nil {
		return "", describe("GitHub", "connect", err, githubSetupHint)
	}
	login, err := timed(ctx, h.Timeout, h.Renderer, "Verifying token...", func(ctx context.Context) (string, error) {
		return client.CurrentUser(ctx)
	})
	if err != nil {
		return "", describe("GitHub", "verify the token", err, githubSetupHint)
	}
	return "GitHub connected as " + login + ".", nil
}

func formatRepos(repos []domain.Repository) string {
	if len(repos) == 0 {
		return "You have no repositories."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Your repositories (%d):\n", len(repos))
	for _, r := range repos {
		flag := ""
		if r.Private {
			flag = " [private]"
		}
		fmt.Fprintf(&b, "  - %s%s", r.FullName, flag)
		if r.Description != "" {
			fmt.Fprintf(&b, ": %s", r.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func formatIssues(repo, noun string, items []domain.Issue) string {
	if len(items) == 0 {
		return fmt.Sprintf("No open %s in %s.", noun, repo)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Open %s in %s (%d):\n", noun, repo, len(items))
	for _, it := range items {
		fmt.Fprintf(&b, "  #%d %s", it.Number, it.Title)
		if it.Author != "" {
			fmt.Fprintf(&b, " (@%s)", it.Author)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

