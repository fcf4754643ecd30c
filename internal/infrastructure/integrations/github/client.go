// Package github implements ports.GitHubService over the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/infrastructure/integrations/rest"
	"github.com/doeshing/quack-go/internal/ports"
)

const perPage = 30

// Client talks to the GitHub REST API with a personal access token.
type Client struct {
	api   *rest.Client
	login string
}

// New returns a client for token. An empty apiURL selects api.github.com.
func New(token, apiURL string, timeout time.Duration) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: GitHub token is not configured", domain.ErrAuthMissing)
	}
	if apiURL == "" {
		apiURL = domain.DefaultGitHubAPIURL
	}
	return &Client{api: rest.New("GitHub", apiURL, timeout, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
		r.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	})}, nil
}

type repoPayload struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	HTMLURL     string `json:"html_url"`
	Stars       int    `json:"stargazers_count"`
}

func (p repoPayload) toDomain() domain.Repository {
	return domain.Repository{
		Name:        p.Name,
		FullName:    p.FullName,
		Description: p.Description,
		Private:     p.Private,
		URL:         p.HTMLURL,
		Stars:       p.Stars,
	}
}

type issuePayload struct {
	Number      int         `json:"number"`
	Title       string      `json:"title"`
	State       string      `json:"state"`
	HTMLURL     string      `json:"html_url"`
	User        userPayload `json:"user"`
	PullRequest *struct{}   `json:"pull_request"`
}

type userPayload struct {
	Login string `json:"login"`
}

func (p issuePayload) toDomain() domain.Issue {
	return domain.Issue{Number: p.Number, Title: p.Title, State: p.State, URL: p.HTMLURL, Author: p.User.Login}
}

// CurrentUser returns the login the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	if c.login != "" {
		return c.login, nil
	}
	var user userPayload
	if err := c.api.JSON(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return "", err
	}
	c.login = user.Login
	return user.Login, nil
}

// ListRepos returns the most recently updated repositories of the user.
func (c *Client) ListRepos(ctx context.Context) ([]domain.Repository, error) {
	var payload []repoPayload
	path := fmt.Sprintf("/user/repos?sort=updated&per_page=%d", perPage)
	if err := c.api.JSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	repos := make([]domain.Repository, 0, len(payload))
	for _, p := range payload {
		repos = append(repos, p.toDomain())
	}
	return repos, nil
}

// CreateRepo creates a repository owned by the user.
func (c *Client) CreateRepo(ctx context.Context, name, description string, private bool) (domain.Repository, error) {
	body := map[string]interface{}{
		"name":        name,
		"description": description,
		"private":     private,
		"auto_init":   true,
	}
	var payload repoPayload
	if err := c.api.JSON(ctx, http.MethodPost, "/user/repos", body, &payload); err != nil {
		return domain.Repository{}, err
	}
	return payload.toDomain(), nil
}

// ListIssues returns open issues, excluding pull requests.
func (c *Client) ListIssues(ctx context.Context, repo string) ([]domain.Issue, error) {
	path, err := c.repoPath(ctx, repo)
	if err != nil {
		return nil, err
	}
	var payload []issuePayload
	if err := c.api.JSON(ctx, http.MethodGet, fmt.Sprintf("%s/issues?state=open&per_page=%d", path, perPage), nil, &payload); err != nil {
		return nil, err
	}
	issues := make([]domain.Issue, 0, len(payload))
	for _, p := range payload {
		if p.PullRequest != nil {
			continue
		}
		issues = append(issues, p.toDomain())
	}
	return issues, nil
}

// CreateIssue opens an issue.
func (c *Client) CreateIssue(ctx context.Context, repo, title, body string) (domain.Issue, error) {
	path, err := c.repoPath(ctx, repo)
	if err != nil {
		return domain.Issue{}, err
	}
	var payload issuePayload
	req := map[string]string{"title": title, "body": body}
	if err := c.api.JSON(ctx, http.MethodPost, path+"/issues", req, &payload); err != nil {
		return domain.Issue{}, err
	}
	return payload.toDomain(), nil
}

// CloseIssue closes issue number in repo.
func (c *Client) CloseIssue(ctx context.Context, repo string, number int) error {
	path, err := c.repoPath(ctx, repo)
	if err != nil {
		return err
	}
	return c.api.JSON(ctx, http.MethodPatch, fmt.Sprintf("%s/issues/%d", path, number), map[string]string{"state": "closed"}, nil)
}

// ListPullRequests returns open pull requests.
func (c *Client) ListPullRequests(ctx context.Context, repo string) ([]domain.Issue, error) {
	path, err := c.repoPath(ctx, repo)
	if err != nil {
		return nil, err
	}
	var payload []issuePayload
	if err := c.api.JSON(ctx, http.MethodGet, fmt.Sprintf("%s/pulls?state=open&per_page=%d", path, perPage), nil, &payload); err != nil {
		return nil, err
	}
	pulls := make([]domain.Issue, 0, len(payload))
	for _, p := range payload {
		pulls = append(pulls, p.toDomain())
	}
	return pulls, nil
}

// repoPath qualifies a bare repository name with the user's login.
func (c *Client) repoPath(ctx context.Context, repo string) (string, error) {
	repo = strings.Trim(strings.TrimSpace(repo), "/")
	if repo == "" {
		return "", fmt.Errorf("%w: repository name is empty", domain.ErrInvalidInput)
	}
	if !strings.Contains(repo, "/") {
		login, err := c.CurrentUser(ctx)
		if err != nil {
			return "", err
		}
		repo = login + "/" + repo
	}
	return "/repos/" + rest.PathEscape(repo), nil
}

var _ ports.GitHubService = (*Client)(nil)
