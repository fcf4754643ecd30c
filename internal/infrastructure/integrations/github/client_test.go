package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/quack-go/internal/domain"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client, err := New("ghp_test", server.URL, time.Second)
	require.NoError(t, err)
	return client
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New("  ", "", time.Second)
	assert.ErrorIs(t, err, domain.ErrAuthMissing)
}

func TestListIssuesQualifiesRepoAndSkipsPulls(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ghp_test", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"login":"octo"}`)
	})
	mux.HandleFunc("/repos/octo/demo/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[
			{"number":1,"title":"Bug","state":"open","html_url":"u1","user":{"login":"a"}},
			{"number":2,"title":"PR","state":"open","html_url":"u2","user":{"login":"b"},"pull_request":{}}
		]`)
	})
	client := newTestClient(t, mux)

	issues, err := client.ListIssues(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, []domain.Issue{{Number: 1, Title: "Bug", State: "open", URL: "u1", Author: "a"}}, issues)
}

func TestCreateRepo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "demo", body["name"])
		assert.Equal(t, true, body["private"])
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"name":"demo","full_name":"octo/demo","private":true,"html_url":"https://github.com/octo/demo"}`)
	})
	client := newTestClient(t, mux)

	repo, err := client.CreateRepo(context.Background(), "demo", "", true)
	require.NoError(t, err)
	assert.Equal(t, "octo/demo", repo.FullName)
	assert.True(t, repo.Private)
}

func TestCloseIssueUsesQualifiedName(t *testing.T) {
	var method string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/team/app/issues/7", func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		fmt.Fprint(w, `{"number":7,"state":"closed"}`)
	})
	client := newTestClient(t, mux)

	require.NoError(t, client.CloseIssue(context.Background(), "team/app", 7))
	assert.Equal(t, http.MethodPatch, method)
}

func TestBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Bad credentials"}`)
	})
	client := newTestClient(t, mux)

	_, err := client.ListRepos(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthMissing)
}
