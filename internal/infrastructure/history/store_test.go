package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

func sampleTurns() []domain.TurnRecord {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return []domain.TurnRecord{
		{Timestamp: base, SessionID: "a", Request: "/help", Route: domain.RouteCommand, Domain: domain.DomainCommand, Operation: "/help", Success: true},
		{Timestamp: base.Add(time.Minute), SessionID: "a", Request: "list my repos", Route: domain.RouteIntent, Domain: domain.DomainGitHub, Operation: domain.OpListRepos, Success: true},
		{Timestamp: base.Add(2 * time.Minute), SessionID: "b", Request: "show my repositories", Route: domain.RouteIntent, Domain: domain.DomainGitHub, Operation: domain.OpListRepos, Success: false},
		{Timestamp: base.Add(3 * time.Minute), SessionID: "b", Request: "capital of France?", Response: "Paris", Route: domain.RouteFallback, Domain: domain.DomainNone, Operation: "complete", Model: "gemini", Success: true},
	}
}

func stores(t *testing.T) map[string]ports.HistoryRepository {
	dir := t.TempDir()
	sqlite, err := OpenSQLiteStore(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]ports.HistoryRepository{
		"sqlite": sqlite,
		"jsonl":  NewFileStore(filepath.Join(dir, "history.jsonl")),
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, rec := range sampleTurns() {
				require.NoError(t, store.Save(ctx, rec))
			}

			recent, err := store.Recent(ctx, 2)
			require.NoError(t, err)
			require.Len(t, recent, 2)
			assert.Equal(t, "capital of France?", recent[0].Request)
			assert.Equal(t, "Paris", recent[0].Response)
			assert.Equal(t, "show my repositories", recent[1].Request)
			assert.False(t, recent[1].Success)

			stats, err := store.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, 4, stats.Total)
			assert.Equal(t, 1, stats.Failures)
			assert.Equal(t, 2, stats.Sessions)
			assert.True(t, stats.First.Equal(sampleTurns()[0].Timestamp))
			assert.True(t, stats.Last.Equal(sampleTurns()[3].Timestamp))
			want := []domain.RouteCount{
				{Route: domain.RouteIntent, Domain: domain.DomainGitHub, Operation: domain.OpListRepos, Count: 2},
				{Route: domain.RouteCommand, Domain: domain.DomainCommand, Operation: "/help", Count: 1},
				{Route: domain.RouteFallback, Domain: domain.DomainNone, Operation: "complete", Count: 1},
			}
			if diff := cmp.Diff(want, stats.ByRoute); diff != "" {
				t.Errorf("ByRoute mismatch (-want +got):\n%s", diff)
			}

			require.NoError(t, store.Clear(ctx))
			stats, err = store.Stats(ctx)
			require.NoError(t, err)
			assert.Zero(t, stats.Total)
			recent, err = store.Recent(ctx, 0)
			require.NoError(t, err)
			assert.Empty(t, recent)
		})
	}
}

func TestOpenFallsBackToFile(t *testing.T) {
	dir := t.TempDir()
	// A directory where the database file should be makes sqlite fail.
	blocked := filepath.Join(dir, "history.db")
	require.NoError(t, NewFileStore(filepath.Join(blocked, "x.jsonl")).Save(context.Background(), domain.TurnRecord{}))

	store, warning := Open(blocked)
	assert.NotEmpty(t, warning)
	fileStore, ok := store.(*FileStore)
	require.True(t, ok, "got %T", store)
	assert.Equal(t, filepath.Join(dir, "history.jsonl"), fileStore.Path())
}
