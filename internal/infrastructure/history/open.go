package history

import (
	"context"
	"strings"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// Open returns the SQLite store at path, or a JSON Lines store next to it
// when the database cannot be opened. The returned warning is non-empty in
// the latter case.
func Open(path string) (ports.HistoryRepository, string) {
	store, err := OpenSQLiteStore(path)
	if err == nil {
		return store, ""
	}
	fallback := strings.TrimSuffix(path, ".db") + ".jsonl"
	return NewFileStore(fallback), "history database unavailable, using " + fallback + ": " + err.Error()
}

// Disabled discards every record. It backs the dispatcher when
// history.enabled is false.
type Disabled struct{}

func (Disabled) Save(context.Context, domain.TurnRecord) error { return nil }

func (Disabled) Recent(context.Context, int) ([]domain.TurnRecord, error) { return nil, nil }

func (Disabled) Stats(context.Context) (domain.UsageStats, error) { return domain.UsageStats{}, nil }

func (Disabled) Clear(context.Context) error { return nil }

var _ ports.HistoryRepository = Disabled{}
