package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// FileStore appends turn records to a JSON Lines file. It is used when the
// SQLite database cannot be opened.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save implements ports.HistoryRepository.
func (f *FileStore) Save(_ context.Context, record domain.TurnRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write turn: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (f *FileStore) Recent(_ context.Context, limit int) ([]domain.TurnRecord, error) {
	records, err := f.records()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Stats aggregates every stored record.
func (f *FileStore) Stats(context.Context) (domain.UsageStats, error) {
	records, err := f.records()
	if err != nil {
		return domain.UsageStats{}, err
	}
	return aggregate(records), nil
}

// Clear removes the history file.
func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// records loads all entries, skipping lines that do not decode.
func (f *FileStore) records() ([]domain.TurnRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var records []domain.TurnRecord
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec domain.TurnRecord
		if err := json.Unmarshal(line, &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

func aggregate(records []domain.TurnRecord) domain.UsageStats {
	var stats domain.UsageStats
	sessions := make(map[string]bool)
	counts := make(map[domain.RouteCount]int)
	for _, rec := range records {
		stats.Total++
		if !rec.Success {
			stats.Failures++
		}
		sessions[rec.SessionID] = true
		if stats.First.IsZero() || rec.Timestamp.Before(stats.First) {
			stats.First = rec.Timestamp
		}
		if rec.Timestamp.After(stats.Last) {
			stats.Last = rec.Timestamp
		}
		counts[domain.RouteCount{Route: rec.Route, Domain: rec.Domain, Operation: rec.Operation}]++
	}
	stats.Sessions = len(sessions)
	for key, n := range counts {
		key.Count = n
		stats.ByRoute = append(stats.ByRoute, key)
	}
	sort.Slice(stats.ByRoute, func(i, j int) bool {
		a, b := stats.ByRoute[i], stats.ByRoute[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Route != b.Route {
			return a.Route < b.Route
		}
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		return a.Operation < b.Operation
	})
	return stats
}

var _ ports.HistoryRepository = (*FileStore)(nil)
