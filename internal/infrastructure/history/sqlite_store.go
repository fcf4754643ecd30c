package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/quack-go/internal/domain"
	"github.com/doeshing/quack-go/internal/ports"
)

// SQLiteStore persists dispatched turns in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// OpenSQLiteStore creates (or opens) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialise history database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		session_id TEXT,
		request TEXT,
		response TEXT,
		route TEXT,
		domain TEXT,
		operation TEXT,
		model TEXT,
		success INTEGER
	);
	CREATE INDEX IF NOT EXISTS turns_timestamp ON turns(timestamp);`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(ctx context.Context, record domain.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO turns
		(timestamp, session_id, request, response, route, domain, operation, model, success)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Timestamp.UTC().Format(time.RFC3339Nano),
		record.SessionID,
		record.Request,
		record.Response,
		string(record.Route),
		string(record.Domain),
		record.Operation,
		record.Model,
		boolToInt(record.Success),
	)
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. A non-positive limit
// returns everything.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.TurnRecord, error) {
	query := `SELECT timestamp, session_id, request, response, route, domain, operation, model, success
		FROM turns ORDER BY id DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var records []domain.TurnRecord
	for rows.Next() {
		var rec domain.TurnRecord
		var ts, route, dom string
		var success int
		if err := rows.Scan(&ts, &rec.SessionID, &rec.Request, &rec.Response, &route, &dom, &rec.Operation, &rec.Model, &success); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.Timestamp = t.Local()
		}
		rec.Route = domain.Route(route)
		rec.Domain = domain.Domain(dom)
		rec.Success = success == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats aggregates the whole log in SQL.
func (s *SQLiteStore) Stats(ctx context.Context) (domain.UsageStats, error) {
	var stats domain.UsageStats
	var first, last sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(1 - success), 0),
		COUNT(DISTINCT session_id), MIN(timestamp), MAX(timestamp) FROM turns`).
		Scan(&stats.Total, &stats.Failures, &stats.Sessions, &first, &last)
	if err != nil {
		return domain.UsageStats{}, fmt.Errorf("aggregate turns: %w", err)
	}
	if first.Valid {
		stats.First, _ = time.Parse(time.RFC3339Nano, first.String)
	}
	if last.Valid {
		stats.Last, _ = time.Parse(time.RFC3339Nano, last.String)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT route, domain, operation, COUNT(*) AS n FROM turns
		GROUP BY route, domain, operation ORDER BY n DESC, route, domain, operation`)
	if err != nil {
		return domain.UsageStats{}, fmt.Errorf("group turns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var row domain.RouteCount
		var route, dom string
		if err := rows.Scan(&route, &dom, &row.Operation, &row.Count); err != nil {
			return domain.UsageStats{}, fmt.Errorf("scan route count: %w", err)
		}
		row.Route = domain.Route(route)
		row.Domain = domain.Domain(dom)
		stats.ByRoute = append(stats.ByRoute, row)
	}
	return stats, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM turns"); err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}
	return nil
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
