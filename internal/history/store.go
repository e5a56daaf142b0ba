package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Result is one finished test run. Mbps is zero for ping runs; LatencyMs is
// zero for transfer runs.
type Result struct {
	ID          string
	Timestamp   time.Time
	Kind        string // upload, download or ping
	Host        string
	Bytes       int64
	Connections int
	Mbps        float64
	LatencyMs   float64
}

// Store keeps past results in a local sqlite database.
type Store struct {
	db *sql.DB
}

const schema = `CREATE TABLE IF NOT EXISTS results (
	id TEXT PRIMARY KEY,
	timestamp INTEGER NOT NULL,
	kind TEXT NOT NULL,
	host TEXT NOT NULL,
	bytes INTEGER NOT NULL,
	connections INTEGER NOT NULL,
	mbps REAL NOT NULL,
	latency_ms REAL NOT NULL
)`

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// Ping makes sure the file is actually accessible and the DSN is valid
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create results table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Save(r Result) error {
	query := `INSERT OR REPLACE INTO results (id, timestamp, kind, host, bytes, connections, mbps, latency_ms)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query,
		r.ID,
		r.Timestamp.Unix(),
		r.Kind,
		r.Host,
		r.Bytes,
		r.Connections,
		r.Mbps,
		r.LatencyMs,
	)
	return err
}

// Recent returns up to limit results, newest first.
func (s *Store) Recent(limit int) ([]Result, error) {
	rows, err := s.db.Query(
		"SELECT id, timestamp, kind, host, bytes, connections, mbps, latency_ms FROM results ORDER BY timestamp DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var ts int64
		if err := rows.Scan(&r.ID, &ts, &r.Kind, &r.Host, &r.Bytes, &r.Connections, &r.Mbps, &r.LatencyMs); err != nil {
			return nil, err
		}
		r.Timestamp = time.Unix(ts, 0)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
