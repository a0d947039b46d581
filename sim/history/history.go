// Package history keeps a local SQLite log of resolved submissions so learners
// can look back at what they ran.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/eduwrench/simclient/sim/submit"
)

// Entry is one resolved submission.
type Entry struct {
	ID         string
	RequestID  string
	Scenario   string
	Generation uint64
	User       string
	Outcome    string // phase name of the resolved state
	Records    int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// EntryFromState builds an entry for a controller state reached at finished.
func EntryFromState(scenarioName, user string, s submit.State, started, finished time.Time) Entry {
	e := Entry{
		RequestID:  s.RequestID,
		Scenario:   scenarioName,
		Generation: s.Generation,
		User:       user,
		Outcome:    s.Phase.String(),
		StartedAt:  started,
		FinishedAt: finished,
	}
	if s.Result != nil {
		e.Records = len(s.Result.Records)
	}
	if s.Err != nil {
		e.Error = s.Err.Error()
	}
	return e
}

// Store persists entries in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path. Use ":memory:"
// for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing history database: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS submissions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		request_id TEXT NOT NULL,
		scenario TEXT NOT NULL,
		generation INTEGER NOT NULL,
		user_name TEXT NOT NULL,
		outcome TEXT NOT NULL,
		records INTEGER NOT NULL,
		error TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	)`)
	return err
}

// Record stores e, assigning an ID when it has none. Returns the stored ID.
func (s *Store) Record(e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO submissions (id, request_id, scenario, generation, user_name, outcome, records, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RequestID, e.Scenario, int64(e.Generation), e.User, e.Outcome, e.Records, e.Error,
		e.StartedAt.UTC().Format(time.RFC3339Nano), e.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("recording submission %s: %w", e.RequestID, err)
	}
	return e.ID, nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, request_id, scenario, generation, user_name, outcome, records, error, started_at, finished_at
		FROM submissions ORDER BY seq DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var gen int64
		var started, finished string
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Scenario, &gen, &e.User, &e.Outcome, &e.Records, &e.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Generation = uint64(gen)
		e.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		e.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
