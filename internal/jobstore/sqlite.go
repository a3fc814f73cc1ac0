package jobstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when no job with the requested id exists. It is
// distinct from storage or scoring failures so callers can tell "no such
// job" apart from "operation failed".
var ErrNotFound = errors.New("job not found")

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	description TEXT NOT NULL,
	url         TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	remote      INTEGER NOT NULL DEFAULT 0,
	salary_min  INTEGER NOT NULL DEFAULT 0,
	salary_max  INTEGER NOT NULL DEFAULT 0,
	added_at    TEXT NOT NULL,
	scores      TEXT
);
`

// Store is the SQLite-backed job store.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the job database under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "jobs.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Add persists a job, assigning an id and creation timestamp when unset.
// An existing record with the same id is overwritten wholesale.
func (s *Store) Add(ctx context.Context, job *Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.AddedAt.IsZero() {
		job.AddedAt = time.Now().UTC()
	}

	scoresJSON, err := marshalScores(job.Scores)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, title, company, description, url, location, remote, salary_min, salary_max, added_at, scores)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			description = excluded.description,
			url = excluded.url,
			location = excluded.location,
			remote = excluded.remote,
			salary_min = excluded.salary_min,
			salary_max = excluded.salary_max,
			added_at = excluded.added_at,
			scores = excluded.scores`,
		job.ID, job.Title, job.Company, job.Description, job.URL, job.Location,
		boolToInt(job.Remote), job.SalaryMin, job.SalaryMax,
		job.AddedAt.UTC().Format(time.RFC3339Nano), scoresJSON,
	)
	if err != nil {
		return fmt.Errorf("saving job: %w", err)
	}

	return nil
}

// Get retrieves a job by id, returning ErrNotFound when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, company, description, url, location, remote, salary_min, salary_max, added_at, scores
		FROM jobs WHERE id = ?`, id)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading job %s: %w", id, err)
	}

	return job, nil
}

// List returns all stored jobs, newest first. Equal timestamps order by id
// so listings are stable across runs.
func (s *Store) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, company, description, url, location, remote, salary_min, salary_max, added_at, scores
		FROM jobs ORDER BY added_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// UpdateScores replaces the job's persisted MatchScore in a single
// statement; the previous score is never merged with the new one.
func (s *Store) UpdateScores(ctx context.Context, id string, scores *MatchScore) error {
	scoresJSON, err := marshalScores(scores)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET scores = ? WHERE id = ?`, scoresJSON, id)
	if err != nil {
		return fmt.Errorf("updating scores for job %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a job by id, returning ErrNotFound when it does not exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting job %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job        Job
		remote     int
		addedAt    string
		scoresJSON sql.NullString
	)

	if err := row.Scan(&job.ID, &job.Title, &job.Company, &job.Description,
		&job.URL, &job.Location, &remote, &job.SalaryMin, &job.SalaryMax,
		&addedAt, &scoresJSON); err != nil {
		return nil, err
	}

	job.Remote = remote != 0

	ts, err := time.Parse(time.RFC3339Nano, addedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing added_at %q: %w", addedAt, err)
	}
	job.AddedAt = ts

	if scoresJSON.Valid && scoresJSON.String != "" {
		var scores MatchScore
		if err := json.Unmarshal([]byte(scoresJSON.String), &scores); err != nil {
			return nil, fmt.Errorf("parsing stored scores: %w", err)
		}
		job.Scores = &scores
	}

	return &job, nil
}

func marshalScores(scores *MatchScore) (any, error) {
	if scores == nil {
		return nil, nil
	}
	data, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("encoding scores: %w", err)
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
