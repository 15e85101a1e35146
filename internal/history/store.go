package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("history: run not found")

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded sync.
type Run struct {
	ID        int64         `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Strategy  string        `json:"strategy"`
	Target    string        `json:"target"`
	DryRun    bool          `json:"dry_run"`
	Modes     []string      `json:"modes"`
	Warnings  []string      `json:"warnings,omitempty"`
	Backup    string        `json:"backup,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Succeeded reports whether the run completed without error.
func (r Run) Succeeded() bool { return r.Error == "" }

// Store is a SQLite-backed run log. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Record inserts run and returns its ID.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	modes, err := marshalList(run.Modes)
	if err != nil {
		return 0, err
	}
	warnings, err := marshalList(run.Warnings)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (started_at, duration_ns, strategy, target, dry_run, modes, warnings, backup, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(timeLayout), int64(run.Duration), run.Strategy, run.Target,
		boolToInt(run.DryRun), modes, warnings, run.Backup, run.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("history: record run: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ns, strategy, target, dry_run, modes, warnings, backup, error
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: recent rows: %w", err)
	}
	return runs, nil
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id int64) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, duration_ns, strategy, target, dry_run, modes, warnings, backup, error
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return run, err
}

// Prune deletes runs started before cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run                     Run
		startedAt, modes, warns string
		durationNS              int64
		dryRun                  int
	)
	if err := sc.Scan(&run.ID, &startedAt, &durationNS, &run.Strategy, &run.Target,
		&dryRun, &modes, &warns, &run.Backup, &run.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("history: scan run: %w", err)
	}

	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("history: parse started_at %q: %w", startedAt, err)
	}
	run.StartedAt = t
	run.Duration = time.Duration(durationNS)
	run.DryRun = dryRun != 0

	if err := json.Unmarshal([]byte(modes), &run.Modes); err != nil {
		return Run{}, fmt.Errorf("history: unmarshal modes: %w", err)
	}
	if err := json.Unmarshal([]byte(warns), &run.Warnings); err != nil {
		return Run{}, fmt.Errorf("history: unmarshal warnings: %w", err)
	}
	return run, nil
}

func marshalList(list []string) (string, error) {
	if len(list) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("history: marshal list: %w", err)
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
