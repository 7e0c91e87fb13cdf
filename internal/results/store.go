// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results persists evaluated runs in a SQLite database and exports
// them as YAML or JSON.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/purity-engine/internal/activity"
	"github.com/pdiddy/purity-engine/pkg/types"
)

const dbFile = "results.db"

// ErrRunNotFound is returned when no stored run matches an ID.
var ErrRunNotFound = errors.New("run not found")

// Dose kinds stored in the doses table.
const (
	kindSample      = "sample"
	kindWorkstation = "workstation"
)

// Store manages the results SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the results database at
// cfg.ResultsDir/results.db and creates the schema if it does not exist.
func NewStore(cfg types.ResultsConfig) (*Store, error) {
	dir := cfg.ResultsDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			scenario TEXT NOT NULL,
			decay_time REAL NOT NULL,
			element TEXT,
			dir TEXT,
			source TEXT,
			config TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS activities (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			nuclide TEXT NOT NULL,
			parent TEXT NOT NULL,
			sample INTEGER NOT NULL,
			activity REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_run_id ON activities(run_id)`,
		`CREATE TABLE IF NOT EXISTS doses (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			name TEXT,
			sample INTEGER,
			dose REAL NOT NULL,
			x REAL, y REAL, z REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_doses_run_id ON doses(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Records flattens unit activities into records ordered by parent, sample
// and nuclide.
func Records(units []activity.Unit) []types.ActivityRecord {
	var out []types.ActivityRecord
	for _, u := range units {
		names := make([]string, 0, len(u.Activities))
		for name := range u.Activities {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, types.ActivityRecord{
				Nuclide:  name,
				Parent:   u.Parent,
				Sample:   u.Sample,
				Activity: u.Activities[name],
			})
		}
	}
	return out
}

// SaveRun stores run in one transaction, replacing any run with the same ID.
func (s *Store) SaveRun(ctx context.Context, run types.Run) error {
	if run.ID == "" {
		return fmt.Errorf("run without ID")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	sourceJSON, err := json.Marshal(run.Source)
	if err != nil {
		return fmt.Errorf("encoding run source: %w", err)
	}
	configJSON, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("encoding run config: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
		return fmt.Errorf("deleting previous run: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, scenario, decay_time, element, dir, source, config)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), run.Scenario, run.DecayTime,
		run.Element, run.Dir, string(sourceJSON), string(configJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO activities (run_id, nuclide, parent, sample, activity) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for _, a := range run.Activities {
		if _, err := stmt.ExecContext(ctx, run.ID, a.Nuclide, a.Parent, a.Sample, a.Activity); err != nil {
			return fmt.Errorf("inserting activity of %s: %w", a.Nuclide, err)
		}
	}

	doseStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO doses (run_id, kind, name, sample, dose, x, y, z) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing dose insert: %w", err)
	}
	defer doseStmt.Close()
	for i, d := range run.SampleDoses {
		if _, err := doseStmt.ExecContext(ctx, run.ID, kindSample, nil, i, d, nil, nil, nil); err != nil {
			return fmt.Errorf("inserting sample dose %d: %w", i, err)
		}
	}
	for _, w := range run.Workstations {
		_, err := doseStmt.ExecContext(ctx, run.ID, kindWorkstation, w.Workstation, nil, w.Dose, w.At.X, w.At.Y, w.At.Z)
		if err != nil {
			return fmt.Errorf("inserting workstation dose %s: %w", w.Workstation, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]types.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, scenario, decay_time, element, dir FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []types.RunSummary
	for rows.Next() {
		r, _, _, err := scanRun(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, full bool) (types.RunSummary, string, string, error) {
	var (
		r                     types.RunSummary
		created               string
		element, dir          sql.NullString
		sourceJSON, configStr sql.NullString
	)
	dest := []any{&r.ID, &created, &r.Scenario, &r.DecayTime, &element, &dir}
	if full {
		dest = append(dest, &sourceJSON, &configStr)
	}
	if err := row.Scan(dest...); err != nil {
		return r, "", "", err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return r, "", "", fmt.Errorf("run %s: parsing created_at: %w", r.ID, err)
	}
	r.CreatedAt = t
	r.Element, r.Dir = element.String, dir.String
	return r, sourceJSON.String, configStr.String, nil
}

// LoadRun returns the run whose ID is id or starts with id. An ambiguous
// prefix is an error.
func (s *Store) LoadRun(ctx context.Context, id string) (types.Run, error) {
	if id == "" {
		return types.Run{}, fmt.Errorf("%w: empty ID", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, scenario, decay_time, element, dir, source, config
		 FROM runs WHERE id = ? OR substr(id, 1, length(?)) = ? ORDER BY id`, id, id, id)
	if err != nil {
		return types.Run{}, fmt.Errorf("querying run: %w", err)
	}

	var matches []types.Run
	for rows.Next() {
		summary, sourceJSON, configJSON, err := scanRun(rows, true)
		if err != nil {
			rows.Close()
			return types.Run{}, err
		}
		run := types.Run{RunSummary: summary}
		if sourceJSON != "" {
			_ = json.Unmarshal([]byte(sourceJSON), &run.Source)
		}
		if configJSON != "" {
			if err := json.Unmarshal([]byte(configJSON), &run.Config); err != nil {
				rows.Close()
				return types.Run{}, fmt.Errorf("run %s: decoding config: %w", summary.ID, err)
			}
		}
		if summary.ID == id {
			matches = []types.Run{run}
			break
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return types.Run{}, err
	}

	switch len(matches) {
	case 0:
		return types.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
	default:
		return types.Run{}, fmt.Errorf("run ID prefix %s matches %d runs", id, len(matches))
	}
	run := matches[0]

	if run.Activities, err = s.activities(ctx, run.ID); err != nil {
		return types.Run{}, err
	}
	if err := s.doses(ctx, &run); err != nil {
		return types.Run{}, err
	}
	return run, nil
}

func (s *Store) activities(ctx context.Context, runID string) ([]types.ActivityRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT nuclide, parent, sample, activity FROM activities
		 WHERE run_id = ? ORDER BY parent, sample, nuclide`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var out []types.ActivityRecord
	for rows.Next() {
		var a types.ActivityRecord
		if err := rows.Scan(&a.Nuclide, &a.Parent, &a.Sample, &a.Activity); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) doses(ctx context.Context, run *types.Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, name, sample, dose, x, y, z FROM doses
		 WHERE run_id = ? ORDER BY kind, sample, rowid`, run.ID)
	if err != nil {
		return fmt.Errorf("querying doses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind    string
			name    sql.NullString
			sample  sql.NullInt64
			dose    float64
			x, y, z sql.NullFloat64
		)
		if err := rows.Scan(&kind, &name, &sample, &dose, &x, &y, &z); err != nil {
			return fmt.Errorf("scanning dose: %w", err)
		}
		switch kind {
		case kindSample:
			run.SampleDoses = append(run.SampleDoses, dose)
		case kindWorkstation:
			run.Workstations = append(run.Workstations, types.WorkstationDose{
				Workstation: name.String,
				Dose:        dose,
				At:          types.Point{X: x.Float64, Y: y.Float64, Z: z.Float64},
			})
		}
	}
	return rows.Err()
}

// DeleteRun removes a run and its rows.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
