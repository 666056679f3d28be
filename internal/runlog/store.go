// Package runlog keeps a durable ledger of prepared launches in SQLite so
// the grid, timestep and stage schedule of any past run can be inspected
// without reparsing the generated input files.
package runlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	mode        INTEGER NOT NULL,
	save_dir    TEXT NOT NULL,
	nx          INTEGER NOT NULL,
	ny          INTEGER NOT NULL,
	dh          REAL NOT NULL,
	dt          REAL NOT NULL,
	nt          INTEGER NOT NULL,
	max_freq    REAL,
	created_at  TEXT NOT NULL,
	notes       TEXT
);

CREATE TABLE IF NOT EXISTS run_stages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	position    INTEGER NOT NULL,
	fc_low      REAL NOT NULL,
	fc_high     REAL NOT NULL,
	lnorm       INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region store-struct
// Store manages the run ledger in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region new-run-id
// NewRunID allocates a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// #endregion new-run-id

// #region record-run
// RecordRun inserts a run and its stage schedule atomically. A zero RunID
// or CreatedAt is filled in before the insert.
func (s *Store) RecordRun(rec RunRecord, stages []StageRecord) (RunRecord, error) {
	if rec.RunID == "" {
		rec.RunID = NewRunID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return RunRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, name, mode, save_dir, nx, ny, dh, dt, nt, max_freq, created_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Name, rec.Mode, rec.SaveDir,
		rec.NX, rec.NY, rec.DH, rec.DT, rec.NT,
		nullIfZero(rec.MaxFreq), rec.CreatedAt.Format(time.RFC3339Nano),
		nullIfEmpty(rec.Notes),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}

	for _, st := range stages {
		_, err = tx.Exec(
			`INSERT INTO run_stages (run_id, position, fc_low, fc_high, lnorm)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.RunID, st.Position, st.FCLow, st.FCHigh, st.LNorm,
		)
		if err != nil {
			return RunRecord{}, fmt.Errorf("insert stage %d: %w", st.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return RunRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// #endregion record-run

// #region get-run
// GetRun retrieves a run and its stages by ID.
func (s *Store) GetRun(id string) (RunRecord, []StageRecord, error) {
	var rec RunRecord
	var maxFreq sql.NullFloat64
	var createdStr string
	var notes sql.NullString

	err := s.db.QueryRow(
		`SELECT run_id, name, mode, save_dir, nx, ny, dh, dt, nt, max_freq, created_at, notes
		 FROM runs WHERE run_id = ?`, id,
	).Scan(&rec.RunID, &rec.Name, &rec.Mode, &rec.SaveDir,
		&rec.NX, &rec.NY, &rec.DH, &rec.DT, &rec.NT,
		&maxFreq, &createdStr, &notes)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("get run %s: %w", id, err)
	}

	if maxFreq.Valid {
		rec.MaxFreq = maxFreq.Float64
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	if notes.Valid {
		rec.Notes = notes.String
	}

	rows, err := s.db.Query(
		`SELECT position, fc_low, fc_high, lnorm FROM run_stages
		 WHERE run_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("get stages: %w", err)
	}
	defer rows.Close()

	var stages []StageRecord
	for rows.Next() {
		var st StageRecord
		if err := rows.Scan(&st.Position, &st.FCLow, &st.FCHigh, &st.LNorm); err != nil {
			return RunRecord{}, nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, st)
	}
	return rec, stages, rows.Err()
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, name, mode, save_dir, nx, ny, dh, dt, nt, max_freq, created_at, notes
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var maxFreq sql.NullFloat64
		var createdStr string
		var notes sql.NullString

		if err := rows.Scan(&rec.RunID, &rec.Name, &rec.Mode, &rec.SaveDir,
			&rec.NX, &rec.NY, &rec.DH, &rec.DT, &rec.NT,
			&maxFreq, &createdStr, &notes); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if maxFreq.Valid {
			rec.MaxFreq = maxFreq.Float64
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		if notes.Valid {
			rec.Notes = notes.String
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-runs

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(f float64) interface{} {
	if f == 0 {
		return nil
	}
	return f
}

// #endregion helpers
