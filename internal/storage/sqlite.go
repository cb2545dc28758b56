// Package storage archives derived flow records in a SQLite database so a
// run's output can be inspected or re-plotted later without recomputing.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mvankuijk/runoffcalc/internal/flow"
)

const schema = `
CREATE TABLE IF NOT EXISTS derived_records (
	time          TEXT NOT NULL,
	height_cm     REAL NOT NULL,
	discharge_lpm REAL NOT NULL,
	storage_lpm   REAL NOT NULL,
	inflow_lpm    REAL
);
`

// Archive is a handle on the SQLite results database.
type Archive struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping results database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create derived_records table: %w", err)
	}
	return &Archive{db: db, path: path}, nil
}

// WriteRecords inserts the derived series in one transaction. A record with
// a missing inflow (the first of every series) is stored with a NULL
// inflow_lpm, never a zero.
func (a *Archive) WriteRecords(records []flow.Record) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO derived_records
		(time, height_cm, discharge_lpm, storage_lpm, inflow_lpm)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		inflow := sql.NullFloat64{Float64: r.InflowLPM, Valid: r.InflowValid}
		if _, err := stmt.Exec(r.Time.UTC().Format(time.RFC3339), r.HeightCM, r.DischargeLPM, r.StorageLPM, inflow); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
