// Package store persists yearly island snapshots in SQLite.
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"biosim/internal/sims/biosim"
)

// DB wraps a SQLite connection for snapshot storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		geography TEXT NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS years (
		run_id TEXT NOT NULL REFERENCES runs(id),
		year INTEGER NOT NULL,
		herbivores INTEGER NOT NULL,
		carnivores INTEGER NOT NULL,
		herbivore_weight_mean REAL NOT NULL,
		carnivore_weight_mean REAL NOT NULL,
		PRIMARY KEY (run_id, year)
	);

	CREATE TABLE IF NOT EXISTS cells (
		run_id TEXT NOT NULL REFERENCES runs(id),
		year INTEGER NOT NULL,
		row INTEGER NOT NULL,
		col INTEGER NOT NULL,
		herbivores INTEGER NOT NULL,
		carnivores INTEGER NOT NULL,
		food REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cells_run_year ON cells(run_id, year);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunRow is one stored simulation run.
type RunRow struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	Geography string `db:"geography"`
	StartedAt string `db:"started_at"`
}

// YearRow is the island-wide summary of one year.
type YearRow struct {
	RunID               string  `db:"run_id"`
	Year                int     `db:"year"`
	Herbivores          int     `db:"herbivores"`
	Carnivores          int     `db:"carnivores"`
	HerbivoreWeightMean float64 `db:"herbivore_weight_mean"`
	CarnivoreWeightMean float64 `db:"carnivore_weight_mean"`
}

// CellRow is the state of one habitable cell in one year.
type CellRow struct {
	RunID      string  `db:"run_id"`
	Year       int     `db:"year"`
	Row        int     `db:"row"`
	Col        int     `db:"col"`
	Herbivores int     `db:"herbivores"`
	Carnivores int     `db:"carnivores"`
	Food       float64 `db:"food"`
}

// Run records the snapshots of one simulation. It implements
// biosim.SnapshotSink.
type Run struct {
	ID    string
	db    *DB
	cells bool
}

// BeginRun registers a new run. With cells set, every yearly snapshot also
// stores the per-cell counts of habitable cells.
func (db *DB) BeginRun(seed int64, geography string, cells bool) (*Run, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		`INSERT INTO runs (id, seed, geography, started_at) VALUES (?, ?, ?, ?)`,
		id, seed, geography, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Run{ID: id, db: db, cells: cells}, nil
}

// Record stores one yearly snapshot in a single transaction.
func (r *Run) Record(snap biosim.Snapshot) error {
	tx, err := r.db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	row := YearRow{
		RunID:               r.ID,
		Year:                snap.Year,
		Herbivores:          snap.Herbivores,
		Carnivores:          snap.Carnivores,
		HerbivoreWeightMean: snap.MeanWeight(biosim.Herbivore),
		CarnivoreWeightMean: snap.MeanWeight(biosim.Carnivore),
	}
	_, err = tx.NamedExec(`INSERT INTO years (run_id, year, herbivores, carnivores, herbivore_weight_mean, carnivore_weight_mean)
		VALUES (:run_id, :year, :herbivores, :carnivores, :herbivore_weight_mean, :carnivore_weight_mean)`, row)
	if err != nil {
		return fmt.Errorf("insert year %d: %w", snap.Year, err)
	}

	if r.cells {
		stmt, err := tx.Preparex(`INSERT INTO cells (run_id, year, row, col, herbivores, carnivores, food) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare cells: %w", err)
		}
		defer stmt.Close()
		for _, c := range snap.Cells {
			if c.Terrain == biosim.Water {
				continue
			}
			if _, err := stmt.Exec(r.ID, snap.Year, c.Loc.Row, c.Loc.Col, c.Herbivores, c.Carnivores, c.Food); err != nil {
				return fmt.Errorf("insert cell %s: %w", c.Loc, err)
			}
		}
	}
	return tx.Commit()
}

// Runs lists every stored run, oldest first.
func (db *DB) Runs() ([]RunRow, error) {
	var rows []RunRow
	err := db.conn.Select(&rows, `SELECT id, seed, geography, started_at FROM runs ORDER BY started_at, id`)
	return rows, err
}

// Years returns the yearly summaries of a run in order.
func (db *DB) Years(runID string) ([]YearRow, error) {
	var rows []YearRow
	err := db.conn.Select(&rows, `SELECT * FROM years WHERE run_id = ? ORDER BY year`, runID)
	return rows, err
}

// CellHistory returns the stored history of one cell.
func (db *DB) CellHistory(runID string, loc biosim.Loc) ([]CellRow, error) {
	var rows []CellRow
	err := db.conn.Select(&rows,
		`SELECT * FROM cells WHERE run_id = ? AND row = ? AND col = ? ORDER BY year`,
		runID, loc.Row, loc.Col)
	return rows, err
}
