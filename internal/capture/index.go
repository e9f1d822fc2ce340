package capture

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const (
	createTableTmpl = `CREATE TABLE IF NOT EXISTS captures (
		"ID"           TEXT NOT NULL PRIMARY KEY,
		"Name"         TEXT NOT NULL,
		"FrequencyHz"  INTEGER,
		"SampleRateHz" INTEGER,
		"Blocks"       INTEGER,
		"Events"       INTEGER,
		"Bytes"        INTEGER,
		"CreatedAt"    INTEGER
	);`
	insertCaptureTmpl = `INSERT INTO captures (
		ID,
		Name,
		FrequencyHz,
		SampleRateHz,
		Blocks,
		Events,
		Bytes,
		CreatedAt
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
)

// Record describes one flushed capture in the catalog.
type Record struct {
	ID           string
	Name         string
	FrequencyHz  int
	SampleRateHz int
	Blocks       int
	Events       int
	Bytes        int
	CreatedAt    time.Time
}

// Index is an optional SQLite catalog of flushed captures, one row per
// capture file. It lets a capture directory be queried without parsing
// file names.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (creating if necessary) the SQLite catalog at path.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite DB %q: %w", path, err)
	}
	if err := createTableIfNotExists(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create captures table: %w", err)
	}
	return &Index{db: db}, nil
}

// Add inserts one capture record. An empty ID is assigned a fresh UUID.
func (x *Index) Add(rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	statement, err := x.db.Prepare(insertCaptureTmpl)
	if err != nil {
		return err
	}
	defer statement.Close()
	if _, err := statement.Exec(rec.ID, rec.Name, rec.FrequencyHz, rec.SampleRateHz,
		rec.Blocks, rec.Events, rec.Bytes, rec.CreatedAt.UnixMilli()); err != nil {
		return err
	}
	return nil
}

// Close releases the underlying database handle.
func (x *Index) Close() error {
	return x.db.Close()
}

func createTableIfNotExists(db *sql.DB) error {
	statement, err := db.Prepare(createTableTmpl)
	if err != nil {
		return err
	}
	defer statement.Close()
	if _, err := statement.Exec(); err != nil {
		return err
	}
	return nil
}
