// Package journal records calls that reached the fallback factory in a
// SQLite database, so the missing specializations can be compiled in batch.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/reglet-dev/kernelbridge/domain/entities"
	"github.com/reglet-dev/kernelbridge/domain/ports"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Entry is one journaled argument signature.
type Entry struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Function   string
	Signature  string // mangled name a specialization for these arguments would have
	Descriptor []byte // encoded descriptor of the most recent miss
	Hits       int
	SpecID     uuid.UUID
}

// Journal is a SQLite backed ports.FallbackJournal.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.FallbackJournal = (*Journal)(nil)

// Open creates or opens the journal database at path.
// The database uses WAL mode and a single connection.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record implements ports.FallbackJournal. Repeated misses with the same
// argument signature increment the hit count and refresh the descriptor.
func (j *Journal) Record(ctx context.Context, desc entities.Descriptor, encoded []byte) error {
	key := desc.Signature(entities.ReturnsNone()).Mangle()
	now := j.now().UTC().Format(time.RFC3339Nano)

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO fallbacks (function, signature, spec_id, descriptor, hits, first_seen, last_seen)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (function, signature) DO UPDATE SET
			hits = hits + 1,
			descriptor = excluded.descriptor,
			last_seen = excluded.last_seen
	`, desc.Function, key, entities.SpecializationID(key).String(), encoded, now, now)
	if err != nil {
		return fmt.Errorf("record fallback for %s: %w", desc.Function, err)
	}
	return nil
}

// List returns the journaled signatures of function in the order they were
// first seen. An empty function lists every entry.
func (j *Journal) List(ctx context.Context, function string) ([]Entry, error) {
	query := `SELECT function, signature, spec_id, descriptor, hits, first_seen, last_seen FROM fallbacks`
	var args []any
	if function != "" {
		query += ` WHERE function = ?`
		args = append(args, function)
	}
	query += ` ORDER BY id ASC`

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fallbacks: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                   Entry
			specID, first, last string
		)
		if err := rows.Scan(&e.Function, &e.Signature, &specID, &e.Descriptor, &e.Hits, &first, &last); err != nil {
			return nil, fmt.Errorf("scan fallback: %w", err)
		}
		if e.SpecID, err = uuid.Parse(specID); err != nil {
			return nil, fmt.Errorf("parse spec id %q: %w", specID, err)
		}
		if e.FirstSeen, err = time.Parse(time.RFC3339Nano, first); err != nil {
			return nil, fmt.Errorf("parse first_seen: %w", err)
		}
		if e.LastSeen, err = time.Parse(time.RFC3339Nano, last); err != nil {
			return nil, fmt.Errorf("parse last_seen: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
