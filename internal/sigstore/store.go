// Package sigstore persists resolved function signatures of checked
// modules. Checking a module assumes its dependencies' signatures are
// already resolved; the store is where a previous run left them.
package sigstore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// FunctionSig is one stored signature. Params and Return hold the
// printed type forms; they are opaque to the store.
type FunctionSig struct {
	Module string
	Name   string
	Params []string
	Return string
}

// Store is a signature archive backed by a single SQLite file.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS modules (
	name     TEXT NOT NULL,
	version  TEXT NOT NULL,
	run_id   TEXT NOT NULL,
	PRIMARY KEY (name)
);
CREATE TABLE IF NOT EXISTS signatures (
	module   TEXT NOT NULL,
	name     TEXT NOT NULL,
	params   TEXT NOT NULL,
	return_t TEXT NOT NULL,
	PRIMARY KEY (module, name),
	FOREIGN KEY (module) REFERENCES modules(name) ON DELETE CASCADE
);
`

// Open opens or creates the store at path. Use ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open signature store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init signature store: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordModule replaces the stored signatures of one module with the
// given set, stamped with the producing run's identity.
func (s *Store) RecordModule(name, version string, runID uuid.UUID, sigs []FunctionSig) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM signatures WHERE module = ?`, name); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO modules (name, version, run_id) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET version = excluded.version, run_id = excluded.run_id`,
		name, version, runID.String(),
	); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	for _, sig := range sigs {
		if _, err := tx.Exec(
			`INSERT INTO signatures (module, name, params, return_t) VALUES (?, ?, ?, ?)`,
			name, sig.Name, strings.Join(sig.Params, ","), sig.Return,
		); err != nil {
			return fmt.Errorf("record %s.%s: %w", name, sig.Name, err)
		}
	}
	return tx.Commit()
}

// Signatures returns the stored signatures of one module in name order.
func (s *Store) Signatures(module string) ([]FunctionSig, error) {
	rows, err := s.db.Query(
		`SELECT name, params, return_t FROM signatures WHERE module = ? ORDER BY name`,
		module,
	)
	if err != nil {
		return nil, fmt.Errorf("signatures of %s: %w", module, err)
	}
	defer rows.Close()

	var sigs []FunctionSig
	for rows.Next() {
		sig := FunctionSig{Module: module}
		var params string
		if err := rows.Scan(&sig.Name, &params, &sig.Return); err != nil {
			return nil, fmt.Errorf("signatures of %s: %w", module, err)
		}
		if params != "" {
			sig.Params = strings.Split(params, ",")
		}
		sigs = append(sigs, sig)
	}
	return sigs, rows.Err()
}

// ModuleVersion returns the stored semantics version of a module, or
// ok=false when the module was never recorded.
func (s *Store) ModuleVersion(module string) (version string, ok bool, err error) {
	row := s.db.QueryRow(`SELECT version FROM modules WHERE name = ?`, module)
	switch err := row.Scan(&version); err {
	case nil:
		return version, true, nil
	case sql.ErrNoRows:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("version of %s: %w", module, err)
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
