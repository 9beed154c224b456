// Package sqlitestate persists hatchery state slots in a local sqlite file
// so the CLI can operate on a durable contract instance without a chain
// runtime behind it. Zero values are deleted rather than stored, matching
// the slot-store convention that an absent slot reads as zero.
package sqlitestate

import (
	"context"
	"database/sql"
	"fmt"

	_ "embed"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the state file at path and applies the
// schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetState reads a slot. The StateAccess interface leaves no room for an
// error return; a read failure is logged and reads as zero.
func (s *Store) GetState(addr common.Address, key common.Hash) common.Hash {
	row := s.db.QueryRow(`SELECT value FROM slots WHERE address = ? AND slot = ?`, addr[:], key[:])

	var value []byte
	if err := row.Scan(&value); err != nil {
		if err != sql.ErrNoRows {
			log.Error("failed to read state slot", "slot", key, "error", err)
		}
		return common.Hash{}
	}
	return common.BytesToHash(value)
}

// SetState writes a slot and returns its previous value. Writing the zero
// value deletes the row.
func (s *Store) SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash {
	prev := s.GetState(addr, key)

	var err error
	if value == (common.Hash{}) {
		_, err = s.db.Exec(`DELETE FROM slots WHERE address = ? AND slot = ?`, addr[:], key[:])
	} else {
		_, err = s.db.Exec(
			`INSERT INTO slots (address, slot, value) VALUES (?, ?, ?)
			 ON CONFLICT (address, slot) DO UPDATE SET value = excluded.value`,
			addr[:], key[:], value[:],
		)
	}
	if err != nil {
		log.Error("failed to write state slot", "slot", key, "error", err)
	}

	return prev
}
