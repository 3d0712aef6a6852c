// Package sqlstore keeps the party snapshot in a SQLite database.
//
// Each Save replaces both tables inside one transaction, so a reader never
// sees half of a snapshot.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tndm-coder/fate-ardent-bot/internal/game"
	"github.com/tndm-coder/fate-ardent-bot/internal/storage"

	_ "modernc.org/sqlite"
)

// Store is a storage.Storer for *game.Snapshot backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ storage.Storer[*game.Snapshot] = (*Store)(nil)

// New opens (or creates) the database at path and initializes the schema.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS participants (
		identity TEXT PRIMARY KEY,
		name     TEXT NOT NULL DEFAULT '',
		hp       INTEGER NOT NULL DEFAULT 100
	);

	CREATE TABLE IF NOT EXISTS usage (
		identity     TEXT PRIMARY KEY,
		day          TEXT NOT NULL DEFAULT '',
		dmg          INTEGER NOT NULL DEFAULT 0,
		heal         INTEGER NOT NULL DEFAULT 0,
		week         TEXT NOT NULL DEFAULT '',
		resurrection INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads the whole snapshot. Read failures are logged and recovered as
// an empty snapshot, the same way the file store treats a corrupt file.
func (s *Store) Load(ctx context.Context) (*game.Snapshot, error) {
	snap, err := s.load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load state from database, starting empty", "error", err)
		return game.NewSnapshot(), nil
	}
	return snap, nil
}

func (s *Store) load(ctx context.Context) (*game.Snapshot, error) {
	snap := game.NewSnapshot()

	rows, err := s.db.QueryContext(ctx, `SELECT identity, name, hp FROM participants`)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		p := &game.Participant{}
		if err := rows.Scan(&id, &p.Name, &p.HP); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		snap.Participants[storage.Identifier(id)] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}

	urows, err := s.db.QueryContext(ctx, `SELECT identity, day, dmg, heal, week, resurrection FROM usage`)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer urows.Close()

	for urows.Next() {
		var id string
		u := &game.Usage{}
		if err := urows.Scan(&id, &u.Day, &u.Dmg, &u.Heal, &u.Week, &u.Resurrection); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		snap.Usage[storage.Identifier(id)] = u
	}
	if err := urows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage: %w", err)
	}

	snap.Normalize()
	return snap, nil
}

// Save replaces the stored snapshot. Failures are returned and not retried.
func (s *Store) Save(ctx context.Context, snap *game.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("validating snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM participants`); err != nil {
		return fmt.Errorf("clear participants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM usage`); err != nil {
		return fmt.Errorf("clear usage: %w", err)
	}

	for id, p := range snap.Participants {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO participants (identity, name, hp) VALUES (?, ?, ?)`,
			id.String(), p.Name, p.HP,
		)
		if err != nil {
			return fmt.Errorf("insert participant %q: %w", id, err)
		}
	}

	for id, u := range snap.Usage {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO usage (identity, day, dmg, heal, week, resurrection) VALUES (?, ?, ?, ?, ?, ?)`,
			id.String(), u.Day, u.Dmg, u.Heal, u.Week, u.Resurrection,
		)
		if err != nil {
			return fmt.Errorf("insert usage %q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
