// Package sqlite persists the chat panel log in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/PabloGalante/svelte-expert/internal/domain"
)

type StateStore struct {
	db *sql.DB
}

// NewStateStore opens (and creates) the database at dbPath.
func NewStateStore(dbPath string) (*StateStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &StateStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *StateStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS chat_entries (
		state_key  TEXT    NOT NULL,
		seq        INTEGER NOT NULL,
		id         TEXT    NOT NULL,
		sender     TEXT    NOT NULL,
		text       TEXT    NOT NULL,
		created_at TEXT    NOT NULL,
		PRIMARY KEY (state_key, seq)
	);`)
	return err
}

func (s *StateStore) Close() error {
	return s.db.Close()
}

func (s *StateStore) LoadEntries(ctx context.Context, key string) ([]domain.ChatEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender, text, created_at FROM chat_entries WHERE state_key = ? ORDER BY seq`, key)
	if err != nil {
		return nil, fmt.Errorf("sqlite LoadEntries: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatEntry
	for rows.Next() {
		var (
			e         domain.ChatEntry
			id        string
			sender    string
			createdAt string
		)
		if err := rows.Scan(&id, &sender, &e.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite LoadEntries scan: %w", err)
		}
		e.ID = domain.EntryID(id)
		e.Sender = domain.Sender(sender)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite LoadEntries: %w", err)
	}
	return out, nil
}

// SaveEntries overwrites the log under key in one transaction.
func (s *StateStore) SaveEntries(ctx context.Context, key string, entries []domain.ChatEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite SaveEntries: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_entries WHERE state_key = ?`, key); err != nil {
		return fmt.Errorf("sqlite SaveEntries clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chat_entries (state_key, seq, id, sender, text, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite SaveEntries prepare: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, key, i, string(e.ID), string(e.Sender), e.Text,
			e.CreatedAt.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("sqlite SaveEntries insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite SaveEntries commit: %w", err)
	}
	return nil
}
