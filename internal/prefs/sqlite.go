package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/zen-display/internal/infrastructure/database"
)

// SQLiteStore keeps preferences in the preferences table created by the
// embedded migrations.
type SQLiteStore struct {
	db        *database.DB
	namespace string
}

// NewSQLiteStore returns a store scoped to namespace.
func NewSQLiteStore(db *database.DB, namespace string) *SQLiteStore {
	return &SQLiteStore{db: db, namespace: namespace}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE namespace = ? AND key = ?`,
		s.namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("prefs: get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, values map[string]string) error {
	if err := validateKeys(values); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for k, v := range values {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO preferences (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
				ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`, s.namespace, k, v, now)
			if err != nil {
				return fmt.Errorf("prefs: put %s: %w", k, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Remove(ctx context.Context, keys ...string) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM preferences WHERE namespace = ? AND key = ?`, s.namespace, k,
			); err != nil {
				return fmt.Errorf("prefs: remove %s: %w", k, err)
			}
		}
		return nil
	})
}
