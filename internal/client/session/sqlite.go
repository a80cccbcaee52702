package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/jarsclient/internal/dbx"
)

const lastTargetKey = "last_target"

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Load(ctx context.Context, target string) (*Session, error) {
	s := &Session{Target: target}
	err := r.db.QueryRowContext(ctx,
		`SELECT token, version, updated_at FROM sessions WHERE target = ?`, target,
	).Scan(&s.Token, &s.Version, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session[%s]: %w", target, err)
	}
	return s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s *Session) error {
	s.UpdatedAt = r.now().UTC()

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (target, token, version, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(target) DO UPDATE SET
				token = excluded.token,
				version = excluded.version,
				updated_at = excluded.updated_at
		`, s.Target, s.Token, s.Version, s.UpdatedAt); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO metadata (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, lastTargetKey, []byte(s.Target))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save session[%s]: %w", s.Target, err)
	}
	return nil
}

func (r *SQLiteRepository) Forget(ctx context.Context, target string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE target = ?`, target)
	if err != nil {
		return fmt.Errorf("failed to forget session[%s]: %w", target, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT target, token, version, updated_at FROM sessions ORDER BY target`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var result []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.Target, &s.Token, &s.Version, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) LastTarget(ctx context.Context) (string, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, lastTargetKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata[%s]: %w", lastTargetKey, err)
	}
	return string(value), nil
}
