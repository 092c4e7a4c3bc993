package tokenstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/cryptox"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
)

// SQLiteStore persists the pair in the credentials table. Both rows are
// written in one transaction, so readers never observe a half-written pair.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	return &SQLiteStore{db: db, opts: newOptions(opts)}
}

func (s *SQLiteStore) Save(ctx context.Context, access, refresh string) error {
	now := s.opts.now()

	accessValue, err := s.seal(access)
	if err != nil {
		return fmt.Errorf("%w: seal access token: %w", common.ErrStorageWrite, err)
	}
	refreshValue, err := s.seal(refresh)
	if err != nil {
		return fmt.Errorf("%w: seal refresh token: %w", common.ErrStorageWrite, err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := upsert(ctx, tx, accessName, accessValue, expiresAt(access, now, s.opts.lifetimes.Access)); err != nil {
			return err
		}
		return upsert(ctx, tx, refreshName, refreshValue, expiresAt(refresh, now, s.opts.lifetimes.Refresh))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorageWrite, err)
	}
	return nil
}

func upsert(ctx context.Context, tx dbx.DBTX, name string, value []byte, expires time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO credentials (name, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, name, value, expires.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save credential[%s]: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Read(ctx context.Context) (Tokens, error) {
	// one statement, so a concurrent Save is seen entirely or not at all
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM credentials WHERE expires_at > ?`, s.opts.now().UnixMilli())
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to read credentials: %w", err)
	}
	defer rows.Close()

	var t Tokens
	for rows.Next() {
		var (
			name  string
			value []byte
		)
		if err := rows.Scan(&name, &value); err != nil {
			return Tokens{}, fmt.Errorf("failed to scan credential row: %w", err)
		}
		plain, err := s.open(value)
		if err != nil {
			// a value sealed under another key is as good as absent
			continue
		}
		switch name {
		case accessName:
			t.Access = string(plain)
		case refreshName:
			t.Refresh = string(plain)
		}
	}
	if err := rows.Err(); err != nil {
		return Tokens{}, fmt.Errorf("failed to iterate credential rows: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (s *SQLiteStore) seal(v string) ([]byte, error) {
	if s.opts.sealKey == nil {
		return []byte(v), nil
	}
	return cryptox.Seal([]byte(v), s.opts.sealKey)
}

func (s *SQLiteStore) open(v []byte) ([]byte, error) {
	if s.opts.sealKey == nil {
		return v, nil
	}
	return cryptox.Open(v, s.opts.sealKey)
}
