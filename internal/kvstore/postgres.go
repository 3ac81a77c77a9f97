package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

type postgresStore struct{ db *sql.DB }

// NewPostgres returns a Store over the kv_entries table created by Migrate.
func NewPostgres(db *sql.DB) Store { return &postgresStore{db: db} }

// OpenPostgres opens and pings a lib/pq connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}

func (p *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := p.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key=$1`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return v, nil
}

func (p *postgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`,
		key, value)
	return err
}

func (p *postgresStore) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key=$1`, key)
	return err
}

// Update locks the row for the duration of fn. A NULL placeholder row is
// inserted first so two writers racing on a new key serialise on the lock.
func (p *postgresStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value) VALUES ($1, NULL)
		ON CONFLICT (key) DO NOTHING`, key); err != nil {
		return err
	}

	var cur []byte
	if err := tx.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE key=$1 FOR UPDATE`, key).Scan(&cur); err != nil {
		return err
	}

	next, err := fn(cur)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE kv_entries SET value=$1, updated_at=NOW() WHERE key=$2`, next, key); err != nil {
		return err
	}
	return tx.Commit()
}

func (p *postgresStore) Close() error { return p.db.Close() }
