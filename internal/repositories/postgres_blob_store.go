package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBlobStore keeps blobs in the ledger_blobs table created by the
// embedded migrations
type PostgresBlobStore struct {
	DB *pgxpool.Pool
}

func NewPostgresBlobStore(db *pgxpool.Pool) *PostgresBlobStore {
	return &PostgresBlobStore{DB: db}
}

func (r *PostgresBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := r.DB.QueryRow(ctx, `SELECT data FROM ledger_blobs WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	return data, err
}

func (r *PostgresBlobStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO ledger_blobs (key, data, updated_at)
         VALUES ($1, $2, NOW())
         ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		key, data)
	return err
}

func (r *PostgresBlobStore) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}
