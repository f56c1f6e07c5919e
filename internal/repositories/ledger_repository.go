package repositories

import (
	"context"

	"cambistas-backend/internal/ledger"
)

// LedgerRepository reads and writes the ledger snapshot blob
type LedgerRepository struct {
	Store BlobStore
	Key   string
}

func NewLedgerRepository(store BlobStore, key string) *LedgerRepository {
	return &LedgerRepository{Store: store, Key: key}
}

// Load returns ErrBlobNotFound when no snapshot was saved yet
func (r *LedgerRepository) Load(ctx context.Context) (ledger.Snapshot, error) {
	data, err := r.Store.Load(ctx, r.Key)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	return ledger.DecodeSnapshot(data)
}

func (r *LedgerRepository) Save(ctx context.Context, snap ledger.Snapshot) error {
	data, err := ledger.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	return r.Store.Save(ctx, r.Key, data)
}
