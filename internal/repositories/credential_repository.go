package repositories

import (
	"context"
	"encoding/json"
	"fmt"
)

// CredentialRepository stores the {username: password} table as one JSON blob
type CredentialRepository struct {
	Store BlobStore
	Key   string
}

func NewCredentialRepository(store BlobStore, key string) *CredentialRepository {
	return &CredentialRepository{Store: store, Key: key}
}

// Load returns ErrBlobNotFound when the table was never written
func (r *CredentialRepository) Load(ctx context.Context) (map[string]string, error) {
	data, err := r.Store.Load(ctx, r.Key)
	if err != nil {
		return nil, err
	}
	users := make(map[string]string)
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode credential table: %w", err)
	}
	return users, nil
}

func (r *CredentialRepository) Save(ctx context.Context, users map[string]string) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return r.Store.Save(ctx, r.Key, data)
}
