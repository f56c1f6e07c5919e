package repositories

import (
	"context"
	"testing"

	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()
	repo := NewLedgerRepository(store, "cambistas_ledger")

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, ErrBlobNotFound)

	l := ledger.New()
	a := l.AddAgent("Ana", nil)
	_, err = l.RecordTransaction(a.ID, 3, models.TransactionTypeLoan, decimal.RequireFromString("12.34"))
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, l.Snapshot()))

	snap, err := repo.Load(ctx)
	require.NoError(t, err)

	restored := ledger.New()
	require.NoError(t, restored.Restore(snap))
	entry, err := restored.Entry(a.ID, 3)
	require.NoError(t, err)
	assert.True(t, entry.AmountDue.Equal(decimal.RequireFromString("12.34")))

	raw, err := store.Load(ctx, "cambistas_ledger")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version":1`)
}

func TestLedgerRepositoryRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()
	require.NoError(t, store.Save(ctx, "cambistas_ledger", []byte("not json")))

	_, err := NewLedgerRepository(store, "cambistas_ledger").Load(ctx)
	assert.ErrorIs(t, err, ledger.ErrInvalidSnapshot)
}

func TestCredentialRepository(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()
	repo := NewCredentialRepository(store, "cambistas_users")

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, ErrBlobNotFound)

	require.NoError(t, repo.Save(ctx, map[string]string{"jailson": "121212"}))

	raw, err := store.Load(ctx, "cambistas_users")
	require.NoError(t, err)
	assert.JSONEq(t, `{"jailson":"121212"}`, string(raw))

	users, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "121212", users["jailson"])
}
