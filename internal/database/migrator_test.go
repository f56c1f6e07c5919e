package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPendingListsEmbeddedFilesInOrder(t *testing.T) {
	m := NewMigrator(nil, zap.NewNop())

	all, err := m.Pending(nil)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, "001_ledger_blobs.sql", all[0])

	rest, err := m.Pending(map[string]bool{"001_ledger_blobs.sql": true})
	require.NoError(t, err)
	assert.NotContains(t, rest, "001_ledger_blobs.sql")
}
