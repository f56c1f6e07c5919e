package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackupTarget struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (f *fakeBackupTarget) PutBackup(_ context.Context, prefix, key string, at time.Time, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	objectKey := prefix + key + "_" + at.UTC().Format("20060102_150405") + ".json"
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[objectKey] = data
	return objectKey, nil
}

func (f *fakeBackupTarget) ListBackups(_ context.Context, prefix string, limit int) ([]repositories.BackupObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repositories.BackupObject
	for k, v := range f.objects {
		out = append(out, repositories.BackupObject{Key: k, Size: int64(len(v))})
	}
	return out, nil
}

func (f *fakeBackupTarget) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func TestBackupNowStoresDecodableSnapshot(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{SeedDemo: true})
	target := &fakeBackupTarget{}
	svc := NewBackupService(target, f.svc, "backups/", "cambistas_ledger", time.Hour, zap.NewNop())

	key, err := svc.BackupNow(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^backups/cambistas_ledger_\d{8}_\d{6}\.json$`, key)

	snap, err := ledger.DecodeSnapshot(target.objects[key])
	require.NoError(t, err)
	assert.Len(t, snap.Agents, 3)

	status := svc.Status()
	assert.True(t, status.Enabled)
	assert.Equal(t, key, status.LastKey)
	assert.Empty(t, status.LastError)

	list, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBackupFailureIsRecorded(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{})
	svc := NewBackupService(&fakeBackupTarget{err: errors.New("bucket gone")}, f.svc, "backups/", "cambistas_ledger", time.Hour, zap.NewNop())

	_, err := svc.BackupNow(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "bucket gone", svc.Status().LastError)
}

func TestDisabledBackupService(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{})
	svc := NewBackupService(nil, f.svc, "backups/", "cambistas_ledger", time.Hour, zap.NewNop())

	svc.Start(context.Background())
	svc.Stop()

	_, err := svc.BackupNow(context.Background())
	assert.ErrorIs(t, err, ErrBackupsDisabled)
	_, err = svc.List(context.Background(), 5)
	assert.ErrorIs(t, err, ErrBackupsDisabled)
	assert.False(t, svc.Status().Enabled)
}

func TestSchedulerRunsImmediatelyAndStops(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{})
	target := &fakeBackupTarget{}
	svc := NewBackupService(target, f.svc, "backups/", "cambistas_ledger", time.Hour, zap.NewNop())

	svc.Start(context.Background())
	svc.Start(context.Background()) // second start is ignored
	assert.Eventually(t, func() bool { return target.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, svc.Status().Running)

	svc.Stop()
	svc.Stop()
	assert.False(t, svc.Status().Running)
}
