package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/models"
	"cambistas-backend/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.LedgerEvent
}

func (p *recordingPublisher) Publish(e models.LedgerEvent) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *recordingPublisher) types() []models.LedgerEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.LedgerEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}
}

type ledgerFixture struct {
	svc       *LedgerService
	blobs     *repositories.MemoryBlobStore
	repo      *repositories.LedgerRepository
	publisher *recordingPublisher
	logs      *observer.ObservedLogs
}

func newLedgerFixture(t *testing.T, opts LedgerServiceOptions) *ledgerFixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	blobs := repositories.NewMemoryBlobStore()
	repo := repositories.NewLedgerRepository(blobs, "cambistas_ledger")
	pub := &recordingPublisher{}
	svc := NewLedgerService(ledger.New(ledger.WithIDGenerator(sequentialIDs())), repo, pub, opts, zap.New(core))
	require.NoError(t, svc.Load(context.Background()))
	return &ledgerFixture{svc: svc, blobs: blobs, repo: repo, publisher: pub, logs: logs}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedgerServiceLoadsEmptyWithoutSnapshot(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{RevertOnSaveFailure: true})

	assert.Empty(t, f.svc.ListGroups())
	rows, err := f.svc.Rows(models.AgentFilter{Week: 1})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, f.blobs.SaveCount())
}

func TestLedgerServiceSeedsDemoWhenConfigured(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{SeedDemo: true})

	assert.Len(t, f.svc.ListGroups(), 2)
	rows, err := f.svc.Rows(models.AgentFilter{Week: 1})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 1, f.blobs.SaveCount())
}

func TestLedgerServicePersistsEveryMutation(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{RevertOnSaveFailure: true})
	ctx := context.Background()

	g, err := f.svc.AddGroup(ctx, "Centro")
	require.NoError(t, err)
	a, err := f.svc.AddAgent(ctx, "Ana", []string{g.ID})
	require.NoError(t, err)

	row, err := f.svc.RecordTransaction(ctx, a.ID, 1, models.TransactionTypeSale, dec("1200"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, row.Status)

	row, err = f.svc.ConfirmWeek(ctx, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, row.Status)

	assert.Equal(t, 4, f.blobs.SaveCount())

	// A fresh service over the same store sees the same state
	reloaded := NewLedgerService(ledger.New(), f.repo, nil, LedgerServiceOptions{}, zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))
	got, err := reloaded.AgentRow(a.ID, 1)
	require.NoError(t, err)
	assert.True(t, got.SalesValue.Equal(dec("1200")))
	assert.True(t, got.IsConfirmed)

	assert.Equal(t, []models.LedgerEventType{
		models.LedgerEventGroupAdded,
		models.LedgerEventAgentAdded,
		models.LedgerEventTransactionRecorded,
		models.LedgerEventWeekConfirmed,
	}, f.publisher.types())
}

func TestLedgerServiceRevertsOnSaveFailure(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{RevertOnSaveFailure: true})
	ctx := context.Background()

	a, err := f.svc.AddAgent(ctx, "Ana", nil)
	require.NoError(t, err)
	_, err = f.svc.RecordTransaction(ctx, a.ID, 1, models.TransactionTypeLoan, dec("100"))
	require.NoError(t, err)

	f.blobs.FailSaves(errors.New("disk full"))

	_, err = f.svc.RecordTransaction(ctx, a.ID, 1, models.TransactionTypeLoan, dec("50"))
	assert.ErrorIs(t, err, ErrPersistenceWrite)
	_, err = f.svc.AddAgent(ctx, "Bruno", nil)
	assert.ErrorIs(t, err, ErrPersistenceWrite)
	assert.ErrorIs(t, f.svc.RemoveAgent(ctx, a.ID), ErrPersistenceWrite)

	row, err := f.svc.AgentRow(a.ID, 1)
	require.NoError(t, err)
	assert.True(t, row.AmountDue.Equal(dec("100")))

	rows, err := f.svc.Rows(models.AgentFilter{Week: 1})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Len(t, f.publisher.types(), 2, "failed mutations are not announced")
}

func TestLedgerServiceKeepsChangeWhenRevertDisabled(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{RevertOnSaveFailure: false})
	ctx := context.Background()

	f.blobs.FailSaves(errors.New("disk full"))
	a, err := f.svc.AddAgent(ctx, "Ana", nil)
	require.NoError(t, err)

	_, err = f.svc.GetAgent(a.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.logs.FilterMessage("snapshot not saved, keeping in-memory change").Len())
}

func TestLedgerServiceRejectionsLeaveNoTrace(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{RevertOnSaveFailure: true})
	ctx := context.Background()

	a, err := f.svc.AddAgent(ctx, "Ana", nil)
	require.NoError(t, err)
	saves := f.blobs.SaveCount()

	_, err = f.svc.RecordTransaction(ctx, a.ID, 1, models.TransactionTypeSale, dec("0"))
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	_, err = f.svc.RecordTransaction(ctx, a.ID, 5, models.TransactionTypeSale, dec("10"))
	assert.ErrorIs(t, err, ledger.ErrInvalidWeek)
	_, err = f.svc.ConfirmWeek(ctx, "missing", 1)
	assert.ErrorIs(t, err, ledger.ErrAgentNotFound)
	assert.ErrorIs(t, f.svc.RemoveAgent(ctx, "missing"), ledger.ErrAgentNotFound)

	assert.Equal(t, saves, f.blobs.SaveCount())
	assert.Len(t, f.publisher.types(), 1)
}

func TestLedgerServiceRemoveAndZeroOut(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{RevertOnSaveFailure: true})
	ctx := context.Background()

	a, _ := f.svc.AddAgent(ctx, "Ana", nil)
	b, _ := f.svc.AddAgent(ctx, "Bruno", nil)
	_, err := f.svc.RecordTransaction(ctx, a.ID, 2, models.TransactionTypeReceipt, dec("80"))
	require.NoError(t, err)

	row, err := f.svc.ZeroOutWeek(ctx, a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoDebt, row.Status)

	require.NoError(t, f.svc.RemoveAgent(ctx, b.ID))
	_, err = f.svc.GetAgent(b.ID)
	assert.ErrorIs(t, err, ledger.ErrAgentNotFound)
}

func TestLedgerServiceRowsAndSummaryUseFilter(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{SeedDemo: true})

	rows, err := f.svc.Rows(models.AgentFilter{Status: models.StatusFilterPaid, Week: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "João da Silva", rows[0].Name)

	_, err = f.svc.Rows(models.AgentFilter{Week: 0})
	assert.ErrorIs(t, err, ledger.ErrInvalidWeek)
	_, err = f.svc.Rows(models.AgentFilter{Status: "late", Week: 1})
	assert.ErrorIs(t, err, ledger.ErrInvalidStatusFilter)

	summary, err := f.svc.MonthlySummary(models.AgentFilter{})
	require.NoError(t, err)
	require.Len(t, summary.Weeks, 4)
	assert.True(t, summary.Weeks[0].TotalReceived.Equal(dec("500")))
	assert.True(t, summary.Weeks[0].TotalPending.Equal(dec("1500")))
}

func TestLedgerServiceLoadRejectsCorruptSnapshot(t *testing.T) {
	blobs := repositories.NewMemoryBlobStore()
	require.NoError(t, blobs.Save(context.Background(), "cambistas_ledger", []byte("{not json")))

	svc := NewLedgerService(ledger.New(), repositories.NewLedgerRepository(blobs, "cambistas_ledger"), nil, LedgerServiceOptions{}, zap.NewNop())
	assert.Error(t, svc.Load(context.Background()))
}

func TestLedgerServiceSerializesConcurrentWriters(t *testing.T) {
	f := newLedgerFixture(t, LedgerServiceOptions{RevertOnSaveFailure: true})
	ctx := context.Background()
	a, err := f.svc.AddAgent(ctx, "Ana", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.RecordTransaction(ctx, a.ID, 3, models.TransactionTypeSale, dec("1.10"))
		}()
	}
	wg.Wait()

	row, err := f.svc.AgentRow(a.ID, 3)
	require.NoError(t, err)
	assert.True(t, row.SalesValue.Equal(dec("55")), row.SalesValue.String())
}
