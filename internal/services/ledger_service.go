package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cambistas-backend/internal/cache"
	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/metrics"
	"cambistas-backend/internal/models"
	"cambistas-backend/internal/repositories"
	"cambistas-backend/internal/timeutil"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SnapshotStore persists whole ledger snapshots
type SnapshotStore interface {
	Load(ctx context.Context) (ledger.Snapshot, error)
	Save(ctx context.Context, snap ledger.Snapshot) error
}

// EventPublisher receives one event per committed mutation
type EventPublisher interface {
	Publish(event models.LedgerEvent)
}

type LedgerServiceOptions struct {
	// RevertOnSaveFailure restores the previous state and fails the call
	// when the snapshot cannot be written. Otherwise the change is kept in
	// memory and only logged.
	RevertOnSaveFailure bool
	SeedDemo            bool
}

// LedgerService is the single writer in front of the ledger. Every mutation
// is applied, mirrored to the store, and announced while holding one lock,
// so two requests never interleave their snapshots.
type LedgerService struct {
	mu        sync.Mutex
	ledger    *ledger.Ledger
	store     SnapshotStore
	publisher EventPublisher
	opts      LedgerServiceOptions
	logger    *zap.Logger
}

func NewLedgerService(l *ledger.Ledger, store SnapshotStore, publisher EventPublisher, opts LedgerServiceOptions, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		ledger:    l,
		store:     store,
		publisher: publisher,
		opts:      opts,
		logger:    logger.Named("ledger"),
	}
}

// Load restores the stored snapshot. An absent snapshot starts an empty
// ledger, or the demo roster when seeding is enabled.
func (s *LedgerService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// versions restart with the process, so exports cached by an earlier
	// run must not be mistaken for this one's
	if err := cache.InvalidateReportCaches(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}

	snap, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, repositories.ErrBlobNotFound):
		if !s.opts.SeedDemo {
			s.logger.Info("no stored ledger, starting empty")
			return nil
		}
		s.ledger.SeedDemo()
		if err := s.store.Save(ctx, s.ledger.Snapshot()); err != nil {
			metrics.PersistenceFailuresTotal.WithLabelValues("ledger").Inc()
			s.logger.Warn("demo ledger not persisted", zap.Error(err))
		}
		s.logger.Info("seeded demo ledger")
		return nil
	case err != nil:
		return fmt.Errorf("load ledger: %w", err)
	}

	if err := s.ledger.Restore(snap); err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}
	s.logger.Info("ledger loaded",
		zap.Int("groups", len(snap.Groups)),
		zap.Int("agents", len(snap.Agents)),
	)
	return nil
}

// mutate runs op and persists the result. op must leave the ledger
// untouched when it returns an error.
func (s *LedgerService) mutate(ctx context.Context, operation string, op func() (models.LedgerEvent, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.ledger.Snapshot()
	event, err := op()
	if err != nil {
		return err
	}

	if err := s.store.Save(ctx, s.ledger.Snapshot()); err != nil {
		metrics.PersistenceFailuresTotal.WithLabelValues("ledger").Inc()
		if s.opts.RevertOnSaveFailure {
			if rerr := s.ledger.Restore(before); rerr != nil {
				s.logger.Error("revert after failed save", zap.Error(rerr))
			}
			s.logger.Warn("mutation reverted, snapshot not saved",
				zap.String("operation", operation), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrPersistenceWrite, err)
		}
		s.logger.Warn("snapshot not saved, keeping in-memory change",
			zap.String("operation", operation), zap.Error(err))
	}

	metrics.LedgerMutationsTotal.WithLabelValues(operation).Inc()
	if err := cache.InvalidateReportCaches(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
	if s.publisher != nil {
		event.At = timeutil.Now()
		s.publisher.Publish(event)
	}
	return nil
}

func (s *LedgerService) AddGroup(ctx context.Context, name string) (models.Group, error) {
	var g models.Group
	err := s.mutate(ctx, "add_group", func() (models.LedgerEvent, error) {
		g = s.ledger.AddGroup(name)
		return models.LedgerEvent{Type: models.LedgerEventGroupAdded, GroupID: g.ID}, nil
	})
	return g, err
}

func (s *LedgerService) AddAgent(ctx context.Context, name string, groupIDs []string) (models.Agent, error) {
	var a models.Agent
	err := s.mutate(ctx, "add_agent", func() (models.LedgerEvent, error) {
		a = s.ledger.AddAgent(name, groupIDs)
		return models.LedgerEvent{Type: models.LedgerEventAgentAdded, AgentID: a.ID}, nil
	})
	return a, err
}

func (s *LedgerService) RemoveAgent(ctx context.Context, agentID string) error {
	return s.mutate(ctx, "remove_agent", func() (models.LedgerEvent, error) {
		if !s.ledger.RemoveAgent(agentID) {
			return models.LedgerEvent{}, ledger.ErrAgentNotFound
		}
		return models.LedgerEvent{Type: models.LedgerEventAgentRemoved, AgentID: agentID}, nil
	})
}

func (s *LedgerService) RecordTransaction(ctx context.Context, agentID string, week models.Week, t models.TransactionType, amount decimal.Decimal) (models.Row, error) {
	err := s.mutate(ctx, "record_"+string(t), func() (models.LedgerEvent, error) {
		if _, err := s.ledger.RecordTransaction(agentID, week, t, amount); err != nil {
			return models.LedgerEvent{}, err
		}
		return models.LedgerEvent{Type: models.LedgerEventTransactionRecorded, AgentID: agentID, Week: week}, nil
	})
	if err != nil {
		return models.Row{}, err
	}
	return s.ledger.DeriveRow(agentID, week)
}

func (s *LedgerService) ConfirmWeek(ctx context.Context, agentID string, week models.Week) (models.Row, error) {
	err := s.mutate(ctx, "confirm_week", func() (models.LedgerEvent, error) {
		if _, err := s.ledger.ConfirmWeek(agentID, week); err != nil {
			return models.LedgerEvent{}, err
		}
		return models.LedgerEvent{Type: models.LedgerEventWeekConfirmed, AgentID: agentID, Week: week}, nil
	})
	if err != nil {
		return models.Row{}, err
	}
	return s.ledger.DeriveRow(agentID, week)
}

func (s *LedgerService) ZeroOutWeek(ctx context.Context, agentID string, week models.Week) (models.Row, error) {
	err := s.mutate(ctx, "zero_out_week", func() (models.LedgerEvent, error) {
		if _, err := s.ledger.ZeroOutWeek(agentID, week); err != nil {
			return models.LedgerEvent{}, err
		}
		return models.LedgerEvent{Type: models.LedgerEventWeekZeroed, AgentID: agentID, Week: week}, nil
	})
	if err != nil {
		return models.Row{}, err
	}
	return s.ledger.DeriveRow(agentID, week)
}

func (s *LedgerService) ListGroups() []models.Group {
	return s.ledger.ListGroups()
}

func (s *LedgerService) GetAgent(agentID string) (models.Agent, error) {
	return s.ledger.GetAgent(agentID)
}

func (s *LedgerService) AgentRow(agentID string, week models.Week) (models.Row, error) {
	return s.ledger.DeriveRow(agentID, week)
}

// Rows returns the derived rows of the filtered agents for the filter's week
func (s *LedgerService) Rows(f models.AgentFilter) ([]models.Row, error) {
	if !f.Week.Valid() {
		return nil, ledger.ErrInvalidWeek
	}
	v, err := s.ledger.View(f)
	if err != nil {
		return nil, err
	}
	return v.Rows, nil
}

// MonthlySummary folds all four weeks over the agents the filter selects
func (s *LedgerService) MonthlySummary(f models.AgentFilter) (models.MonthlySummary, error) {
	v, err := s.ledger.View(f)
	if err != nil {
		return models.MonthlySummary{}, err
	}
	return v.Summary, nil
}

// View returns rows and summary of one filter read together
func (s *LedgerService) View(f models.AgentFilter) (ledger.View, error) {
	return s.ledger.View(f)
}

func (s *LedgerService) Version() uint64 {
	return s.ledger.Version()
}

// Snapshot returns a copy of the current state for backups
func (s *LedgerService) Snapshot() ledger.Snapshot {
	return s.ledger.Snapshot()
}
