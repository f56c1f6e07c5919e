package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/metrics"
	"cambistas-backend/internal/repositories"
	"cambistas-backend/internal/timeutil"

	"go.uber.org/zap"
)

// BackupTarget stores timestamped copies outside the live keys
type BackupTarget interface {
	PutBackup(ctx context.Context, prefix, key string, at time.Time, data []byte) (string, error)
	ListBackups(ctx context.Context, prefix string, limit int) ([]repositories.BackupObject, error)
}

// SnapshotSource is what gets backed up
type SnapshotSource interface {
	Snapshot() ledger.Snapshot
}

// BackupStatus reports the outcome of the latest run
type BackupStatus struct {
	Enabled   bool      `json:"enabled"`
	Running   bool      `json:"running"`
	Interval  string    `json:"interval"`
	LastKey   string    `json:"last_key,omitempty"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// BackupService copies the ledger snapshot to R2 on a fixed interval
type BackupService struct {
	target   BackupTarget
	source   SnapshotSource
	prefix   string
	key      string
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
	status   BackupStatus
}

// NewBackupService returns a service; a nil target disables it
func NewBackupService(target BackupTarget, source SnapshotSource, prefix, key string, interval time.Duration, logger *zap.Logger) *BackupService {
	return &BackupService{
		target:   target,
		source:   source,
		prefix:   prefix,
		key:      key,
		interval: interval,
		logger:   logger.Named("backup"),
		status: BackupStatus{
			Enabled:  target != nil,
			Interval: interval.String(),
		},
	}
}

// Start runs a backup immediately, then once per interval until Stop
func (s *BackupService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.target == nil || s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(s.interval)
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.status.Running = true

	ticker, stop, done := s.ticker, s.stopChan, s.done
	go func() {
		defer close(done)
		s.runOnce(ctx)
		for {
			select {
			case <-ticker.C:
				s.runOnce(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	s.logger.Info("backup scheduler started", zap.Duration("interval", s.interval))
}

// Stop halts the scheduler and waits for an in-flight backup
func (s *BackupService) Stop() {
	s.mu.Lock()
	if s.ticker == nil {
		s.mu.Unlock()
		return
	}
	s.ticker.Stop()
	close(s.stopChan)
	done := s.done
	s.ticker = nil
	s.status.Running = false
	s.mu.Unlock()

	<-done
	s.logger.Info("backup scheduler stopped")
}

func (s *BackupService) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if _, err := s.BackupNow(ctx); err != nil {
		s.logger.Error("scheduled backup failed", zap.Error(err))
	}
}

// BackupNow uploads the current snapshot and returns the object key
func (s *BackupService) BackupNow(ctx context.Context) (string, error) {
	if s.target == nil {
		return "", ErrBackupsDisabled
	}

	data, err := ledger.EncodeSnapshot(s.source.Snapshot())
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	now := timeutil.Now()
	objectKey, err := s.target.PutBackup(ctx, s.prefix, s.key, now, data)

	s.mu.Lock()
	s.status.LastRun = now
	if err != nil {
		s.status.LastError = err.Error()
	} else {
		s.status.LastKey = objectKey
		s.status.LastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		metrics.BackupsTotal.WithLabelValues("failure").Inc()
		return "", err
	}
	metrics.BackupsTotal.WithLabelValues("success").Inc()
	s.logger.Info("backup stored", zap.String("key", objectKey), zap.Int("bytes", len(data)))
	return objectKey, nil
}

// List returns the most recent backups, newest first
func (s *BackupService) List(ctx context.Context, limit int) ([]repositories.BackupObject, error) {
	if s.target == nil {
		return nil, ErrBackupsDisabled
	}
	return s.target.ListBackups(ctx, s.prefix, limit)
}

func (s *BackupService) Status() BackupStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
