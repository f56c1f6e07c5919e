package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckBasic(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name    string
		storage Pinger
		cache   Pinger
		want    string
	}{
		{"storage up", ok, nil, "healthy"},
		{"storage down", down, nil, "unhealthy"},
		{"cache down does not matter", ok, down, "healthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := NewHealthChecker(tt.storage, "file", tt.cache).CheckBasic(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, "file", status.Storage.Name)
			assert.Equal(t, tt.cache != nil, status.Cache != nil)
		})
	}
}

func TestCheckBasicReportsStorageError(t *testing.T) {
	down := PingFunc(func(context.Context) error { return errors.New("bucket missing") })
	status := NewHealthChecker(down, "s3", nil).CheckBasic(context.Background())
	assert.Equal(t, "bucket missing", status.Storage.Error)
}

func TestCheckDetailedIncludesHost(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	status := NewHealthChecker(ok, "memory", nil).CheckDetailed(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Positive(t, status.Host.Goroutines)
	assert.NotEmpty(t, status.Host.Uptime)
	assert.Zero(t, status.FeedClients)
}

type fixedCount int

func (c fixedCount) ClientCount() int { return int(c) }

func TestCheckDetailedCountsFeedClients(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	status := NewHealthChecker(ok, "memory", nil).WatchFeed(fixedCount(3)).CheckDetailed(context.Background())
	assert.Equal(t, 3, status.FeedClients)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 GB", formatBytes(2<<30))

	assert.Equal(t, "5m", formatUptime(5*time.Minute))
	assert.Equal(t, "2h 3m", formatUptime(2*time.Hour+3*time.Minute))
	assert.Equal(t, "1d 0h 1m", formatUptime(25*time.Hour-59*time.Minute))
}
