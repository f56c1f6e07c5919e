package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cambistas-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// ReportsPattern matches every cached export
const ReportsPattern = "reports:*"

var client *redis.Client

// Init connects the shared cache client. On failure the package stays
// disabled and every helper degrades to a no-op.
func Init(ctx context.Context, addr, password string, db int) error {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Ping(pingCtx).Err(); err != nil {
		c.Close()
		client = nil
		return err
	}
	client = c
	return nil
}

// Close releases the shared client
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// ReportKey names a rendered export for one ledger version, week and filter
func ReportKey(format string, version uint64, week models.Week, groupID string, status models.StatusFilter) string {
	return fmt.Sprintf("reports:%s:v%d:w%d:g:%s:s:%s", format, version, week, groupID, status)
}

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidatePattern removes all keys matching a glob pattern.
// SCAN keeps large keyspaces from blocking the server the way KEYS would.
func InvalidatePattern(ctx context.Context, pattern string) error {
	if client == nil {
		return nil
	}
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}

// InvalidateReportCaches clears every cached export.
// Called after each committed ledger mutation.
func InvalidateReportCaches(ctx context.Context) error {
	return InvalidatePattern(ctx, ReportsPattern)
}

// ErrCacheDisabled is returned by Ping when no client is installed
var ErrCacheDisabled = errors.New("cache disabled")

// Ping checks the shared client
func Ping(ctx context.Context) error {
	if client == nil {
		return ErrCacheDisabled
	}
	return client.Ping(ctx).Err()
}
