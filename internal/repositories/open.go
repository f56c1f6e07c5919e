package repositories

import (
	"context"
	"fmt"

	"cambistas-backend/internal/config"
	"cambistas-backend/internal/database"
	"cambistas-backend/internal/db"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OpenBlobStore builds the store named by storage.backend. The returned
// close function releases connections and is never nil.
func OpenBlobStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (BlobStore, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case "memory":
		return NewMemoryBlobStore(), noop, nil

	case "file":
		store, err := NewFileBlobStore(cfg.Storage.Dir)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case "postgres":
		pool, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		if err := database.NewMigrator(pool, logger).RunMigrations(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("migrate: %w", err)
		}
		return NewPostgresBlobStore(pool), pool.Close, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		return NewRedisBlobStore(client, "blobs:"+cfg.Storage.Prefix), func() { client.Close() }, nil

	case "s3":
		client, err := NewS3Client(ctx, cfg.R2)
		if err != nil {
			return nil, noop, err
		}
		store := NewS3BlobStore(client, cfg.R2.Bucket,
			WithS3Logger(logger.Named("s3")),
			WithS3Prefix(cfg.Storage.Prefix),
		)
		return store, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
