package config

import (
	"fmt"
	"time"
)

// R2Config holds the Cloudflare R2 (S3 compatible) settings used by the
// s3 storage backend and the snapshot backup scheduler
type R2Config struct {
	Endpoint       string        `mapstructure:"endpoint"`
	AccessKey      string        `mapstructure:"access_key"`
	SecretKey      string        `mapstructure:"secret_key"`
	Bucket         string        `mapstructure:"bucket"`
	Region         string        `mapstructure:"region"`
	BackupEnabled  bool          `mapstructure:"backup_enabled"`
	BackupInterval time.Duration `mapstructure:"backup_interval"`
	BackupPrefix   string        `mapstructure:"backup_prefix"`
}

// Configured reports whether enough settings exist to build a client
func (r R2Config) Configured() bool {
	return r.Endpoint != "" && r.Bucket != "" && r.AccessKey != "" && r.SecretKey != ""
}

// ConnectionString builds the pgx DSN
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}
