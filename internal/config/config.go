package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // report time zone must resolve in minimal containers

	"cambistas-backend/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPath is used when Load is called with an empty path
const DefaultPath = "configs/config.yaml"

type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	Environment        string        `mapstructure:"environment"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	CorsAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	CorsAllowedMethods []string      `mapstructure:"cors_allowed_methods"`
	CorsAllowedHeaders []string      `mapstructure:"cors_allowed_headers"`
}

// StorageConfig selects the BlobStore backend and the keys the two blobs live under
type StorageConfig struct {
	Backend   string `mapstructure:"backend"` // file, postgres, redis, s3, memory
	Dir       string `mapstructure:"dir"`     // file backend only
	LedgerKey string `mapstructure:"ledger_key"`
	UsersKey  string `mapstructure:"users_key"`
	Prefix    string `mapstructure:"prefix"` // prepended to keys on the redis and s3 backends
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// Cache turns on the rendered report cache; the redis storage backend
	// uses the same connection settings regardless
	Cache bool `mapstructure:"cache"`
}

type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int    `mapstructure:"expiration_hours"`
	Issuer          string `mapstructure:"issuer"`
}

type AuthConfig struct {
	HashPasswords   bool   `mapstructure:"hash_passwords"`
	DefaultUsername string `mapstructure:"default_username"`
	DefaultPassword string `mapstructure:"default_password"`
}

type LedgerConfig struct {
	StrictConfirmation  bool `mapstructure:"strict_confirmation"`
	RevertOnSaveFailure bool `mapstructure:"revert_on_save_failure"`
	SeedDemo            bool `mapstructure:"seed_demo"`
}

type ReportsConfig struct {
	Timezone string        `mapstructure:"timezone"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Language string        `mapstructure:"language"` // en or pt-BR column and status labels
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      logger.Config  `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	R2       R2Config       `mapstructure:"r2"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Reports  ReportsConfig  `mapstructure:"reports"`

	// Set by Load, not read from the file
	ConfigFile         string `mapstructure:"-"`
	JWTSecretGenerated bool   `mapstructure:"-"`
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Content-Type", "Authorization"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.time_format", "2006-01-02T15:04:05.000Z07:00")

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.ledger_key", "cambistas_ledger")
	v.SetDefault("storage.users_key", "cambistas_users")
	v.SetDefault("storage.prefix", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "cambistas")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache", false)

	v.SetDefault("r2.endpoint", "")
	v.SetDefault("r2.access_key", "")
	v.SetDefault("r2.secret_key", "")
	v.SetDefault("r2.bucket", "")
	v.SetDefault("r2.region", "auto")
	v.SetDefault("r2.backup_enabled", false)
	v.SetDefault("r2.backup_interval", 6*time.Hour)
	v.SetDefault("r2.backup_prefix", "backups/")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "cambistas-backend")

	v.SetDefault("auth.hash_passwords", false)
	v.SetDefault("auth.default_username", "jailson")
	v.SetDefault("auth.default_password", "121212")

	v.SetDefault("ledger.strict_confirmation", false)
	v.SetDefault("ledger.revert_on_save_failure", true)
	v.SetDefault("ledger.seed_demo", false)

	v.SetDefault("reports.timezone", "America/Fortaleza")
	v.SetDefault("reports.cache_ttl", 5*time.Minute)
	v.SetDefault("reports.language", "en")
}

// Load reads configuration from path (DefaultPath when empty), the
// environment and a .env file. A missing file is not an error; the
// defaults are enough to run locally.
func Load(path string) (*Config, error) {
	// .env is optional in every environment
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var used string
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		used = path
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ConfigFile = used

	applyEnvOverrides(&cfg)

	if err := cfg.resolveJWTSecret(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides keeps the short variable names used by deployments
// (DB_HOST rather than DATABASE_HOST)
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if addr := os.Getenv("REDIS_URL"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if key := os.Getenv("R2_ACCESS_KEY"); key != "" {
		cfg.R2.AccessKey = key
	}
	if secret := os.Getenv("R2_SECRET_KEY"); secret != "" {
		cfg.R2.SecretKey = secret
	}
}

func (c *Config) resolveJWTSecret() error {
	if c.JWT.Secret != "" && c.JWT.Secret != "${JWT_SECRET}" {
		return nil
	}
	if c.IsProduction() {
		return errors.New("jwt secret is required in production (set JWT_SECRET)")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate jwt secret: %w", err)
	}
	c.JWT.Secret = hex.EncodeToString(buf)
	c.JWTSecretGenerated = true
	return nil
}

// Validate checks the settings that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "postgres", "redis", "memory":
	case "s3":
		if !c.R2.Configured() {
			return errors.New("storage backend s3 needs r2.endpoint, r2.bucket and credentials")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.LedgerKey == "" || c.Storage.UsersKey == "" {
		return errors.New("storage keys must not be empty")
	}
	if c.Storage.LedgerKey == c.Storage.UsersKey {
		return errors.New("storage.ledger_key and storage.users_key must differ")
	}
	if c.R2.BackupEnabled {
		if !c.R2.Configured() {
			return errors.New("r2 backups need r2.endpoint, r2.bucket and credentials")
		}
		if c.R2.BackupInterval <= 0 {
			return errors.New("r2.backup_interval must be positive")
		}
	}
	if c.JWT.ExpirationHours <= 0 {
		return errors.New("jwt.expiration_hours must be positive")
	}
	if _, err := time.LoadLocation(c.Reports.Timezone); err != nil {
		return fmt.Errorf("reports.timezone: %w", err)
	}
	switch c.Reports.Language {
	case "en", "pt-BR":
	default:
		return fmt.Errorf("reports.language must be en or pt-BR, got %q", c.Reports.Language)
	}
	return nil
}
