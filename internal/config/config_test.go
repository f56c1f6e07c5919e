package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.ConfigFile)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "cambistas_ledger", cfg.Storage.LedgerKey)
	assert.Equal(t, "cambistas_users", cfg.Storage.UsersKey)
	assert.Equal(t, "America/Fortaleza", cfg.Reports.Timezone)
	assert.Equal(t, 5*time.Minute, cfg.Reports.CacheTTL)
	assert.Equal(t, "en", cfg.Reports.Language)
	assert.True(t, cfg.Ledger.RevertOnSaveFailure)
	assert.False(t, cfg.Ledger.StrictConfirmation)
	assert.False(t, cfg.Auth.HashPasswords)
	assert.Equal(t, "jailson", cfg.Auth.DefaultUsername)
	assert.True(t, cfg.JWTSecretGenerated)
	assert.Len(t, cfg.JWT.Secret, 64)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, `
server:
  port: 9090
  shutdown_timeout: 3s
storage:
  backend: memory
ledger:
  strict_confirmation: true
  revert_on_save_failure: false
jwt:
  secret: from-file
log:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.True(t, cfg.Ledger.StrictConfirmation)
	assert.False(t, cfg.Ledger.RevertOnSaveFailure)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.False(t, cfg.JWTSecretGenerated)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("LEDGER_SEED_DEMO", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.True(t, cfg.Ledger.SeedDemo)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, "server:\n  environment: production\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", "storage:\n  backend: sqlite\n"},
		{"s3 without credentials", "storage:\n  backend: s3\n"},
		{"same keys", "storage:\n  ledger_key: x\n  users_key: x\n"},
		{"backup without bucket", "r2:\n  backup_enabled: true\n"},
		{"bad timezone", "reports:\n  timezone: Mars/Olympus\n"},
		{"unknown report language", "reports:\n  language: fr\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", d.ConnectionString())
}
