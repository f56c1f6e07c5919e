package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Execer is the subset of a pgx pool the migrator needs
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Migrator applies the embedded SQL files once each, in name order
type Migrator struct {
	db     Execer
	files  fs.FS
	logger *zap.Logger
}

func NewMigrator(db Execer, logger *zap.Logger) *Migrator {
	sub, _ := fs.Sub(migrationFiles, "migrations")
	return &Migrator{db: db, files: sub, logger: logger.Named("migrator")}
}

// Pending lists migration files in execution order
func (m *Migrator) Pending(applied map[string]bool) ([]string, error) {
	entries, err := fs.ReadDir(m.files, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") || applied[e.Name()] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// RunMigrations creates the tracking table, then runs every file not yet recorded
func (m *Migrator) RunMigrations(ctx context.Context) error {
	if _, err := m.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	pending, err := m.Pending(applied)
	if err != nil {
		return err
	}

	for _, name := range pending {
		content, err := fs.ReadFile(m.files, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := m.db.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", name, err)
		}
		if _, err := m.db.Exec(ctx,
			`INSERT INTO schema_migrations (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`,
			name); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
		m.logger.Info("migration applied", zap.String("file", name))
	}

	if len(pending) == 0 {
		m.logger.Debug("schema up to date")
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}
