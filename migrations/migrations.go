// Package migrations applies the embedded PostgreSQL schema files in order
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed *.sql
var files embed.FS

const createVersionsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version     VARCHAR(255) PRIMARY KEY,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migration is one embedded SQL file. Version is the file name without extension.
type Migration struct {
	Version string
	SQL     string
}

// Open connects to PostgreSQL through lib/pq
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Load returns the embedded migrations sorted by version
func Load() ([]Migration, error) {
	return load(files)
}

func load(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(name, ".sql"),
			SQL:     string(raw),
		})
	}
	return migrations, nil
}

// Migrator tracks applied versions in schema_migrations
type Migrator struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewMigrator(db *sql.DB, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, logger: logger}
}

// Up applies every pending migration, each in its own transaction, and returns the applied versions
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	migrations, err := Load()
	if err != nil {
		return nil, err
	}

	if _, err := m.db.ExecContext(ctx, createVersionsTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	done, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, mig := range Pending(migrations, done) {
		if err := m.apply(ctx, mig); err != nil {
			return applied, err
		}
		m.logger.Info("migration applied", zap.String("version", mig.Version))
		applied = append(applied, mig.Version)
	}

	if len(applied) == 0 {
		m.logger.Info("schema is up to date")
	}
	return applied, nil
}

// Pending filters out migrations whose version is already recorded
func Pending(all []Migration, done map[string]bool) []Migration {
	var pending []Migration
	for _, mig := range all {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		done[version] = true
	}
	return done, rows.Err()
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", mig.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		return fmt.Errorf("migration %s failed: %w", mig.Version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, mig.Version); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", mig.Version, err)
	}
	return tx.Commit()
}
