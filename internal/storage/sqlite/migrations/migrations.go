// Package migrations has the journal database schema and applies it.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/log"
)

// VersionsTable is the table where the applied journal schema version is kept.
const VersionsTable = "journal_schema_versions"

//go:embed sql/*.sql
var migrationFiles embed.FS

// MigratorConfig is the configuration of the journal schema migrator.
type MigratorConfig struct {
	DB     *sql.DB
	Logger log.Logger
}

func (c *MigratorConfig) defaults() error {
	if c.DB == nil {
		return fmt.Errorf("db is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "migrations.Migrator"})
	return nil
}

// Migrator applies the journal schema.
type Migrator struct {
	db     *sql.DB
	logger log.Logger
}

// NewMigrator returns a new journal schema migrator.
func NewMigrator(cfg MigratorConfig) (*Migrator, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Migrator{
		db:     cfg.DB,
		logger: cfg.Logger,
	}, nil
}

// Up upgrades the journal schema to the latest version.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "upgrade", (*migrate.Migrate).Up)
}

// Down removes the journal schema, journal entries included.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "remove", (*migrate.Migrate).Down)
}

// Version returns the applied journal schema version, 0 when there is no schema.
// A dirty schema is a failed migration that needs manual fixing.
func (m *Migrator) Version(ctx context.Context) (version uint, dirty bool, err error) {
	inst, closeFn, err := m.instance(ctx)
	defer closeFn()
	if err != nil {
		return 0, false, err
	}

	return currentVersion(inst)
}

func (m *Migrator) run(ctx context.Context, op string, fn func(*migrate.Migrate) error) error {
	inst, closeFn, err := m.instance(ctx)
	defer closeFn()
	if err != nil {
		return err
	}

	from, dirty, err := currentVersion(inst)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("journal schema version %d is dirty, a previous migration failed", from)
	}

	err = fn(inst)
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Debugf("Journal schema already at version %d", from)
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not %s journal schema from version %d: %w", op, from, err)
	}

	to, _, err := currentVersion(inst)
	if err != nil {
		return err
	}
	m.logger.Infof("Journal schema migrated from version %d to %d", from, to)

	return nil
}

// currentVersion is the version of inst, 0 when nothing was applied.
func currentVersion(inst *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := inst.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("could not get journal schema version: %w", err)
	}
	return v, dirty, nil
}

// instance creates a migrate instance with the embedded journal schema.
func (m *Migrator) instance(_ context.Context) (instance *migrate.Migrate, closeFn func(), err error) {
	closeFn = func() {}

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{MigrationsTable: VersionsTable})
	if err != nil {
		return nil, closeFn, fmt.Errorf("could not create driver: %w", err)
	}

	src, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return nil, closeFn, fmt.Errorf("could not create fs: %w", err)
	}
	closeFn = func() {
		if err := src.Close(); err != nil {
			m.logger.Errorf("could not close fs: %s", err)
		}
	}

	instance, err = migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return nil, closeFn, fmt.Errorf("could not create migration instance: %w", err)
	}

	return instance, closeFn, nil
}
