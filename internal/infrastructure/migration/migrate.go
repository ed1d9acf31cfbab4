package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Runner applies the SQL migrations under migrations/ against the
// inventory database, on top of golang-migrate.
type Runner struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

func New(db *sql.DB, migrationsPath string, logger *zap.Logger) (*Runner, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migrate instance: %w", err)
	}

	return &Runner{m: m, logger: logger}, nil
}

// Up applies every pending migration.
func (r *Runner) Up() error {
	r.logger.Info("Applying pending migrations")
	return r.finish(r.m.Up(), "up")
}

// Down rolls every migration back.
func (r *Runner) Down() error {
	r.logger.Info("Rolling back all migrations")
	return r.finish(r.m.Down(), "down")
}

// Steps applies n migrations; negative n rolls back.
func (r *Runner) Steps(n int) error {
	r.logger.Info("Applying migration steps", zap.Int("steps", n))
	return r.finish(r.m.Steps(n), "steps")
}

// Version reports the schema version and whether a migration died
// halfway and left the schema dirty. Zero means a fresh database.
func (r *Runner) Version() (uint, bool, error) {
	version, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration version: %w", err)
	}
	return version, dirty, nil
}

// Force stamps the schema version without running anything. Recovery
// tool for a dirty schema, nothing else.
func (r *Runner) Force(version int) error {
	r.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := r.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

func (r *Runner) Close() error {
	sourceErr, dbErr := r.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration database: %w", dbErr)
	}
	return nil
}

func (r *Runner) finish(err error, direction string) error {
	if errors.Is(err, migrate.ErrNoChange) {
		r.logger.Info("Schema already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s: %w", direction, err)
	}

	version, dirty, verr := r.m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("migration version after %s: %w", direction, verr)
	}
	r.logger.Info("Migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
