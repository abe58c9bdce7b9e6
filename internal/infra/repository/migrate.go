package repository

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrateUp applies every pending migration. An up-to-date schema is not an error.
func MigrateUp(pool *pgxpool.Pool) error {
	return runMigrations(pool, "up", (*migrate.Migrate).Up)
}

// MigrateDown reverts every applied migration.
func MigrateDown(pool *pgxpool.Pool) error {
	return runMigrations(pool, "down", (*migrate.Migrate).Down)
}

func runMigrations(pool *pgxpool.Pool, direction string, step func(*migrate.Migrate) error) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := step(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("schema already up to date", "direction", direction)
			return nil
		}
		return fmt.Errorf("failed to run migrations %s: %w", direction, err)
	}

	version, dirty, _ := m.Version()
	slog.Info("migrations applied", "direction", direction, "version", version, "dirty", dirty)
	return nil
}
