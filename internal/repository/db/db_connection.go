package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"kupipodariday/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

const (
	sqliteDriverName   = "sqlite"
	postgresDriverName = "postgres"

	postgresConnMaxLifetime = 5 * time.Minute
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know; it uses ? placeholders
	sqlx.BindDriver(sqliteDriverName, sqlx.QUESTION)
}

// InitDB opens the configured database, applies connection settings and, when
// enabled, runs the embedded migrations.
func InitDB(cfg config.DBConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = openSQLite(cfg.DSN)
	case config.DriverPostgres:
		db, err = openPostgres(cfg.DSN, cfg.MaxOpenConns)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := Migrate(db.DB, cfg.Driver); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}

func openSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite is not great with many writers; one connection also serializes
	// the funding transactions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}
	return db, nil
}

func openPostgres(dsn string, maxOpen int) (*sqlx.DB, error) {
	db, err := sqlx.Open(postgresDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen / 2)
	}
	db.SetConnMaxLifetime(postgresConnMaxLifetime)
	return db, nil
}

// Migrate applies all pending up-migrations for driver. The database handle stays open.
func Migrate(db *sql.DB, driver string) error {
	var (
		instance database.Driver
		err      error
	)
	switch driver {
	case config.DriverSQLite:
		instance, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case config.DriverPostgres:
		instance, err = migratepg.WithInstance(db, &migratepg.Config{})
	default:
		return fmt.Errorf("no migrations for driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, instance)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
