package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"trykkeri-admin/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB holds the database connection
var DB *sql.DB

// driverName maps the configured driver to the database/sql name and goose dialect
func driverName(driver string) (sqlName, dialect string, err error) {
	switch driver {
	case "pgx", "postgres", "":
		return "pgx", "postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite", "sqlite3", nil
	}
	return "", "", fmt.Errorf("unsupported database driver %q", driver)
}

// Open opens and pings a connection without touching the global
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	name, _, err := driverName(driver)
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, fmt.Errorf("database connection string is empty")
	}

	if name == "sqlite" {
		dsn = sqliteDSN(dsn)
	}
	conn, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// sqliteDSN sets the pragmas on every pooled connection and a sortable time format
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// InitDB opens the global connection
func InitDB(ctx context.Context, driver, dsn string) error {
	conn, err := Open(ctx, driver, dsn)
	if err != nil {
		return err
	}
	DB = conn
	logging.Infof("✓ Database connection established successfully (%s)", driver)
	return nil
}

// Migrate applies pending migrations embedded in the binary
func Migrate(ctx context.Context, conn *sql.DB, driver string) error {
	_, dialect, err := driverName(driver)
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, conn, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, conn)
	if err == nil {
		logging.Infof("✓ Database schema at version %d", version)
	}
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
