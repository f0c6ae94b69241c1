package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Notifuse/mailblocks/config"
)

// GetConnectionPoolSettings returns connection pool settings based on environment
func GetConnectionPoolSettings(environment string) (maxOpen, maxIdle int, maxLifetime time.Duration) {
	// Use smaller pools for test environment to conserve connections
	if environment == "test" || environment == "development" {
		return 10, 5, 2 * time.Minute
	}
	return 25, 25, 20 * time.Minute
}

// GetSystemDSN returns the DSN for the templates database
func GetSystemDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.SSLMode,
	)
}

// GetPostgresDSN returns the DSN for connecting to PostgreSQL server without specifying a database
func GetPostgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/postgres?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.SSLMode,
	)
}

// Connect makes sure the database exists, opens it with driverName, creates the
// tables and applies the pool settings. driverName is "postgres" or the name
// returned by tracing.RegisterDBDriver.
func Connect(driverName string, cfg *config.DatabaseConfig, environment string) (*sql.DB, error) {
	if err := EnsureSystemDatabaseExists(driverName, cfg); err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, GetSystemDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := InitializeDatabase(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	maxOpen, maxIdle, maxLifetime := GetConnectionPoolSettings(environment)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	db.SetConnMaxIdleTime(maxLifetime / 2)

	return db, nil
}

// EnsureSystemDatabaseExists creates the templates database if it doesn't exist
func EnsureSystemDatabaseExists(driverName string, cfg *config.DatabaseConfig) error {
	db, err := sql.Open(driverName, GetPostgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL server: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL server: %w", err)
	}

	return createDatabaseIfMissing(db, cfg.DBName)
}

func createDatabaseIfMissing(db *sql.DB, dbName string) error {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	if err := db.QueryRow(query, dbName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	return nil
}
