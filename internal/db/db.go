package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/worktrack/internal/models"
)

// Supported values for Options.Driver
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options configures Open
type Options struct {
	Driver string // sqlite (default) or postgres
	DSN    string // file path for sqlite, connection string for postgres
	Logger *slog.Logger
	Debug  bool // echo SQL through gorm's logger
}

// Store owns the connection pool. Every method takes what it needs from the
// pool for one statement or one transaction and hands it back on return.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
	now func() time.Time
}

// Open connects to the database and runs migrations
func Open(opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	level := logger.Silent // Quiet by default
	if opts.Debug {
		level = logger.Info
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: gdb, log: opts.Logger, now: time.Now}
	if err := s.runMigrations(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// dialectorFor picks the gorm dialector for the configured driver
func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		dsn := opts.DSN
		if dsn == "" {
			path, err := getDatabasePath()
			if err != nil {
				return nil, fmt.Errorf("failed to get database path: %w", err)
			}
			dsn = path
		}
		if dsn != ":memory:" {
			// Ensure the directory exists
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres driver needs a DSN")
		}
		return postgres.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// getDatabasePath returns the default path to the SQLite database file
func getDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".worktrack", "worktrack.db"), nil
}

// runMigrations creates/updates the base tables and recreates the path view.
// The view is dropped first because some dialects rebuild tables on alter.
func (s *Store) runMigrations() error {
	if err := s.db.Exec(dropSubtaskPathView).Error; err != nil {
		return fmt.Errorf("drop %s: %w", subtaskPathView, err)
	}
	if err := s.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Issue{},
		&models.Workload{},
	); err != nil {
		return err
	}
	if err := s.db.Exec(createSubtaskPathView).Error; err != nil {
		return fmt.Errorf("create %s: %w", subtaskPathView, err)
	}
	return nil
}

// Migrate re-runs migrations on an open store
func (s *Store) Migrate() error {
	return s.runMigrations()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
