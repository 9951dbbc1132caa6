package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/almasmith/mercer-library/internal/config"
	"github.com/almasmith/mercer-library/internal/entities"
	"github.com/almasmith/mercer-library/internal/logging"
)

// sqlitePragmas keep concurrent writers waiting instead of failing fast.
const sqlitePragmas = "_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"

type Database struct {
	DB     *gorm.DB
	Driver config.DatabaseDriver
}

// NewDatabase opens (and migrates) a sqlite database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(config.Database{Driver: config.DriverSQLite, Path: dbPath})
}

// Open connects to the configured engine and migrates every entity.
func Open(cfg config.Database) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite, "":
		dialector = sqlite.Open(sqliteDSN(cfg.Path))
		cfg.Driver = config.DriverSQLite
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// sqlite allows a single writer; one pooled connection turns lock
		// contention into queueing in database/sql.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Database initialized successfully (%s)", cfg.Driver)

	return &Database{DB: db, Driver: cfg.Driver}, nil
}

// Migrate creates or updates the schema for every entity.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Favorite{},
		&entities.BookRead{},
		&entities.StatsVersion{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database answers within ctx.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func sqliteDSN(path string) string {
	if path == "" {
		path = config.DefaultDatabasePath
	}
	if strings.Contains(path, "?") {
		return path + "&" + sqlitePragmas
	}
	return path + "?" + sqlitePragmas
}
