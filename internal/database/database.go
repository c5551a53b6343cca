package database

import (
	"fmt"
	"time"

	applogger "github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/models"
	"github.com/talentnet/backend/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Open connects to the database for driver ("postgres" or "sqlite").
func Open(driver, dsn string, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		if dsn == "" {
			dsn = "host=localhost port=5432 user=postgres dbname=talentnet sslmode=disable"
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gormLogger := logger.Default.LogMode(logger.Warn)
	if verbose {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if driver == "sqlite" {
		// one connection keeps in-memory databases shared across queries
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// Initialize opens the global connection
func Initialize(driver, dsn string, verbose bool) error {
	db, err := Open(driver, dsn, verbose)
	if err != nil {
		return err
	}
	DB = db
	applogger.Log.Info("Database connected", zap.String("driver", driver))
	return nil
}

// EnableTracing installs the OpenTelemetry GORM plugin on db
func EnableTracing(db *gorm.DB, driver string) error {
	system := driver
	if driver == "postgres" {
		system = "postgresql"
	}
	if err := db.Use(telemetry.GORMTracingPlugin(system)); err != nil {
		return fmt.Errorf("failed to enable database tracing: %w", err)
	}
	return nil
}

// Migrate runs auto-migration for all models
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.PostLike{},
		&models.PostComment{},
		&models.PostReaction{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	applogger.Log.Info("Database migrations completed")
	return nil
}

// Close closes the global database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
