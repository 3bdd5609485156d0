package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fitgenius/config"
	"fitgenius/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// IsPostgresDSN reports whether dsn targets PostgreSQL rather than SQLite.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.HasPrefix(dsn, "host=")
}

// Init initializes the database connection using the DSN from the application config.
// "memory" (or empty) opens a shared in-memory SQLite database, a postgres URL or
// key/value DSN opens PostgreSQL, and anything else is treated as a SQLite file path.
func Init() (*gorm.DB, error) {
	db, err := Open(config.AppConfig.Database.DSN, logger.Warn)
	if err != nil {
		return nil, err
	}
	DB = db
	return DB, nil
}

// Open connects to dsn with the given gorm log level.
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // gorm logger.Default threshold
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	gormConfig := &gorm.Config{Logger: gormLogger}

	var dialector gorm.Dialector
	switch {
	case dsn == "memory" || dsn == "":
		log.Println("INFO: [Database] Initializing in-memory SQLite database (DSN: 'memory' or empty).")
		dialector = sqlite.Open("file::memory:?cache=shared&_foreign_keys=1")
	case IsPostgresDSN(dsn):
		log.Println("INFO: [Database] Initializing PostgreSQL database.")
		dialector = postgres.Open(dsn)
	default:
		log.Printf("INFO: [Database] Initializing file-based SQLite database at DSN: '%s'.", dsn)
		dbDir := filepath.Dir(dsn)
		if dbDir != "." && dbDir != "/" {
			if _, statErr := os.Stat(dbDir); os.IsNotExist(statErr) {
				log.Printf("INFO: [Database] Database directory '%s' does not exist, attempting to create.", dbDir)
				if mkdirErr := os.MkdirAll(dbDir, 0755); mkdirErr != nil {
					log.Printf("ERROR: [Database] Failed to create database directory '%s': %v", dbDir, mkdirErr)
					return nil, fmt.Errorf("failed to create database directory '%s': %w", dbDir, mkdirErr)
				}
			}
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dialector = sqlite.Open(dsn + sep + "_foreign_keys=1")
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		log.Printf("ERROR: [Database] Failed to connect to database: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("INFO: [Database] Database connection established successfully.")
	return db, nil
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	log.Println("INFO: [Database] Running database migrations...")
	err := db.AutoMigrate(
		&models.Profile{},
		&models.Plan{},
		&models.Day{},
		&models.Exercise{},
		&models.ExerciseLog{},
		&models.MealDay{},
		&models.MealEntry{},
		&models.NutritionSummary{},
		&models.Reminder{},
	)
	if err != nil {
		log.Printf("ERROR: [Database] Failed to auto-migrate database: %v", err)
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	log.Println("INFO: [Database] Database migration completed.")
	return nil
}
