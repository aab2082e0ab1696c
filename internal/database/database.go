package database

import (
	"fmt"
	"log/slog"

	"github.com/hugh/kanmind/internal/database/models"
	"github.com/hugh/kanmind/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)

	var dialector gorm.Dialector
	if cfg.IsSQLite() {
		dialector = sqlite.Open(cfg.DSN())
	} else {
		if cfg.SSLMode == "disable" {
			gormLogger = logger.Default.LogMode(logger.Info)
		}
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying db: %w", err)
	}

	// Connection pool settings
	if cfg.IsSQLite() {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	log.Info("connected to database", "driver", cfg.Driver, "host", cfg.Host, "database", cfg.Name)

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Board{}, "Members", &models.BoardMember{}); err != nil {
		return fmt.Errorf("setting up board_members: %w", err)
	}
	return db.AutoMigrate(
		&models.User{},
		&models.AuthToken{},
		&models.Board{},
		&models.BoardMember{},
		&models.Task{},
		&models.TaskComment{},
	)
}
