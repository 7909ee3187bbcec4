// Package database sets up the Postgres and Redis connections
package database

import (
	"fmt"

	"github.com/vinnymaker/stockapp/internal/config"
	"github.com/vinnymaker/stockapp/internal/models"
	"github.com/vinnymaker/stockapp/pkg/utils/zaplogger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectPostgres connects to a Postgres database and returns a GORM database object
func ConnectPostgres(cfg *config.Config) (*gorm.DB, error) {
	zaplogger.Info(config.SingleLine)
	zaplogger.Info("Initializing Postgres")

	// Set up GORM logger
	var logLevel logger.LogLevel
	switch cfg.PostgresLogLevel {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "warn":
		logLevel = logger.Warn
	case "info":
		logLevel = logger.Info
	default:
		logLevel = logger.Warn
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	// Open database connection
	db, err := gorm.Open(postgres.Open(cfg.PostgresDsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %v", err)
	}
	zaplogger.Info("  * connected")
	zaplogger.Info("  * checking tables")

	// AutoMigrate will create tables and add/modify columns
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %v", err)
	}

	// Verify that the tables are created
	if err := verifyTables(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the application tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Exchange{},
		&models.Quote{},
		&models.StockIndex{},
		&models.IndexListing{},
		&models.User{},
	)
}

func verifyTables(db *gorm.DB) error {
	tables := []struct {
		name  string
		model interface{}
	}{
		{models.ExchangesTableName, &models.Exchange{}},
		{models.StocksTableName, &models.Quote{}},
		{models.StockIndexesTableName, &models.StockIndex{}},
		{models.IndexListingsTableName, &models.IndexListing{}},
		{models.UsersTableName, &models.User{}},
	}

	for _, table := range tables {
		if db.Migrator().HasTable(table.model) {
			zaplogger.Info("    - " + table.name + " ✔")
		} else {
			return fmt.Errorf("failed to create table: %s", table.name)
		}
	}

	return nil
}
