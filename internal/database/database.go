package database

import (
	"fmt"
	"log"
	"strings"

	"seedworks/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Dialector returns the gorm dialector for a configured driver name
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// GormConfig is shared by the server, the worker and tests
func GormConfig(logLevel string) *gorm.Config {
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(parseLogLevel(logLevel)),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	}
}

// Connect establishes a connection to the configured database
func Connect(driver, dsn, logLevel string) error {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, GormConfig(logLevel))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB, err := DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Printf("Database connection established successfully (%s)", driver)
	return nil
}

// Models lists every persisted model in migration order
func Models() []interface{} {
	return []interface{}{
		&models.Account{},
		&models.UserRole{},
		&models.BankCard{},
		&models.Product{},
		&models.UserProduct{},
		&models.Transaction{},
		&models.WithdrawalRequest{},
		&models.RechargeRequest{},
		&models.Prize{},
		&models.TaskClaim{},
		&models.BlogPost{},
		&models.SupportMessage{},
		&models.OutboxMessage{},
		&models.AdminLog{},
	}
}

// AutoMigrate runs automatic migrations for all models. Production
// postgres deployments use cmd/migrate instead.
func AutoMigrate(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	}
	return logger.Error
}
