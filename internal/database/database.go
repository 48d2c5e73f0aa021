package database

import (
	"fmt"
	"time"

	"github.com/nourishtogether/donation-api/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewGormConfig returns the settings every connection shares. Donation
// references are weak, so no foreign key constraints are created, and
// driver errors are translated so unique violations surface as
// gorm.ErrDuplicatedKey.
func NewGormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// Dialector picks the gorm driver for cfg.Driver.
func Dialector(cfg config.DBConfig) (gorm.Dialector, error) {
	dsn, err := cfg.ResolveDSN()
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("driver %q is not a SQL driver", cfg.Driver)
	}
}

// Connect opens a relational connection for cfg. Debug mode logs every
// statement; otherwise only warnings reach the gorm logger.
func Connect(cfg config.DBConfig, debug bool) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, NewGormConfig(level))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
