package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/suteetoe/storefront/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolSettings bounds a sql.DB connection pool
type PoolSettings struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// InitDB opens the control database, which holds the stores table
func InitDB(dbConfig *config.DBConfig) (*gorm.DB, error) {
	return Open(dbConfig.GetDSN(), PoolSettings{
		MaxIdleConns:    dbConfig.MaxIdleConns,
		MaxOpenConns:    dbConfig.MaxOpenConns,
		ConnMaxLifetime: dbConfig.ConnMaxLifetime,
	}, dbConfig.LogLevel)
}

// Open connects gorm to dsn and applies the pool settings
func Open(dsn string, pool PoolSettings, logLevel logger.LogLevel) (*gorm.DB, error) {
	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	return db, nil
}

// OpenConn wraps an existing sql.DB with the same gorm settings as Open
func OpenConn(conn *sql.DB, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap database connection: %w", err)
	}
	return db, nil
}

// Close releases the pool behind db
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig(logLevel logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Facade writes open their own transactions where they need one
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}
