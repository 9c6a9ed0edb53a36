package connection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/config"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Database struct {
	*gorm.DB
	driver string
	dsn    string
}

type txKey struct{}

func gormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// NewDatabase opens the configured driver and sizes the connection pool.
func NewDatabase(cfg *config.Config) (*Database, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return openSQLite(cfg.Database.DSN(), logger.Warn)
	case config.DriverPostgres:
		return openPostgres(cfg.Database)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func openPostgres(cfg config.DatabaseConfig) (*Database, error) {
	dsn := cfg.DSN()

	// Verify connectivity first so postgres error codes surface clearly
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create sql.DB: %w", err)
	}
	defer sqlDB.Close()

	sqlDB.SetConnMaxLifetime(10 * time.Second)
	if err := sqlDB.Ping(); err != nil {
		if sqlErr, ok := err.(*pq.Error); ok {
			return nil, fmt.Errorf("postgres error: code=%s, message=%s, detail=%s", sqlErr.Code, sqlErr.Message, sqlErr.Detail)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gcfg := gormConfig(logger.Warn)
	gcfg.PrepareStmt = true

	db, err := gorm.Open(postgres.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database with GORM: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}

	maxIdleConns := 10
	maxOpenConns := 100
	lifetime := time.Hour
	if cfg.MaxIdleConns > 0 {
		maxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns > 0 {
		maxOpenConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxLifetime > 0 {
		lifetime = cfg.ConnMaxLifetime
	}
	pool.SetMaxIdleConns(maxIdleConns)
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetConnMaxLifetime(lifetime)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping connection pool: %w", err)
	}

	return &Database{DB: db, driver: config.DriverPostgres, dsn: dsn}, nil
}

func openSQLite(dsn string, level logger.LogLevel) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(level))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	// SQLite allows a single writer
	pool.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Database{DB: db, driver: config.DriverSQLite, dsn: dsn}, nil
}

// NewInMemory opens a private in-memory SQLite database. Used by tests and local runs.
func NewInMemory(name string) (*Database, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	return openSQLite(dsn, logger.Silent)
}

// Driver reports the dialect in use.
func (db *Database) Driver() string {
	return db.driver
}

// Conn returns the transaction bound to ctx, or the pool scoped to ctx.
func (db *Database) Conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.DB.WithContext(ctx)
}

// InTransaction runs fn in a single transaction carried on the context.
// Nested calls join the outer transaction.
func (db *Database) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// ForUpdate adds a row lock to the query. SQLite ignores it and serializes writers instead.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// HealthCheck pings the underlying pool.
func (db *Database) HealthCheck(ctx context.Context) error {
	pool, err := db.DB.DB()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Close releases the pool.
func (db *Database) Close() error {
	pool, err := db.DB.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}
