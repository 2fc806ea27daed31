// Package postgres stores every entity kind in a single JSONB records table
// keyed by (kind, id).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/migrations"
)

// Pool is the subset of pgxpool.Pool the backend needs
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// Database implements interfaces.Database over pgx
type Database struct {
	dsn    string
	pool   Pool
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewDatabase creates a backend that connects to dsn on Connect
func NewDatabase(dsn string, logger *zap.SugaredLogger) *Database {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Database{dsn: dsn, logger: logger, now: time.Now}
}

// NewWithPool wraps an existing pool; Connect becomes a ping
func NewWithPool(pool Pool, logger *zap.SugaredLogger) *Database {
	db := NewDatabase("", logger)
	db.pool = pool
	return db
}

func (db *Database) withClock(now func() time.Time) {
	if now != nil {
		db.now = now
	}
}

// Connect opens the pool and verifies it answers
func (db *Database) Connect(ctx context.Context) error {
	if db.pool == nil {
		pool, err := pgxpool.New(ctx, db.dsn)
		if err != nil {
			return &interfaces.DatabaseError{Op: "connect", Err: err}
		}
		db.pool = pool
	}
	if err := db.pool.Ping(ctx); err != nil {
		return &interfaces.DatabaseError{Op: "ping", Err: err}
	}
	db.logger.Infow("Connected to PostgreSQL")
	return nil
}

// Disconnect closes the pool
func (db *Database) Disconnect(ctx context.Context) error {
	if db.pool != nil {
		db.pool.Close()
		db.pool = nil
	}
	db.logger.Infow("Disconnected from PostgreSQL")
	return nil
}

// IsHealthy pings the pool
func (db *Database) IsHealthy(ctx context.Context) bool {
	return db.pool != nil && db.pool.Ping(ctx) == nil
}

// Transaction runs fn inside a pgx transaction carried on ctx
func (db *Database) Transaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Transaction) error) error {
	if db.pool == nil {
		return interfaces.ErrDatabaseNotConnected
	}

	pgTx, err := db.pool.Begin(ctx)
	if err != nil {
		return &interfaces.DatabaseError{Op: "begin", Err: err}
	}
	tx := &Transaction{tx: pgTx}

	defer func() {
		if !tx.IsCompleted() {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, pgTx), tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, interfaces.ErrTransactionCompleted) {
			db.logger.Warnw("Rollback failed", "error", rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

// Repository returns a repository for the given schema
func (db *Database) Repository(schema *interfaces.Schema) interfaces.Repository {
	return NewRepository(db, schema)
}

// Migrate applies the embedded goose migrations. Every kind shares one
// table so schemas are only logged.
func (db *Database) Migrate(ctx context.Context, schemas []*interfaces.Schema) error {
	pool, ok := db.pool.(*pgxpool.Pool)
	if !ok {
		return &interfaces.DatabaseError{Op: "migrate", Err: fmt.Errorf("migrations need a pgxpool connection, got %T", db.pool)}
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return &interfaces.DatabaseError{Op: "migrate", Err: err}
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return &interfaces.DatabaseError{Op: "migrate", Err: err}
	}

	db.logger.Infow("Migration completed", "schemas", len(schemas))
	return nil
}

// Seed upserts fixtures by name in one transaction
func (db *Database) Seed(ctx context.Context, schema *interfaces.Schema, data []map[string]interface{}) error {
	repo := db.Repository(schema)
	err := db.Transaction(ctx, func(ctx context.Context, _ interfaces.Transaction) error {
		for i, record := range data {
			if _, err := repo.Upsert(ctx, map[string]interface{}{"name": record["name"]}, record); err != nil {
				return fmt.Errorf("seed record %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return &interfaces.DatabaseError{Op: "seed " + schema.TableName, Err: err}
	}

	db.logger.Infow("Seeded table", "table", schema.TableName, "records", len(data))
	return nil
}

func (db *Database) conn(ctx context.Context) (querier, error) {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx, nil
	}
	if db.pool == nil {
		return nil, interfaces.ErrDatabaseNotConnected
	}
	return db.pool, nil
}
