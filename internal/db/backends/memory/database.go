package memory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
)

// table keeps rows by id plus their insertion order
type table struct {
	rows  map[string]map[string]interface{}
	order []string
}

func newTable() *table {
	return &table{rows: make(map[string]map[string]interface{})}
}

func (t *table) clone() *table {
	c := &table{
		rows:  make(map[string]map[string]interface{}, len(t.rows)),
		order: append([]string(nil), t.order...),
	}
	for id, record := range t.rows {
		c.rows[id] = copyRecord(record)
	}
	return c
}

func (t *table) insert(id string, record map[string]interface{}) {
	t.rows[id] = record
	t.order = append(t.order, id)
}

func (t *table) remove(id string) {
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
}

// Database implements the Database interface for in-memory storage
type Database struct {
	mu        sync.RWMutex
	tables    map[string]*table
	schemas   map[string]*interfaces.Schema
	connected bool
	logger    *zap.SugaredLogger
}

// NewDatabase creates a new in-memory database
func NewDatabase(logger *zap.SugaredLogger) *Database {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Database{
		tables:  make(map[string]*table),
		schemas: make(map[string]*interfaces.Schema),
		logger:  logger,
	}
}

// Connect establishes a connection to the database
func (db *Database) Connect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.connected = true
	db.logger.Infow("Connected to in-memory database")
	return nil
}

// Disconnect drops every table
func (db *Database) Disconnect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.connected = false
	db.tables = make(map[string]*table)
	db.schemas = make(map[string]*interfaces.Schema)
	db.logger.Infow("Disconnected from in-memory database")
	return nil
}

// IsHealthy checks if the database connection is healthy
func (db *Database) IsHealthy(ctx context.Context) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.connected
}

// Transaction snapshots every table and restores them when fn fails
func (db *Database) Transaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Transaction) error) error {
	if !db.IsHealthy(ctx) {
		return interfaces.ErrDatabaseNotConnected
	}

	tx := NewTransaction(db)

	defer func() {
		if !tx.IsCompleted() {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			db.logger.Warnw("Rollback failed", "error", rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

// Repository returns a repository for the given schema
func (db *Database) Repository(schema *interfaces.Schema) interfaces.Repository {
	db.mu.Lock()
	db.schemas[schema.TableName] = schema
	db.mu.Unlock()

	return NewRepository(db, schema)
}

// Migrate creates tables and applies schema changes
func (db *Database) Migrate(ctx context.Context, schemas []*interfaces.Schema) error {
	if !db.IsHealthy(ctx) {
		return interfaces.ErrDatabaseNotConnected
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	for _, schema := range schemas {
		db.schemas[schema.TableName] = schema
		if _, exists := db.tables[schema.TableName]; !exists {
			db.tables[schema.TableName] = newTable()
			db.logger.Debugw("Created in-memory table", "table", schema.TableName)
		}
	}

	db.logger.Infow("Migration completed", "schemas", len(schemas))
	return nil
}

// Seed upserts fixtures by name so repeated runs do not duplicate rows.
// All records of one call land atomically.
func (db *Database) Seed(ctx context.Context, schema *interfaces.Schema, data []map[string]interface{}) error {
	if !db.IsHealthy(ctx) {
		return interfaces.ErrDatabaseNotConnected
	}

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

// GetTables returns all table names (for debugging/testing)
func (db *Database) GetTables() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	tables := make([]string, 0, len(db.tables))
	for name := range db.tables {
		tables = append(tables, name)
	}
	return tables
}

// Clear removes all data from all tables (for testing)
func (db *Database) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()

	for tableName := range db.tables {
		db.tables[tableName] = newTable()
	}
}

func copyRecord(record map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
