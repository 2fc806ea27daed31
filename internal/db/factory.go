package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/backends/memory"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/backends/postgres"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
)

// Config holds database configuration
type Config struct {
	Type        string // "memory" or "postgres"
	DSN         string // PostgreSQL connection string
	UseInMemory bool   // Force in-memory usage
}

// NewDatabase creates a new database instance based on configuration
func NewDatabase(config *Config, logger *zap.SugaredLogger) (interfaces.Database, error) {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if config.Type == "" {
		config.Type = "memory"
	}

	if config.UseInMemory {
		logger.Infow("Using in-memory database")
		return memory.NewDatabase(logger), nil
	}

	switch config.Type {
	case "memory":
		logger.Infow("Using in-memory database")
		return memory.NewDatabase(logger), nil
	case "postgres":
		if config.DSN == "" {
			logger.Warnw("PostgreSQL selected without a DSN, falling back to in-memory database")
			return memory.NewDatabase(logger), nil
		}
		logger.Infow("Using PostgreSQL database")
		return postgres.NewDatabase(config.DSN, logger), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

// NewInMemoryDatabase creates a new in-memory database instance
func NewInMemoryDatabase() interfaces.Database {
	return memory.NewDatabase(nil)
}

// ConnectAndMigrate connects to the database and creates every kind's table
func ConnectAndMigrate(ctx context.Context, db interfaces.Database, schemas []*interfaces.Schema) error {
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if !db.IsHealthy(ctx) {
		return fmt.Errorf("database health check failed")
	}

	if err := db.Migrate(ctx, schemas); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// SeedAll loads the fixtures of every registered kind
func SeedAll(ctx context.Context, db interfaces.Database) error {
	for _, kind := range entities.All() {
		data, ok := Fixtures[kind.Name]
		if !ok {
			continue
		}
		if err := db.Seed(ctx, kind.Schema, data); err != nil {
			return fmt.Errorf("failed to seed %s: %w", kind.Name, err)
		}
	}
	return nil
}
