package interfaces

import "context"

// Repository provides CRUD operations for a single entity kind
type Repository interface {
	// GetByID retrieves a single record by its ID
	GetByID(ctx context.Context, id ID) (map[string]interface{}, error)

	// FindOne retrieves the first record matching the query
	FindOne(ctx context.Context, query *Query) (map[string]interface{}, error)

	// FindMany retrieves the records matching the query in query order
	FindMany(ctx context.Context, query *Query) (*ResultPage, error)

	// Create inserts a new record, assigning id and timestamps
	Create(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error)

	// Update merges data into an existing record
	Update(ctx context.Context, id ID, data map[string]interface{}) (map[string]interface{}, error)

	// Upsert updates the record matching uniqueFields or creates one
	Upsert(ctx context.Context, uniqueFields map[string]interface{}, data map[string]interface{}) (map[string]interface{}, error)

	// Delete removes a record by ID
	Delete(ctx context.Context, id ID) error

	// Count returns the number of records matching the query
	Count(ctx context.Context, query *Query) (int64, error)

	// GetSchema returns the schema for this repository
	GetSchema() *Schema
}
