package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/query"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

// Repository implements the Repository interface for in-memory storage
type Repository struct {
	db        *Database
	schema    *interfaces.Schema
	builder   *query.Builder
	tableName string
}

// NewRepository creates a new in-memory repository
func NewRepository(db *Database, schema *interfaces.Schema) *Repository {
	return &Repository{
		db:        db,
		schema:    schema,
		builder:   query.NewBuilder(schema),
		tableName: schema.TableName,
	}
}

// GetByID retrieves a single record by its ID
func (r *Repository) GetByID(ctx context.Context, id interfaces.ID) (map[string]interface{}, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, exists := r.db.tables[r.tableName]
	if !exists {
		return nil, interfaces.ErrNotFound
	}

	record, exists := t.rows[id.String()]
	if !exists {
		return nil, interfaces.ErrNotFound
	}

	return copyRecord(record), nil
}

// FindOne retrieves the first record matching the query
func (r *Repository) FindOne(ctx context.Context, q *interfaces.Query) (map[string]interface{}, error) {
	one := &interfaces.Query{}
	if q != nil {
		*one = *q
	}
	limit := 1
	one.Limit = &limit

	result, err := r.FindMany(ctx, one)
	if err != nil {
		return nil, err
	}

	if len(result.Data) == 0 {
		return nil, interfaces.ErrNotFound
	}

	return result.Data[0], nil
}

// FindMany returns matching records in insertion order unless q sorts them
func (r *Repository) FindMany(ctx context.Context, q *interfaces.Query) (*interfaces.ResultPage, error) {
	if q == nil {
		q = &interfaces.Query{}
	}

	r.db.mu.RLock()
	records := []map[string]interface{}{}
	if t, exists := r.db.tables[r.tableName]; exists {
		for _, id := range t.order {
			record := t.rows[id]
			if r.builder.MatchesFilters(record, q.Where) {
				records = append(records, copyRecord(record))
			}
		}
	}
	r.db.mu.RUnlock()

	total := int64(len(records))

	if len(q.OrderBy) > 0 {
		records = r.builder.ApplySort(records, q.OrderBy)
	}

	offset := 0
	if q.Offset != nil {
		offset = *q.Offset
	}
	pageSize := len(records)
	if q.Limit != nil {
		pageSize = *q.Limit
	}

	records = r.builder.ApplyPagination(records, q.Limit, q.Offset)

	page := 1
	if pageSize > 0 {
		page = (offset / pageSize) + 1
	}

	return &interfaces.ResultPage{
		Data:     records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Create inserts a new record
func (r *Repository) Create(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error) {
	record := r.builder.Normalize(data)
	if err := r.builder.ValidateData(record, false); err != nil {
		return nil, err
	}

	if id, _ := record["id"].(string); id == "" {
		record["id"] = uuid.New().String()
	}

	now := time.Now().UTC()
	record["created_at"] = now
	record["updated_at"] = now

	for fieldName, fieldSchema := range r.schema.Fields {
		if _, exists := record[fieldName]; !exists && fieldSchema.DefaultValue != nil {
			record[fieldName] = fieldSchema.DefaultValue
		}
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, exists := r.db.tables[r.tableName]
	if !exists {
		t = newTable()
		r.db.tables[r.tableName] = t
	}

	id := record["id"].(string)
	if _, exists := t.rows[id]; exists {
		return nil, fmt.Errorf("%w: record with id '%s' already exists", interfaces.ErrUniqueConstraint, id)
	}

	if err := r.validateUniqueConstraints(t, record, ""); err != nil {
		return nil, err
	}

	t.insert(id, record)
	return copyRecord(record), nil
}

// Update modifies an existing record by ID
func (r *Repository) Update(ctx context.Context, id interfaces.ID, data map[string]interface{}) (map[string]interface{}, error) {
	patch := r.builder.Normalize(data)
	delete(patch, "id")
	delete(patch, "created_at")
	if err := r.builder.ValidateData(patch, true); err != nil {
		return nil, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, exists := r.db.tables[r.tableName]
	if !exists {
		return nil, interfaces.ErrNotFound
	}

	existing, exists := t.rows[id.String()]
	if !exists {
		return nil, interfaces.ErrNotFound
	}

	updated := copyRecord(existing)
	for k, v := range patch {
		updated[k] = v
	}
	updated["updated_at"] = time.Now().UTC()

	if err := r.validateUniqueConstraints(t, updated, id.String()); err != nil {
		return nil, err
	}

	t.rows[id.String()] = updated
	return copyRecord(updated), nil
}

// Upsert inserts or updates based on unique field constraints
func (r *Repository) Upsert(ctx context.Context, uniqueFields map[string]interface{}, data map[string]interface{}) (map[string]interface{}, error) {
	q := &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: make([]interfaces.Filter, 0, len(uniqueFields)),
		},
	}

	for field, value := range uniqueFields {
		q.Where.Conditions = append(q.Where.Conditions, interfaces.Filter{
			Field: field,
			Value: value,
		})
	}

	existing, err := r.FindOne(ctx, q)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		return r.Update(ctx, interfaces.StringID(resource.StringOf(existing["id"])), data)
	}

	createData := copyRecord(data)
	for k, v := range uniqueFields {
		createData[k] = v
	}

	return r.Create(ctx, createData)
}

// Delete removes a record by ID
func (r *Repository) Delete(ctx context.Context, id interfaces.ID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, exists := r.db.tables[r.tableName]
	if !exists {
		return interfaces.ErrNotFound
	}

	if _, exists := t.rows[id.String()]; !exists {
		return interfaces.ErrNotFound
	}

	t.remove(id.String())
	return nil
}

// Count returns the number of records matching the query
func (r *Repository) Count(ctx context.Context, q *interfaces.Query) (int64, error) {
	if q == nil {
		r.db.mu.RLock()
		defer r.db.mu.RUnlock()
		if t, exists := r.db.tables[r.tableName]; exists {
			return int64(len(t.rows)), nil
		}
		return 0, nil
	}

	result, err := r.FindMany(ctx, &interfaces.Query{Where: q.Where})
	if err != nil {
		return 0, err
	}

	return result.Total, nil
}

// GetSchema returns the schema for this repository
func (r *Repository) GetSchema() *interfaces.Schema {
	return r.schema
}

// validateUniqueConstraints compares unique string fields case-insensitively
func (r *Repository) validateUniqueConstraints(t *table, record map[string]interface{}, excludeID string) error {
	for fieldName, fieldSchema := range r.schema.Fields {
		if !fieldSchema.Unique {
			continue
		}

		value, exists := record[fieldName]
		if !exists || value == nil {
			continue
		}
		needle := strings.ToLower(strings.TrimSpace(resource.StringOf(value)))

		for id, existing := range t.rows {
			if id == excludeID {
				continue
			}
			other, exists := existing[fieldName]
			if exists && other != nil && strings.ToLower(strings.TrimSpace(resource.StringOf(other))) == needle {
				return fmt.Errorf("%w: %s '%v' already exists", interfaces.ErrUniqueConstraint, fieldName, value)
			}
		}
	}

	return nil
}
