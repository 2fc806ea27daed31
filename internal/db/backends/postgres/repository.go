package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/query"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

const (
	codeUniqueViolation = "23505"
	codeInvalidText     = "22P02"
)

// Repository implements interfaces.Repository for one kind
type Repository struct {
	db      *Database
	schema  *interfaces.Schema
	builder *query.Builder
	kind    string
}

func NewRepository(db *Database, schema *interfaces.Schema) *Repository {
	return &Repository{
		db:      db,
		schema:  schema,
		builder: query.NewBuilder(schema),
		kind:    schema.TableName,
	}
}

func (r *Repository) GetByID(ctx context.Context, id interfaces.ID) (map[string]interface{}, error) {
	conn, err := r.db.conn(ctx)
	if err != nil {
		return nil, err
	}

	row := conn.QueryRow(ctx,
		"SELECT "+recordColumns+" FROM records WHERE kind = $1 AND id = $2",
		r.kind, id.String())
	record, err := r.scan(row)
	if err != nil {
		return nil, r.wrap("get", err)
	}
	return record, nil
}

func (r *Repository) FindOne(ctx context.Context, q *interfaces.Query) (map[string]interface{}, error) {
	one := &interfaces.Query{}
	if q != nil {
		*one = *q
	}
	limit := 1
	one.Limit = &limit

	page, err := r.FindMany(ctx, one)
	if err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return page.Data[0], nil
}

// FindMany filters in SQL and sorts in Go so ordering matches the
// in-memory backend for numbers and dates.
func (r *Repository) FindMany(ctx context.Context, q *interfaces.Query) (*interfaces.ResultPage, error) {
	if q == nil {
		q = &interfaces.Query{}
	}
	conn, err := r.db.conn(ctx)
	if err != nil {
		return nil, err
	}

	w := newWhereBuilder(r.schema, r.kind)
	pred, err := w.build(q.Where)
	if err != nil {
		return nil, err
	}
	stmt := "SELECT " + recordColumns + " FROM records WHERE kind = $1"
	if pred != "" {
		stmt += " AND " + pred
	}
	stmt += " ORDER BY created_at, id"

	rows, err := conn.Query(ctx, stmt, w.args...)
	if err != nil {
		return nil, r.wrap("find", err)
	}
	defer rows.Close()

	records := []map[string]interface{}{}
	for rows.Next() {
		record, err := r.scan(rows)
		if err != nil {
			return nil, r.wrap("find", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap("find", err)
	}

	total := int64(len(records))
	records = r.builder.ApplySort(records, q.OrderBy)

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

	return &interfaces.ResultPage{Data: records, Total: total, Page: page, PageSize: pageSize}, nil
}

func (r *Repository) Create(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error) {
	record := r.builder.Normalize(data)
	if err := r.builder.ValidateData(record, false); err != nil {
		return nil, err
	}
	for field, fs := range r.schema.Fields {
		if _, ok := record[field]; !ok && fs.DefaultValue != nil {
			record[field] = fs.DefaultValue
		}
	}

	id, _ := record["id"].(string)
	if id == "" {
		id = uuid.New().String()
	}
	payload, err := encodeData(record)
	if err != nil {
		return nil, err
	}

	conn, err := r.db.conn(ctx)
	if err != nil {
		return nil, err
	}
	now := r.db.now().UTC()
	_, err = conn.Exec(ctx,
		"INSERT INTO records (kind, id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)",
		r.kind, id, payload, now)
	if err != nil {
		return nil, r.wrap("create", err)
	}

	record["id"] = id
	record["created_at"] = now
	record["updated_at"] = now
	return record, nil
}

func (r *Repository) Update(ctx context.Context, id interfaces.ID, data map[string]interface{}) (map[string]interface{}, error) {
	patch := r.builder.Normalize(data)
	if err := r.builder.ValidateData(patch, true); err != nil {
		return nil, err
	}
	payload, err := encodeData(patch)
	if err != nil {
		return nil, err
	}

	conn, err := r.db.conn(ctx)
	if err != nil {
		return nil, err
	}
	row := conn.QueryRow(ctx,
		"UPDATE records SET data = data || $3::jsonb, updated_at = $4 WHERE kind = $1 AND id = $2 RETURNING "+recordColumns,
		r.kind, id.String(), payload, r.db.now().UTC())
	record, err := r.scan(row)
	if err != nil {
		return nil, r.wrap("update", err)
	}
	return record, nil
}

func (r *Repository) Upsert(ctx context.Context, uniqueFields map[string]interface{}, data map[string]interface{}) (map[string]interface{}, error) {
	where := &interfaces.Filters{}
	for field, value := range uniqueFields {
		where.Conditions = append(where.Conditions, interfaces.Filter{Field: field, Value: value})
	}

	existing, err := r.FindOne(ctx, &interfaces.Query{Where: where})
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return r.Update(ctx, interfaces.StringID(resource.StringOf(existing["id"])), data)
	}

	create := make(map[string]interface{}, len(data)+len(uniqueFields))
	for k, v := range data {
		create[k] = v
	}
	for k, v := range uniqueFields {
		create[k] = v
	}
	return r.Create(ctx, create)
}

func (r *Repository) Delete(ctx context.Context, id interfaces.ID) error {
	conn, err := r.db.conn(ctx)
	if err != nil {
		return err
	}
	tag, err := conn.Exec(ctx, "DELETE FROM records WHERE kind = $1 AND id = $2", r.kind, id.String())
	if err != nil {
		return r.wrap("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *Repository) Count(ctx context.Context, q *interfaces.Query) (int64, error) {
	conn, err := r.db.conn(ctx)
	if err != nil {
		return 0, err
	}

	w := newWhereBuilder(r.schema, r.kind)
	stmt := "SELECT count(*) FROM records WHERE kind = $1"
	if q != nil {
		pred, err := w.build(q.Where)
		if err != nil {
			return 0, err
		}
		if pred != "" {
			stmt += " AND " + pred
		}
	}

	var n int64
	if err := conn.QueryRow(ctx, stmt, w.args...).Scan(&n); err != nil {
		return 0, r.wrap("count", err)
	}
	return n, nil
}

func (r *Repository) GetSchema() *interfaces.Schema {
	return r.schema
}

func (r *Repository) scan(row pgx.Row) (map[string]interface{}, error) {
	var (
		id               string
		raw              []byte
		created, updated time.Time
	)
	if err := row.Scan(&id, &raw, &created, &updated); err != nil {
		return nil, err
	}

	record := map[string]interface{}{}
	if len(raw) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("decode %s record %s: %w", r.kind, id, err)
		}
	}
	record = r.builder.Normalize(record)
	record["id"] = id
	record["created_at"] = created.UTC()
	record["updated_at"] = updated.UTC()
	return record, nil
}

// wrap maps driver errors onto the shared sentinels
func (r *Repository) wrap(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return interfaces.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", interfaces.ErrUniqueConstraint, pgErr.Detail)
		case codeInvalidText:
			// malformed uuid in the id position
			return interfaces.ErrNotFound
		}
	}
	return &interfaces.DatabaseError{Op: op + " " + r.kind, Err: err}
}

// encodeData drops the columns stored outside the JSONB document
func encodeData(record map[string]interface{}) ([]byte, error) {
	doc := make(map[string]interface{}, len(record))
	for k, v := range record {
		switch k {
		case "id", "created_at", "updated_at":
			continue
		}
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidData, err)
	}
	return raw, nil
}
