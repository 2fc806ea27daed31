package postgres

import (
	"fmt"
	"strings"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

const recordColumns = "id::text, data, created_at, updated_at"

// whereBuilder renders interfaces.Filters as a parameterized predicate.
// Field names are checked against the schema and always bound as
// parameters, never spliced into the statement.
type whereBuilder struct {
	schema *interfaces.Schema
	args   []any
}

func newWhereBuilder(schema *interfaces.Schema, args ...any) *whereBuilder {
	return &whereBuilder{schema: schema, args: args}
}

func (w *whereBuilder) bind(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

// column returns the SQL expression for field and the cast applied to
// values compared against it.
func (w *whereBuilder) column(field string) (expr string, cast string, err error) {
	fs, ok := w.schema.Fields[field]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown field '%s'", interfaces.ErrInvalidQuery, field)
	}
	switch field {
	case "id":
		return "id::text", "", nil
	case "created_at", "updated_at":
		return field, "::timestamptz", nil
	}
	key := "data->>" + w.bind(field) + "::text"
	switch fs.Type {
	case "int", "float64":
		return "(" + key + ")::numeric", "::numeric", nil
	case "bool":
		return "(" + key + ")::boolean", "::boolean", nil
	}
	return "(" + key + ")", "", nil
}

func (w *whereBuilder) build(f *interfaces.Filters) (string, error) {
	if f == nil {
		return "", nil
	}

	var parts []string
	for _, c := range f.Conditions {
		p, err := w.condition(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, p)
	}
	for _, g := range f.AND {
		p, err := w.build(g)
		if err != nil {
			return "", err
		}
		if p != "" {
			parts = append(parts, "("+p+")")
		}
	}
	if len(f.OR) > 0 {
		var ors []string
		for _, g := range f.OR {
			p, err := w.build(g)
			if err != nil {
				return "", err
			}
			if p != "" {
				ors = append(ors, "("+p+")")
			}
		}
		if len(ors) > 0 {
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
		}
	}

	return strings.Join(parts, " AND "), nil
}

func (w *whereBuilder) condition(c interfaces.Filter) (string, error) {
	col, cast, err := w.column(c.Field)
	if err != nil {
		return "", err
	}

	op := c.Operator
	if op == nil {
		if c.Value == nil {
			return col + " IS NULL", nil
		}
		return col + " = " + w.bind(resource.StringOf(c.Value)) + cast, nil
	}

	if op.IsNull {
		return col + " IS NULL", nil
	}

	sensitive := op.CaseSensitive == nil || *op.CaseSensitive
	fold := func(expr string) string {
		if sensitive || cast != "" {
			return expr
		}
		return "lower(" + expr + ")"
	}
	value := func(v any) string {
		return fold(w.bind(resource.StringOf(v)) + cast)
	}

	switch {
	case op.Eq != nil:
		return fold(col) + " = " + value(op.Eq), nil
	case op.Ne != nil:
		return fold(col) + " IS DISTINCT FROM " + value(op.Ne), nil
	case op.Gt != nil:
		return col + " > " + value(op.Gt), nil
	case op.Gte != nil:
		return col + " >= " + value(op.Gte), nil
	case op.Lt != nil:
		return col + " < " + value(op.Lt), nil
	case op.Lte != nil:
		return col + " <= " + value(op.Lte), nil
	case len(op.In) > 0:
		values := make([]string, len(op.In))
		for i, v := range op.In {
			values[i] = resource.StringOf(v)
			if !sensitive {
				values[i] = strings.ToLower(values[i])
			}
		}
		return fold(col) + " = ANY(" + w.bind(values) + ")", nil
	case op.Like != "":
		if sensitive {
			return col + " LIKE " + w.bind(op.Like), nil
		}
		return col + " ILIKE " + w.bind(op.Like), nil
	}

	return "TRUE", nil
}
