package query

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

// Builder evaluates queries against in-memory records of one schema
type Builder struct {
	schema *interfaces.Schema
}

// NewBuilder creates a new query builder for a schema
func NewBuilder(schema *interfaces.Schema) *Builder {
	return &Builder{schema: schema}
}

// Search builds an OR of case-insensitive substring matches over fields.
// A blank term yields nil.
func Search(term string, fields []string) *interfaces.Filters {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return nil
	}
	insensitive := false
	out := &interfaces.Filters{}
	for _, f := range fields {
		out.OR = append(out.OR, &interfaces.Filters{
			Conditions: []interfaces.Filter{{
				Field:    f,
				Operator: &interfaces.FilterOperator{Like: "%" + term + "%", CaseSensitive: &insensitive},
			}},
		})
	}
	return out
}

// Equals builds exact-match conditions for the non-empty values in filters.
func Equals(filters map[string]string, caseInsensitive []string) *interfaces.Filters {
	out := &interfaces.Filters{}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, field := range keys {
		value := filters[field]
		if value == "" {
			continue
		}
		sensitive := !slices.Contains(caseInsensitive, field)
		out.Conditions = append(out.Conditions, interfaces.Filter{
			Field:    field,
			Operator: &interfaces.FilterOperator{Eq: value, CaseSensitive: &sensitive},
		})
	}
	if len(out.Conditions) == 0 {
		return nil
	}
	return out
}

// And joins non-nil filter groups.
func And(groups ...*interfaces.Filters) *interfaces.Filters {
	out := &interfaces.Filters{}
	for _, g := range groups {
		if g != nil {
			out.AND = append(out.AND, g)
		}
	}
	if len(out.AND) == 0 {
		return nil
	}
	return out
}

// MatchesFilters checks if a record matches the given filters
func (b *Builder) MatchesFilters(record map[string]interface{}, filters *interfaces.Filters) bool {
	if filters == nil {
		return true
	}

	for _, andFilter := range filters.AND {
		if !b.MatchesFilters(record, andFilter) {
			return false
		}
	}

	if len(filters.OR) > 0 {
		hasMatch := false
		for _, orFilter := range filters.OR {
			if b.MatchesFilters(record, orFilter) {
				hasMatch = true
				break
			}
		}
		if !hasMatch {
			return false
		}
	}

	for _, condition := range filters.Conditions {
		if !b.matchesCondition(record, condition) {
			return false
		}
	}

	return true
}

func (b *Builder) matchesCondition(record map[string]interface{}, condition interfaces.Filter) bool {
	fieldValue, exists := record[condition.Field]

	if condition.Operator == nil {
		if fieldValue == nil || !exists {
			return condition.Value == nil
		}
		return equal(fieldValue, condition.Value, true)
	}

	op := condition.Operator
	caseSensitive := op.CaseSensitive == nil || *op.CaseSensitive

	if op.IsNull {
		return fieldValue == nil || !exists
	}
	if !exists || fieldValue == nil {
		return false
	}

	switch {
	case op.Eq != nil:
		return equal(fieldValue, op.Eq, caseSensitive)
	case op.Ne != nil:
		return !equal(fieldValue, op.Ne, caseSensitive)
	case op.Gt != nil:
		return resource.CompareValues(fieldValue, op.Gt) > 0
	case op.Gte != nil:
		return resource.CompareValues(fieldValue, op.Gte) >= 0
	case op.Lt != nil:
		return resource.CompareValues(fieldValue, op.Lt) < 0
	case op.Lte != nil:
		return resource.CompareValues(fieldValue, op.Lte) <= 0
	case len(op.In) > 0:
		for _, val := range op.In {
			if equal(fieldValue, val, caseSensitive) {
				return true
			}
		}
		return false
	case op.Like != "":
		value := resource.StringOf(fieldValue)
		pattern := strings.ReplaceAll(op.Like, "%", "")
		if !caseSensitive {
			value = strings.ToLower(value)
			pattern = strings.ToLower(pattern)
		}
		return strings.Contains(value, pattern)
	}

	return true
}

// equal compares numbers numerically and everything else by string form.
func equal(a, b interface{}, caseSensitive bool) bool {
	if isNumber(a) && isNumber(b) {
		return resource.CompareValues(a, b) == 0
	}
	as, bs := resource.StringOf(a), resource.StringOf(b)
	if caseSensitive {
		return as == bs
	}
	return strings.EqualFold(as, bs)
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64, json.Number:
		return true
	}
	return false
}

// ApplySort stably sorts a copy of records. Missing values sort last.
func (b *Builder) ApplySort(records []map[string]interface{}, orderBy []interfaces.OrderBy) []map[string]interface{} {
	if len(orderBy) == 0 {
		return records
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, other map[string]interface{}) int {
		for _, order := range orderBy {
			av, bv := a[order.Field], other[order.Field]
			switch {
			case av == nil && bv == nil:
				continue
			case av == nil:
				return 1
			case bv == nil:
				return -1
			}
			cmp := resource.CompareValues(av, bv)
			if cmp == 0 {
				continue
			}
			if order.Direction == "desc" {
				return -cmp
			}
			return cmp
		}
		return 0
	})

	return sorted
}

// ApplyPagination applies limit and offset to the records
func (b *Builder) ApplyPagination(records []map[string]interface{}, limit, offset *int) []map[string]interface{} {
	start := 0
	if offset != nil && *offset > 0 {
		start = *offset
	}

	if start >= len(records) {
		return []map[string]interface{}{}
	}

	end := len(records)
	if limit != nil && *limit >= 0 {
		end = min(start+*limit, len(records))
	}

	return records[start:end]
}

// ValidateData checks data against the schema. partial skips the required
// check for absent fields, as updates only carry what changed.
func (b *Builder) ValidateData(data map[string]interface{}, partial bool) error {
	for fieldName, fieldSchema := range b.schema.Fields {
		if fieldName == "id" || fieldName == "created_at" || fieldName == "updated_at" {
			continue
		}

		value, exists := data[fieldName]
		if !exists {
			if !partial && !fieldSchema.Nullable && fieldSchema.DefaultValue == nil {
				return fmt.Errorf("%w: field '%s' is required", interfaces.ErrInvalidData, fieldName)
			}
			continue
		}

		if value == nil {
			if !fieldSchema.Nullable {
				return fmt.Errorf("%w: field '%s' cannot be null", interfaces.ErrInvalidData, fieldName)
			}
			continue
		}

		if err := b.validateFieldType(fieldName, value, fieldSchema.Type); err != nil {
			return err
		}
	}

	return nil
}

// Normalize converts values to the schema's canonical Go types, e.g. JSON
// numbers into int for "int" fields.
func (b *Builder) Normalize(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
		fs, ok := b.schema.Fields[k]
		if !ok || v == nil {
			continue
		}
		if fs.Type == "int" {
			if n, ok := wholeNumber(v); ok {
				out[k] = n
			}
		}
	}
	return out
}

func (b *Builder) validateFieldType(fieldName string, value interface{}, expectedType string) error {
	switch expectedType {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: field '%s' must be a string", interfaces.ErrInvalidData, fieldName)
		}
	case "int":
		if _, ok := wholeNumber(value); !ok {
			return fmt.Errorf("%w: field '%s' must be an integer", interfaces.ErrInvalidData, fieldName)
		}
	case "bool":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: field '%s' must be a boolean", interfaces.ErrInvalidData, fieldName)
		}
	case "float64":
		if !isNumber(value) {
			return fmt.Errorf("%w: field '%s' must be a number", interfaces.ErrInvalidData, fieldName)
		}
	case "time":
		switch value.(type) {
		case string, time.Time:
		default:
			return fmt.Errorf("%w: field '%s' must be a time value", interfaces.ErrInvalidData, fieldName)
		}
	}

	return nil
}

func wholeNumber(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}
