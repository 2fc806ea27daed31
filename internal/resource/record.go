// Package resource is the generic resource-management core shared by every
// master-data screen: a request lifecycle controller, an in-memory store, a
// search/filter/sort engine and the CRUD orchestrator that keeps the store
// consistent with a remote data service.
package resource

import (
	"fmt"
)

// IDField is the key every record carries.
const IDField = "id"

// Record is one entity as a field name to scalar value mapping.
type Record map[string]any

// ID returns the record identifier in string form, or "" when absent.
func (r Record) ID() string {
	v, ok := r[IDField]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a shallow copy. Field values are scalars so this is enough
// to keep readers from mutating store-owned records.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a copy of r with patch applied on top.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	if out == nil {
		out = make(Record, len(patch))
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func cloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
