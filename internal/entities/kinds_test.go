package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

func TestRegistryNamesAreUnique(t *testing.T) {
	names := Names()
	require.Len(t, names, len(All()))
	assert.Equal(t, "employee-types", names[0])
	assert.Equal(t, "roles", names[len(names)-1])

	seen := map[string]bool{}
	tables := map[string]bool{}
	for _, k := range All() {
		assert.False(t, seen[k.Name], "duplicate kind %s", k.Name)
		seen[k.Name] = true

		require.NotNil(t, k.Schema, k.Name)
		assert.False(t, tables[k.Schema.TableName], "duplicate table %s", k.Schema.TableName)
		tables[k.Schema.TableName] = true

		assert.Equal(t, "name", k.UniqueField, k.Name)
		assert.Contains(t, k.Fields.Searchable, "name", k.Name)
		assert.Equal(t, "id", k.Columns[0], k.Name)
		assert.NotEmpty(t, k.Rules, k.Name)
		for _, col := range []string{"id", "name", "created_at", "updated_at"} {
			assert.Contains(t, k.Schema.Fields, col, k.Name)
		}
	}
	assert.Len(t, Schemas(), len(names))
}

func TestAllReturnsCopy(t *testing.T) {
	kinds := All()
	kinds[0] = nil
	assert.NotNil(t, All()[0])
}

func TestLookup(t *testing.T) {
	k, ok := Lookup("work-shifts")
	require.True(t, ok)
	assert.Equal(t, "Work Shift", k.Label)
	assert.Equal(t, "work_shifts", k.Schema.TableName)

	_, ok = Lookup("payroll")
	assert.False(t, ok)

	assert.Same(t, k, MustLookup("work-shifts"))
	assert.Panics(t, func() { MustLookup("payroll") })
}

func TestKindOptions(t *testing.T) {
	opts := MustLookup("designations").Options()
	assert.Equal(t, "designations", opts.Kind)
	assert.Equal(t, "name", opts.UniqueField)
	assert.Equal(t, []string{"department"}, opts.Fields.CaseInsensitive)
	assert.Empty(t, opts.Fields.Numbers)

	levels := MustLookup("experience-levels")
	assert.Equal(t, []string{"min_years", "max_years"}, levels.NumberFields())
	assert.Equal(t, levels.NumberFields(), levels.Options().Fields.Numbers)
	assert.Empty(t, levels.Fields.Numbers, "the registry entry is not modified")
}

func TestNumericFieldsSortAsNumbers(t *testing.T) {
	items := []resource.Record{
		{"id": "1", "name": "Veteran", "min_years": "12"},
		{"id": "2", "name": "Junior", "min_years": "2"},
		{"id": "3", "name": "Mid", "min_years": json.Number("5")},
	}
	fields := MustLookup("experience-levels").Options().Fields
	out := resource.DeriveDisplayList(items, "", nil, resource.Sort{Key: "min_years"}, fields)
	assert.Equal(t, "Junior", out[0]["name"])
	assert.Equal(t, "Mid", out[1]["name"])
	assert.Equal(t, "Veteran", out[2]["name"])
}

func TestCheckYearRange(t *testing.T) {
	tests := []struct {
		name   string
		record resource.Record
		errors int
	}{
		{"ordered", resource.Record{"min_years": 1, "max_years": 3}, 0},
		{"equal", resource.Record{"min_years": 3, "max_years": 3}, 0},
		{"open ended", resource.Record{"min_years": 6}, 0},
		{"reversed", resource.Record{"min_years": 6, "max_years": 3}, 1},
		{"numeric strings", resource.Record{"min_years": "10", "max_years": "9"}, 1},
		{"json numbers", resource.Record{"min_years": json.Number("2.5"), "max_years": json.Number("2")}, 1},
		{"not a number", resource.Record{"min_years": "many", "max_years": 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, checkYearRange(tt.record), tt.errors)
		})
	}
}

func TestCheckShiftBounds(t *testing.T) {
	assert.Empty(t, checkShiftBounds(resource.Record{"start_time": "22:00", "end_time": "06:00"}))
	assert.Empty(t, checkShiftBounds(resource.Record{}))
	assert.Equal(t, []string{"End time must differ from start time"},
		checkShiftBounds(resource.Record{"start_time": "09:00", "end_time": "09:00"}))
}
