// Package entities registers the HR master-data kinds served by the console:
// their storage schema, how their lists are searched and sorted, and the
// rules a payload must satisfy before it is sent.
package entities

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

// Rule is a single field constraint expressed as a validator tag.
type Rule struct {
	Field string
	Label string
	Tag   string
	// Number coerces numeric strings before the tag is checked.
	Number bool
}

// Kind describes one entity kind end to end.
type Kind struct {
	// Name is the URL path segment, e.g. "work-shifts".
	Name        string
	Label       string
	Schema      *interfaces.Schema
	Fields      resource.Fields
	UniqueField string
	Rules       []Rule
	// Columns is the display order for tabular output.
	Columns []string
	// Check runs cross-field rules after the per-field rules passed.
	Check func(resource.Record) []string
}

func (k *Kind) Options() resource.Options {
	fields := k.Fields
	fields.Numbers = k.NumberFields()
	return resource.Options{
		Kind:        k.Name,
		Fields:      fields,
		UniqueField: k.UniqueField,
	}
}

// NumberFields lists the fields whose rules expect numbers.
func (k *Kind) NumberFields() []string {
	var out []string
	for _, r := range k.Rules {
		if r.Number && !slices.Contains(out, r.Field) {
			out = append(out, r.Field)
		}
	}
	return out
}

var nameRule = Rule{Field: "name", Label: "Name", Tag: "required,max=100"}

func described(name, label, table string) *Kind {
	return &Kind{
		Name:  name,
		Label: label,
		Schema: schema(table, map[string]interfaces.FieldSchema{
			"description": {Type: "string", Nullable: true},
		}),
		Fields:      resource.Fields{Searchable: []string{"name", "description"}},
		UniqueField: "name",
		Rules: []Rule{
			nameRule,
			{Field: "description", Label: "Description", Tag: "omitempty,max=500"},
		},
		Columns: []string{"id", "name", "description"},
	}
}

var registry = []*Kind{
	described("employee-types", "Employee Type", "employee_types"),
	{
		Name:  "designations",
		Label: "Designation",
		Schema: schema("designations", map[string]interfaces.FieldSchema{
			"department":  {Type: "string", Nullable: true},
			"description": {Type: "string", Nullable: true},
		}),
		Fields: resource.Fields{
			Searchable:      []string{"name", "department", "description"},
			CaseInsensitive: []string{"department"},
		},
		UniqueField: "name",
		Rules: []Rule{
			nameRule,
			{Field: "department", Label: "Department", Tag: "omitempty,max=100"},
			{Field: "description", Label: "Description", Tag: "omitempty,max=500"},
		},
		Columns: []string{"id", "name", "department", "description"},
	},
	{
		Name:  "skills",
		Label: "Skill",
		Schema: schema("skills", map[string]interfaces.FieldSchema{
			"category": {Type: "string", Nullable: true},
		}),
		Fields: resource.Fields{
			Searchable:      []string{"name", "category"},
			CaseInsensitive: []string{"category"},
		},
		UniqueField: "name",
		Rules: []Rule{
			nameRule,
			{Field: "category", Label: "Category", Tag: "omitempty,max=100"},
		},
		Columns: []string{"id", "name", "category"},
	},
	described("education-levels", "Education Level", "education_levels"),
	{
		Name:  "experience-levels",
		Label: "Experience Level",
		Schema: schema("experience_levels", map[string]interfaces.FieldSchema{
			"min_years": {Type: "int", DefaultValue: 0},
			"max_years": {Type: "int", Nullable: true},
		}),
		Fields:      resource.Fields{Searchable: []string{"name"}},
		UniqueField: "name",
		Rules: []Rule{
			nameRule,
			{Field: "min_years", Label: "Minimum years", Tag: "required,gte=0,lte=60", Number: true},
			{Field: "max_years", Label: "Maximum years", Tag: "omitempty,gte=0,lte=60", Number: true},
		},
		Columns: []string{"id", "name", "min_years", "max_years"},
		Check:   checkYearRange,
	},
	described("hiring-sources", "Hiring Source", "hiring_sources"),
	{
		Name:  "work-shifts",
		Label: "Work Shift",
		Schema: schema("work_shifts", map[string]interfaces.FieldSchema{
			"start_time": {Type: "string"},
			"end_time":   {Type: "string"},
		}),
		Fields:      resource.Fields{Searchable: []string{"name"}},
		UniqueField: "name",
		Rules: []Rule{
			nameRule,
			{Field: "start_time", Label: "Start time", Tag: "required,hhmm"},
			{Field: "end_time", Label: "End time", Tag: "required,hhmm"},
		},
		Columns: []string{"id", "name", "start_time", "end_time"},
		Check:   checkShiftBounds,
	},
	described("job-location-types", "Job Location Type", "job_location_types"),
	{
		Name:  "countries",
		Label: "Country",
		Schema: schema("countries", map[string]interfaces.FieldSchema{
			"code":      {Type: "string", Unique: true},
			"dial_code": {Type: "string", Nullable: true},
		}),
		Fields: resource.Fields{
			Searchable:      []string{"name", "code", "dial_code"},
			CaseInsensitive: []string{"code"},
		},
		UniqueField: "name",
		Rules: []Rule{
			nameRule,
			{Field: "code", Label: "Country code", Tag: "required,iso3166_1_alpha2"},
			{Field: "dial_code", Label: "Dial code", Tag: "omitempty,dial_code"},
		},
		Columns: []string{"id", "name", "code", "dial_code"},
	},
	{
		Name:  "banks",
		Label: "Bank",
		Schema: schema("banks", map[string]interfaces.FieldSchema{
			"swift_code": {Type: "string", Nullable: true},
		}),
		Fields: resource.Fields{
			Searchable:      []string{"name", "swift_code"},
			CaseInsensitive: []string{"swift_code"},
		},
		UniqueField: "name",
		Rules: []Rule{
			nameRule,
			{Field: "swift_code", Label: "SWIFT code", Tag: "omitempty,bic"},
		},
		Columns: []string{"id", "name", "swift_code"},
	},
	{
		Name:        "salutations",
		Label:       "Salutation",
		Schema:      schema("salutations", nil),
		Fields:      resource.Fields{Searchable: []string{"name"}},
		UniqueField: "name",
		Rules:       []Rule{{Field: "name", Label: "Name", Tag: "required,max=20"}},
		Columns:     []string{"id", "name"},
	},
	described("roles", "Role", "roles"),
}

// All returns every registered kind in display order.
func All() []*Kind {
	return slices.Clone(registry)
}

// Lookup finds a kind by its path name.
func Lookup(name string) (*Kind, bool) {
	for _, k := range registry {
		if k.Name == name {
			return k, true
		}
	}
	return nil, false
}

// MustLookup panics on unknown names; used for static wiring only.
func MustLookup(name string) *Kind {
	k, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("unknown entity kind %q", name))
	}
	return k
}

// Names lists the registered path names.
func Names() []string {
	out := make([]string, len(registry))
	for i, k := range registry {
		out[i] = k.Name
	}
	return out
}

// Schemas returns the storage schema of every kind for migration.
func Schemas() []*interfaces.Schema {
	out := make([]*interfaces.Schema, len(registry))
	for i, k := range registry {
		out[i] = k.Schema
	}
	return out
}

// schema adds the id, name and timestamp columns every kind shares.
func schema(table string, extra map[string]interfaces.FieldSchema) *interfaces.Schema {
	fields := map[string]interfaces.FieldSchema{
		"id":         {Type: "string", PrimaryKey: true},
		"name":       {Type: "string", Unique: true},
		"created_at": {Type: "time"},
		"updated_at": {Type: "time"},
	}
	for name, f := range extra {
		fields[name] = f
	}
	return &interfaces.Schema{
		TableName: table,
		Fields:    fields,
		Indexes: []interfaces.Index{
			{Name: "idx_" + table + "_name", Columns: []string{"name"}, Unique: true},
		},
	}
}

func checkYearRange(r resource.Record) []string {
	lo, lok := number(r["min_years"])
	hi, hok := number(r["max_years"])
	if lok && hok && hi.LessThan(lo) {
		return []string{"Maximum years must not be less than minimum years"}
	}
	return nil
}

func checkShiftBounds(r resource.Record) []string {
	start := resource.StringOf(r["start_time"])
	end := resource.StringOf(r["end_time"])
	if start != "" && start == end {
		return []string{"End time must differ from start time"}
	}
	return nil
}

func number(v any) (decimal.Decimal, bool) {
	if v == nil {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(resource.StringOf(v))
	return d, err == nil
}
