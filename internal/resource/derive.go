package resource

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDateFields are always treated as dates when sorting.
var DefaultDateFields = []string{"createdAt", "updatedAt", "created_at", "updated_at"}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Fields describes how one entity kind is searched, filtered and sorted.
type Fields struct {
	// Searchable fields take part in free-text search. Empty means every
	// field except the id.
	Searchable []string
	// CaseInsensitive fields are compared with EqualFold when filtering.
	CaseInsensitive []string
	// Dates lists extra date-like fields besides DefaultDateFields.
	Dates []string
	// Numbers lists fields whose string values sort as numbers.
	Numbers []string
}

func (f Fields) isDate(field string) bool {
	return slices.Contains(DefaultDateFields, field) || slices.Contains(f.Dates, field)
}

// DeriveDisplayList filters, searches and stably sorts items. It never
// mutates its inputs and returns fresh copies of the kept records.
func DeriveDisplayList(items []Record, searchTerm string, filters map[string]string, sort Sort, fields Fields) []Record {
	out := make([]Record, 0, len(items))
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	for _, r := range items {
		if r == nil {
			continue
		}
		if term != "" && !matchesSearch(r, term, fields.Searchable) {
			continue
		}
		if !matchesFilters(r, filters, fields.CaseInsensitive) {
			continue
		}
		out = append(out, r.Clone())
	}

	if sort.Key == "" || len(out) < 2 {
		return out
	}

	date := fields.isDate(sort.Key)
	number := slices.Contains(fields.Numbers, sort.Key)
	desc := sort.Direction == Desc
	slices.SortStableFunc(out, func(a, b Record) int {
		av, aok := present(a, sort.Key)
		bv, bok := present(b, sort.Key)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		var c int
		switch {
		case date:
			c = compareDates(av, bv)
		case number:
			c = compareNumbers(av, bv)
		default:
			c = CompareValues(av, bv)
		}
		if desc {
			return -c
		}
		return c
	})
	return out
}

func present(r Record, field string) (any, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func matchesSearch(r Record, term string, searchable []string) bool {
	if len(searchable) == 0 {
		for field, v := range r {
			if field == IDField || v == nil {
				continue
			}
			if strings.Contains(strings.ToLower(StringOf(v)), term) {
				return true
			}
		}
		return false
	}
	for _, field := range searchable {
		v, ok := present(r, field)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(StringOf(v)), term) {
			return true
		}
	}
	return false
}

func matchesFilters(r Record, filters map[string]string, caseInsensitive []string) bool {
	for field, want := range filters {
		if want == "" {
			continue
		}
		v, ok := present(r, field)
		if !ok {
			return false
		}
		got := StringOf(v)
		if slices.Contains(caseInsensitive, field) {
			if !strings.EqualFold(got, want) {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

// StringOf renders a field value the way search and filters see it.
func StringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	case json.Number:
		return t.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	default:
		return fmt.Sprint(t)
	}
}

type valueClass int

const (
	classNumber valueClass = iota
	classBool
	classTime
	classText
)

func classOf(v any) valueClass {
	if _, ok := toDecimal(v); ok {
		return classNumber
	}
	switch v.(type) {
	case bool:
		return classBool
	case time.Time:
		return classTime
	}
	return classText
}

// CompareValues orders two non-nil field values: numbers numerically,
// booleans false before true, times chronologically, anything else as
// case-insensitive strings. Strings are never parsed as numbers. Values of
// different classes order by class so the ordering stays total.
func CompareValues(a, b any) int {
	ca, cb := classOf(a), classOf(b)
	if ca != cb {
		return cmp.Compare(ca, cb)
	}
	switch ca {
	case classNumber:
		ad, _ := toDecimal(a)
		bd, _ := toDecimal(b)
		return ad.Cmp(bd)
	case classBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case classTime:
		return a.(time.Time).Compare(b.(time.Time))
	}
	return compareText(a, b)
}

func compareText(a, b any) int {
	return cmp.Compare(strings.ToLower(StringOf(a)), strings.ToLower(StringOf(b)))
}

// compareNumbers parses numeric strings too. Values that are not numbers
// sort after every number, among themselves as text.
func compareNumbers(a, b any) int {
	ad, aok := numberOf(a)
	bd, bok := numberOf(b)
	switch {
	case !aok && !bok:
		return compareText(a, b)
	case !aok:
		return 1
	case !bok:
		return -1
	}
	return ad.Cmp(bd)
}

func numberOf(v any) (decimal.Decimal, bool) {
	if s, ok := v.(string); ok {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		return d, err == nil
	}
	return toDecimal(v)
}

// compareDates sorts unparsable values after every parsable one.
func compareDates(a, b any) int {
	at, aok := ParseTime(a)
	bt, bok := ParseTime(b)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}
	return at.Compare(bt)
}

// ParseTime accepts time.Time values and the common string layouts.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case uint:
		return decimal.NewFromInt(int64(t)), true
	case uint32:
		return decimal.NewFromInt(int64(t)), true
	case float32:
		return decimal.NewFromFloat32(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	}
	return decimal.Decimal{}, false
}
