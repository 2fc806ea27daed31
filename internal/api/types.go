package api

import (
	"strings"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

// Response is the {success, data, message} envelope every endpoint returns.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// KindDTO describes one entity kind to clients building list screens.
type KindDTO struct {
	Name            string   `json:"name"`
	Label           string   `json:"label"`
	UniqueField     string   `json:"uniqueField"`
	Columns         []string `json:"columns"`
	Searchable      []string `json:"searchable,omitempty"`
	CaseInsensitive []string `json:"caseInsensitive,omitempty"`
	Dates           []string `json:"dates,omitempty"`
	Numbers         []string `json:"numbers,omitempty"`
}

type HealthDTO struct {
	Status  string   `json:"status"`
	Reasons []string `json:"reasons,omitempty"`
}

// Query parameters for list endpoints
const (
	ParamSearch       = "search"
	ParamSortBy       = "sortBy"
	ParamSortOrder    = "sortOrder"
	ParamFilterPrefix = "filter."
)

// listQueryFrom reads search, sort and filter.<field> parameters.
func listQueryFrom(values map[string][]string) resource.ListQuery {
	q := resource.ListQuery{}
	first := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	q.Search = first(ParamSearch)
	q.SortBy = first(ParamSortBy)
	if order := first(ParamSortOrder); order != "" {
		q.SortOrder = resource.ParseDirection(strings.ToLower(order))
	}
	for key, v := range values {
		field, ok := strings.CutPrefix(key, ParamFilterPrefix)
		if !ok || field == "" || len(v) == 0 || v[0] == "" {
			continue
		}
		if q.Filters == nil {
			q.Filters = map[string]string{}
		}
		q.Filters[field] = v[0]
	}
	return q
}
