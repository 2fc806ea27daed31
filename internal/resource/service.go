package resource

import "context"

// ListQuery narrows a ListAll call. The zero value lists everything.
type ListQuery struct {
	Search    string            `json:"search,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
	SortBy    string            `json:"sortBy,omitempty"`
	SortOrder Direction         `json:"sortOrder,omitempty"`
}

// Envelope is the normalized flat response shape.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// ValidationResult is the outcome of a client-side payload check.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors,omitempty"`
}

// Service performs CRUD and search for one entity kind. A returned error is
// a transport failure already classified as an *Error; a backend that
// answered but refused the call reports Success=false instead.
type Service interface {
	ListAll(ctx context.Context, q ListQuery) (Envelope[[]Record], error)
	GetByID(ctx context.Context, id string) (Envelope[Record], error)
	Create(ctx context.Context, payload Record) (Envelope[Record], error)
	Update(ctx context.Context, id string, payload Record) (Envelope[Record], error)
	Delete(ctx context.Context, id string) (Envelope[Record], error)
	Validate(payload Record) ValidationResult
}
