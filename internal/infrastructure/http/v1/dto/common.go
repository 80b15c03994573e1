// Package dto provides request/response shapes for the HTTP API.
package dto

import (
	"rollstock/internal/domain"
)

// ListQuery contains common list query parameters.
type ListQuery struct {
	Search  string `form:"search"`
	OrderBy string `form:"orderBy"`
	Limit   int    `form:"limit"`
	Offset  int    `form:"offset"`
}

// Filter converts the query to a domain list filter.
func (q ListQuery) Filter() domain.ListFilter {
	f := domain.DefaultListFilter()
	if q.Search != "" {
		f.Search = q.Search
	}
	if q.OrderBy != "" {
		f.OrderBy = q.OrderBy
	}
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	if q.Offset > 0 {
		f.Offset = q.Offset
	}
	return f
}

// IDResponse carries the id of a created resource.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse reports a completed operation.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListResponse wraps list results with pagination metadata.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse converts a domain list result.
func NewListResponse[T any](r domain.ListResult[T]) ListResponse {
	return ListResponse{
		Items:      r.Items,
		TotalCount: r.TotalCount,
		Limit:      r.Limit,
		Offset:     r.Offset,
	}
}
