package models

import "time"

// ListEnvelope is the list payload returned by the commerce API. Total and
// TotalPages are optional: some resources omit one or both.
type ListEnvelope[T any] struct {
	Data       []T    `json:"data"`
	Total      *int64 `json:"total,omitempty"`
	Page       int    `json:"page,omitempty"`
	TotalPages *int   `json:"totalPages,omitempty"`
}

// Timestamps is embedded by upstream entities that report audit times.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
