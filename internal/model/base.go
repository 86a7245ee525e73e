package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for typed models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Keys assigned by the database and never accepted from a client payload.
const (
	KeyID        = "id"
	KeyIsActive  = "is_active"
	KeyCreatedAt = "created_at"
	KeyUpdatedAt = "updated_at"
)

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}

// Record is one flat row of a master-data table, keyed by column name.
type Record = JSONMap

// ID returns the record id as a string, or "" when missing.
func (m JSONMap) ID() string {
	switch v := m[KeyID].(type) {
	case string:
		return v
	case uuid.UUID:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Clone returns a shallow copy.
func (m JSONMap) Clone() JSONMap {
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ListFilter narrows a master-data list.
type ListFilter struct {
	// Search is matched case-insensitively as a substring of the entity's search column.
	Search string `json:"search" form:"search"`
	// Filters are exact-match predicates on categorical columns.
	Filters map[string]string `json:"filters"`
}
