// Package masterdata describes how each master-data entity is listed and
// edited. Configs are data: callers route on DataSource and never on the
// concrete entity kind.
package masterdata

import (
	"context"
	"fmt"

	"github.com/jwalitptl/practice-admin/internal/model"
)

// Placeholder is shown for empty cells.
const Placeholder = "—"

// FieldType is the input control used for a form field.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldSelect FieldType = "select"
	FieldDate   FieldType = "date"
)

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Column is one displayed table column.
type Column struct {
	Header      string `json:"header"`
	AccessorKey string `json:"accessorKey"`
	// Render formats a cell. When nil the raw value is shown.
	Render func(value interface{}, row model.Record) string `json:"-"`
}

// Cell renders the column for row.
func (c Column) Cell(row model.Record) string {
	v := row[c.AccessorKey]
	if c.Render != nil {
		return c.Render(v, row)
	}
	return FormatValue(v)
}

// FormField is one input of the add/edit form.
type FormField struct {
	Key          string      `json:"key"`
	Label        string      `json:"label"`
	Type         FieldType   `json:"type"`
	Options      []Option    `json:"options,omitempty"`
	DefaultValue interface{} `json:"defaultValue,omitempty"`
	FullWidth    bool        `json:"fullWidth,omitempty"`
	Placeholder  string      `json:"placeholder,omitempty"`
	Required     bool        `json:"required,omitempty"`
	// LoadOptions fetches options at form mount time.
	LoadOptions func(ctx context.Context) ([]Option, error) `json:"-"`
	// Dynamic is true when LoadOptions is set; kept for JSON consumers.
	Dynamic bool `json:"dynamic,omitempty"`
}

// Labels are entity-specific UI strings.
type Labels struct {
	Singular string `json:"singular"`
	Plural   string `json:"plural"`
	AddTitle string `json:"addTitle"`
	Empty    string `json:"empty"`
}

// Config declares one entity kind.
type Config struct {
	Title      string      `json:"title"`
	DataSource string      `json:"dataSource"`
	Table      string      `json:"table"`
	Columns    []Column    `json:"columns"`
	FormFields []FormField `json:"formFields"`
	Labels     Labels      `json:"labels"`

	// BooleanKeys are coerced from "true"/"false"/"Yes"/"No" before writes.
	BooleanKeys []string `json:"booleanKeys"`
	// Relations are joined or denormalized keys that are never written.
	Relations []string `json:"relations,omitempty"`

	SearchField  string   `json:"searchField"`
	FilterFields []string `json:"filterFields,omitempty"`
	SortKey      string   `json:"sortKey"`
}

// Headers returns the column headers in order.
func (c *Config) Headers() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Header
	}
	return out
}

// Field returns the form field named key.
func (c *Config) Field(key string) (FormField, bool) {
	for _, f := range c.FormFields {
		if f.Key == key {
			return f, true
		}
	}
	return FormField{}, false
}

func (c *Config) isBoolean(key string) bool {
	for _, k := range c.BooleanKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (c *Config) isRelation(key string) bool {
	for _, k := range c.Relations {
		if k == key {
			return true
		}
	}
	return false
}

// FormatValue renders a raw cell value, using Placeholder for empty values.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return Placeholder
	case string:
		if val == "" {
			return Placeholder
		}
		return val
	case []byte:
		if len(val) == 0 {
			return Placeholder
		}
		return string(val)
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprint(val)
	}
}
