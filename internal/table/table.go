// Package table holds the config-driven table behaviour shared by every
// master-data page: filtering, CSV export and the transient UI session.
package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/model"
)

// Filter returns rows whose raw value (fmt.Sprint of the accessor key, not
// the Render output) for any column contains term, case-insensitively.
// Whitespace in term is significant. Only the empty term returns rows unchanged.
func Filter(rows []model.Record, columns []masterdata.Column, term string) []model.Record {
	if term == "" {
		return rows
	}
	term = strings.ToLower(term)

	out := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		if matches(row, columns, term) {
			out = append(out, row)
		}
	}
	return out
}

func matches(row model.Record, columns []masterdata.Column, term string) bool {
	for _, col := range columns {
		v, ok := row[col.AccessorKey]
		if !ok || v == nil {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprint(v)), term) {
			return true
		}
	}
	return false
}

// WriteCSV writes rows under the config's column headers. Every value is
// double-quoted and rows are separated by a bare newline.
func WriteCSV(w io.Writer, cfg *masterdata.Config, rows []model.Record) error {
	var b strings.Builder
	writeLine(&b, cfg.Headers())
	for _, row := range rows {
		b.WriteByte('\n')
		values := make([]string, len(cfg.Columns))
		for i, col := range cfg.Columns {
			values[i] = csvValue(row[col.AccessorKey])
		}
		writeLine(&b, values)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func writeLine(b *strings.Builder, values []string) {
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v, `"`, `""`))
		b.WriteByte('"')
	}
}

func csvValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// ExportFilename derives the download name from an entity title.
func ExportFilename(title string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "_") + ".csv"
}
