package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/table"
)

// renderTable prints rows as aligned columns, ID first.
func renderTable(w io.Writer, cfg *masterdata.Config, rows []model.Record, selected []string) error {
	if len(rows) == 0 {
		empty := cfg.Labels.Empty
		if empty == "" {
			empty = fmt.Sprintf("No %s found.", strings.ToLower(cfg.Labels.Plural))
		}
		_, err := fmt.Fprintln(w, empty)
		return err
	}

	marked := make(map[string]bool, len(selected))
	for _, id := range selected {
		marked[id] = true
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := append([]string{" ", "ID"}, cfg.Headers()...)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		mark := " "
		if marked[row.ID()] {
			mark = "*"
		}
		cells := []string{mark, row.ID()}
		for _, col := range cfg.Columns {
			cells = append(cells, sanitizeCell(col.Cell(row)))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d %s\n", len(rows), strings.ToLower(cfg.Labels.Plural))
	return err
}

func sanitizeCell(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", "").Replace(s)
}

func renderNotification(w io.Writer, n *table.Notification) {
	if n == nil {
		return
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", n.Kind, n.Title, n.Message)
}

// renderConfig describes one entity: its columns and form fields with any
// loaded options.
func renderConfig(w io.Writer, cfg *masterdata.Config, options map[string][]masterdata.Option) error {
	fmt.Fprintf(w, "%s (%s)\n", cfg.Title, cfg.DataSource)
	fmt.Fprintf(w, "  columns: %s\n", strings.Join(cfg.Headers(), ", "))
	if cfg.SearchField != "" {
		fmt.Fprintf(w, "  search:  %s\n", cfg.SearchField)
	}
	if len(cfg.FilterFields) > 0 {
		fmt.Fprintf(w, "  filters: %s\n", strings.Join(cfg.FilterFields, ", "))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  FIELD\tLABEL\tTYPE\tREQUIRED\tOPTIONS")
	for _, f := range cfg.FormFields {
		opts := f.Options
		if loaded, ok := options[f.Key]; ok {
			opts = loaded
		}
		required := ""
		if f.Required {
			required = "yes"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", f.Key, f.Label, f.Type, required, optionValues(opts))
	}
	return tw.Flush()
}

func optionValues(opts []masterdata.Option) string {
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = o.Value
	}
	return strings.Join(values, "|")
}

// renderSources lists the registered data sources.
func renderSources(w io.Writer, configs []*masterdata.Config) error {
	sorted := append([]*masterdata.Config(nil), configs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DataSource < sorted[j].DataSource })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tTITLE\tTABLE")
	for _, cfg := range sorted {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", cfg.DataSource, cfg.Title, cfg.Table)
	}
	return tw.Flush()
}

func renderSession(w io.Writer, sess *model.SessionResponse) {
	if sess == nil || sess.User == nil {
		fmt.Fprintln(w, "Not signed in.")
		return
	}
	fmt.Fprintf(w, "Signed in as %s", sess.User.Email)
	if sess.Profile != nil {
		fmt.Fprintf(w, " (%s, %s)", sess.Profile.FullName, sess.Profile.Role)
	}
	fmt.Fprintln(w)
	if !sess.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "Session expires %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
}

// parseAssignments turns key=value arguments into draft fields. Keys must be
// form fields of cfg.
func parseAssignments(cfg *masterdata.Config, args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", arg)
		}
		if _, known := cfg.Field(key); !known {
			return nil, fmt.Errorf("unknown field %q for %s", key, cfg.DataSource)
		}
		out[key] = value
	}
	return out, nil
}

// parseFilters turns key=value arguments into exact-match list filters.
func parseFilters(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", arg)
		}
		out[key] = value
	}
	return out, nil
}
