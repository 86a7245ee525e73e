package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/practice-admin/internal/model"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

// tableSpec describes how one master-data table is read and written.
type tableSpec struct {
	dataSource string
	table      string
	resource   string
	// columns are the only keys accepted on insert and update.
	columns []string
	// selectFrom reads rows aliased as t, with any display joins.
	selectFrom    string
	searchColumn  string
	filterColumns []string
	orderBy       string
}

// tableRepository implements the shared CRUD path; entity repositories embed it.
type tableRepository struct {
	BaseRepository
	spec tableSpec
}

func newTableRepository(base BaseRepository, spec tableSpec) tableRepository {
	if spec.selectFrom == "" {
		spec.selectFrom = fmt.Sprintf("SELECT t.* FROM %s t", spec.table)
	}
	return tableRepository{BaseRepository: base, spec: spec}
}

func (r *tableRepository) DataSource() string { return r.spec.dataSource }

func (r *tableRepository) Table() string { return r.spec.table }

func (r *tableRepository) List(ctx context.Context, filter *model.ListFilter) ([]model.Record, error) {
	query := r.spec.selectFrom + " WHERE t.is_active = true"
	var args []interface{}

	if filter != nil {
		if s := strings.TrimSpace(filter.Search); s != "" && r.spec.searchColumn != "" {
			args = append(args, escapeLike(s))
			query += fmt.Sprintf(" AND t.%s ILIKE '%%' || $%d || '%%'", r.spec.searchColumn, len(args))
		}
		for _, col := range r.spec.filterColumns {
			v, ok := filter.Filters[col]
			if !ok || v == "" {
				continue
			}
			args = append(args, v)
			query += fmt.Sprintf(" AND t.%s = $%d", col, len(args))
		}
	}
	query += fmt.Sprintf(" ORDER BY t.%s ASC", r.spec.orderBy)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.spec.table, translateError(r.spec.resource, err))
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.spec.resource, translateError(r.spec.resource, err))
		}
		records = append(records, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.spec.table, translateError(r.spec.resource, err))
	}
	return records, nil
}

func (r *tableRepository) Get(ctx context.Context, id string) (model.Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	row := make(map[string]interface{})
	err := r.db.QueryRowxContext(ctx, r.spec.selectFrom+" WHERE t.id = $1", id).MapScan(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", r.spec.resource, translateError(r.spec.resource, err))
	}
	return normalizeRow(row), nil
}

func (r *tableRepository) getTx(ctx context.Context, tx *sqlx.Tx, id string) (model.Record, error) {
	row := make(map[string]interface{})
	if err := tx.QueryRowxContext(ctx, r.spec.selectFrom+" WHERE t.id = $1", id).MapScan(row); err != nil {
		return nil, translateError(r.spec.resource, err)
	}
	return normalizeRow(row), nil
}

func (r *tableRepository) Create(ctx context.Context, record model.Record) (model.Record, error) {
	cols, args := r.writable(record)
	if len(cols) == 0 {
		return nil, apperrors.BadRequest(fmt.Sprintf("no %s fields to save", r.spec.resource), nil)
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.spec.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)

	var created model.Record
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var id string
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return translateError(r.spec.resource, err)
		}
		row, err := r.getTx(ctx, tx, id)
		if err != nil {
			return err
		}
		created = row
		return r.emitChange(ctx, tx, r.spec.table, model.ChangeInsert)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.spec.resource, err)
	}
	return created, nil
}

func (r *tableRepository) Update(ctx context.Context, id string, record model.Record) (model.Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	cols, args := r.writable(record)
	if len(cols) == 0 {
		return nil, apperrors.BadRequest(fmt.Sprintf("no %s fields to update", r.spec.resource), nil)
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d RETURNING id",
		r.spec.table, strings.Join(sets, ", "), len(args),
	)

	var updated model.Record
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var got string
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&got); err != nil {
			return translateError(r.spec.resource, err)
		}
		row, err := r.getTx(ctx, tx, got)
		if err != nil {
			return err
		}
		updated = row
		return r.emitChange(ctx, tx, r.spec.table, model.ChangeUpdate)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", r.spec.resource, err)
	}
	return updated, nil
}

func (r *tableRepository) Delete(ctx context.Context, id string) (model.Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		"UPDATE %s SET is_active = false, updated_at = NOW() WHERE id = $1 AND is_active = true RETURNING id",
		r.spec.table,
	)

	var deleted model.Record
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var got string
		if err := tx.QueryRowxContext(ctx, query, id).Scan(&got); err != nil {
			// Already inactive rows are rejected the same way as missing ones.
			return translateError("active "+r.spec.resource, err)
		}
		row, err := r.getTx(ctx, tx, got)
		if err != nil {
			return err
		}
		deleted = row
		return r.emitChange(ctx, tx, r.spec.table, model.ChangeDelete)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", r.spec.resource, err)
	}
	return deleted, nil
}

func (r *tableRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE is_active = true", r.spec.table)
	if err := r.db.GetContext(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.spec.table, translateError(r.spec.resource, err))
	}
	return n, nil
}

// writable returns the whitelisted columns present in record, sorted, with
// their values. Empty strings are stored as NULL.
func (r *tableRepository) writable(record model.Record) ([]string, []interface{}) {
	allowed := make(map[string]struct{}, len(r.spec.columns))
	for _, c := range r.spec.columns {
		allowed[c] = struct{}{}
	}

	cols := make([]string, 0, len(record))
	for k := range record {
		if _, ok := allowed[k]; ok {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)

	args := make([]interface{}, len(cols))
	for i, c := range cols {
		v := record[c]
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			v = nil
		}
		args[i] = v
	}
	return cols, args
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.BadRequest("id is required", nil)
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.BadRequest("invalid id", err)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
