package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/repository"
)

type visitRepository struct {
	BaseRepository
}

func NewVisitRepository(base BaseRepository) repository.VisitRepository {
	return &visitRepository{base}
}

func (r *visitRepository) List(ctx context.Context, filters *model.VisitFilters) ([]*model.Visit, error) {
	query := `
		SELECT v.id, v.patient_id, v.provider_id, v.location_id, v.visit_date,
			v.reason, v.status, v.is_active, v.created_at, v.updated_at,
			p.first_name || ' ' || p.last_name AS patient_name,
			pr.name AS provider_name
		FROM visits v
		JOIN patients p ON p.id = v.patient_id
		LEFT JOIN providers pr ON pr.id = v.provider_id
		WHERE v.is_active = true`
	var args []interface{}
	if filters != nil {
		if filters.PatientID != nil {
			args = append(args, *filters.PatientID)
			query += fmt.Sprintf(" AND v.patient_id = $%d", len(args))
		}
		if filters.From != nil {
			args = append(args, *filters.From)
			query += fmt.Sprintf(" AND v.visit_date >= $%d", len(args))
		}
		if filters.To != nil {
			args = append(args, *filters.To)
			query += fmt.Sprintf(" AND v.visit_date <= $%d", len(args))
		}
	}
	query += " ORDER BY v.visit_date DESC"

	visits := make([]*model.Visit, 0)
	if err := r.db.SelectContext(ctx, &visits, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", translateError("visit", err))
	}
	return visits, nil
}

func (r *visitRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE visits SET is_active = false, updated_at = NOW() WHERE id = $1 AND is_active = true`
	return r.change(ctx, id, query)
}

func (r *visitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.change(ctx, id, `DELETE FROM visits WHERE id = $1`)
}

func (r *visitRepository) change(ctx context.Context, id uuid.UUID, query string) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("failed to delete visit: %w", translateError("visit", err))
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete visit: %w", err)
		}
		if n == 0 {
			return translateError("visit", sql.ErrNoRows)
		}
		return r.emitChange(ctx, tx, "visits", model.ChangeDelete)
	})
}

func (r *visitRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM visits WHERE is_active = true`); err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", translateError("visit", err))
	}
	return n, nil
}
