package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/repository"
)

const patientColumns = `id, first_name, last_name, date_of_birth, gender, email, phone,
	address, insurance_id, created_by, is_active, created_at, updated_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			first_name, last_name, date_of_birth, gender, email, phone,
			address, insurance_id, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, is_active, created_at, updated_at
	`
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, query,
			patient.FirstName,
			patient.LastName,
			patient.DateOfBirth,
			patient.Gender,
			patient.Email,
			patient.Phone,
			patient.Address,
			patient.InsuranceID,
			patient.CreatedBy,
		).Scan(&patient.ID, &patient.IsActive, &patient.CreatedAt, &patient.UpdatedAt); err != nil {
			return translateError("patient", err)
		}
		return r.emitChange(ctx, tx, "patients", model.ChangeInsert)
	})
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", translateError("patient", err))
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE is_active = true`
	var args []interface{}
	if filters != nil {
		if s := strings.TrimSpace(filters.SearchTerm); s != "" {
			args = append(args, escapeLike(s))
			query += ` AND (first_name || ' ' || last_name) ILIKE '%' || $1 || '%'`
		}
	}
	query += ` ORDER BY last_name ASC, first_name ASC`

	patients := make([]*model.Patient, 0)
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", translateError("patient", err))
	}
	return patients, nil
}

func (r *patientRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM patients WHERE is_active = true`); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", translateError("patient", err))
	}
	return n, nil
}
