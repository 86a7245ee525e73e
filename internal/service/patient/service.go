package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/repository"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

type PatientService interface {
	CreatePatient(ctx context.Context, actor *model.Profile, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
}

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

// CreatePatient registers a patient. Only healthcare roles may do this.
func (s *Service) CreatePatient(ctx context.Context, actor *model.Profile, req *model.CreatePatientRequest) (*model.Patient, error) {
	if !actor.HasAnyRole(model.HealthcareRoles...) {
		return nil, apperrors.Forbidden(fmt.Errorf("role %q may not register patients", roleOf(actor)))
	}
	if err := validatePatient(req); err != nil {
		return nil, err
	}

	createdBy := actor.UserID.String()
	patient := &model.Patient{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		InsuranceID: req.InsuranceID,
		CreatedBy:   &createdBy,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func validatePatient(req *model.CreatePatientRequest) error {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return apperrors.BadRequest("first and last name are required", nil)
	}
	return nil
}

func roleOf(p *model.Profile) string {
	if p == nil {
		return ""
	}
	return p.Role
}
