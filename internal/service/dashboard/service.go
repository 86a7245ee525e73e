package dashboard

import (
	"context"
	"fmt"

	"github.com/jwalitptl/practice-admin/internal/repository"
	mdservice "github.com/jwalitptl/practice-admin/internal/service/masterdata"
)

// Summary holds active-row counts for the dashboard.
type Summary struct {
	Patients   int64            `json:"patients"`
	Visits     int64            `json:"visits"`
	MasterData map[string]int64 `json:"master_data"`
}

type Service struct {
	patients   repository.PatientRepository
	visits     repository.VisitRepository
	masterData mdservice.Service
}

func NewService(patients repository.PatientRepository, visits repository.VisitRepository, masterData mdservice.Service) *Service {
	return &Service{patients: patients, visits: visits, masterData: masterData}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	patients, err := s.patients.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	visits, err := s.visits.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	counts, err := s.masterData.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return &Summary{Patients: patients, Visits: visits, MasterData: counts}, nil
}
