package postgres

import "github.com/jwalitptl/practice-admin/internal/repository"

// NewMasterDataRegistry wires one repository per master-data table.
func NewMasterDataRegistry(base BaseRepository) *repository.Registry {
	return repository.NewRegistry(
		NewProviderRepository(base),
		NewModifierRepository(base),
		NewProcedureRepository(base),
		NewDiagnosisRepository(base),
		NewInsuranceRepository(base),
		NewLocationRepository(base),
	)
}
