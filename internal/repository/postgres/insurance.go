package postgres

import (
	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/repository"
)

type insuranceRepository struct {
	tableRepository
}

func NewInsuranceRepository(base BaseRepository) repository.MasterDataRepository {
	return &insuranceRepository{newTableRepository(base, tableSpec{
		dataSource:    masterdata.SourceInsurance,
		table:         "insurance_companies",
		resource:      "insurance company",
		columns:       []string{"name", "payer_id", "phone", "address", "city", "state", "zip", "is_preferred", "is_active"},
		searchColumn:  "name",
		filterColumns: []string{"state"},
		orderBy:       "name",
	})}
}
