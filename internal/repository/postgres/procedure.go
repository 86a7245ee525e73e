package postgres

import (
	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/repository"
)

type procedureRepository struct {
	tableRepository
}

func NewProcedureRepository(base BaseRepository) repository.MasterDataRepository {
	return &procedureRepository{newTableRepository(base, tableSpec{
		dataSource:    masterdata.SourceProcedures,
		table:         "procedures",
		resource:      "procedure",
		columns:       []string{"procedure_code", "description", "category", "default_charge", "is_active"},
		searchColumn:  "description",
		filterColumns: []string{"category"},
		orderBy:       "procedure_code",
	})}
}
