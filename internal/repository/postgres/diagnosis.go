package postgres

import (
	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/repository"
)

type diagnosisRepository struct {
	tableRepository
}

func NewDiagnosisRepository(base BaseRepository) repository.MasterDataRepository {
	return &diagnosisRepository{newTableRepository(base, tableSpec{
		dataSource:    masterdata.SourceDiagnoses,
		table:         "diagnosis_codes",
		resource:      "diagnosis code",
		columns:       []string{"diagnosis_code", "description", "category", "is_active"},
		searchColumn:  "description",
		filterColumns: []string{"category"},
		orderBy:       "diagnosis_code",
	})}
}
