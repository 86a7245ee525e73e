package postgres

import (
	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/repository"
)

type modifierRepository struct {
	tableRepository
}

func NewModifierRepository(base BaseRepository) repository.MasterDataRepository {
	return &modifierRepository{newTableRepository(base, tableSpec{
		dataSource:    masterdata.SourceModifiers,
		table:         "modifiers",
		resource:      "modifier",
		columns:       []string{"modifier_code", "description", "is_active"},
		searchColumn:  "modifier_code",
		filterColumns: []string{},
		orderBy:       "modifier_code",
	})}
}
