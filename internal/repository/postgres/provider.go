package postgres

import (
	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/repository"
)

type providerRepository struct {
	tableRepository
}

// NewProviderRepository reads providers with their location name joined for display.
func NewProviderRepository(base BaseRepository) repository.MasterDataRepository {
	return &providerRepository{newTableRepository(base, tableSpec{
		dataSource: masterdata.SourceProviders,
		table:      "providers",
		resource:   "provider",
		columns: []string{
			"name", "npi", "specialty", "phone", "email",
			"location_id", "is_default", "is_active",
		},
		selectFrom: `SELECT t.*, l.location_name
			FROM providers t
			LEFT JOIN locations l ON l.id = t.location_id`,
		searchColumn:  "name",
		filterColumns: []string{"specialty", "location_id"},
		orderBy:       "name",
	})}
}
