package postgres

import (
	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/repository"
)

type locationRepository struct {
	tableRepository
}

func NewLocationRepository(base BaseRepository) repository.MasterDataRepository {
	return &locationRepository{newTableRepository(base, tableSpec{
		dataSource:    masterdata.SourceLocations,
		table:         "locations",
		resource:      "location",
		columns:       []string{"location_name", "address", "city", "state", "zip", "phone", "opened_on", "is_default", "is_active"},
		searchColumn:  "location_name",
		filterColumns: []string{"state"},
		orderBy:       "location_name",
	})}
}
