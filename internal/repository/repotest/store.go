package repotest

import (
	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/repository"
	"github.com/jwalitptl/practice-admin/pkg/messaging"
)

// Store holds one in-memory repository per master-data source.
type Store struct {
	Registry *repository.Registry
	Repos    map[string]*MasterData
}

func NewStore(broker messaging.Broker) *Store {
	search := map[string]string{
		masterdata.SourceProviders:  "name",
		masterdata.SourceModifiers:  "modifier_code",
		masterdata.SourceProcedures: "description",
		masterdata.SourceDiagnoses:  "description",
		masterdata.SourceInsurance:  "name",
		masterdata.SourceLocations:  "location_name",
	}

	st := &Store{Repos: make(map[string]*MasterData, len(search))}
	repos := make([]repository.MasterDataRepository, 0, len(search))
	for ds, key := range search {
		m := NewMasterData(ds, ds, key, broker)
		st.Repos[ds] = m
		repos = append(repos, m)
	}
	st.Registry = repository.NewRegistry(repos...)
	return st
}

// Configs builds the config registry backed by this store.
func (s *Store) Configs() *masterdata.Registry {
	return masterdata.NewRegistry(s.Registry)
}
