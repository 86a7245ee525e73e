package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jwalitptl/practice-admin/internal/masterdata"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

// Registry selects a MasterDataRepository by data source.
type Registry struct {
	repos map[string]MasterDataRepository
}

func NewRegistry(repos ...MasterDataRepository) *Registry {
	r := &Registry{repos: make(map[string]MasterDataRepository, len(repos))}
	for _, repo := range repos {
		r.repos[repo.DataSource()] = repo
	}
	return r
}

// Get returns the repository registered for dataSource.
func (r *Registry) Get(dataSource string) (MasterDataRepository, error) {
	repo, ok := r.repos[dataSource]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("data source %q", dataSource), nil)
	}
	return repo, nil
}

// Sources lists registered data sources in sorted order.
func (r *Registry) Sources() []string {
	out := make([]string, 0, len(r.repos))
	for k := range r.repos {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Options lists active rows of dataSource as select options.
func (r *Registry) Options(ctx context.Context, dataSource, valueKey, labelKey string) ([]masterdata.Option, error) {
	repo, err := r.Get(dataSource)
	if err != nil {
		return nil, err
	}
	rows, err := repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s options: %w", dataSource, err)
	}
	opts := make([]masterdata.Option, 0, len(rows))
	for _, row := range rows {
		opts = append(opts, masterdata.Option{
			Value: fmt.Sprint(row[valueKey]),
			Label: masterdata.FormatValue(row[labelKey]),
		})
	}
	return opts, nil
}
