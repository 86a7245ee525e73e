package masterdata

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/repository"
	"github.com/jwalitptl/practice-admin/internal/table"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
	"github.com/jwalitptl/practice-admin/pkg/metrics"
)

type Service interface {
	Configs() []*masterdata.Config
	Config(dataSource string) (*masterdata.Config, error)
	FormOptions(ctx context.Context, dataSource string) (map[string][]masterdata.Option, error)
	List(ctx context.Context, dataSource string, filter *model.ListFilter) ([]model.Record, error)
	Create(ctx context.Context, dataSource string, draft model.Record) (model.Record, error)
	Update(ctx context.Context, dataSource, id string, draft model.Record) (model.Record, error)
	Delete(ctx context.Context, dataSource, id string) (model.Record, error)
	BulkDelete(ctx context.Context, dataSource string, ids []string) (*BulkResult, error)
	// Export writes the active rows matching term as CSV and returns the file name.
	Export(ctx context.Context, w io.Writer, dataSource, term string) (string, error)
	CountActive(ctx context.Context) (map[string]int64, error)
}

// BulkResult tallies a bulk delete. Failed maps id to a user-facing message.
type BulkResult struct {
	Requested int               `json:"requested"`
	Deleted   []string          `json:"deleted"`
	Failed    map[string]string `json:"failed"`
}

type service struct {
	repos   *repository.Registry
	configs *masterdata.Registry
	metrics *metrics.Metrics
}

func NewService(repos *repository.Registry, configs *masterdata.Registry, metrics *metrics.Metrics) Service {
	return &service{
		repos:   repos,
		configs: configs,
		metrics: metrics,
	}
}

func (s *service) Configs() []*masterdata.Config {
	return s.configs.All()
}

func (s *service) Config(dataSource string) (*masterdata.Config, error) {
	return s.configs.Get(dataSource)
}

func (s *service) FormOptions(ctx context.Context, dataSource string) (map[string][]masterdata.Option, error) {
	cfg, err := s.configs.Get(dataSource)
	if err != nil {
		return nil, err
	}
	return masterdata.LoadFormOptions(ctx, cfg), nil
}

func (s *service) resolve(dataSource string) (*masterdata.Config, repository.MasterDataRepository, error) {
	cfg, err := s.configs.Get(dataSource)
	if err != nil {
		return nil, nil, err
	}
	repo, err := s.repos.Get(dataSource)
	if err != nil {
		return nil, nil, err
	}
	return cfg, repo, nil
}

func (s *service) observe(dataSource, op string, err error) {
	s.metrics.MasterDataOperations.WithLabelValues(dataSource, op, metrics.Status(err)).Inc()
}

func (s *service) List(ctx context.Context, dataSource string, filter *model.ListFilter) (rows []model.Record, err error) {
	defer func() { s.observe(dataSource, "list", err) }()

	cfg, repo, err := s.resolve(dataSource)
	if err != nil {
		return nil, err
	}
	if filter != nil {
		filter = allowedFilters(cfg, filter)
	}
	return repo.List(ctx, filter)
}

// allowedFilters drops filter keys the config does not declare.
func allowedFilters(cfg *masterdata.Config, filter *model.ListFilter) *model.ListFilter {
	out := &model.ListFilter{Search: filter.Search, Filters: make(map[string]string)}
	for _, k := range cfg.FilterFields {
		if v, ok := filter.Filters[k]; ok {
			out.Filters[k] = v
		}
	}
	return out
}

func (s *service) Create(ctx context.Context, dataSource string, draft model.Record) (rec model.Record, err error) {
	defer func() { s.observe(dataSource, "create", err) }()

	cfg, repo, err := s.resolve(dataSource)
	if err != nil {
		return nil, err
	}
	if missing := masterdata.MissingRequired(cfg, draft); len(missing) > 0 {
		return nil, apperrors.BadRequest("Missing required fields: "+strings.Join(missing, ", "), nil)
	}
	return repo.Create(ctx, masterdata.PrepareCreate(cfg, draft))
}

func (s *service) Update(ctx context.Context, dataSource, id string, draft model.Record) (rec model.Record, err error) {
	defer func() { s.observe(dataSource, "update", err) }()

	if strings.TrimSpace(id) == "" {
		return nil, apperrors.BadRequest("id is required", nil)
	}
	cfg, repo, err := s.resolve(dataSource)
	if err != nil {
		return nil, err
	}
	if blank := masterdata.BlankRequired(cfg, draft); len(blank) > 0 {
		return nil, apperrors.BadRequest("Missing required fields: "+strings.Join(blank, ", "), nil)
	}
	return repo.Update(ctx, id, masterdata.PrepareUpdate(cfg, draft))
}

func (s *service) Delete(ctx context.Context, dataSource, id string) (rec model.Record, err error) {
	defer func() { s.observe(dataSource, "delete", err) }()

	if strings.TrimSpace(id) == "" {
		return nil, apperrors.BadRequest("id is required", nil)
	}
	_, repo, err := s.resolve(dataSource)
	if err != nil {
		return nil, err
	}
	return repo.Delete(ctx, id)
}

func (s *service) BulkDelete(ctx context.Context, dataSource string, ids []string) (*BulkResult, error) {
	if _, _, err := s.resolve(dataSource); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, apperrors.BadRequest("no records selected", nil)
	}

	result := &BulkResult{
		Requested: len(unique),
		Deleted:   make([]string, 0, len(unique)),
		Failed:    make(map[string]string),
	}
	for _, id := range unique {
		if _, err := s.Delete(ctx, dataSource, id); err != nil {
			result.Failed[id] = apperrors.UserMessage(err)
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result, nil
}

func (s *service) Export(ctx context.Context, w io.Writer, dataSource, term string) (string, error) {
	cfg, _, err := s.resolve(dataSource)
	if err != nil {
		return "", err
	}
	rows, err := s.List(ctx, dataSource, nil)
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", dataSource, err)
	}
	if err := table.WriteCSV(w, cfg, table.Filter(rows, cfg.Columns, term)); err != nil {
		return "", err
	}
	return table.ExportFilename(cfg.Title), nil
}

func (s *service) CountActive(ctx context.Context) (map[string]int64, error) {
	sources := s.repos.Sources()
	out := make(map[string]int64, len(sources))
	for _, ds := range sources {
		repo, err := s.repos.Get(ds)
		if err != nil {
			return nil, err
		}
		n, err := repo.CountActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", ds, err)
		}
		out[ds] = n
	}
	return out, nil
}
