package masterdata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/practice-admin/internal/model"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

type stubOptions struct {
	opts  []Option
	err   error
	calls int
}

func (s *stubOptions) Options(ctx context.Context, dataSource, valueKey, labelKey string) ([]Option, error) {
	s.calls++
	return s.opts, s.err
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(nil)

	cfg, err := r.Get(SourceDiagnoses)
	require.NoError(t, err)
	assert.Equal(t, "Diagnosis Codes", cfg.Title)

	_, err = r.Get("unknown")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	assert.Len(t, r.All(), 6)
	assert.Equal(t, []string{
		SourceDiagnoses, SourceInsurance, SourceLocations,
		SourceModifiers, SourceProcedures, SourceProviders,
	}, r.Sources())
}

func TestLoadFormOptions(t *testing.T) {
	src := &stubOptions{opts: []Option{{Value: "loc-1", Label: "Main"}}}
	cfg := ProviderConfig(src)

	opts := LoadFormOptions(context.Background(), cfg)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, src.opts, opts["location_id"])
	assert.NotEmpty(t, opts["specialty"])
}

func TestLoadFormOptions_FailureDegradesToEmpty(t *testing.T) {
	src := &stubOptions{err: errors.New("backend down")}
	cfg := ProviderConfig(src)

	opts := LoadFormOptions(context.Background(), cfg)

	assert.NotNil(t, opts["location_id"])
	assert.Empty(t, opts["location_id"])
}

func TestColumnCell(t *testing.T) {
	cfg := ProcedureConfig()
	row := model.Record{"procedure_code": "99213", "default_charge": "125.5", "category": ""}

	assert.Equal(t, "99213", cfg.Columns[0].Cell(row))
	assert.Equal(t, Placeholder, cfg.Columns[2].Cell(row))
	assert.Equal(t, "$125.50", cfg.Columns[3].Cell(row))

	provider := ProviderConfig(nil)
	assert.Equal(t, "N/A", provider.Columns[5].Cell(model.Record{}))
	assert.Equal(t, "Yes", provider.Columns[6].Cell(model.Record{"is_default": true}))
}
