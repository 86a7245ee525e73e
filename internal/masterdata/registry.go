package masterdata

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

// Data sources.
const (
	SourceProviders  = "providers"
	SourceModifiers  = "modifiers"
	SourceProcedures = "procedures"
	SourceDiagnoses  = "diagnosis_codes"
	SourceInsurance  = "insurance_companies"
	SourceLocations  = "locations"
)

// OptionSource feeds dynamic select options from another data source.
type OptionSource interface {
	Options(ctx context.Context, dataSource, valueKey, labelKey string) ([]Option, error)
}

// Registry holds configs keyed by DataSource.
type Registry struct {
	configs map[string]*Config
}

// NewRegistry builds the registry of all entity configs. opts may be nil, in
// which case dynamic select fields load no options.
func NewRegistry(opts OptionSource) *Registry {
	r := &Registry{configs: make(map[string]*Config)}
	for _, cfg := range []*Config{
		ProviderConfig(opts),
		ModifierConfig(),
		ProcedureConfig(),
		DiagnosisConfig(),
		InsuranceConfig(),
		LocationConfig(),
	} {
		r.Register(cfg)
	}
	return r
}

// Register adds or replaces a config.
func (r *Registry) Register(cfg *Config) {
	r.configs[cfg.DataSource] = cfg
}

// Get returns the config for dataSource.
func (r *Registry) Get(dataSource string) (*Config, error) {
	cfg, ok := r.configs[dataSource]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("data source %q", dataSource), nil)
	}
	return cfg, nil
}

// Sources lists registered data sources in sorted order.
func (r *Registry) Sources() []string {
	out := make([]string, 0, len(r.configs))
	for k := range r.configs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// All returns every config ordered by data source.
func (r *Registry) All() []*Config {
	out := make([]*Config, 0, len(r.configs))
	for _, k := range r.Sources() {
		out = append(out, r.configs[k])
	}
	return out
}

// LoadFormOptions invokes each field's LoadOptions once. A failing loader
// yields an empty list; the error is logged and never returned.
func LoadFormOptions(ctx context.Context, cfg *Config) map[string][]Option {
	out := make(map[string][]Option)
	for _, f := range cfg.FormFields {
		if f.LoadOptions == nil {
			if len(f.Options) > 0 {
				out[f.Key] = f.Options
			}
			continue
		}
		opts, err := f.LoadOptions(ctx)
		if err != nil {
			log.Warn().Err(err).
				Str("data_source", cfg.DataSource).
				Str("field", f.Key).
				Msg("failed to load field options")
			opts = []Option{}
		}
		if opts == nil {
			opts = []Option{}
		}
		out[f.Key] = opts
	}
	return out
}
