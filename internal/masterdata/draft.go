package masterdata

import (
	"strings"

	"github.com/jwalitptl/practice-admin/internal/model"
)

var systemKeys = []string{model.KeyID, model.KeyCreatedAt, model.KeyUpdatedAt}

// NewDraft returns a draft pre-filled with each field's DefaultValue.
func NewDraft(cfg *Config) model.Record {
	draft := make(model.Record, len(cfg.FormFields))
	for _, f := range cfg.FormFields {
		if f.DefaultValue != nil {
			draft[f.Key] = f.DefaultValue
		} else {
			draft[f.Key] = ""
		}
	}
	return draft
}

// CoerceBool converts a form value into a bool. ok is false when v is not
// boolean-shaped.
func CoerceBool(v interface{}) (value bool, ok bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "y", "1", "on":
			return true, true
		case "false", "no", "n", "0", "off":
			return false, true
		}
	case []byte:
		return CoerceBool(string(val))
	case int:
		return val != 0, true
	case int64:
		return val != 0, true
	case float64:
		return val != 0, true
	}
	return false, false
}

// normalizeBooleans rewrites boolean keys in place. Unparseable values are
// dropped so they never reach a boolean column.
func normalizeBooleans(cfg *Config, r model.Record) {
	for _, k := range cfg.BooleanKeys {
		v, present := r[k]
		if !present {
			continue
		}
		if b, ok := CoerceBool(v); ok {
			r[k] = b
		} else {
			delete(r, k)
		}
	}
}

func stripBase(cfg *Config, r model.Record) {
	for _, k := range systemKeys {
		delete(r, k)
	}
	for k, v := range r {
		if cfg.isRelation(k) {
			delete(r, k)
			continue
		}
		switch v.(type) {
		case map[string]interface{}, model.Record, []interface{}, []map[string]interface{}:
			delete(r, k)
		}
	}
}

// PrepareCreate returns the payload sent for an add: relations and system
// keys removed, booleans coerced, is_active forced true.
func PrepareCreate(cfg *Config, draft model.Record) model.Record {
	out := draft.Clone()
	stripBase(cfg, out)
	normalizeBooleans(cfg, out)
	out[model.KeyIsActive] = true
	return out
}

// PrepareUpdate returns the payload sent for an edit: nested join objects,
// relations and system keys removed, booleans coerced.
func PrepareUpdate(cfg *Config, draft model.Record) model.Record {
	out := draft.Clone()
	stripBase(cfg, out)
	normalizeBooleans(cfg, out)
	return out
}

// MissingRequired lists labels of required fields that are absent or empty in r.
func MissingRequired(cfg *Config, r model.Record) []string {
	var missing []string
	for _, f := range cfg.FormFields {
		if !f.Required {
			continue
		}
		if v, ok := r[f.Key]; !ok || isBlank(v) {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

// BlankRequired lists labels of required fields that r sets to an empty
// value. Absent fields are left alone, so partial updates pass.
func BlankRequired(cfg *Config, r model.Record) []string {
	var blank []string
	for _, f := range cfg.FormFields {
		if !f.Required {
			continue
		}
		if v, ok := r[f.Key]; ok && isBlank(v) {
			blank = append(blank, f.Label)
		}
	}
	return blank
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
