package masterdata

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jwalitptl/practice-admin/internal/model"
)

var yesNoOptions = []Option{
	{Value: "true", Label: "Yes"},
	{Value: "false", Label: "No"},
}

var stateOptions = func() []Option {
	codes := []string{
		"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL", "GA", "HI", "ID", "IL",
		"IN", "IA", "KS", "KY", "LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE",
		"NV", "NH", "NJ", "NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC", "SD",
		"TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
	}
	out := make([]Option, len(codes))
	for i, c := range codes {
		out[i] = Option{Value: c, Label: c}
	}
	return out
}()

func renderYesNo(v interface{}, _ model.Record) string {
	if b, ok := CoerceBool(v); ok {
		if b {
			return "Yes"
		}
		return "No"
	}
	return Placeholder
}

func renderCurrency(v interface{}, _ model.Record) string {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int64:
		f = float64(val)
	case string:
		p, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return FormatValue(v)
		}
		f = p
	case []byte:
		p, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return FormatValue(v)
		}
		f = p
	default:
		return FormatValue(v)
	}
	return fmt.Sprintf("$%.2f", f)
}

func renderNA(v interface{}, _ model.Record) string {
	if s := FormatValue(v); s != Placeholder {
		return s
	}
	return "N/A"
}

func activeField() FormField {
	return FormField{Key: "is_active", Label: "Active", Type: FieldSelect, Options: yesNoOptions, DefaultValue: "true"}
}

func ProviderConfig(opts OptionSource) *Config {
	locationField := FormField{
		Key:         "location_id",
		Label:       "Location",
		Type:        FieldSelect,
		Placeholder: "Select a location",
		Dynamic:     true,
	}
	if opts != nil {
		locationField.LoadOptions = func(ctx context.Context) ([]Option, error) {
			return opts.Options(ctx, SourceLocations, "id", "location_name")
		}
	}

	return &Config{
		Title:      "Providers",
		DataSource: SourceProviders,
		Table:      "providers",
		Columns: []Column{
			{Header: "Name", AccessorKey: "name"},
			{Header: "NPI", AccessorKey: "npi"},
			{Header: "Specialty", AccessorKey: "specialty"},
			{Header: "Phone", AccessorKey: "phone"},
			{Header: "Email", AccessorKey: "email"},
			{Header: "Location", AccessorKey: "location_name", Render: renderNA},
			{Header: "Default", AccessorKey: "is_default", Render: renderYesNo},
		},
		FormFields: []FormField{
			{Key: "name", Label: "Provider Name", Type: FieldText, Required: true, FullWidth: true, Placeholder: "Dr. Jane Smith"},
			{Key: "npi", Label: "NPI", Type: FieldText, Required: true, Placeholder: "10-digit NPI"},
			{Key: "specialty", Label: "Specialty", Type: FieldSelect, Options: []Option{
				{Value: "Family Medicine", Label: "Family Medicine"},
				{Value: "Internal Medicine", Label: "Internal Medicine"},
				{Value: "Pediatrics", Label: "Pediatrics"},
				{Value: "Cardiology", Label: "Cardiology"},
				{Value: "Dermatology", Label: "Dermatology"},
				{Value: "Orthopedics", Label: "Orthopedics"},
				{Value: "Psychiatry", Label: "Psychiatry"},
				{Value: "Other", Label: "Other"},
			}},
			{Key: "phone", Label: "Phone", Type: FieldText},
			{Key: "email", Label: "Email", Type: FieldText},
			locationField,
			{Key: "is_default", Label: "Default Provider", Type: FieldSelect, Options: yesNoOptions, DefaultValue: "false"},
		},
		Labels: Labels{
			Singular: "Provider",
			Plural:   "Providers",
			AddTitle: "Add Provider",
			Empty:    "No providers found",
		},
		BooleanKeys:  []string{"is_default", "is_active"},
		Relations:    []string{"location_name", "locations"},
		SearchField:  "name",
		FilterFields: []string{"specialty", "location_id"},
		SortKey:      "name",
	}
}

func ModifierConfig() *Config {
	return &Config{
		Title:      "Modifiers",
		DataSource: SourceModifiers,
		Table:      "modifiers",
		Columns: []Column{
			{Header: "Modifier Code", AccessorKey: "modifier_code"},
			{Header: "Description", AccessorKey: "description"},
		},
		FormFields: []FormField{
			{Key: "modifier_code", Label: "Modifier Code", Type: FieldText, Required: true, Placeholder: "25"},
			{Key: "description", Label: "Description", Type: FieldText, Required: true, FullWidth: true},
			activeField(),
		},
		Labels: Labels{
			Singular: "Modifier",
			Plural:   "Modifiers",
			AddTitle: "Add Modifier",
			Empty:    "No modifiers found",
		},
		BooleanKeys: []string{"is_active"},
		SearchField: "modifier_code",
		SortKey:     "modifier_code",
	}
}

func ProcedureConfig() *Config {
	return &Config{
		Title:      "Procedures",
		DataSource: SourceProcedures,
		Table:      "procedures",
		Columns: []Column{
			{Header: "Procedure Code", AccessorKey: "procedure_code"},
			{Header: "Description", AccessorKey: "description"},
			{Header: "Category", AccessorKey: "category"},
			{Header: "Default Charge", AccessorKey: "default_charge", Render: renderCurrency},
		},
		FormFields: []FormField{
			{Key: "procedure_code", Label: "Procedure Code", Type: FieldText, Required: true, Placeholder: "99213"},
			{Key: "description", Label: "Description", Type: FieldText, Required: true, FullWidth: true},
			{Key: "category", Label: "Category", Type: FieldSelect, Options: []Option{
				{Value: "Evaluation and Management", Label: "Evaluation and Management"},
				{Value: "Anesthesia", Label: "Anesthesia"},
				{Value: "Surgery", Label: "Surgery"},
				{Value: "Radiology", Label: "Radiology"},
				{Value: "Pathology and Laboratory", Label: "Pathology and Laboratory"},
				{Value: "Medicine", Label: "Medicine"},
			}},
			{Key: "default_charge", Label: "Default Charge", Type: FieldText, DefaultValue: "0.00"},
			activeField(),
		},
		Labels: Labels{
			Singular: "Procedure",
			Plural:   "Procedures",
			AddTitle: "Add Procedure",
			Empty:    "No procedures found",
		},
		BooleanKeys:  []string{"is_active"},
		SearchField:  "description",
		FilterFields: []string{"category"},
		SortKey:      "procedure_code",
	}
}

func DiagnosisConfig() *Config {
	return &Config{
		Title:      "Diagnosis Codes",
		DataSource: SourceDiagnoses,
		Table:      "diagnosis_codes",
		Columns: []Column{
			{Header: "Diagnosis Code", AccessorKey: "diagnosis_code"},
			{Header: "Description", AccessorKey: "description"},
			{Header: "Category", AccessorKey: "category"},
		},
		FormFields: []FormField{
			{Key: "diagnosis_code", Label: "Diagnosis Code", Type: FieldText, Required: true, Placeholder: "R51"},
			{Key: "description", Label: "Description", Type: FieldText, Required: true, FullWidth: true},
			{Key: "category", Label: "Category", Type: FieldText},
			activeField(),
		},
		Labels: Labels{
			Singular: "Diagnosis Code",
			Plural:   "Diagnosis Codes",
			AddTitle: "Add Diagnosis Code",
			Empty:    "No diagnosis codes found",
		},
		BooleanKeys:  []string{"is_active"},
		SearchField:  "description",
		FilterFields: []string{"category"},
		SortKey:      "diagnosis_code",
	}
}

func InsuranceConfig() *Config {
	return &Config{
		Title:      "Insurance Companies",
		DataSource: SourceInsurance,
		Table:      "insurance_companies",
		Columns: []Column{
			{Header: "Name", AccessorKey: "name"},
			{Header: "Payer ID", AccessorKey: "payer_id"},
			{Header: "Phone", AccessorKey: "phone"},
			{Header: "City", AccessorKey: "city"},
			{Header: "State", AccessorKey: "state"},
			{Header: "Preferred", AccessorKey: "is_preferred", Render: renderYesNo},
		},
		FormFields: []FormField{
			{Key: "name", Label: "Company Name", Type: FieldText, Required: true, FullWidth: true},
			{Key: "payer_id", Label: "Payer ID", Type: FieldText},
			{Key: "phone", Label: "Phone", Type: FieldText},
			{Key: "address", Label: "Address", Type: FieldText, FullWidth: true},
			{Key: "city", Label: "City", Type: FieldText},
			{Key: "state", Label: "State", Type: FieldSelect, Options: stateOptions},
			{Key: "zip", Label: "ZIP", Type: FieldText},
			{Key: "is_preferred", Label: "Preferred", Type: FieldSelect, Options: yesNoOptions, DefaultValue: "false"},
		},
		Labels: Labels{
			Singular: "Insurance Company",
			Plural:   "Insurance Companies",
			AddTitle: "Add Insurance Company",
			Empty:    "No insurance companies found",
		},
		BooleanKeys:  []string{"is_preferred", "is_active"},
		SearchField:  "name",
		FilterFields: []string{"state"},
		SortKey:      "name",
	}
}

func LocationConfig() *Config {
	return &Config{
		Title:      "Locations",
		DataSource: SourceLocations,
		Table:      "locations",
		Columns: []Column{
			{Header: "Location Name", AccessorKey: "location_name"},
			{Header: "Address", AccessorKey: "address"},
			{Header: "City", AccessorKey: "city"},
			{Header: "State", AccessorKey: "state"},
			{Header: "Phone", AccessorKey: "phone"},
			{Header: "Default", AccessorKey: "is_default", Render: renderYesNo},
		},
		FormFields: []FormField{
			{Key: "location_name", Label: "Location Name", Type: FieldText, Required: true, FullWidth: true},
			{Key: "address", Label: "Address", Type: FieldText, FullWidth: true},
			{Key: "city", Label: "City", Type: FieldText},
			{Key: "state", Label: "State", Type: FieldSelect, Options: stateOptions},
			{Key: "zip", Label: "ZIP", Type: FieldText},
			{Key: "phone", Label: "Phone", Type: FieldText},
			{Key: "opened_on", Label: "Opened On", Type: FieldDate},
			{Key: "is_default", Label: "Default Location", Type: FieldSelect, Options: yesNoOptions, DefaultValue: "false"},
		},
		Labels: Labels{
			Singular: "Location",
			Plural:   "Locations",
			AddTitle: "Add Location",
			Empty:    "No locations found",
		},
		BooleanKeys:  []string{"is_default", "is_active"},
		SearchField:  "location_name",
		FilterFields: []string{"state"},
		SortKey:      "location_name",
	}
}
