package registry

import "strings"

// Markers names the attributes used to discover fields, steps and summary
// slots. The defaults follow the attribute scheme used by Webflow multi-step
// form templates.
type Markers struct {
	// FieldName lists attributes carrying a field's logical name, in priority
	// order.
	FieldName []string `json:"fieldName" yaml:"fieldName"`

	StepType    string `json:"stepType" yaml:"stepType"`
	StepNumber  string `json:"stepNumber" yaml:"stepNumber"`
	StepSubtype string `json:"stepSubtype" yaml:"stepSubtype"`

	SummaryField   string `json:"summaryField" yaml:"summaryField"`
	SummaryType    string `json:"summaryType" yaml:"summaryType"`
	SummaryNumber  string `json:"summaryNumber" yaml:"summaryNumber"`
	SummarySubtype string `json:"summarySubtype" yaml:"summarySubtype"`
}

// DefaultMarkers returns the stock attribute names.
func DefaultMarkers() Markers {
	return Markers{
		FieldName:      []string{"data-step-field-name", "data-step-field"},
		StepType:       "data-step-type",
		StepNumber:     "data-step-number",
		StepSubtype:    "data-step-subtype",
		SummaryField:   "data-summary-field",
		SummaryType:    "data-summary-type",
		SummaryNumber:  "data-summary-number",
		SummarySubtype: "data-summary-subtype",
	}
}

// WithDefaults fills any empty marker with its default.
func (m Markers) WithDefaults() Markers {
	def := DefaultMarkers()
	if len(m.FieldName) == 0 {
		m.FieldName = def.FieldName
	}
	fill := func(dst *string, fallback string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = fallback
		}
	}
	fill(&m.StepType, def.StepType)
	fill(&m.StepNumber, def.StepNumber)
	fill(&m.StepSubtype, def.StepSubtype)
	fill(&m.SummaryField, def.SummaryField)
	fill(&m.SummaryType, def.SummaryType)
	fill(&m.SummaryNumber, def.SummaryNumber)
	fill(&m.SummarySubtype, def.SummarySubtype)
	return m
}
