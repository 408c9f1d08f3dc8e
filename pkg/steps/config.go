package steps

// Config names the selectors and classes used by the validator and the
// navigator. Selectors use the compound form understood by dom.Selector.
type Config struct {
	StepSelector      string `json:"stepSelector" yaml:"stepSelector"`
	BranchingSelector string `json:"branchingSelector" yaml:"branchingSelector"`
	ContainerSelector string `json:"containerSelector" yaml:"containerSelector"`
	ErrorSelector     string `json:"errorSelector" yaml:"errorSelector"`
	NextSelector      string `json:"nextSelector" yaml:"nextSelector"`
	BackSelector      string `json:"backSelector" yaml:"backSelector"`
	ItemSelector      string `json:"itemSelector" yaml:"itemSelector"`

	// GoToAttr names the branch target of a radio, step item or step wrapper;
	// AnswerAttr names a step or a step item so branch targets can find it.
	GoToAttr        string `json:"goToAttr" yaml:"goToAttr"`
	AnswerAttr      string `json:"answerAttr" yaml:"answerAttr"`
	ItemActiveClass string `json:"itemActiveClass" yaml:"itemActiveClass"`

	MessageAttr         string `json:"messageAttr" yaml:"messageAttr"`
	RequiredMarker      string `json:"requiredMarker" yaml:"requiredMarker"`
	ErrorClass          string `json:"errorClass" yaml:"errorClass"`
	ButtonDisabledClass string `json:"buttonDisabledClass" yaml:"buttonDisabledClass"`
	DefaultMessage      string `json:"defaultMessage" yaml:"defaultMessage"`
}

// DefaultConfig mirrors the Webflow branching-form markup.
func DefaultConfig() Config {
	return Config{
		StepSelector:        `[data-form="step"]`,
		BranchingSelector:   ".radio_field.radio-type.is-active-inputactive",
		ContainerSelector:   ".radio_component",
		ErrorSelector:       ".text-size-tiny.error-state",
		NextSelector:        `[data-form="next-btn"]`,
		BackSelector:        `[data-form="back-btn"]`,
		ItemSelector:        ".step_item, .step-item",
		GoToAttr:            "data-go-to",
		AnswerAttr:          "data-answer",
		ItemActiveClass:     "active-step-item",
		MessageAttr:         "data-validation-message",
		RequiredMarker:      "data-conditional-required",
		ErrorClass:          "wf-radio-error",
		ButtonDisabledClass: "wf-button-disabled",
		DefaultMessage:      "Please make a selection to continue",
	}
}

// WithDefaults fills empty settings from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	fill(&c.StepSelector, def.StepSelector)
	fill(&c.BranchingSelector, def.BranchingSelector)
	fill(&c.ContainerSelector, def.ContainerSelector)
	fill(&c.ErrorSelector, def.ErrorSelector)
	fill(&c.NextSelector, def.NextSelector)
	fill(&c.BackSelector, def.BackSelector)
	fill(&c.ItemSelector, def.ItemSelector)
	fill(&c.GoToAttr, def.GoToAttr)
	fill(&c.AnswerAttr, def.AnswerAttr)
	fill(&c.ItemActiveClass, def.ItemActiveClass)
	fill(&c.MessageAttr, def.MessageAttr)
	fill(&c.RequiredMarker, def.RequiredMarker)
	fill(&c.ErrorClass, def.ErrorClass)
	fill(&c.ButtonDisabledClass, def.ButtonDisabledClass)
	fill(&c.DefaultMessage, def.DefaultMessage)
	return c
}
