package services

// StepKind identifies a wizard step category.
type StepKind string

const (
	StepPersonalInfo       StepKind = "personal_info"
	StepParticipantDetails StepKind = "participant_details"
	StepCustomForm         StepKind = "custom_form"
	StepCustomFields       StepKind = "custom_fields"
	StepOptionalItems      StepKind = "optional_items"
	StepWaivers            StepKind = "waivers"
	StepReview             StepKind = "review"
)

// FlowStep is one step of the registration wizard. FormID is set only for
// StepCustomForm steps.
type FlowStep struct {
	Index  int      `json:"index"`
	Kind   StepKind `json:"kind"`
	Title  string   `json:"title"`
	FormID int      `json:"form_id,omitempty"`
}

type stepCandidate struct {
	present bool
	make    func() []FlowStep
}

// ComposeSteps builds the ordered wizard step list for a catalog. Fixed order:
// Personal Info, Participant Details, one step per custom form, Custom Fields,
// Optional Items, Waivers, Review. A section with no configured entries yields
// no step; step count is always 2 + presentSectionCount + len(forms). The
// candidate table is filtered once and indexes assigned at the end, so a
// section's numeric index shifts correctly with whatever precedes it.
func ComposeSteps(catalog *RegistrationCatalog) []FlowStep {
	candidates := []stepCandidate{
		{present: true, make: func() []FlowStep {
			return []FlowStep{{Kind: StepPersonalInfo, Title: "Personal Info"}}
		}},
		{present: len(catalog.ParticipantFields) > 0, make: func() []FlowStep {
			return []FlowStep{{Kind: StepParticipantDetails, Title: "Participant Details"}}
		}},
		{present: len(catalog.Forms) > 0, make: func() []FlowStep {
			steps := make([]FlowStep, 0, len(catalog.Forms))
			for _, form := range catalog.Forms {
				steps = append(steps, FlowStep{Kind: StepCustomForm, Title: form.Name, FormID: form.ID})
			}
			return steps
		}},
		{present: len(catalog.CustomFields) > 0, make: func() []FlowStep {
			return []FlowStep{{Kind: StepCustomFields, Title: "Custom Fields"}}
		}},
		{present: len(catalog.Items) > 0, make: func() []FlowStep {
			return []FlowStep{{Kind: StepOptionalItems, Title: "Optional Items"}}
		}},
		{present: len(catalog.Waivers) > 0, make: func() []FlowStep {
			return []FlowStep{{Kind: StepWaivers, Title: "Waivers"}}
		}},
		{present: true, make: func() []FlowStep {
			return []FlowStep{{Kind: StepReview, Title: "Review"}}
		}},
	}

	steps := make([]FlowStep, 0, len(candidates)+len(catalog.Forms))
	for _, c := range candidates {
		if !c.present {
			continue
		}
		steps = append(steps, c.make()...)
	}
	for i := range steps {
		steps[i].Index = i
	}
	return steps
}
