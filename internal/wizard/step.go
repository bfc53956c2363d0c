package wizard

// Step identifies one screen of the deal creation flow. Steps always run in
// declaration order; a draft can move back freely but can only advance once
// the current step's requirements are met.
type Step string

const (
	StepClient  Step = "client"
	StepVehicle Step = "vehicle"
	StepDetails Step = "details"
	StepReview  Step = "review"
)

var stepOrder = []Step{StepClient, StepVehicle, StepDetails, StepReview}

func (s Step) String() string {
	return string(s)
}

// IsValid reports whether the step is one of the defined screens.
func (s Step) IsValid() bool {
	switch s {
	case StepClient, StepVehicle, StepDetails, StepReview:
		return true
	default:
		return false
	}
}

// Index returns the step's position in the flow, or -1 when unknown.
func (s Step) Index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// Next returns the following step and whether one exists.
func (s Step) Next() (Step, bool) {
	i := s.Index()
	if i < 0 || i >= len(stepOrder)-1 {
		return s, false
	}
	return stepOrder[i+1], true
}

// Prev returns the preceding step and whether one exists.
func (s Step) Prev() (Step, bool) {
	i := s.Index()
	if i <= 0 {
		return s, false
	}
	return stepOrder[i-1], true
}
