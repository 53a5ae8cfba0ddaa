package models

import "sort"

// FulfillmentState is derived from the steps, never stored.
type FulfillmentState string

const (
	StateUninitialized FulfillmentState = "UNINITIALIZED"
	StateInProgress    FulfillmentState = "IN_PROGRESS"
	StateComplete      FulfillmentState = "COMPLETE"
)

type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Plan is a transaction's ordered steps.
type Plan []FulfillmentStep

// Sorted returns the steps in ascending step number.
func (p Plan) Sorted() Plan {
	out := make(Plan, len(p))
	copy(out, p)
	sort.Slice(out, func(i, j int) bool { return out[i].StepNumber < out[j].StepNumber })
	return out
}

// Current returns the first step that is not completed, or nil when every
// step is done or the plan is empty. p must be sorted.
func (p Plan) Current() *FulfillmentStep {
	for i := range p {
		if !p[i].IsCompleted() {
			return &p[i]
		}
	}
	return nil
}

func (p Plan) Progress() Progress {
	pr := Progress{Total: len(p)}
	for i := range p {
		if p[i].IsCompleted() {
			pr.Completed++
		}
	}
	if pr.Total > 0 {
		pr.Percentage = pr.Completed * 100 / pr.Total
	}
	return pr
}

func (p Plan) State() FulfillmentState {
	switch {
	case len(p) == 0:
		return StateUninitialized
	case p.Current() == nil:
		return StateComplete
	default:
		return StateInProgress
	}
}

// Find returns the first step of the given type, or nil.
func (p Plan) Find(t StepType) *FulfillmentStep {
	for i := range p {
		if p[i].StepType == t {
			return &p[i]
		}
	}
	return nil
}

// IsContiguous reports whether step numbers run 1..len(p) with no gaps.
// p must be sorted.
func (p Plan) IsContiguous() bool {
	for i := range p {
		if p[i].StepNumber != i+1 {
			return false
		}
	}
	return true
}
