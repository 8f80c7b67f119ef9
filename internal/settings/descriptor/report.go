package descriptor

// Report aggregates the outcome of one parse or register pass.
//
// Keys that a visibility predicate deliberately hid land in both Failed and
// PlannedExcluded; keys that broke validation or registration land in
// Failed and UnplannedFailed. The split lets an operator tell
// "intentionally off" apart from "broken". Both slices are always non-nil.
type Report struct {
	// Processed counts every attempted item.
	Processed int

	// Successful counts items that passed.
	Successful int

	// Succeeded lists the keys that passed, in input order.
	Succeeded []string

	// Failed lists every key that did not pass, in input order.
	Failed []string

	// PlannedExcluded lists keys hidden by a visibility predicate.
	PlannedExcluded []string

	// UnplannedFailed lists keys that failed validation or registration.
	UnplannedFailed []string

	// Messages carries a per-key explanation for failures.
	Messages map[string]string
}

// NewReport creates an empty report with all slices allocated.
func NewReport() *Report {
	return &Report{
		Succeeded:       []string{},
		Failed:          []string{},
		PlannedExcluded: []string{},
		UnplannedFailed: []string{},
		Messages:        map[string]string{},
	}
}

// Success reports whether at least one item passed.
func (r *Report) Success() bool {
	return r.Successful > 0
}

// AddSuccess records a passing key.
func (r *Report) AddSuccess(key string) {
	r.Processed++
	r.Successful++
	r.Succeeded = append(r.Succeeded, key)
}

// AddPlanned records a key hidden by a visibility predicate.
func (r *Report) AddPlanned(key, message string) {
	r.Processed++
	r.Failed = append(r.Failed, key)
	r.PlannedExcluded = append(r.PlannedExcluded, key)
	if message != "" {
		r.Messages[key] = message
	}
}

// AddUnplanned records a validation or registration failure.
func (r *Report) AddUnplanned(key, message string) {
	r.Processed++
	r.Failed = append(r.Failed, key)
	r.UnplannedFailed = append(r.UnplannedFailed, key)
	if message != "" {
		r.Messages[key] = message
	}
}

// AllPlanned reports whether every failure was a planned exclusion.
func (r *Report) AllPlanned() bool {
	return len(r.UnplannedFailed) == 0
}
