package fetch

import (
	"encoding/json"
)

// Result is the single aggregated output of a fetch run.
//
// Invariant: SampleProcessed == len(SampleData) <= min(SampleCap, TotalIdentifiersFound),
// and SampleData preserves enumeration order.
type Result struct {
	TotalIdentifiersFound int
	SampleProcessed       int
	SampleData            []Record
	Success               bool
	Error                 string
}

// FailureResult builds the fatal-outcome result. Only enumeration failures
// produce it; per-record failures leave Success true.
func FailureResult(message string) Result {
	return Result{
		Success: false,
		Error:   message,
	}
}

// MarshalJSON renders the two result shapes: a successful run carries the
// counts and sample, a fatal run carries only the error.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{
			Success: false,
			Error:   r.Error,
		})
	}

	sample := r.SampleData
	if sample == nil {
		sample = []Record{}
	}

	return json.Marshal(struct {
		TotalIdentifiersFound int      `json:"total_identifiers_found"`
		SampleProcessed       int      `json:"sample_processed"`
		SampleData            []Record `json:"sample_data"`
		Success               bool     `json:"success"`
	}{
		TotalIdentifiersFound: r.TotalIdentifiersFound,
		SampleProcessed:       r.SampleProcessed,
		SampleData:            sample,
		Success:               true,
	})
}
