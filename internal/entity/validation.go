package entity

// ValidationResult is the outcome of running the validator over one invoice.
// Errors denote structurally broken data and should block automatic downstream
// persistence; warnings are advisory; fixes enumerate mutations that were applied.
type ValidationResult struct {
	Invoice  *Invoice `json:"invoice"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Fixes    []string `json:"fixes"`
}
