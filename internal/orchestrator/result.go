package orchestrator

import "github.com/taintgraph/engine/internal/model"

// Summary buckets the run's vulnerabilities by severity, in addition
// to the type histogram carried on Result itself.
type Summary struct {
	TotalCount    int            `json:"total_count"`
	ByType        map[string]int `json:"by_type"`
	CriticalCount int            `json:"critical_count"`
	HighCount     int            `json:"high_count"`
	MediumCount   int            `json:"medium_count"`
	LowCount      int            `json:"low_count"`
}

// Result is the engine's single top-level output object.
type Result struct {
	RunID                 string           `json:"run_id,omitempty"`
	Success               bool             `json:"success"`
	Error                 string           `json:"error,omitempty"`
	SourcesFound          int              `json:"sources_found"`
	SinksFound            int              `json:"sinks_found"`
	TaintPaths            []model.TaintPath `json:"taint_paths"`
	VulnerabilitiesByType map[string]int   `json:"vulnerabilities_by_type"`
	TotalVulnerabilities  int              `json:"total_vulnerabilities"`
	Summary               Summary          `json:"summary"`
	// Diagnostics carries per-source errors that were caught and
	// skipped rather than aborting the whole run.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

func failureResult(reason string) Result {
	return Result{
		Success: false,
		Error:   reason,
		Summary: Summary{ByType: map[string]int{}},
	}
}
