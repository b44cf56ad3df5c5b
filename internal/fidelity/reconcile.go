package fidelity

import (
	"fmt"
	"os"
	"strings"

	"github.com/taintgraph/engine/output"
)

// Status is the outcome of a single reconciliation.
type Status string

const (
	StatusOK      Status = "OK"
	StatusWarning Status = "WARNING"
	StatusFailed  Status = "FAILED"
)

// Result is what Reconcile returns: the verdict for one stage plus
// whatever errors and warnings led to it.
type Result struct {
	Status   Status
	Stage    Stage
	Errors   []string
	Warnings []string
}

// TaintFidelityError is raised by Reconcile in strict mode when a
// stage's reconciliation turns up one or more errors.
type TaintFidelityError struct {
	Message string
	Result  Result
}

func (e *TaintFidelityError) Error() string {
	return e.Message
}

const strictEnvVar = "TAINT_FIDELITY_STRICT"

// Reconcile compares a manifest against a receipt under the rule for
// manifest.Stage and returns the resulting status. In strict mode a
// FAILED result is also returned as a *TaintFidelityError; the
// TAINT_FIDELITY_STRICT environment variable, when set to "0",
// forces non-strict behavior regardless of the strict argument.
// A nil logger is valid; Reconcile then does not log.
func Reconcile(manifest Manifest, receipt Receipt, strict bool, logger *output.Logger) (Result, error) {
	if os.Getenv(strictEnvVar) == "0" {
		strict = false
	}

	var errs, warns []string

	switch manifest.Stage {
	case StageDiscovery:
		if manifest.SourceCount == 0 {
			warns = append(warns, "Discovery found 0 sources - is this expected?")
		}
		if manifest.SinkCount == 0 {
			warns = append(warns, "Discovery found 0 sinks - is this expected?")
		}

	case StageAnalysis:
		if manifest.SinksAnalyzed == 0 && receipt.SinksToAnalyze > 0 {
			errs = append(errs, fmt.Sprintf("Analysis processed 0/%d sinks - pipeline stalled", receipt.SinksToAnalyze))
		}

	case StageDedup:
		if ratio := manifest.RemovalRatio(); ratio > 0.5 {
			warns = append(warns, fmt.Sprintf("Dedup removed %d/%d paths (%.0f%%) - check for hash collisions",
				manifest.RemovedCount(), manifest.PreDedupCount, ratio*100))
		}

	case StageDBOutput:
		if manifest.PathsToWrite > 0 && receipt.DBRows == 0 {
			errs = append(errs, fmt.Sprintf("DB Output: %d paths to write, 0 written (100%% LOSS)", manifest.PathsToWrite))
		} else if manifest.PathsToWrite != receipt.DBRows {
			warns = append(warns, fmt.Sprintf("DB Output: manifest=%d, db_rows=%d (delta=%d)",
				manifest.PathsToWrite, receipt.DBRows, manifest.PathsToWrite-receipt.DBRows))
		}

	case StageJSONOutput:
		if manifest.PathsToWrite > 0 && receipt.JSONCount == 0 {
			errs = append(errs, fmt.Sprintf("JSON Output: %d paths to write, 0 in JSON (100%% LOSS)", manifest.PathsToWrite))
		} else if manifest.PathsToWrite != receipt.JSONCount {
			warns = append(warns, fmt.Sprintf("JSON Output: manifest=%d, json=%d (delta=%d)",
				manifest.PathsToWrite, receipt.JSONCount, manifest.PathsToWrite-receipt.JSONCount))
		}
	}

	status := StatusOK
	if len(warns) > 0 {
		status = StatusWarning
	}
	if len(errs) > 0 {
		status = StatusFailed
	}
	result := Result{Status: status, Stage: manifest.Stage, Errors: errs, Warnings: warns}

	if len(errs) > 0 && strict {
		msg := fmt.Sprintf("Taint Fidelity FAILED at %s: %s", manifest.Stage, strings.Join(errs, "; "))
		if logger != nil {
			logger.Error("%s", msg)
		}
		return result, &TaintFidelityError{Message: msg, Result: result}
	}

	if len(warns) > 0 && logger != nil {
		logger.Warning("Taint Fidelity Warnings at %s: %v", manifest.Stage, warns)
	}

	return result, nil
}
