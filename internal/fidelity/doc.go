// Package fidelity reconciles what each pipeline stage expected to
// produce against what actually landed downstream, so a silent drop
// between stages becomes a loud, attributable error instead of a
// quietly short result set.
//
// Every stage builds a manifest (what this stage produced) and, where
// a downstream count exists to compare against, a receipt (what the
// next stage actually recorded). Reconcile compares the two under a
// stage-specific rule and returns a status of OK, WARNING, or FAILED.
// In strict mode a FAILED reconciliation raises TaintFidelityError;
// the TAINT_FIDELITY_STRICT environment variable can force non-strict
// behavior regardless of what the caller passes.
package fidelity
