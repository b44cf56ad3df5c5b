// Package orchestrator wires Registry, Cache, Discovery, Propagation,
// and the inter-procedural analyzer into a single top-level run: it
// preloads the cache, discovers sources and sinks, traces every
// externally-controlled source to every sink, deduplicates across the
// whole run, classifies each surviving path's vulnerability type, and
// assembles the result object handed back to the caller.
//
// Per-source tracing errors are caught here and recorded as
// diagnostics rather than aborting the run; a failure to preload the
// cache at all is fatal and reported as success=false.
package orchestrator
