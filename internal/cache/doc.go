// Package cache implements the engine's single-shot in-memory load of
// the indexed program representation: typed, indexed vectors for each
// relation, precomputed source/sink match-lists, and a precomputed
// call graph accelerator.
//
// A Cache is built once per analysis via Preload and never mutated
// afterward, except that a second Preload call with a changed pattern
// set re-runs only the pattern precompute step (detected via a stable
// signature over the pattern maps). Everything downstream — Discovery,
// Propagation, CFG Integration, the Inter-procedural Analyzer — holds
// only borrowed references into the Cache's tables.
package cache
