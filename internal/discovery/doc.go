// Package discovery turns the Cache's precomputed pattern hits into
// concrete source and sink occurrences, and validates which sources
// are plausibly externally controlled before a trace is started from
// them.
package discovery
