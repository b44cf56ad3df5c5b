package orchestrator

import (
	"github.com/taintgraph/engine/internal/model"
	"github.com/taintgraph/engine/internal/registry"
)

// Config bundles every knob the orchestration layer exposes to its
// caller, mirroring the engine's documented configuration surface.
type Config struct {
	// Frameworks layers framework-specific patterns onto the default
	// registry (flask, django, fastapi, express, koa, fastify).
	Frameworks []string
	// RuleRegistry, when non-nil, replaces the registry's pattern sets
	// wholesale with what it contributes.
	RuleRegistry registry.RuleRegistry

	// MaxDepth bounds both the legacy call-graph fallback and the
	// inter-procedural recursion depth.
	MaxDepth int
	// UseCFG enables flow-sensitive verification of same-function
	// candidate paths.
	UseCFG bool
	// MemoryLimitMB is the cache's soft preload limit; zero selects the
	// engine default.
	MemoryLimitMB int
	// StrictFidelity makes a FAILED fidelity reconciliation end the run
	// with an unsuccessful result; warnings are only logged either way.
	// The TAINT_FIDELITY_STRICT environment variable can still force
	// non-strict behavior regardless of this value.
	StrictFidelity bool
	// MaxPathsPerPair bounds CFG path enumeration per (source, sink).
	MaxPathsPerPair int

	// SourcePatterns and SinkPatterns restrict discovery to the given
	// pattern sets; nil selects every registry pattern.
	SourcePatterns map[string][]string
	SinkPatterns   map[model.PatternCategory][]string
}

// DefaultConfig returns the engine's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxDepth:        5,
		UseCFG:          true,
		MemoryLimitMB:   0,
		StrictFidelity:  true,
		MaxPathsPerPair: 100,
	}
}
