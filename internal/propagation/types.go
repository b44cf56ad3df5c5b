package propagation

import (
	"github.com/taintgraph/engine/internal/cache"
	"github.com/taintgraph/engine/internal/cfg"
	"github.com/taintgraph/engine/internal/interproc"
	"github.com/taintgraph/engine/internal/registry"
)

// elem is a single "func:var" worklist token: a variable believed
// tainted within one function of one file.
type elem struct {
	Func string
	Var  string
}

// Options configures one Tracer.
type Options struct {
	// MaxDepth bounds the legacy call-graph fallback's proximity
	// search when the assignment relation is unavailable.
	MaxDepth int
	// UseCFG enables flow-sensitive verification of same-function
	// candidate paths when CFG data exists for the source function.
	UseCFG bool
	// MaxPaths bounds CFG path enumeration per (source, sink) pair.
	MaxPaths int
}

const (
	defaultMaxDepth = 5
	defaultMaxPaths = cfg.DefaultMaxPaths
	worklistCap     = 100
)

// DefaultOptions returns the engine's default propagation
// configuration.
func DefaultOptions() Options {
	return Options{MaxDepth: defaultMaxDepth, UseCFG: true, MaxPaths: defaultMaxPaths}
}

// Tracer traces intra-procedural taint from one source occurrence to
// a set of candidate sinks, delegating to the inter-procedural
// analyzer when taint crosses a function boundary. ip may be nil, in
// which case cross-function reach is limited to the direct
// nested-call heuristic.
type Tracer struct {
	c    *cache.Cache
	reg  registry.Registry
	ip   *interproc.Analyzer
	opts Options
}

// NewTracer builds a Tracer over c using reg's sanitizer/pattern
// configuration and the given Options.
func NewTracer(c *cache.Cache, reg registry.Registry, ip *interproc.Analyzer, opts Options) *Tracer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	if opts.MaxPaths <= 0 {
		opts.MaxPaths = defaultMaxPaths
	}
	return &Tracer{c: c, reg: reg, ip: ip, opts: opts}
}
