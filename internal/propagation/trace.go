package propagation

import (
	"github.com/taintgraph/engine/internal/discovery"
	"github.com/taintgraph/engine/internal/model"
)

// Trace computes every taint path from src to any sink in sinks,
// combining the direct-use check, flow-insensitive worklist
// propagation, reaching-sinks (intra- and inter-procedural), and the
// legacy call-graph fallback, then — when CFG data is configured and
// available — replaces each same-function candidate with its
// flow-sensitive verification result, dropping any candidate no
// control-flow path confirms.
func (t *Tracer) Trace(src discovery.Source, sinks []discovery.Sink) []model.TaintPath {
	srcFunc, _ := t.c.EnclosingFunction(src.File, src.Line)

	var paths []model.TaintPath
	paths = append(paths, t.directUseCheck(src, srcFunc, sinks)...)

	T := t.seedInitialTaint(src, srcFunc)
	t.runWorklist(src.File, T)
	paths = append(paths, t.reachSinks(src, srcFunc, T, sinks)...)

	paths = append(paths, t.legacyReach(src, srcFunc, sinks)...)

	if !t.opts.UseCFG {
		return dedupeWithinTrace(paths)
	}

	verified := make([]model.TaintPath, 0, len(paths))
	for _, p := range paths {
		sinkFunc, _ := t.c.EnclosingFunction(p.Sink.File, p.Sink.Line)
		if sinkFunc != srcFunc {
			verified = append(verified, p)
			continue
		}
		if out, keep := t.verifyWithCFG(src.File, srcFunc, p); keep {
			verified = append(verified, out)
		}
	}
	return dedupeWithinTrace(verified)
}

// dedupeWithinTrace collapses duplicate (source, sink) location pairs
// produced by more than one rule in this single Trace call, keeping
// the shortest surviving path. Cross-source/cross-call dedup across an
// entire run happens one layer up, at result assembly.
func dedupeWithinTrace(paths []model.TaintPath) []model.TaintPath {
	type key struct {
		srcFile string
		srcLine int
		snkFile string
		snkLine int
	}
	best := map[key]model.TaintPath{}
	var order []key
	for _, p := range paths {
		k := key{p.Source.File, p.Source.Line, p.Sink.File, p.Sink.Line}
		cur, ok := best[k]
		if !ok {
			best[k] = p
			order = append(order, k)
			continue
		}
		if p.PathLength() < cur.PathLength() {
			best[k] = p
		}
	}
	out := make([]model.TaintPath, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}
