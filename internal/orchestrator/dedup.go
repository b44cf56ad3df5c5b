package orchestrator

import "github.com/taintgraph/engine/internal/model"

// dedupAcrossRun retains one path per (source location, sink
// location) pair across the entire run — a coarser pass than the
// per-trace dedup already applied inside propagation, since more than
// one source can independently reach the same sink. The shortest path
// wins, with the first-seen path breaking ties so iteration order
// stays stable.
func dedupAcrossRun(paths []model.TaintPath) []model.TaintPath {
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
