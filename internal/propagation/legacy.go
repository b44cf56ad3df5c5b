package propagation

import (
	"github.com/taintgraph/engine/internal/discovery"
	"github.com/taintgraph/engine/internal/model"
)

// legacyReach is the fallback path used when a file carries no
// assignment rows at all (an indexer that never populated the
// assignments relation for that source type). Lacking any data-flow
// relation to walk, it falls back to the precomputed call graph alone:
// a sink is considered reached if it lies in a function transitively
// reachable, within opts.MaxDepth hops, from the source's enclosing
// function, with no sanitizer call between the source and sink lines.
// This is intentionally coarse — it answers "could taint conceivably
// reach here" rather than "does it provably reach here."
func (t *Tracer) legacyReach(src discovery.Source, srcFunc string, sinks []discovery.Sink) []model.TaintPath {
	if len(t.c.AssignmentsInFile(src.File)) > 0 {
		return nil
	}

	reachableFuncs := t.reachableWithinDepth(src.File, srcFunc, t.opts.MaxDepth)

	var out []model.TaintPath
	for _, sink := range sinks {
		if sink.File != src.File {
			continue
		}
		sinkFunc, _ := t.c.EnclosingFunction(sink.File, sink.Line)
		if !reachableFuncs[sinkFunc] {
			continue
		}
		if sanitizerBetween(t.c, t.reg, src.File, src.Line, sink.Line) {
			continue
		}
		out = append(out, model.TaintPath{
			Source: model.SourceRef{File: src.File, Line: src.Line, Column: src.Column, Name: src.Name, Pattern: src.Pattern},
			Sink: model.SinkRef{File: sink.File, Line: sink.Line, Column: sink.Column, Name: sink.Name,
				Pattern: sink.Pattern, Category: sink.Category, Metadata: sink.Metadata},
			Steps: []model.Step{
				{Kind: model.StepSource, File: src.File, Line: src.Line, Detail: src.Name},
				{Kind: model.StepPropagation, File: sink.File, Line: sink.Line, Detail: "legacy_call_graph"},
				{Kind: model.StepSink, File: sink.File, Line: sink.Line, Detail: sink.Name},
			},
		})
	}
	return out
}

// reachableWithinDepth walks the precomputed call graph breadth-first
// from (file, startFunc), bounded at maxDepth hops, and returns the set
// of function names reached (including startFunc itself).
func (t *Tracer) reachableWithinDepth(file, startFunc string, maxDepth int) map[string]bool {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	reached := map[string]bool{startFunc: true}
	frontier := []string{startFunc}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, fn := range frontier {
			for _, callee := range t.c.Callees(file, fn) {
				if !reached[callee] {
					reached[callee] = true
					next = append(next, callee)
				}
			}
		}
		frontier = next
	}
	return reached
}
