package propagation

import (
	"strings"

	"github.com/taintgraph/engine/internal/cfg"
	"github.com/taintgraph/engine/internal/discovery"
	"github.com/taintgraph/engine/internal/model"
)

const sinkProximityWindow = 5

// reachSinks walks every tainted element against every sink in the
// source's file, emitting a propagation path per (element, sink) pair
// that reaches with no sanitizer between them.
func (t *Tracer) reachSinks(src discovery.Source, srcFunc string, T map[elem]bool, sinks []discovery.Sink) []model.TaintPath {
	var out []model.TaintPath
	for _, sink := range sinks {
		if sink.File != src.File {
			continue
		}
		sinkFunc, _ := t.c.EnclosingFunction(sink.File, sink.Line)

		for e := range T {
			if e.Func == sinkFunc {
				if line, ok := t.sameFunctionReach(src, e, sink); ok {
					out = append(out, t.buildPropagationPath(src, sink, e, line))
				}
				continue
			}
			if path, ok := t.crossFunctionReach(src, srcFunc, e, sink); ok {
				out = append(out, path)
			}
		}
	}
	return out
}

// sameFunctionReach tests whether e's variable appears in the sink
// call's argument expression or in a nearby assignment, with no
// sanitizer call strictly between source and sink.
func (t *Tracer) sameFunctionReach(src discovery.Source, e elem, sink discovery.Sink) (int, bool) {
	reached := false
	for _, ca := range t.c.CallArgsInFile(sink.File) {
		if ca.Line == sink.Line && ca.CalleeFunction == sink.Name && strings.Contains(ca.ArgumentExpr, e.Var) {
			reached = true
		}
	}
	if !reached {
		for _, a := range t.c.AssignmentsInFile(sink.File) {
			if abs(a.Line-sink.Line) > sinkProximityWindow {
				continue
			}
			if strings.Contains(a.SourceExpr, e.Var) || containsStr(a.SourceVars, e.Var) {
				reached = true
				break
			}
		}
	}
	if !reached {
		return 0, false
	}
	if sanitizerBetween(t.c, t.reg, src.File, src.Line, sink.Line) {
		return 0, false
	}
	return sink.Line, true
}

// crossFunctionReach handles the case where the tainted element's
// function differs from the sink's enclosing function. It first tries
// the direct nested-call shape (the element's function's return value
// is used inline as an argument to the sink call — "res.send(getName(req))"),
// then, if an inter-procedural analyzer is attached, asks it whether
// the element's function's effect reaches the sink's function.
func (t *Tracer) crossFunctionReach(src discovery.Source, srcFunc string, e elem, sink discovery.Sink) (model.TaintPath, bool) {
	if e.Var != model.SyntheticReturnVar {
		return model.TaintPath{}, false
	}

	for _, ca := range t.c.CallArgsInFile(sink.File) {
		if ca.Line != sink.Line || ca.CalleeFunction != sink.Name {
			continue
		}
		if !strings.Contains(ca.ArgumentExpr, e.Func+"(") {
			continue
		}
		if sanitizerBetween(t.c, t.reg, src.File, src.Line, sink.Line) {
			continue
		}
		return t.buildInterproceduralPath(src, sink, e), true
	}

	if t.ip == nil {
		return model.TaintPath{}, false
	}
	sinkFunc, ok := t.c.EnclosingFunction(sink.File, sink.Line)
	if !ok {
		return model.TaintPath{}, false
	}
	for _, ca := range t.c.CallArgsFromCaller(src.File, e.Func) {
		if ca.CalleeFunction != sinkFunc {
			continue
		}
		eff, err := t.ip.AnalyzeFunctionCall(src.File, e.Func, src.File, sinkFunc,
			map[string]string{ca.ParamName: e.Var}, map[string]bool{e.Var: true})
		if err != nil {
			continue
		}
		if eff.ReturnTainted || eff.PassthroughTaint[ca.ParamName] {
			if sanitizerBetween(t.c, t.reg, src.File, src.Line, sink.Line) {
				continue
			}
			return t.buildInterproceduralPath(src, sink, e), true
		}
	}
	return model.TaintPath{}, false
}

func (t *Tracer) buildPropagationPath(src discovery.Source, sink discovery.Sink, e elem, sinkLine int) model.TaintPath {
	return model.TaintPath{
		Source: model.SourceRef{File: src.File, Line: src.Line, Column: src.Column, Name: src.Name, Pattern: src.Pattern},
		Sink: model.SinkRef{File: sink.File, Line: sink.Line, Column: sink.Column, Name: sink.Name,
			Pattern: sink.Pattern, Category: sink.Category, Metadata: sink.Metadata},
		Steps: []model.Step{
			{Kind: model.StepSource, File: src.File, Line: src.Line, Detail: src.Name},
			{Kind: model.StepPropagation, File: sink.File, Line: sinkLine, Detail: e.Var},
			{Kind: model.StepSink, File: sink.File, Line: sink.Line, Detail: sink.Name},
		},
	}
}

func (t *Tracer) buildInterproceduralPath(src discovery.Source, sink discovery.Sink, e elem) model.TaintPath {
	return model.TaintPath{
		Source: model.SourceRef{File: src.File, Line: src.Line, Column: src.Column, Name: src.Name, Pattern: src.Pattern},
		Sink: model.SinkRef{File: sink.File, Line: sink.Line, Column: sink.Column, Name: sink.Name,
			Pattern: sink.Pattern, Category: sink.Category, Metadata: sink.Metadata},
		Steps: []model.Step{
			{Kind: model.StepSource, File: src.File, Line: src.Line, Detail: src.Name},
			{Kind: model.StepArgumentPass, File: src.File, Line: src.Line, Detail: e.Func},
			{Kind: model.StepReturnFlow, File: src.File, Line: sink.Line, Detail: e.Func + ":" + model.SyntheticReturnVar},
			{Kind: model.StepSink, File: sink.File, Line: sink.Line, Detail: sink.Name},
		},
	}
}

// verifyWithCFG re-checks a same-function candidate path flow-
// sensitively when CFG data is available, per the flow-sensitive
// override rule: a path confirmed by at least one unsanitized
// control-flow path is kept (and its condition trail recorded); a
// path where every control-flow path sanitizes the value is dropped
// even though flow-insensitive propagation flagged it.
func (t *Tracer) verifyWithCFG(file, funcName string, path model.TaintPath) (model.TaintPath, bool) {
	p, ok := cfg.NewPathAnalyzer(t.c, file, funcName)
	if !ok {
		return path, true
	}
	res := p.Verify(path.Source.Line, path.Source.Name, path.Sink.Line, t.reg, t.opts.MaxPaths)
	if _, hasBlock := p.BlockContainingLine(path.Source.Line); !hasBlock {
		return path, true
	}
	if !res.Confirmed {
		return path, false
	}
	path.FlowSensitive = true
	path.Conditions = res.Conditions
	path.TaintedVarsAtSink = res.TaintedAtSink
	path.SanitizedVarsAtSink = res.SanitizedAtSink
	return path, true
}
