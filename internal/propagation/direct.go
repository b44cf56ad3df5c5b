package propagation

import (
	"github.com/taintgraph/engine/internal/discovery"
	"github.com/taintgraph/engine/internal/model"
)

// directUseCheck emits a zero-hop path whenever source and sink share
// an enclosing function with no sanitizer call between them.
func (t *Tracer) directUseCheck(src discovery.Source, srcFunc string, sinks []discovery.Sink) []model.TaintPath {
	start, end, ok := t.c.FunctionRange(src.File, srcFunc)
	if !ok {
		return nil
	}
	if src.Line < start || src.Line > end {
		return nil
	}

	var out []model.TaintPath
	for _, sink := range sinks {
		if sink.File != src.File || sink.Line < start || sink.Line > end {
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
				{Kind: model.StepSink, File: sink.File, Line: sink.Line, Detail: sink.Name},
			},
		})
	}
	return out
}
