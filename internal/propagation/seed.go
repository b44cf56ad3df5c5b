package propagation

import (
	"strings"

	"github.com/taintgraph/engine/internal/discovery"
)

// webFrameworkBuckets are the source buckets whose occurrences are
// ubiquitous request accessors — used as the last-resort seeding
// anchor when no assignment ties the pattern to a variable.
var webFrameworkBuckets = map[string]bool{"python": true, "javascript": true}

// seedInitialTaint builds the starting worklist set T for src within
// srcFunc, following the cascade of increasingly permissive rules.
func (t *Tracer) seedInitialTaint(src discovery.Source, srcFunc string) map[elem]bool {
	T := map[elem]bool{}
	const window = 2

	assignmentsInFile := t.c.AssignmentsInFile(src.File)

	// Rule 1: assignment on the source's line (±window) whose
	// source_expr equals or contains the source pattern.
	for _, a := range assignmentsInFile {
		if abs(a.Line-src.Line) > window {
			continue
		}
		if a.SourceExpr == src.Pattern || strings.Contains(a.SourceExpr, src.Pattern) {
			T[elem{Func: a.InFunction, Var: a.TargetVar}] = true
		}
	}

	// Rule 2: assignment on that line whose source_expr contains any
	// known source-pattern string.
	if len(T) == 0 {
		for _, a := range assignmentsInFile {
			if a.Line != src.Line {
				continue
			}
			if containsAnySourcePattern(a.SourceExpr, t.reg.Sources()) {
				T[elem{Func: a.InFunction, Var: a.TargetVar}] = true
			}
		}
	}

	// Rule 3: dotted source patterns also match anywhere in the file.
	if len(T) == 0 && strings.Contains(src.Pattern, ".") {
		for _, a := range assignmentsInFile {
			if strings.Contains(a.SourceExpr, src.Pattern) {
				T[elem{Func: a.InFunction, Var: a.TargetVar}] = true
			}
		}
	}

	// Rule 4: fallback anchor — any assignment in the file references
	// the pattern at all.
	if len(T) == 0 {
		for _, a := range assignmentsInFile {
			if strings.Contains(a.SourceExpr, src.Pattern) {
				T[elem{Func: srcFunc, Var: src.Pattern}] = true
				break
			}
		}
	}

	// Rule 5: ubiquitous web framework accessor anchor.
	if len(T) == 0 && webFrameworkBuckets[src.Bucket] {
		T[elem{Func: srcFunc, Var: src.Pattern}] = true
	}

	return T
}

func containsAnySourcePattern(expr string, sources map[string][]string) bool {
	for _, patterns := range sources {
		for _, p := range patterns {
			if p != "" && strings.Contains(expr, p) {
				return true
			}
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
