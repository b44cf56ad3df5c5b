package propagation

import (
	"strings"

	"github.com/taintgraph/engine/internal/model"
)

// runWorklist expands T (in place) by following the assignment,
// call-arg, and return relations forward from each element, bounded
// at worklistCap iterations so pathological inputs still terminate.
func (t *Tracer) runWorklist(file string, T map[elem]bool) {
	queue := make([]elem, 0, len(T))
	for e := range T {
		queue = append(queue, e)
	}
	processed := map[elem]bool{}

	iterations := 0
	for len(queue) > 0 && iterations < worklistCap {
		iterations++
		e := queue[0]
		queue = queue[1:]
		if processed[e] {
			continue
		}
		processed[e] = true

		var fresh []elem
		for _, a := range t.c.AssignmentsInFunction(file, e.Func) {
			if a.SourceExpr == "" && len(a.SourceVars) == 0 {
				continue
			}
			if strings.Contains(a.SourceExpr, e.Var) || containsStr(a.SourceVars, e.Var) {
				fresh = append(fresh, elem{Func: e.Func, Var: a.TargetVar})
			}
		}

		for _, ca := range t.c.CallArgsFromCaller(file, e.Func) {
			if strings.Contains(ca.ArgumentExpr, e.Var) {
				fresh = append(fresh, elem{Func: ca.CalleeFunction, Var: ca.ParamName})
			}
		}

		for _, r := range t.c.ReturnsOfFunction(file, e.Func) {
			if strings.Contains(r.ReturnExpr, e.Var) || containsStr(r.ReturnVars, e.Var) {
				fresh = append(fresh, elem{Func: e.Func, Var: model.SyntheticReturnVar})
			}
		}

		// A tainted return value re-enters the dataflow wherever its
		// enclosing call appears on the right-hand side of an
		// assignment anywhere in the file — the callee's own in-file
		// assignments/call-args relations say nothing about its
		// callers, so this one rule crosses the function boundary the
		// others stay within.
		if e.Var == model.SyntheticReturnVar {
			for _, a := range t.c.AssignmentsInFile(file) {
				if strings.Contains(a.SourceExpr, e.Func+"(") {
					fresh = append(fresh, elem{Func: a.InFunction, Var: a.TargetVar})
				}
			}
		}

		fresh = append(fresh, t.languageEnhancements(file, e)...)

		for _, f := range fresh {
			if !T[f] {
				T[f] = true
				queue = append(queue, f)
			}
		}
	}
}

func containsStr(vars []string, v string) bool {
	for _, x := range vars {
		if x == v {
			return true
		}
	}
	return false
}
