package propagation

import (
	"strings"
)

// jsExtensions and pyExtensions identify which language-specific
// enhancements apply to a file.
var jsExtensions = []string{".js", ".jsx", ".ts", ".tsx"}
var pyExtensions = []string{".py"}

func hasAnySuffix(file string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(file, s) {
			return true
		}
	}
	return false
}

// languageEnhancements applies the source-file-type-specific
// propagation rules beyond the generic assignment/call-arg/return
// hop. Most JS/TS and Python constructs called out below
// (type-conversion passthrough, string-method propagation,
// concatenation) are already covered by the generic worklist rule,
// since the indexer records the textual source_expr regardless of
// the construct used to produce it. The rules below handle the one
// shape the generic single-target-variable rule cannot: an indexer
// recording one assignment row per multi-binding destructure/unpack
// with a comma-joined target_var.
func (t *Tracer) languageEnhancements(file string, e elem) []elem {
	if !hasAnySuffix(file, jsExtensions) && !hasAnySuffix(file, pyExtensions) {
		return nil
	}

	var fresh []elem
	for _, a := range t.c.AssignmentsInFunction(file, e.Func) {
		if !strings.Contains(a.TargetVar, ",") {
			continue
		}
		if !strings.Contains(a.SourceExpr, e.Var) && !containsStr(a.SourceVars, e.Var) {
			continue
		}
		for _, target := range strings.Split(a.TargetVar, ",") {
			target = strings.TrimSpace(target)
			if target != "" {
				fresh = append(fresh, elem{Func: e.Func, Var: target})
			}
		}
	}
	return fresh
}
