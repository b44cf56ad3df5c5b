package interproc

import "regexp"

// legacyDispatchTarget matches a function name following a literal
// colon in an object-literal-shaped source expression, e.g.
// "{ admin: deleteUser, guest: noop }" -> ["deleteUser", "noop"]. Kept
// as a fallback for indexes recorded before object_literals existed.
var legacyDispatchTarget = regexp.MustCompile(`:\s*([A-Za-z_][A-Za-z0-9_]*)`)

// ResolveDynamicCallees returns the candidate callee function names
// for a dynamic-dispatch call through objectVar (e.g.
// "handlers[key]()"), consulting the object_literals relation first.
func ResolveDynamicCallees(candidates []struct {
	Property    string
	FunctionRef string
}) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.FunctionRef != "" {
			out = append(out, c.FunctionRef)
		}
	}
	return out
}

// ParseLegacyDispatchTargets extracts candidate function names from a
// raw source expression when no object_literals relation is present.
func ParseLegacyDispatchTargets(sourceExpr string) []string {
	matches := legacyDispatchTarget.FindAllStringSubmatch(sourceExpr, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// AnalyzeDynamicDispatch resolves a dynamic-dispatch call site to one
// or more candidate callees and merges their effects conservatively.
// If no candidate can be resolved at all, it returns the maximally
// conservative effect (every mapped parameter and the return value
// assumed tainted).
func (a *Analyzer) AnalyzeDynamicDispatch(callerFile, callerFunc, calleeFile, objectVar, fallbackSourceExpr string, argsMapping map[string]string, taintState map[string]bool) InterProceduralEffect {
	candidates := ResolveDynamicCallees(a.c.ObjectLiteralsForBase(calleeFile, objectVar))
	if len(candidates) == 0 {
		candidates = ParseLegacyDispatchTargets(fallbackSourceExpr)
	}
	if len(candidates) == 0 {
		return maximallyConservativeEffect(argsMapping)
	}

	var resolved []InterProceduralEffect
	for _, callee := range candidates {
		eff, err := a.AnalyzeFunctionCall(callerFile, callerFunc, calleeFile, callee, argsMapping, taintState)
		if err != nil {
			continue
		}
		resolved = append(resolved, eff)
	}
	if len(resolved) == 0 {
		return maximallyConservativeEffect(argsMapping)
	}
	return mergeEffects(resolved...)
}
