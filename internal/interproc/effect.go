package interproc

// ParamEffect is the conservative per-parameter classification across
// every exit state of a callee's CFG.
type ParamEffect struct {
	Tainted    bool
	Sanitized  bool
	Unmodified bool
}

// InterProceduralEffect summarizes a callee's effect on its
// parameters and return value, in place of inlining its CFG into the
// caller.
type InterProceduralEffect struct {
	ReturnTainted    bool
	ParamEffects     map[string]ParamEffect
	PassthroughTaint map[string]bool
	SideEffects      []string
}

func emptyEffect() InterProceduralEffect {
	return InterProceduralEffect{
		ParamEffects:     map[string]ParamEffect{},
		PassthroughTaint: map[string]bool{},
	}
}

// maximallyConservativeEffect is returned when dynamic dispatch cannot
// be resolved at all: every mapped parameter and the return value are
// assumed tainted.
func maximallyConservativeEffect(argsMapping map[string]string) InterProceduralEffect {
	eff := emptyEffect()
	eff.ReturnTainted = true
	for param := range argsMapping {
		eff.ParamEffects[param] = ParamEffect{Tainted: true}
		eff.PassthroughTaint[param] = true
	}
	return eff
}

// mergeEffects applies the conservative-merge rule across multiple
// candidate effects from an unresolved dynamic dispatch: taint wins,
// side effects union.
func mergeEffects(effects ...InterProceduralEffect) InterProceduralEffect {
	out := emptyEffect()
	seenSideEffect := map[string]bool{}
	for _, e := range effects {
		if e.ReturnTainted {
			out.ReturnTainted = true
		}
		for param, pe := range e.ParamEffects {
			cur, seen := out.ParamEffects[param]
			merged := pe
			if seen {
				merged = ParamEffect{
					Tainted:   cur.Tainted || pe.Tainted,
					Sanitized: cur.Sanitized && pe.Sanitized,
				}
			}
			merged.Unmodified = !merged.Tainted && !merged.Sanitized
			out.ParamEffects[param] = merged
		}
		for param, v := range e.PassthroughTaint {
			if v {
				out.PassthroughTaint[param] = true
			}
		}
		for _, tag := range e.SideEffects {
			if !seenSideEffect[tag] {
				seenSideEffect[tag] = true
				out.SideEffects = append(out.SideEffects, tag)
			}
		}
	}
	return out
}
