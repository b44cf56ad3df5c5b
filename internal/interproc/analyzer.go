package interproc

import (
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/taintgraph/engine/internal/cache"
	"github.com/taintgraph/engine/internal/cfg"
	"github.com/taintgraph/engine/internal/model"
	"github.com/taintgraph/engine/internal/registry"
)

// ErrCalleeCFGUnavailable is returned when a callee has no CFG data
// recorded. This is a hard failure, never silently swallowed into an
// "unmodified" effect — doing so would extinguish taint tracking for
// the whole call.
var ErrCalleeCFGUnavailable = errors.New("interproc: no CFG available for callee")

const defaultMemoSize = 4096

// dbIndicators and responseIndicators drive the informal side-effect
// tags attached to an effect summary.
var (
	dbIndicators       = []string{"execute", "query", "save", "insert", "update", "delete", "raw"}
	responseIndicators = []string{"send", "render", "json", "redirect", "write"}
)

// Analyzer computes function effect summaries over a Cache, memoizing
// results by canonical call signature and capping recursion depth.
type Analyzer struct {
	c        *cache.Cache
	reg      registry.Registry
	memo     *lru.Cache[string, InterProceduralEffect]
	maxDepth int
	depth    int
	maxPaths int
}

// New returns an Analyzer. maxDepth and maxPaths fall back to the
// engine defaults (10 and cfg.DefaultMaxPaths) when non-positive.
func New(c *cache.Cache, reg registry.Registry, maxDepth, maxPaths int) *Analyzer {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if maxPaths <= 0 {
		maxPaths = cfg.DefaultMaxPaths
	}
	memo, _ := lru.New[string, InterProceduralEffect](defaultMemoSize)
	return &Analyzer{c: c, reg: reg, memo: memo, maxDepth: maxDepth, maxPaths: maxPaths}
}

// AnalyzeFunctionCall computes (or returns the memoized) effect of
// calling (calleeFile, calleeFunc) from (callerFile, callerFunc) with
// argsMapping (param name -> caller variable name) and taintState
// (caller variable name -> currently tainted).
func (a *Analyzer) AnalyzeFunctionCall(callerFile, callerFunc, calleeFile, calleeFunc string, argsMapping map[string]string, taintState map[string]bool) (InterProceduralEffect, error) {
	key := callSignature(callerFile, callerFunc, calleeFile, calleeFunc, argsMapping, taintState)
	if eff, ok := a.memo.Get(key); ok {
		return eff, nil
	}

	if a.depth >= a.maxDepth {
		return emptyEffect(), nil
	}
	a.depth++
	defer func() { a.depth-- }()

	p, ok := cfg.NewPathAnalyzer(a.c, calleeFile, calleeFunc)
	if !ok {
		return emptyEffect(), fmt.Errorf("%w: %s:%s", ErrCalleeCFGUnavailable, calleeFile, calleeFunc)
	}

	entry, ok := p.EntryBlock()
	if !ok {
		return emptyEffect(), fmt.Errorf("%w: %s:%s has no entry block", ErrCalleeCFGUnavailable, calleeFile, calleeFunc)
	}

	var seedVars []string
	for param, callerVar := range argsMapping {
		if taintState[callerVar] {
			seedVars = append(seedVars, param)
		}
	}

	var exitStates []cfg.BlockTaintState
	for _, exit := range p.ExitBlocks() {
		for _, path := range p.AllPaths(entry, exit, a.maxPaths) {
			exitStates = append(exitStates, p.SimulateFromEntry(path, seedVars, a.reg))
		}
	}

	eff := buildEffect(exitStates, argsMapping, seedVars)
	eff.SideEffects = sideEffectTags(a.c, calleeFile, p.QualifiedFunction())

	a.memo.Add(key, eff)
	return eff, nil
}

// buildEffect classifies each parameter and the return value across
// every exit state: tainted if tainted anywhere, sanitized only if
// sanitized everywhere, else unmodified. Passthrough is set for every
// initially-seeded parameter that remains tainted (unsanitized) in at
// least one exit state.
func buildEffect(exitStates []cfg.BlockTaintState, argsMapping map[string]string, seedVars []string) InterProceduralEffect {
	eff := emptyEffect()

	for _, st := range exitStates {
		if st.IsTainted(model.SyntheticReturnVar) {
			eff.ReturnTainted = true
		}
	}

	for param := range argsMapping {
		taintedAny := false
		sanitizedAll := len(exitStates) > 0
		for _, st := range exitStates {
			if st.Tainted[param] {
				taintedAny = true
			}
			if !st.Sanitized[param] {
				sanitizedAll = false
			}
		}
		eff.ParamEffects[param] = ParamEffect{
			Tainted:    taintedAny,
			Sanitized:  sanitizedAll,
			Unmodified: !taintedAny && !sanitizedAll,
		}
	}

	for _, param := range seedVars {
		for _, st := range exitStates {
			if st.IsTainted(param) {
				eff.PassthroughTaint[param] = true
				break
			}
		}
	}
	return eff
}

func sideEffectTags(c *cache.Cache, file, function string) []string {
	var tags []string
	seen := map[string]bool{}
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	for _, ca := range c.CallArgsFromCaller(file, function) {
		lower := strings.ToLower(ca.CalleeFunction)
		for _, ind := range dbIndicators {
			if strings.Contains(lower, ind) {
				add("writes_to_db")
			}
		}
		for _, ind := range responseIndicators {
			if strings.Contains(lower, ind) {
				add("sends_response")
			}
		}
	}
	return tags
}
