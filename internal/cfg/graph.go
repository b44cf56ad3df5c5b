package cfg

import (
	"sort"
	"strings"

	"github.com/taintgraph/engine/internal/cache"
	"github.com/taintgraph/engine/internal/model"
	"github.com/taintgraph/engine/internal/registry"
)

// DefaultMaxPaths is the default cap on acyclic paths enumerated
// between a source block and a sink block.
const DefaultMaxPaths = 100

// PathAnalyzer holds one function's control flow graph, keyed by its
// normalized (stem) name, ready for bounded path enumeration and
// per-path taint simulation.
type PathAnalyzer struct {
	c          *cache.Cache
	file       string
	qualified  string
	normalized string

	blocks map[string]model.CFGBlock
	order  []string // block IDs sorted by StartLine, ties by ID

	succ map[string][]model.CFGEdge
}

// NormalizeFunctionName strips a qualified call/assignment name down
// to the method stem the CFG relation is keyed by:
// "accountService.createAccount" -> "createAccount".
func NormalizeFunctionName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// NewPathAnalyzer loads the CFG for (file, qualifiedFunction). ok is
// false when no CFG blocks are recorded for that function under
// either its qualified name or its normalized stem.
func NewPathAnalyzer(c *cache.Cache, file, qualifiedFunction string) (*PathAnalyzer, bool) {
	normalized := NormalizeFunctionName(qualifiedFunction)

	blocks := c.CFGBlocksForFunction(file, normalized)
	if len(blocks) == 0 {
		blocks = c.CFGBlocksForFunction(file, qualifiedFunction)
		if len(blocks) == 0 {
			return nil, false
		}
		normalized = qualifiedFunction
	}

	p := &PathAnalyzer{
		c: c, file: file, qualified: qualifiedFunction, normalized: normalized,
		blocks: map[string]model.CFGBlock{},
		succ:   map[string][]model.CFGEdge{},
	}
	for _, b := range blocks {
		p.blocks[b.ID] = b
		p.order = append(p.order, b.ID)
	}
	sort.Slice(p.order, func(i, j int) bool {
		bi, bj := p.blocks[p.order[i]], p.blocks[p.order[j]]
		if bi.StartLine != bj.StartLine {
			return bi.StartLine < bj.StartLine
		}
		return p.order[i] < p.order[j]
	})

	for _, e := range c.CFGEdgesForFunction(file, normalized) {
		p.succ[e.SourceBlockID] = append(p.succ[e.SourceBlockID], e)
	}
	return p, true
}

// EntryBlock returns the function's entry block id: the block of type
// BlockEntry if one exists, otherwise the block with the lowest start
// line.
func (p *PathAnalyzer) EntryBlock() (string, bool) {
	if len(p.order) == 0 {
		return "", false
	}
	for _, id := range p.order {
		if p.blocks[id].BlockType == model.BlockEntry {
			return id, true
		}
	}
	return p.order[0], true
}

// ExitBlocks returns every block id of type BlockExit, or, if none are
// recorded, the block with the highest start line.
func (p *PathAnalyzer) ExitBlocks() []string {
	var exits []string
	for _, id := range p.order {
		if p.blocks[id].BlockType == model.BlockExit {
			exits = append(exits, id)
		}
	}
	if len(exits) == 0 && len(p.order) > 0 {
		exits = []string{p.order[len(p.order)-1]}
	}
	return exits
}

// File and QualifiedFunction expose the analyzer's identity for
// callers that need to re-query the cache directly.
func (p *PathAnalyzer) File() string              { return p.file }
func (p *PathAnalyzer) QualifiedFunction() string { return p.qualified }

// SimulateFromEntry replays every block on path starting with every
// name in seedVars tainted from function entry, using the same
// sanitizer-before-propagation rule as Verify. It is exported for the
// inter-procedural analyzer, which seeds tainted parameters rather
// than a single source variable.
func (p *PathAnalyzer) SimulateFromEntry(path []string, seedVars []string, reg registry.Registry) BlockTaintState {
	if len(path) == 0 {
		return NewBlockTaintState("")
	}
	state := NewBlockTaintState(path[0])
	for _, v := range seedVars {
		state.AddTaint(v)
	}
	assignments := p.c.AssignmentsInFunction(p.file, p.qualified)
	callArgs := p.c.CallArgsFromCaller(p.file, p.qualified)
	returns := p.c.ReturnsOfFunction(p.file, p.qualified)
	maxLine := 0
	for _, id := range p.order {
		if p.blocks[id].EndLine > maxLine {
			maxLine = p.blocks[id].EndLine
		}
	}
	for _, blockID := range path {
		applyBlock(&state, p.blocks[blockID], assignments, callArgs, returns, reg, maxLine)
	}
	return state
}

// BlockContainingLine returns the ID of the block whose [StartLine,
// EndLine] range contains line.
func (p *PathAnalyzer) BlockContainingLine(line int) (string, bool) {
	for _, id := range p.order {
		b := p.blocks[id]
		if line >= b.StartLine && line <= b.EndLine {
			return id, true
		}
	}
	return "", false
}

// AllPaths enumerates simple (acyclic) block paths from 'from' to
// 'to', stopping once maxPaths have been found. A block already on
// the current path is never revisited, which bounds loop bodies to at
// most one traversal per path — the loop-widening approximation: a
// loop's effect is captured once per path rather than unrolled.
func (p *PathAnalyzer) AllPaths(from, to string, maxPaths int) [][]string {
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}
	if from == to {
		return [][]string{{from}}
	}
	var out [][]string
	visited := map[string]bool{from: true}
	var walk func(cur string, path []string)
	walk = func(cur string, path []string) {
		if len(out) >= maxPaths {
			return
		}
		for _, e := range p.succ[cur] {
			if len(out) >= maxPaths {
				return
			}
			if e.TargetBlockID == to {
				found := append(append([]string{}, path...), to)
				out = append(out, found)
				continue
			}
			if visited[e.TargetBlockID] {
				continue
			}
			visited[e.TargetBlockID] = true
			walk(e.TargetBlockID, append(path, e.TargetBlockID))
			visited[e.TargetBlockID] = false
		}
	}
	walk(from, []string{from})
	return out
}

// VerifyResult is the outcome of simulating every enumerated path
// between a source and a sink block.
type VerifyResult struct {
	Confirmed       bool
	Conditions      []model.Condition
	TaintedAtSink   []string
	SanitizedAtSink []string
	PathsExplored   int
	PathsTruncated  bool
}

// Verify walks every acyclic path from the block containing
// sourceLine to the block containing sinkLine, simulating taint
// block-by-block, and reports whether sourceVar reaches the sink
// still tainted on at least one path.
func (p *PathAnalyzer) Verify(sourceLine int, sourceVar string, sinkLine int, reg registry.Registry, maxPaths int) VerifyResult {
	res := VerifyResult{}

	fromBlock, ok := p.BlockContainingLine(sourceLine)
	if !ok {
		return res
	}
	toBlock, ok := p.BlockContainingLine(sinkLine)
	if !ok {
		return res
	}

	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}
	paths := p.AllPaths(fromBlock, toBlock, maxPaths)
	res.PathsExplored = len(paths)
	res.PathsTruncated = len(paths) >= maxPaths

	for _, path := range paths {
		state := p.simulatePath(path, sourceVar, sourceLine, sinkLine, reg)
		if state.IsTainted(sourceVar) {
			res.Confirmed = true
			res.Conditions = append(res.Conditions, state.Conditions...)
			for v := range state.Tainted {
				if state.IsTainted(v) {
					res.TaintedAtSink = append(res.TaintedAtSink, v)
				}
			}
		}
		for v, sanitized := range state.Sanitized {
			if sanitized {
				res.SanitizedAtSink = append(res.SanitizedAtSink, v)
			}
		}
	}
	sort.Strings(res.TaintedAtSink)
	sort.Strings(res.SanitizedAtSink)
	return res
}

// simulatePath replays every block on path in order, starting with
// seedVar tainted from the start of the first block (seedLine is not
// consulted) and replaying no line after stopLine. Within each block,
// sanitizer calls
// (found via the call-args relation) are applied before assignment
// propagation (found via the assignments relation) — sanitization
// always precedes propagation at a shared line. Branch conditions
// entered along the way are recorded.
func (p *PathAnalyzer) simulatePath(path []string, seedVar string, seedLine, stopLine int, reg registry.Registry) BlockTaintState {
	state := NewBlockTaintState(path[0])
	state.AddTaint(seedVar)

	assignments := p.c.AssignmentsInFunction(p.file, p.qualified)
	callArgs := p.c.CallArgsFromCaller(p.file, p.qualified)
	returns := p.c.ReturnsOfFunction(p.file, p.qualified)

	for _, blockID := range path {
		applyBlock(&state, p.blocks[blockID], assignments, callArgs, returns, reg, stopLine)
	}
	return state
}

// applyBlock replays one block's effects against state in three
// passes: every sanitizer call first, then every assignment, then
// every return statement.
func applyBlock(state *BlockTaintState, b model.CFGBlock, assignments []model.Assignment, callArgs []model.FunctionCallArg, returns []model.FunctionReturn, reg registry.Registry, stopLine int) {
	if b.BlockType == model.BlockCondition || b.BlockType == model.BlockLoopCondition {
		if b.ConditionExpr != "" {
			state.Conditions = append(state.Conditions, model.Condition{
				Block: b.ID, Condition: b.ConditionExpr, Type: string(b.BlockType), Line: b.StartLine,
			})
		}
	}

	inBlock := func(line int) bool {
		return line >= b.StartLine && line <= b.EndLine && line <= stopLine
	}

	for _, ca := range callArgs {
		if !inBlock(ca.Line) || !reg.IsSanitizer(ca.CalleeFunction) {
			continue
		}
		for v := range state.Tainted {
			if state.IsTainted(v) && strings.Contains(ca.ArgumentExpr, v) {
				state.Sanitize(v)
			}
		}
	}

	for _, a := range assignments {
		if !inBlock(a.Line) {
			continue
		}
		sanitizerCall := sanitizerCallFor(a.Line, callArgs, reg)
		if sanitizerCall != "" {
			for _, sv := range a.SourceVars {
				if state.IsTainted(sv) {
					state.Sanitize(sv)
					if a.TargetVar == sv {
						continue
					}
				}
			}
			continue
		}
		for v := range state.Tainted {
			if !state.IsTainted(v) {
				continue
			}
			if strings.Contains(a.SourceExpr, v) || containsVar(a.SourceVars, v) {
				state.AddTaint(a.TargetVar)
				break
			}
		}
	}

	for _, r := range returns {
		if !inBlock(r.Line) {
			continue
		}
		for v := range state.Tainted {
			if state.IsTainted(v) && (strings.Contains(r.ReturnExpr, v) || containsVar(r.ReturnVars, v)) {
				state.AddTaint(model.SyntheticReturnVar)
				break
			}
		}
	}
}

// sanitizerCallFor returns the sanitizer function name called on line,
// if any.
func sanitizerCallFor(line int, callArgs []model.FunctionCallArg, reg registry.Registry) string {
	for _, ca := range callArgs {
		if ca.Line == line && reg.IsSanitizer(ca.CalleeFunction) {
			return ca.CalleeFunction
		}
	}
	return ""
}

func containsVar(vars []string, v string) bool {
	for _, x := range vars {
		if x == v {
			return true
		}
	}
	return false
}
