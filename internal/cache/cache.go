package cache

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/taintgraph/engine/internal/model"
	"github.com/taintgraph/engine/internal/store"
)

const (
	defaultMinLimitMB = 256
	defaultMaxLimitMB = 8192
)

// ErrMemoryLimitExceeded is returned by Preload when the estimated
// size of the relations to load would exceed the configured soft
// limit. orchestrator.Run reports it like any other preload error, as an
// unsuccessful result; the engine has no direct-query mode to fall back to.
var ErrMemoryLimitExceeded = fmt.Errorf("cache: preload would exceed memory limit")

// Cache is the engine's single-shot, read-mostly view of the indexed
// program representation.
type Cache struct {
	mu sync.RWMutex

	limitMB int

	symbols   []model.Symbol
	symByFileLine map[string][]int
	symByName     map[string][]int
	symByFile     map[string][]int
	symByType     map[model.SymbolType][]int

	assignments       []model.Assignment
	assignByFileFunc  map[string][]int
	assignByTargetVar map[string][]int
	assignByFile      map[string][]int

	callArgs         []model.FunctionCallArg
	callArgByCaller  map[string][]int
	callArgByCallee  map[string][]int
	callArgByFile    map[string][]int

	returns       []model.FunctionReturn
	returnsByFunc map[string][]int

	cfgBlocks       []model.CFGBlock
	cfgBlockByFile     map[string][]int
	cfgBlockByFileFunc map[string][]int
	cfgBlockByID       map[string]int

	cfgEdges         []model.CFGEdge
	cfgEdgeByFile     map[string][]int
	cfgEdgeByFileFunc map[string][]int
	cfgEdgeBySource   map[string][]int
	cfgEdgeByTarget   map[string][]int

	cfgStatements      []model.CFGBlockStatement
	cfgStmtByBlockID   map[string][]int

	sqlQueries     []store.SQLQuery
	ormQueries     []store.ORMQuery
	reactHooks     []store.ReactHook
	variableUsage  []store.VariableUsage
	apiEndpoints   []store.APIEndpoint
	jwtPatterns    []store.JWTPattern
	objectLiterals []store.ObjectLiteral
	hasObjectLiterals bool

	funcRanges map[string][]funcRange // file -> ranges, sorted by StartLine

	sourceHits map[string][]SourceHit // pattern -> hits
	sinkHits   map[string][]SinkHit   // pattern -> hits
	callGraph  map[string][]string    // "file:name" -> callee names

	patternSignature string
	loaded           bool
	estimatedBytes   int64
}

// New creates a Cache with the given soft memory limit in megabytes.
// A zero or negative limit auto-detects one from the process's own
// memory footprint instead, clamped to
// [defaultMinLimitMB, defaultMaxLimitMB].
func New(limitMB int) *Cache {
	if limitMB <= 0 {
		limitMB = detectSoftLimitMB()
	}
	if limitMB < defaultMinLimitMB {
		limitMB = defaultMinLimitMB
	}
	if limitMB > defaultMaxLimitMB {
		limitMB = defaultMaxLimitMB
	}
	return &Cache{limitMB: limitMB}
}

// Preload performs the single-shot bulk read from st and builds every
// index and precompute table. Calling Preload again on an
// already-loaded Cache only refreshes the pattern precomputes, and
// only if the pattern maps actually changed.
func (c *Cache) Preload(ctx context.Context, st store.Store, sources map[string][]string, sinks map[model.PatternCategory][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sig := computeSignature(sources, sinks)

	if c.loaded {
		if sig == c.patternSignature {
			return nil
		}
		c.precomputePatterns(sources, sinks)
		c.patternSignature = sig
		return nil
	}

	symbols, err := st.Symbols(ctx)
	if err != nil {
		return fmt.Errorf("preloading symbols: %w", err)
	}
	assignments, err := st.Assignments(ctx)
	if err != nil {
		return fmt.Errorf("preloading assignments: %w", err)
	}
	callArgs, err := st.FunctionCallArgs(ctx)
	if err != nil {
		return fmt.Errorf("preloading function_call_args: %w", err)
	}
	returns, err := st.FunctionReturns(ctx)
	if err != nil {
		return fmt.Errorf("preloading function_returns: %w", err)
	}
	cfgBlocks, err := st.CFGBlocks(ctx)
	if err != nil {
		return fmt.Errorf("preloading cfg_blocks: %w", err)
	}
	cfgEdges, err := st.CFGEdges(ctx)
	if err != nil {
		return fmt.Errorf("preloading cfg_edges: %w", err)
	}
	cfgStatements, err := st.CFGBlockStatements(ctx)
	if err != nil {
		return fmt.Errorf("preloading cfg_block_statements: %w", err)
	}
	sqlQueries, err := st.SQLQueries(ctx)
	if err != nil {
		return fmt.Errorf("preloading sql_queries: %w", err)
	}
	ormQueries, err := st.ORMQueries(ctx)
	if err != nil {
		return fmt.Errorf("preloading orm_queries: %w", err)
	}
	reactHooks, err := st.ReactHooks(ctx)
	if err != nil {
		return fmt.Errorf("preloading react_hooks: %w", err)
	}
	varUsage, err := st.VariableUsage(ctx)
	if err != nil {
		return fmt.Errorf("preloading variable_usage: %w", err)
	}
	apiEndpoints, err := st.APIEndpoints(ctx)
	if err != nil {
		return fmt.Errorf("preloading api_endpoints: %w", err)
	}
	jwtPatterns, err := st.JWTPatterns(ctx)
	if err != nil {
		return fmt.Errorf("preloading jwt_patterns: %w", err)
	}
	hasObjLiterals, err := st.HasRelation(ctx, "object_literals")
	if err != nil {
		return fmt.Errorf("probing object_literals: %w", err)
	}
	var objectLiterals []store.ObjectLiteral
	if hasObjLiterals {
		objectLiterals, err = st.ObjectLiterals(ctx)
		if err != nil {
			return fmt.Errorf("preloading object_literals: %w", err)
		}
	}

	estimated := estimateBytes(len(symbols), len(assignments), len(callArgs), len(returns),
		len(cfgBlocks), len(cfgEdges), len(cfgStatements))
	if estimated > int64(c.limitMB)*1024*1024 {
		return fmt.Errorf("%w: estimated %s exceeds limit %d MB",
			ErrMemoryLimitExceeded, humanize.Bytes(uint64(estimated)), c.limitMB)
	}

	c.symbols = symbols
	c.assignments = assignments
	c.callArgs = callArgs
	c.returns = returns
	c.cfgBlocks = cfgBlocks
	c.cfgEdges = cfgEdges
	c.cfgStatements = cfgStatements
	c.sqlQueries = sqlQueries
	c.ormQueries = ormQueries
	c.reactHooks = reactHooks
	c.variableUsage = varUsage
	c.apiEndpoints = apiEndpoints
	c.jwtPatterns = jwtPatterns
	c.objectLiterals = objectLiterals
	c.hasObjectLiterals = hasObjLiterals
	c.estimatedBytes = estimated

	c.buildIndexes()
	c.buildFuncRanges()
	c.precomputePatterns(sources, sinks)
	c.precomputeCallGraph()

	c.patternSignature = sig
	c.loaded = true
	return nil
}

// GetMemoryUsageMB reports the estimated in-memory footprint of the
// loaded relations, in megabytes.
func (c *Cache) GetMemoryUsageMB() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return float64(c.estimatedBytes) / (1024 * 1024)
}

// HasObjectLiterals reports whether the optional object_literals
// relation was present at preload.
func (c *Cache) HasObjectLiterals() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasObjectLiterals
}

func (c *Cache) buildIndexes() {
	c.symByFileLine = map[string][]int{}
	c.symByName = map[string][]int{}
	c.symByFile = map[string][]int{}
	c.symByType = map[model.SymbolType][]int{}
	for i, s := range c.symbols {
		fl := fileLineKey(s.File, s.Line)
		c.symByFileLine[fl] = append(c.symByFileLine[fl], i)
		c.symByName[s.Name] = append(c.symByName[s.Name], i)
		c.symByFile[s.File] = append(c.symByFile[s.File], i)
		c.symByType[s.Type] = append(c.symByType[s.Type], i)
	}

	c.assignByFileFunc = map[string][]int{}
	c.assignByTargetVar = map[string][]int{}
	c.assignByFile = map[string][]int{}
	for i, a := range c.assignments {
		ff := fileFuncKey(a.File, a.InFunction)
		c.assignByFileFunc[ff] = append(c.assignByFileFunc[ff], i)
		c.assignByTargetVar[a.TargetVar] = append(c.assignByTargetVar[a.TargetVar], i)
		c.assignByFile[a.File] = append(c.assignByFile[a.File], i)
	}

	c.callArgByCaller = map[string][]int{}
	c.callArgByCallee = map[string][]int{}
	c.callArgByFile = map[string][]int{}
	for i, a := range c.callArgs {
		fc := fileFuncKey(a.File, a.CallerFunction)
		c.callArgByCaller[fc] = append(c.callArgByCaller[fc], i)
		c.callArgByCallee[a.CalleeFunction] = append(c.callArgByCallee[a.CalleeFunction], i)
		c.callArgByFile[a.File] = append(c.callArgByFile[a.File], i)
	}

	c.returnsByFunc = map[string][]int{}
	for i, r := range c.returns {
		ff := fileFuncKey(r.File, r.FunctionName)
		c.returnsByFunc[ff] = append(c.returnsByFunc[ff], i)
	}

	c.cfgBlockByFile = map[string][]int{}
	c.cfgBlockByFileFunc = map[string][]int{}
	c.cfgBlockByID = map[string]int{}
	for i, b := range c.cfgBlocks {
		c.cfgBlockByFile[b.File] = append(c.cfgBlockByFile[b.File], i)
		ff := fileFuncKey(b.File, b.FunctionName)
		c.cfgBlockByFileFunc[ff] = append(c.cfgBlockByFileFunc[ff], i)
		c.cfgBlockByID[blockKey(b.File, b.FunctionName, b.ID)] = i
	}

	c.cfgEdgeByFile = map[string][]int{}
	c.cfgEdgeByFileFunc = map[string][]int{}
	c.cfgEdgeBySource = map[string][]int{}
	c.cfgEdgeByTarget = map[string][]int{}
	for i, e := range c.cfgEdges {
		c.cfgEdgeByFile[e.File] = append(c.cfgEdgeByFile[e.File], i)
		ff := fileFuncKey(e.File, e.FunctionName)
		c.cfgEdgeByFileFunc[ff] = append(c.cfgEdgeByFileFunc[ff], i)
		c.cfgEdgeBySource[blockKey(e.File, e.FunctionName, e.SourceBlockID)] = append(
			c.cfgEdgeBySource[blockKey(e.File, e.FunctionName, e.SourceBlockID)], i)
		c.cfgEdgeByTarget[blockKey(e.File, e.FunctionName, e.TargetBlockID)] = append(
			c.cfgEdgeByTarget[blockKey(e.File, e.FunctionName, e.TargetBlockID)], i)
	}

	c.cfgStmtByBlockID = map[string][]int{}
	for i, st := range c.cfgStatements {
		c.cfgStmtByBlockID[st.BlockID] = append(c.cfgStmtByBlockID[st.BlockID], i)
	}
}

// buildFuncRanges computes, per file, each function's line range from
// consecutive function-definition symbol lines: a function's range
// runs from its own definition line to the line before the next
// function definition in the same file, or to the file's maximum
// known line for the last function.
func (c *Cache) buildFuncRanges() {
	c.funcRanges = map[string][]funcRange{}

	type def struct {
		name string
		line int
	}
	byFile := map[string][]def{}
	maxLine := map[string]int{}

	for _, s := range c.symbols {
		if s.Line > maxLine[s.File] {
			maxLine[s.File] = s.Line
		}
		if s.Type == model.SymbolFunction {
			byFile[s.File] = append(byFile[s.File], def{s.Name, s.Line})
		}
	}
	for _, b := range c.cfgBlocks {
		if b.EndLine > maxLine[b.File] {
			maxLine[b.File] = b.EndLine
		}
	}

	for file, defs := range byFile {
		sort.Slice(defs, func(i, j int) bool { return defs[i].line < defs[j].line })
		ranges := make([]funcRange, 0, len(defs))
		for i, d := range defs {
			end := maxLine[file]
			if i+1 < len(defs) {
				end = defs[i+1].line - 1
			}
			ranges = append(ranges, funcRange{Name: d.name, StartLine: d.line, EndLine: end})
		}
		c.funcRanges[file] = ranges
	}
}

// EnclosingFunction returns the name of the function whose computed
// range contains line in file, or ("global", false) if none does.
func (c *Cache) EnclosingFunction(file string, line int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.funcRanges[file] {
		if line >= r.StartLine && line <= r.EndLine {
			return r.Name, true
		}
	}
	return "global", false
}

// FunctionRange returns the computed [start,end] line range for
// funcName in file.
func (c *Cache) FunctionRange(file, funcName string) (start, end int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.funcRanges[file] {
		if r.Name == funcName {
			return r.StartLine, r.EndLine, true
		}
	}
	return 0, 0, false
}

func fileLineKey(file string, line int) string {
	return fmt.Sprintf("%s:%d", file, line)
}

func fileFuncKey(file, fn string) string {
	return file + "\x00" + fn
}

func blockKey(file, fn, id string) string {
	return file + "\x00" + fn + "\x00" + id
}

func estimateBytes(nSym, nAssign, nCallArg, nReturn, nBlock, nEdge, nStmt int) int64 {
	// Rough per-row footprint estimates; exact sizing is not the point —
	// this only needs to be a conservative, monotonic proxy for the
	// governance check.
	const (
		symBytes      = 96
		assignBytes   = 160
		callArgBytes  = 160
		returnBytes   = 128
		blockBytes    = 128
		edgeBytes     = 96
		stmtBytes     = 128
	)
	return int64(nSym)*symBytes + int64(nAssign)*assignBytes + int64(nCallArg)*callArgBytes +
		int64(nReturn)*returnBytes + int64(nBlock)*blockBytes + int64(nEdge)*edgeBytes +
		int64(nStmt)*stmtBytes
}

// detectSoftLimitMB derives a soft memory ceiling from the process's
// own view of available memory when the caller has not provided an
// explicit override. It is intentionally coarse: the Go runtime has
// no portable "free system RAM" call, so this uses four times the
// memory the Go runtime has obtained from the OS (runtime.MemStats.Sys)
// as a proxy, clamped to the supported range.
func detectSoftLimitMB() int {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	limit := int(stats.Sys/1024/1024) * 4
	if limit < defaultMinLimitMB {
		limit = defaultMinLimitMB
	}
	if limit > defaultMaxLimitMB {
		limit = defaultMaxLimitMB
	}
	return limit
}
