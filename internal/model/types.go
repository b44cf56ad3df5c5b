package model

import json "github.com/goccy/go-json"

// SyntheticReturnVar is the synthetic variable name propagation and
// inter-procedural analysis use to track a function's return value as
// if it were just another tainted variable.
const SyntheticReturnVar = "__return__"

// SymbolType enumerates the kinds of symbols the indexer records.
// Only Call and Property symbols are ever treated as source/sink
// occurrences; Function symbols anchor function line ranges.
type SymbolType string

const (
	SymbolFunction  SymbolType = "function"
	SymbolCall      SymbolType = "call"
	SymbolProperty  SymbolType = "property"
	SymbolVariable  SymbolType = "symbol"
	SymbolDecorator SymbolType = "decorator"
)

// Symbol is a located occurrence of a name in the indexed source.
type Symbol struct {
	File   string
	Name   string
	Type   SymbolType
	Line   int
	Column int
}

// Assignment is a single `target_var = source_expr` statement.
// SourceVars is reconstructed by the store from a junction relation,
// never by parsing SourceExpr.
type Assignment struct {
	File       string
	Line       int
	TargetVar  string
	SourceExpr string
	SourceVars []string
	InFunction string // "global" for module-level assignments
}

// FunctionCallArg is one argument position at one call site, joining
// the caller's scope to the callee's parameter.
type FunctionCallArg struct {
	File           string
	Line           int
	CallerFunction string
	CalleeFunction string
	ParamName      string
	ArgumentExpr   string
}

// FunctionReturn is a single `return return_expr` statement.
type FunctionReturn struct {
	File         string
	Line         int
	FunctionName string
	ReturnExpr   string
	ReturnVars   []string
}

// BlockType enumerates the CFG block kinds the indexer emits.
type BlockType string

const (
	BlockEntry         BlockType = "entry"
	BlockExit          BlockType = "exit"
	BlockCondition     BlockType = "condition"
	BlockLoopCondition BlockType = "loop_condition"
	BlockLoopBody      BlockType = "loop_body"
	BlockIfBody        BlockType = "if_body"
	BlockElseBody      BlockType = "else_body"
	BlockMerge         BlockType = "merge"
	BlockTryBody       BlockType = "try_body"
	BlockCatchClause   BlockType = "catch_clause"
	BlockFinallyBody   BlockType = "finally_body"
	BlockCaseBody      BlockType = "case_body"
	BlockSwitchExit    BlockType = "switch_exit"
	BlockPlain         BlockType = "block"
)

// CFGBlock is one basic block of one function's control flow graph.
// IDs are unique only within the enclosing function.
type CFGBlock struct {
	ID            string
	File          string
	FunctionName  string
	BlockType     BlockType
	StartLine     int
	EndLine       int
	ConditionExpr string
}

// EdgeType enumerates the control transfers the indexer records
// between CFG blocks.
type EdgeType string

const (
	EdgeNormal       EdgeType = "normal"
	EdgeTrue         EdgeType = "true"
	EdgeFalse        EdgeType = "false"
	EdgeEnterLoop    EdgeType = "enter_loop"
	EdgeContinueLoop EdgeType = "continue_loop"
	EdgeExitLoop     EdgeType = "exit_loop"
	EdgeBreak        EdgeType = "break"
	EdgeContinue     EdgeType = "continue"
	EdgeException    EdgeType = "exception"
	EdgeThrow        EdgeType = "throw"
	EdgeCase         EdgeType = "case"
	EdgeDefault      EdgeType = "default"
	EdgeNoCaseMatch  EdgeType = "no_case_match"
)

// CFGEdge connects two blocks of the same function.
type CFGEdge struct {
	ID             string
	File           string
	FunctionName   string
	SourceBlockID  string
	TargetBlockID  string
	EdgeType       EdgeType
}

// StatementType enumerates the kinds of statements the indexer places
// inside a CFG block. These exist only to locate calls/returns/
// assignments within a block — never to re-derive their semantics.
type StatementType string

const (
	StatementCall   StatementType = "call"
	StatementReturn StatementType = "return"
	StatementAssign StatementType = "assign"
)

// CFGBlockStatement locates one statement inside one block, ordered
// relative to its siblings.
type CFGBlockStatement struct {
	BlockID        string
	StatementType  StatementType
	Line           int
	StatementText  string
	StatementOrder int
}

// PatternCategory is a vulnerability class a pattern belongs to.
type PatternCategory string

const (
	CategorySQL     PatternCategory = "sql"
	CategoryCommand PatternCategory = "command"
	CategoryXSS     PatternCategory = "xss"
	CategoryPath    PatternCategory = "path"
	CategoryLDAP    PatternCategory = "ldap"
	CategoryNoSQL   PatternCategory = "nosql"
)

// Pattern is one source or sink string, tagged with the vulnerability
// category it contributes to.
type Pattern struct {
	PatternString string
	Category      PatternCategory
}

// Sanitizer names a function whose invocation on a tainted argument is
// assumed to neutralize taint for the categories it covers.
type Sanitizer struct {
	FunctionName string
	Categories   map[PatternCategory]struct{}
}

// Covers reports whether the sanitizer neutralizes the given category.
func (s Sanitizer) Covers(cat PatternCategory) bool {
	_, ok := s.Categories[cat]
	return ok
}

// SourceRef locates the source end of a taint path.
type SourceRef struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column,omitempty"`
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

// SinkRef locates the sink end of a taint path.
type SinkRef struct {
	File     string         `json:"file"`
	Line     int            `json:"line"`
	Column   int            `json:"column,omitempty"`
	Name     string         `json:"name"`
	Pattern  string         `json:"pattern"`
	Category PatternCategory `json:"category"`
	Metadata string         `json:"metadata,omitempty"`
}

// StepKind tags one node of a taint path's trace.
type StepKind string

const (
	StepSource       StepKind = "source"
	StepPropagation  StepKind = "propagation"
	StepArgumentPass StepKind = "argument_pass"
	StepReturnFlow   StepKind = "return_flow"
	StepSink         StepKind = "sink"
)

// Step is one node in a TaintPath's ordered trace.
type Step struct {
	Kind   StepKind `json:"kind"`
	File   string   `json:"file"`
	Line   int      `json:"line"`
	Detail string   `json:"detail"`
}

// Condition records one control-flow branch a flow-sensitive path
// took on its way from source to sink.
type Condition struct {
	Block     string `json:"block"`
	Condition string `json:"condition"`
	Type      string `json:"type"`
	Line      int    `json:"line"`
}

// TaintPath is one confirmed (or candidate) flow from a source to a
// sink, the engine's output entity.
type TaintPath struct {
	Source              SourceRef   `json:"source"`
	Sink                SinkRef     `json:"sink"`
	Steps               []Step      `json:"path"`
	VulnerabilityType   string      `json:"vulnerability_type"`
	FlowSensitive       bool        `json:"flow_sensitive"`
	Conditions          []Condition `json:"conditions"`
	TaintedVarsAtSink   []string    `json:"tainted_vars_at_sink"`
	SanitizedVarsAtSink []string    `json:"sanitized_vars_at_sink"`
}

// PathLength is the number of steps in the trace; used for
// deduplication (shortest path wins per source/sink location pair).
func (p TaintPath) PathLength() int {
	return len(p.Steps)
}

// taintPathJSON mirrors TaintPath's exported fields plus the derived
// path_length the output shape requires.
type taintPathJSON struct {
	Source              SourceRef   `json:"source"`
	Sink                SinkRef     `json:"sink"`
	Steps               []Step      `json:"path"`
	PathLength          int         `json:"path_length"`
	VulnerabilityType   string      `json:"vulnerability_type"`
	FlowSensitive       bool        `json:"flow_sensitive"`
	Conditions          []Condition `json:"conditions"`
	TaintedVarsAtSink   []string    `json:"tainted_vars_at_sink"`
	SanitizedVarsAtSink []string    `json:"sanitized_vars_at_sink"`
}

// MarshalJSON renders the derived path_length alongside the path's own fields.
func (p TaintPath) MarshalJSON() ([]byte, error) {
	return json.Marshal(taintPathJSON{
		Source:              p.Source,
		Sink:                p.Sink,
		Steps:               p.Steps,
		PathLength:          p.PathLength(),
		VulnerabilityType:   p.VulnerabilityType,
		FlowSensitive:       p.FlowSensitive,
		Conditions:          p.Conditions,
		TaintedVarsAtSink:   p.TaintedVarsAtSink,
		SanitizedVarsAtSink: p.SanitizedVarsAtSink,
	})
}

// FuncKey identifies a function by the file it lives in and its
// (possibly qualified) name.
type FuncKey struct {
	File string
	Name string
}
