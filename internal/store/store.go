package store

import (
	"context"

	"github.com/taintgraph/engine/internal/model"
)

// SQLQuery is one row of the sql_queries relation: a literal SQL
// statement text observed at a call site, the most specific relation
// the Cache consults for SQL-category sink matches.
type SQLQuery struct {
	File    string
	Line    int
	Text    string
	InFunc  string
}

// ORMQuery is one row of the orm_queries relation. Every ORM query
// occurrence is treated as an implicit SQL sink regardless of the
// configured sink pattern list.
type ORMQuery struct {
	File    string
	Line    int
	Method  string
	InFunc  string
}

// ReactHook is one row of the react_hooks relation, consulted first
// for XSS-category sinks that set HTML via a UI hook (e.g.
// `dangerouslySetInnerHTML`-style assignments).
type ReactHook struct {
	File      string
	Line      int
	HookName  string
	Arg       string
	InFunc    string
}

// VariableUsage is one row of the variable_usage relation: a
// reference to a variable name, independent of assignment. The Cache
// loads it and serves it through VariableUsageInFunction; the
// inter-procedural analyzer's passthrough check does not read it.
type VariableUsage struct {
	File       string
	Line       int
	VarName    string
	InFunction string
}

// APIEndpoint is one row of the api_endpoints relation.
type APIEndpoint struct {
	File   string
	Line   int
	Method string
	Route  string
}

// JWTPattern is one row of the jwt_patterns relation.
type JWTPattern struct {
	File string
	Line int
	Kind string
}

// ObjectLiteral is one row of the optional object_literals relation:
// a property of an object-literal expression whose value is itself a
// function reference, used to resolve dynamic-dispatch call targets.
type ObjectLiteral struct {
	File        string
	Line        int
	ObjectVar   string
	Property    string
	FunctionRef string
}

// Store is the read-only view over the indexed program representation
// the engine consumes. Implementations may back it with any storage;
// the engine treats every method as a bulk, one-shot read performed
// during Cache preload.
type Store interface {
	Symbols(ctx context.Context) ([]model.Symbol, error)
	Assignments(ctx context.Context) ([]model.Assignment, error)
	FunctionCallArgs(ctx context.Context) ([]model.FunctionCallArg, error)
	FunctionReturns(ctx context.Context) ([]model.FunctionReturn, error)
	CFGBlocks(ctx context.Context) ([]model.CFGBlock, error)
	CFGEdges(ctx context.Context) ([]model.CFGEdge, error)
	CFGBlockStatements(ctx context.Context) ([]model.CFGBlockStatement, error)

	SQLQueries(ctx context.Context) ([]SQLQuery, error)
	ORMQueries(ctx context.Context) ([]ORMQuery, error)
	ReactHooks(ctx context.Context) ([]ReactHook, error)
	VariableUsage(ctx context.Context) ([]VariableUsage, error)
	APIEndpoints(ctx context.Context) ([]APIEndpoint, error)
	JWTPatterns(ctx context.Context) ([]JWTPattern, error)

	// ObjectLiterals is optional in the schema contract; a nil slice
	// with a nil error is returned both when the relation is absent and
	// when it is empty, so HasRelation tells the two apart.
	ObjectLiterals(ctx context.Context) ([]ObjectLiteral, error)

	// HasRelation probes presence of an optional table once at
	// preload time, per the schema contract in the engine's input
	// description.
	HasRelation(ctx context.Context, name string) (bool, error)

	Close() error
}
