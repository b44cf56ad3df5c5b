package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taintgraph/engine/internal/model"
	"github.com/taintgraph/engine/internal/store"
)

// fakeStore is an in-memory store.Store used only by this package's
// tests; it never touches the filesystem.
type fakeStore struct {
	symbols     []model.Symbol
	assignments []model.Assignment
	callArgs    []model.FunctionCallArg
	returns     []model.FunctionReturn
	cfgBlocks   []model.CFGBlock
	cfgEdges    []model.CFGEdge
	cfgStmts    []model.CFGBlockStatement
	ormQueries  []store.ORMQuery
}

func (f *fakeStore) Symbols(context.Context) ([]model.Symbol, error) { return f.symbols, nil }
func (f *fakeStore) Assignments(context.Context) ([]model.Assignment, error) {
	return f.assignments, nil
}
func (f *fakeStore) FunctionCallArgs(context.Context) ([]model.FunctionCallArg, error) {
	return f.callArgs, nil
}
func (f *fakeStore) FunctionReturns(context.Context) ([]model.FunctionReturn, error) {
	return f.returns, nil
}
func (f *fakeStore) CFGBlocks(context.Context) ([]model.CFGBlock, error) { return f.cfgBlocks, nil }
func (f *fakeStore) CFGEdges(context.Context) ([]model.CFGEdge, error)   { return f.cfgEdges, nil }
func (f *fakeStore) CFGBlockStatements(context.Context) ([]model.CFGBlockStatement, error) {
	return f.cfgStmts, nil
}
func (f *fakeStore) SQLQueries(context.Context) ([]store.SQLQuery, error) { return nil, nil }
func (f *fakeStore) ORMQueries(context.Context) ([]store.ORMQuery, error) { return f.ormQueries, nil }
func (f *fakeStore) ReactHooks(context.Context) ([]store.ReactHook, error) { return nil, nil }
func (f *fakeStore) VariableUsage(context.Context) ([]store.VariableUsage, error) { return nil, nil }
func (f *fakeStore) APIEndpoints(context.Context) ([]store.APIEndpoint, error)    { return nil, nil }
func (f *fakeStore) JWTPatterns(context.Context) ([]store.JWTPattern, error)      { return nil, nil }
func (f *fakeStore) ObjectLiterals(context.Context) ([]store.ObjectLiteral, error) { return nil, nil }
func (f *fakeStore) HasRelation(context.Context, string) (bool, error)            { return false, nil }
func (f *fakeStore) Close() error                                                 { return nil }

func sampleStore() *fakeStore {
	return &fakeStore{
		symbols: []model.Symbol{
			{File: "app.py", Name: "handler", Type: model.SymbolFunction, Line: 1},
			{File: "app.py", Name: "request.args.get", Type: model.SymbolCall, Line: 2},
			{File: "app.py", Name: "cursor.execute", Type: model.SymbolCall, Line: 4},
			{File: "app.py", Name: "other", Type: model.SymbolFunction, Line: 10},
		},
		assignments: []model.Assignment{
			{File: "app.py", Line: 2, TargetVar: "x", SourceExpr: "request.args.get('u')", InFunction: "handler"},
		},
		callArgs: []model.FunctionCallArg{
			{File: "app.py", Line: 4, CallerFunction: "handler", CalleeFunction: "cursor.execute", ParamName: "query", ArgumentExpr: "x"},
		},
	}
}

func TestPreload_BuildsFuncRangesAndEnclosingFunction(t *testing.T) {
	c := New(0)
	err := c.Preload(context.Background(), sampleStore(),
		map[string][]string{"python": {"request.args.get"}},
		map[model.PatternCategory][]string{model.CategorySQL: {"cursor.execute"}})
	require.NoError(t, err)

	fn, ok := c.EnclosingFunction("app.py", 4)
	assert.True(t, ok)
	assert.Equal(t, "handler", fn)

	start, end, ok := c.FunctionRange("app.py", "handler")
	require.True(t, ok)
	assert.Equal(t, 1, start)
	assert.Equal(t, 9, end)
}

func TestPreload_PrecomputesSourceAndSinkHits(t *testing.T) {
	c := New(0)
	err := c.Preload(context.Background(), sampleStore(),
		map[string][]string{"python": {"request.args.get"}},
		map[model.PatternCategory][]string{model.CategorySQL: {"cursor.execute"}})
	require.NoError(t, err)

	hits := c.SourceHits("request.args.get")
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].Line)

	sinks := c.AllSinkHits()
	require.Contains(t, sinks, "cursor.execute")
	assert.Equal(t, model.CategorySQL, sinks["cursor.execute"][0].Category)
}

func TestPreload_ORMQueriesAreImplicitSQLSinks(t *testing.T) {
	st := sampleStore()
	st.ormQueries = []store.ORMQuery{{File: "app.py", Line: 6, Method: "User.objects.raw", InFunc: "handler"}}

	c := New(0)
	err := c.Preload(context.Background(), st, nil, nil)
	require.NoError(t, err)

	sinks := c.AllSinkHits()
	require.Contains(t, sinks, "User.objects.raw")
	assert.Equal(t, model.CategorySQL, sinks["User.objects.raw"][0].Category)
	assert.Equal(t, "orm_queries", sinks["User.objects.raw"][0].Metadata)
}

func TestPreload_CallGraphRangeContainment(t *testing.T) {
	c := New(0)
	err := c.Preload(context.Background(), sampleStore(), nil, nil)
	require.NoError(t, err)

	callees := c.Callees("app.py", "handler")
	assert.Contains(t, callees, "request.args.get")
	assert.Contains(t, callees, "cursor.execute")
	assert.NotContains(t, callees, "other")
}

func TestPreload_SignatureStableAcrossKeyOrdering(t *testing.T) {
	sources1 := map[string][]string{"python": {"a", "b"}, "javascript": {"c"}}
	sources2 := map[string][]string{"javascript": {"c"}, "python": {"b", "a"}}
	sinks := map[model.PatternCategory][]string{model.CategorySQL: {"x"}}

	sig1 := computeSignature(sources1, sinks)
	sig2 := computeSignature(sources2, sinks)
	assert.Equal(t, sig1, sig2)

	sig3 := computeSignature(map[string][]string{"python": {"a"}}, sinks)
	assert.NotEqual(t, sig1, sig3)
}

func TestPreload_IsIdempotentWithoutPatternChange(t *testing.T) {
	c := New(0)
	sources := map[string][]string{"python": {"request.args.get"}}
	sinks := map[model.PatternCategory][]string{model.CategorySQL: {"cursor.execute"}}

	require.NoError(t, c.Preload(context.Background(), sampleStore(), sources, sinks))
	first := c.AllSourceHits()

	require.NoError(t, c.Preload(context.Background(), sampleStore(), sources, sinks))
	second := c.AllSourceHits()

	assert.Equal(t, first, second)
}
