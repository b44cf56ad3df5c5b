package cfg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taintgraph/engine/internal/cache"
	"github.com/taintgraph/engine/internal/model"
	"github.com/taintgraph/engine/internal/registry"
	"github.com/taintgraph/engine/internal/store"
)

type fakeStore struct {
	cfgBlocks   []model.CFGBlock
	cfgEdges    []model.CFGEdge
	assignments []model.Assignment
	callArgs    []model.FunctionCallArg
}

func (f *fakeStore) Symbols(context.Context) ([]model.Symbol, error) { return nil, nil }
func (f *fakeStore) Assignments(context.Context) ([]model.Assignment, error) {
	return f.assignments, nil
}
func (f *fakeStore) FunctionCallArgs(context.Context) ([]model.FunctionCallArg, error) {
	return f.callArgs, nil
}
func (f *fakeStore) FunctionReturns(context.Context) ([]model.FunctionReturn, error) {
	return nil, nil
}
func (f *fakeStore) CFGBlocks(context.Context) ([]model.CFGBlock, error) { return f.cfgBlocks, nil }
func (f *fakeStore) CFGEdges(context.Context) ([]model.CFGEdge, error)   { return f.cfgEdges, nil }
func (f *fakeStore) CFGBlockStatements(context.Context) ([]model.CFGBlockStatement, error) {
	return nil, nil
}
func (f *fakeStore) SQLQueries(context.Context) ([]store.SQLQuery, error)          { return nil, nil }
func (f *fakeStore) ORMQueries(context.Context) ([]store.ORMQuery, error)          { return nil, nil }
func (f *fakeStore) ReactHooks(context.Context) ([]store.ReactHook, error)         { return nil, nil }
func (f *fakeStore) VariableUsage(context.Context) ([]store.VariableUsage, error)  { return nil, nil }
func (f *fakeStore) APIEndpoints(context.Context) ([]store.APIEndpoint, error)     { return nil, nil }
func (f *fakeStore) JWTPatterns(context.Context) ([]store.JWTPattern, error)       { return nil, nil }
func (f *fakeStore) ObjectLiterals(context.Context) ([]store.ObjectLiteral, error) { return nil, nil }
func (f *fakeStore) HasRelation(context.Context, string) (bool, error)            { return false, nil }
func (f *fakeStore) Close() error                                                 { return nil }

// buildHandlerCache models: entry(1-2) -> cond(3, "flag") -> ifBody(4, secure_filename(x)) -> merge(5, cursor.execute(x)) -> exit(6)
//                                      \_________________________________________________________/
func buildHandlerCache(t *testing.T) *cache.Cache {
	t.Helper()
	st := &fakeStore{
		cfgBlocks: []model.CFGBlock{
			{ID: "b0", File: "app.py", FunctionName: "handler", BlockType: model.BlockEntry, StartLine: 1, EndLine: 2},
			{ID: "b1", File: "app.py", FunctionName: "handler", BlockType: model.BlockCondition, StartLine: 3, EndLine: 3, ConditionExpr: "flag"},
			{ID: "b2", File: "app.py", FunctionName: "handler", BlockType: model.BlockIfBody, StartLine: 4, EndLine: 4},
			{ID: "b3", File: "app.py", FunctionName: "handler", BlockType: model.BlockMerge, StartLine: 5, EndLine: 5},
			{ID: "b4", File: "app.py", FunctionName: "handler", BlockType: model.BlockExit, StartLine: 6, EndLine: 6},
		},
		cfgEdges: []model.CFGEdge{
			{ID: "e0", File: "app.py", FunctionName: "handler", SourceBlockID: "b0", TargetBlockID: "b1", EdgeType: model.EdgeNormal},
			{ID: "e1", File: "app.py", FunctionName: "handler", SourceBlockID: "b1", TargetBlockID: "b2", EdgeType: model.EdgeTrue},
			{ID: "e2", File: "app.py", FunctionName: "handler", SourceBlockID: "b1", TargetBlockID: "b3", EdgeType: model.EdgeFalse},
			{ID: "e3", File: "app.py", FunctionName: "handler", SourceBlockID: "b2", TargetBlockID: "b3", EdgeType: model.EdgeNormal},
			{ID: "e4", File: "app.py", FunctionName: "handler", SourceBlockID: "b3", TargetBlockID: "b4", EdgeType: model.EdgeNormal},
		},
		callArgs: []model.FunctionCallArg{
			{File: "app.py", Line: 4, CallerFunction: "handler", CalleeFunction: "secure_filename", ParamName: "name", ArgumentExpr: "x"},
			{File: "app.py", Line: 5, CallerFunction: "handler", CalleeFunction: "cursor.execute", ParamName: "query", ArgumentExpr: "x"},
		},
	}
	c := cache.New(0)
	require.NoError(t, c.Preload(context.Background(), st, nil, nil))
	return c
}

func baseRegistry() registry.Registry {
	return registry.FromDefaults()
}

func TestNormalizeFunctionName(t *testing.T) {
	assert.Equal(t, "createAccount", NormalizeFunctionName("accountService.createAccount"))
	assert.Equal(t, "handler", NormalizeFunctionName("handler"))
}

func TestAllPaths_EnumeratesBothBranches(t *testing.T) {
	c := buildHandlerCache(t)
	p, ok := NewPathAnalyzer(c, "app.py", "handler")
	require.True(t, ok)

	paths := p.AllPaths("b0", "b4", 100)
	assert.Len(t, paths, 2)
}

func TestVerify_SanitizedOnOneBranchStillReportsTaintOnTheOther(t *testing.T) {
	c := buildHandlerCache(t)
	p, ok := NewPathAnalyzer(c, "app.py", "handler")
	require.True(t, ok)

	res := p.Verify(1, "x", 5, baseRegistry(), 100)
	assert.True(t, res.Confirmed, "the branch that skips the if-body never sanitizes x")
	assert.Equal(t, 2, res.PathsExplored)
}

func TestVerify_NoCFGForFunctionReturnsNotOK(t *testing.T) {
	c := buildHandlerCache(t)
	_, ok := NewPathAnalyzer(c, "app.py", "missingFunction")
	assert.False(t, ok)
}
