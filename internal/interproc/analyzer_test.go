package interproc

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
	cfgBlocks      []model.CFGBlock
	cfgEdges       []model.CFGEdge
	assignments    []model.Assignment
	callArgs       []model.FunctionCallArg
	returns        []model.FunctionReturn
	objectLiterals []store.ObjectLiteral
}

func (f *fakeStore) Symbols(context.Context) ([]model.Symbol, error) { return nil, nil }
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
	return nil, nil
}
func (f *fakeStore) SQLQueries(context.Context) ([]store.SQLQuery, error)  { return nil, nil }
func (f *fakeStore) ORMQueries(context.Context) ([]store.ORMQuery, error)  { return nil, nil }
func (f *fakeStore) ReactHooks(context.Context) ([]store.ReactHook, error) { return nil, nil }
func (f *fakeStore) VariableUsage(context.Context) ([]store.VariableUsage, error) {
	return nil, nil
}
func (f *fakeStore) APIEndpoints(context.Context) ([]store.APIEndpoint, error) { return nil, nil }
func (f *fakeStore) JWTPatterns(context.Context) ([]store.JWTPattern, error)   { return nil, nil }
func (f *fakeStore) ObjectLiterals(context.Context) ([]store.ObjectLiteral, error) {
	return f.objectLiterals, nil
}
func (f *fakeStore) HasRelation(context.Context, string) (bool, error) {
	return true, nil
}
func (f *fakeStore) Close() error { return nil }

// buildGetNameCache models the S3 scenario callee:
// function getName(r) { return r.query.name } — a single block
// whose return expression mentions the parameter r.
func buildGetNameCache(t *testing.T) *cache.Cache {
	t.Helper()
	st := &fakeStore{
		cfgBlocks: []model.CFGBlock{
			{ID: "b0", File: "app.js", FunctionName: "getName", BlockType: model.BlockEntry, StartLine: 1, EndLine: 1},
			{ID: "b1", File: "app.js", FunctionName: "getName", BlockType: model.BlockExit, StartLine: 2, EndLine: 2},
		},
		cfgEdges: []model.CFGEdge{
			{ID: "e0", File: "app.js", FunctionName: "getName", SourceBlockID: "b0", TargetBlockID: "b1", EdgeType: model.EdgeNormal},
		},
		returns: []model.FunctionReturn{
			{File: "app.js", Line: 2, FunctionName: "getName", ReturnExpr: "r.query.name", ReturnVars: []string{"r"}},
		},
	}
	c := cache.New(0)
	require.NoError(t, c.Preload(context.Background(), st, nil, nil))
	return c
}

func TestAnalyzeFunctionCall_ReturnTaintedWhenParamReturned(t *testing.T) {
	c := buildGetNameCache(t)
	a := New(c, registry.FromDefaults(), 10, 100)

	eff, err := a.AnalyzeFunctionCall("app.js", "handler", "app.js", "getName",
		map[string]string{"r": "req"},
		map[string]bool{"req": true})
	require.NoError(t, err)
	assert.True(t, eff.ReturnTainted)
	assert.True(t, eff.ParamEffects["r"].Tainted)
	assert.True(t, eff.PassthroughTaint["r"])
}

func TestAnalyzeFunctionCall_MemoizesSameSignature(t *testing.T) {
	c := buildGetNameCache(t)
	a := New(c, registry.FromDefaults(), 10, 100)

	args := map[string]string{"r": "req"}
	taint := map[string]bool{"req": true}
	first, err := a.AnalyzeFunctionCall("app.js", "handler", "app.js", "getName", args, taint)
	require.NoError(t, err)
	second, err := a.AnalyzeFunctionCall("app.js", "handler", "app.js", "getName", args, taint)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyzeFunctionCall_MissingCFGIsHardFailure(t *testing.T) {
	c := buildGetNameCache(t)
	a := New(c, registry.FromDefaults(), 10, 100)

	_, err := a.AnalyzeFunctionCall("app.js", "handler", "app.js", "doesNotExist",
		map[string]string{}, map[string]bool{})
	assert.ErrorIs(t, err, ErrCalleeCFGUnavailable)
}

func TestAnalyzeFunctionCall_RecursionDepthCapReturnsEmptyEffect(t *testing.T) {
	c := buildGetNameCache(t)
	a := New(c, registry.FromDefaults(), 1, 100)
	a.depth = 1 // simulate already-at-cap

	eff, err := a.AnalyzeFunctionCall("app.js", "handler", "app.js", "getName",
		map[string]string{"r": "req"}, map[string]bool{"req": true})
	require.NoError(t, err)
	assert.False(t, eff.ReturnTainted)
}

func TestParseLegacyDispatchTargets(t *testing.T) {
	targets := ParseLegacyDispatchTargets("{ admin: deleteUser, guest: noop }")
	assert.Equal(t, []string{"deleteUser", "noop"}, targets)
}

func TestAnalyzeDynamicDispatch_FallsBackToConservativeEffectWhenUnresolved(t *testing.T) {
	c := buildGetNameCache(t)
	a := New(c, registry.FromDefaults(), 10, 100)

	eff := a.AnalyzeDynamicDispatch("app.js", "handler", "app.js", "handlers", "",
		map[string]string{"r": "req"}, map[string]bool{"req": true})
	assert.True(t, eff.ReturnTainted)
	assert.True(t, eff.ParamEffects["r"].Tainted)
}

func TestAnalyzeDynamicDispatch_ResolvesViaObjectLiterals(t *testing.T) {
	st := &fakeStore{
		cfgBlocks: []model.CFGBlock{
			{ID: "b0", File: "app.js", FunctionName: "getName", BlockType: model.BlockEntry, StartLine: 1, EndLine: 1},
			{ID: "b1", File: "app.js", FunctionName: "getName", BlockType: model.BlockExit, StartLine: 2, EndLine: 2},
		},
		cfgEdges: []model.CFGEdge{
			{ID: "e0", File: "app.js", FunctionName: "getName", SourceBlockID: "b0", TargetBlockID: "b1", EdgeType: model.EdgeNormal},
		},
		returns: []model.FunctionReturn{
			{File: "app.js", Line: 2, FunctionName: "getName", ReturnExpr: "r.query.name", ReturnVars: []string{"r"}},
		},
		objectLiterals: []store.ObjectLiteral{
			{File: "app.js", Line: 1, ObjectVar: "handlers", Property: "default", FunctionRef: "getName"},
		},
	}
	c := cache.New(0)
	require.NoError(t, c.Preload(context.Background(), st, nil, nil))

	a := New(c, registry.FromDefaults(), 10, 100)
	eff := a.AnalyzeDynamicDispatch("app.js", "handler", "app.js", "handlers", "",
		map[string]string{"r": "req"}, map[string]bool{"req": true})
	assert.True(t, eff.ReturnTainted)
}
