package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taintgraph/engine/internal/cache"
	"github.com/taintgraph/engine/internal/model"
	"github.com/taintgraph/engine/internal/store"
)

type fakeStore struct {
	symbols  []model.Symbol
	callArgs []model.FunctionCallArg
}

func (f *fakeStore) Symbols(context.Context) ([]model.Symbol, error) { return f.symbols, nil }
func (f *fakeStore) Assignments(context.Context) ([]model.Assignment, error) { return nil, nil }
func (f *fakeStore) FunctionCallArgs(context.Context) ([]model.FunctionCallArg, error) {
	return f.callArgs, nil
}
func (f *fakeStore) FunctionReturns(context.Context) ([]model.FunctionReturn, error) { return nil, nil }
func (f *fakeStore) CFGBlocks(context.Context) ([]model.CFGBlock, error)             { return nil, nil }
func (f *fakeStore) CFGEdges(context.Context) ([]model.CFGEdge, error)               { return nil, nil }
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

func buildCache(t *testing.T, st *fakeStore, sources map[string][]string, sinks map[model.PatternCategory][]string) *cache.Cache {
	t.Helper()
	c := cache.New(0)
	require.NoError(t, c.Preload(context.Background(), st, sources, sinks))
	return c
}

func TestFindSources_StableOrderByFileLine(t *testing.T) {
	st := &fakeStore{symbols: []model.Symbol{
		{File: "b.py", Name: "request.args.get", Type: model.SymbolCall, Line: 3},
		{File: "a.py", Name: "request.args.get", Type: model.SymbolCall, Line: 7},
		{File: "a.py", Name: "request.args.get", Type: model.SymbolCall, Line: 2},
	}}
	c := buildCache(t, st, map[string][]string{"python": {"request.args.get"}}, nil)

	got := FindSources(c, nil)
	require.Len(t, got, 3)
	assert.Equal(t, "a.py", got[0].File)
	assert.Equal(t, 2, got[0].Line)
	assert.Equal(t, "a.py", got[1].File)
	assert.Equal(t, 7, got[1].Line)
	assert.Equal(t, "b.py", got[2].File)
}

func TestIsExternalSource(t *testing.T) {
	c := buildCache(t, &fakeStore{}, nil, nil)

	assert.True(t, IsExternalSource(Source{Bucket: "python"}, c))
	assert.True(t, IsExternalSource(Source{Bucket: "network"}, c))
	assert.False(t, IsExternalSource(Source{Bucket: "file_io", File: "x.py", Line: 1}, c))
}

func TestIsExternalSource_FileIOWithNearbyNetworkCall(t *testing.T) {
	st := &fakeStore{symbols: []model.Symbol{
		{File: "scrape.py", Name: "requests.get", Type: model.SymbolCall, Line: 5},
	}}
	c := buildCache(t, st, nil, nil)

	src := Source{Bucket: "file_io", File: "scrape.py", Line: 20}
	assert.True(t, IsExternalSource(src, c))

	farSrc := Source{Bucket: "file_io", File: "scrape.py", Line: 200}
	assert.False(t, IsExternalSource(farSrc, c))
}
