package cache

import "github.com/taintgraph/engine/internal/model"

// AssignmentsInFunction returns every assignment recorded for
// (file, function), in load order.
func (c *Cache) AssignmentsInFunction(file, function string) []model.Assignment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idxs := c.assignByFileFunc[fileFuncKey(file, function)]
	out := make([]model.Assignment, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.assignments[i])
	}
	return out
}

// AssignmentsInFile returns every assignment in file, in load order.
func (c *Cache) AssignmentsInFile(file string) []model.Assignment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idxs := c.assignByFile[file]
	out := make([]model.Assignment, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.assignments[i])
	}
	return out
}

// CallArgsFromCaller returns every call-arg row whose caller is
// (file, function).
func (c *Cache) CallArgsFromCaller(file, function string) []model.FunctionCallArg {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idxs := c.callArgByCaller[fileFuncKey(file, function)]
	out := make([]model.FunctionCallArg, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.callArgs[i])
	}
	return out
}

// CallArgsInFile returns every call-arg row in file.
func (c *Cache) CallArgsInFile(file string) []model.FunctionCallArg {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idxs := c.callArgByFile[file]
	out := make([]model.FunctionCallArg, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.callArgs[i])
	}
	return out
}

// CallArgsToCallee returns every call-arg row targeting callee.
func (c *Cache) CallArgsToCallee(callee string) []model.FunctionCallArg {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idxs := c.callArgByCallee[callee]
	out := make([]model.FunctionCallArg, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.callArgs[i])
	}
	return out
}

// ReturnsOfFunction returns every return row recorded for
// (file, function).
func (c *Cache) ReturnsOfFunction(file, function string) []model.FunctionReturn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idxs := c.returnsByFunc[fileFuncKey(file, function)]
	out := make([]model.FunctionReturn, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.returns[i])
	}
	return out
}

// CFGBlocksForFunction returns every block of (file, function).
func (c *Cache) CFGBlocksForFunction(file, function string) []model.CFGBlock {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idxs := c.cfgBlockByFileFunc[fileFuncKey(file, function)]
	out := make([]model.CFGBlock, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.cfgBlocks[i])
	}
	return out
}

// CFGEdgesForFunction returns every edge of (file, function).
func (c *Cache) CFGEdgesForFunction(file, function string) []model.CFGEdge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idxs := c.cfgEdgeByFileFunc[fileFuncKey(file, function)]
	out := make([]model.CFGEdge, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.cfgEdges[i])
	}
	return out
}

// StatementsInBlock returns the statements recorded for blockID, in
// statement_order.
func (c *Cache) StatementsInBlock(blockID string) []model.CFGBlockStatement {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idxs := c.cfgStmtByBlockID[blockID]
	out := make([]model.CFGBlockStatement, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.cfgStatements[i])
	}
	return out
}

// CallSymbolsInFile returns every call-type symbol in file.
func (c *Cache) CallSymbolsInFile(file string) []model.Symbol {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idxs := c.symByFile[file]
	out := make([]model.Symbol, 0, len(idxs))
	for _, i := range idxs {
		if c.symbols[i].Type == model.SymbolCall {
			out = append(out, c.symbols[i])
		}
	}
	return out
}

// ObjectLiteralsForBase returns the object-literal properties recorded
// for objectVar in file, used to resolve dynamic-dispatch targets.
func (c *Cache) ObjectLiteralsForBase(file, objectVar string) []struct {
	Property    string
	FunctionRef string
} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []struct {
		Property    string
		FunctionRef string
	}
	for _, ol := range c.objectLiterals {
		if ol.File == file && ol.ObjectVar == objectVar {
			out = append(out, struct {
				Property    string
				FunctionRef string
			}{ol.Property, ol.FunctionRef})
		}
	}
	return out
}

// VariableUsageInFunction returns the variable_usage rows recorded for
// (file, function).
func (c *Cache) VariableUsageInFunction(file, function string) []struct {
	VarName string
	Line    int
} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []struct {
		VarName string
		Line    int
	}
	for _, u := range c.variableUsage {
		if u.File == file && u.InFunction == function {
			out = append(out, struct {
				VarName string
				Line    int
			}{u.VarName, u.Line})
		}
	}
	return out
}
