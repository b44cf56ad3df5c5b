package cache

import "github.com/taintgraph/engine/internal/model"

// precomputeCallGraph builds the "{file}:{name}" -> []calleeName
// accelerator. For each function symbol, its line range (from
// funcRanges) bounds the set of `call` symbols attributed to it. This
// graph is an accelerator only — authoritative call data lives in the
// call-args relation.
func (c *Cache) precomputeCallGraph() {
	c.callGraph = map[string][]string{}

	callsByFile := map[string][]model.Symbol{}
	for _, s := range c.symbols {
		if s.Type == model.SymbolCall {
			callsByFile[s.File] = append(callsByFile[s.File], s)
		}
	}

	for file, ranges := range c.funcRanges {
		for _, r := range ranges {
			key := file + ":" + r.Name
			seen := map[string]bool{}
			var callees []string
			for _, call := range callsByFile[file] {
				if call.Line >= r.StartLine && call.Line <= r.EndLine {
					if !seen[call.Name] {
						seen[call.Name] = true
						callees = append(callees, call.Name)
					}
				}
			}
			c.callGraph[key] = callees
		}
	}
}

// CallGraph returns the precomputed callee-name lists keyed by
// "{file}:{name}".
func (c *Cache) CallGraph() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]string, len(c.callGraph))
	for k, v := range c.callGraph {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Callees returns the callee names recorded for "{file}:{name}".
func (c *Cache) Callees(file, name string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.callGraph[file+":"+name]...)
}
