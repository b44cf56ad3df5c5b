package cache

import (
	"strings"

	"github.com/taintgraph/engine/internal/model"
)

// precomputePatterns rebuilds sourceHits and sinkHits for the given
// pattern maps. It is safe to call repeatedly; the caller (Preload)
// gates re-invocation behind the pattern signature check.
func (c *Cache) precomputePatterns(sources map[string][]string, sinks map[model.PatternCategory][]string) {
	c.sourceHits = map[string][]SourceHit{}
	for bucket, patterns := range sources {
		for _, pat := range patterns {
			c.sourceHits[pat] = append(c.sourceHits[pat], c.matchSourcePattern(bucket, pat)...)
		}
	}

	c.sinkHits = map[string][]SinkHit{}
	for cat, patterns := range sinks {
		for _, pat := range patterns {
			c.sinkHits[pat] = append(c.sinkHits[pat], c.matchSinkPattern(cat, pat)...)
		}
	}

	// All ORM-query occurrences are implicit SQL sinks regardless of
	// the explicit sink pattern list.
	for _, q := range c.ormQueries {
		c.sinkHits[q.Method] = append(c.sinkHits[q.Method], SinkHit{
			File: q.File, Line: q.Line, Name: q.Method, Pattern: q.Method,
			Category: model.CategorySQL, Metadata: "orm_queries",
		})
	}
}

// matchSourcePattern finds symbol occurrences matching pat: direct
// name match, qualified-suffix match, and (for dotted patterns) a
// substring match. Only call and property symbol types are ever
// retained — never variable declarations.
func (c *Cache) matchSourcePattern(bucket, pat string) []SourceHit {
	var out []SourceHit
	dotted := strings.Contains(pat, ".")
	for _, s := range c.symbols {
		if s.Type != model.SymbolCall && s.Type != model.SymbolProperty {
			continue
		}
		matched := s.Name == pat || strings.HasSuffix(s.Name, "."+pat)
		if !matched && dotted && strings.Contains(s.Name, pat) {
			matched = true
		}
		if !matched {
			continue
		}
		out = append(out, SourceHit{
			File: s.File, Line: s.Line, Column: s.Column,
			Name: s.Name, Pattern: pat, Bucket: bucket,
		})
	}
	return out
}

// matchSinkPattern resolves sink occurrences for pat using the most
// specific relation available for cat:
//  1. SQL — sql_queries, then orm_queries, then symbols (call type only).
//  2. XSS — react_hooks (dangerous set-HTML sinks), then call-args.
//  3. command/path — call-args.
//  4. everything else — symbols (call type only).
// Chained-method patterns ("obj.method().method2") decompose into a
// base method and a final method; a match requires both calls on the
// same line in the same file.
func (c *Cache) matchSinkPattern(cat model.PatternCategory, pat string) []SinkHit {
	if base, final, chained := decomposeChainedPattern(pat); chained {
		return c.matchChainedSinkPattern(cat, pat, base, final)
	}

	switch cat {
	case model.CategorySQL:
		if hits := c.matchSQLQuerySink(cat, pat); len(hits) > 0 {
			return hits
		}
		if hits := c.matchORMQuerySink(cat, pat); len(hits) > 0 {
			return hits
		}
		return c.matchSymbolSink(cat, pat)
	case model.CategoryXSS:
		if hits := c.matchReactHookSink(cat, pat); len(hits) > 0 {
			return hits
		}
		return c.matchCallArgSink(cat, pat)
	case model.CategoryCommand, model.CategoryPath:
		return c.matchCallArgSink(cat, pat)
	default:
		return c.matchSymbolSink(cat, pat)
	}
}

func (c *Cache) matchSQLQuerySink(cat model.PatternCategory, pat string) []SinkHit {
	var out []SinkHit
	for _, q := range c.sqlQueries {
		if strings.Contains(q.Text, pat) {
			out = append(out, SinkHit{
				File: q.File, Line: q.Line, Name: pat, Pattern: pat,
				Category: cat, Metadata: "sql_queries",
			})
		}
	}
	return out
}

func (c *Cache) matchORMQuerySink(cat model.PatternCategory, pat string) []SinkHit {
	var out []SinkHit
	for _, q := range c.ormQueries {
		if q.Method == pat || strings.HasSuffix(q.Method, "."+pat) {
			out = append(out, SinkHit{
				File: q.File, Line: q.Line, Name: q.Method, Pattern: pat,
				Category: cat, Metadata: "orm_queries",
			})
		}
	}
	return out
}

func (c *Cache) matchReactHookSink(cat model.PatternCategory, pat string) []SinkHit {
	var out []SinkHit
	for _, h := range c.reactHooks {
		if h.HookName == pat || strings.Contains(h.HookName, pat) {
			out = append(out, SinkHit{
				File: h.File, Line: h.Line, Name: h.HookName, Pattern: pat,
				Category: cat, Metadata: "react_hooks",
			})
		}
	}
	return out
}

func (c *Cache) matchCallArgSink(cat model.PatternCategory, pat string) []SinkHit {
	var out []SinkHit
	for _, a := range c.callArgs {
		if a.CalleeFunction == pat || strings.HasSuffix(a.CalleeFunction, "."+pat) {
			out = append(out, SinkHit{
				File: a.File, Line: a.Line, Name: a.CalleeFunction, Pattern: pat,
				Category: cat, Metadata: "function_call_args",
			})
		}
	}
	return out
}

func (c *Cache) matchSymbolSink(cat model.PatternCategory, pat string) []SinkHit {
	var out []SinkHit
	for _, s := range c.symbols {
		if s.Type != model.SymbolCall {
			continue
		}
		if s.Name == pat || strings.HasSuffix(s.Name, "."+pat) {
			out = append(out, SinkHit{
				File: s.File, Line: s.Line, Column: s.Column, Name: s.Name, Pattern: pat,
				Category: cat, Metadata: "symbols",
			})
		}
	}
	return out
}

// matchChainedSinkPattern requires the final method call and a base
// method call on the same line in the same file.
func (c *Cache) matchChainedSinkPattern(cat model.PatternCategory, pat, base, final string) []SinkHit {
	finalHits := c.matchCallArgSink(cat, final)
	if len(finalHits) == 0 {
		finalHits = c.matchSymbolSink(cat, final)
	}
	baseLines := map[string]map[int]bool{}
	for _, a := range c.callArgs {
		if a.CalleeFunction == base || strings.HasSuffix(a.CalleeFunction, "."+base) {
			if baseLines[a.File] == nil {
				baseLines[a.File] = map[int]bool{}
			}
			baseLines[a.File][a.Line] = true
		}
	}
	for _, s := range c.symbols {
		if s.Type == model.SymbolCall && (s.Name == base || strings.HasSuffix(s.Name, "."+base)) {
			if baseLines[s.File] == nil {
				baseLines[s.File] = map[int]bool{}
			}
			baseLines[s.File][s.Line] = true
		}
	}

	var out []SinkHit
	for _, h := range finalHits {
		if baseLines[h.File] != nil && baseLines[h.File][h.Line] {
			h.Pattern = pat
			out = append(out, h)
		}
	}
	return out
}

// decomposeChainedPattern splits a pattern of the form
// "obj.method().method2" into its base method and final method. A
// pattern is chained only when it contains a literal "()" marker.
func decomposeChainedPattern(pat string) (base, final string, chained bool) {
	idx := strings.Index(pat, "()")
	if idx < 0 {
		return "", "", false
	}
	before := pat[:idx]
	after := pat[idx+2:]
	after = strings.TrimPrefix(after, ".")
	if after == "" {
		return "", "", false
	}
	parts := strings.Split(before, ".")
	base = parts[len(parts)-1]
	return base, after, true
}

// SourceHits returns the precomputed hits for a source pattern.
func (c *Cache) SourceHits(pattern string) []SourceHit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]SourceHit(nil), c.sourceHits[pattern]...)
}

// AllSourceHits returns every precomputed source hit across every
// configured pattern.
func (c *Cache) AllSourceHits() map[string][]SourceHit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]SourceHit, len(c.sourceHits))
	for k, v := range c.sourceHits {
		out[k] = append([]SourceHit(nil), v...)
	}
	return out
}

// AllSinkHits returns every precomputed sink hit across every
// configured pattern.
func (c *Cache) AllSinkHits() map[string][]SinkHit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]SinkHit, len(c.sinkHits))
	for k, v := range c.sinkHits {
		out[k] = append([]SinkHit(nil), v...)
	}
	return out
}
