package propagation

import (
	"github.com/taintgraph/engine/internal/cache"
	"github.com/taintgraph/engine/internal/registry"
)

// sanitizerBetween reports whether a call to a registered sanitizer
// appears on a line strictly between lo and hi (exclusive) in file.
func sanitizerBetween(c *cache.Cache, reg registry.Registry, file string, lo, hi int) bool {
	if lo > hi {
		lo, hi = hi, lo
	}
	for _, ca := range c.CallArgsInFile(file) {
		if ca.Line > lo && ca.Line < hi && reg.IsSanitizer(ca.CalleeFunction) {
			return true
		}
	}
	for _, s := range c.CallSymbolsInFile(file) {
		if s.Line > lo && s.Line < hi && reg.IsSanitizer(s.Name) {
			return true
		}
	}
	return false
}
