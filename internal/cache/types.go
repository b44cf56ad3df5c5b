package cache

import "github.com/taintgraph/engine/internal/model"

// SourceHit is a concrete source occurrence precomputed at preload
// time, ready for Discovery to hand back in O(1).
type SourceHit struct {
	File    string
	Line    int
	Column  int
	Name    string
	Pattern string
	Bucket  string
}

// SinkHit is a concrete sink occurrence precomputed at preload time,
// tagged with the vulnerability category and the relation that
// contributed it.
type SinkHit struct {
	File     string
	Line     int
	Column   int
	Name     string
	Pattern  string
	Category model.PatternCategory
	Metadata string
}

// funcRange is a function's computed line span within one file, used
// both for the path-range invariant and for call-graph precompute.
type funcRange struct {
	Name      string
	StartLine int
	EndLine   int
}
