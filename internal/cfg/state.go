package cfg

import "github.com/taintgraph/engine/internal/model"

// BlockTaintState tracks which variables are tainted or sanitized as
// of a given point in a path walk, plus the branch conditions taken
// to reach that point.
type BlockTaintState struct {
	BlockID    string
	Tainted    map[string]bool
	Sanitized  map[string]bool
	Conditions []model.Condition
}

// NewBlockTaintState returns an empty state anchored at blockID.
func NewBlockTaintState(blockID string) BlockTaintState {
	return BlockTaintState{
		BlockID:   blockID,
		Tainted:   map[string]bool{},
		Sanitized: map[string]bool{},
	}
}

// IsTainted reports whether varName is currently tainted and not
// sanitized.
func (s BlockTaintState) IsTainted(varName string) bool {
	return s.Tainted[varName] && !s.Sanitized[varName]
}

// AddTaint marks varName as tainted, clearing any prior sanitization.
func (s BlockTaintState) AddTaint(varName string) {
	s.Tainted[varName] = true
	delete(s.Sanitized, varName)
}

// Sanitize marks varName as sanitized. The taint bit
// itself is left set: IsTainted is the projection that matters, and a
// later re-taint (AddTaint) clears the sanitized bit again.
func (s BlockTaintState) Sanitize(varName string) {
	s.Sanitized[varName] = true
}

// Copy returns an independent deep copy of s.
func (s BlockTaintState) Copy() BlockTaintState {
	out := BlockTaintState{
		BlockID:   s.BlockID,
		Tainted:   make(map[string]bool, len(s.Tainted)),
		Sanitized: make(map[string]bool, len(s.Sanitized)),
	}
	for k, v := range s.Tainted {
		out.Tainted[k] = v
	}
	for k, v := range s.Sanitized {
		out.Sanitized[k] = v
	}
	out.Conditions = append(out.Conditions, s.Conditions...)
	return out
}

// Merge combines two states arriving at the same join-point block
// conservatively: a variable is tainted if it is tainted on either
// incoming path, and sanitized only if it is sanitized on every
// incoming path that leaves it tainted.
func Merge(blockID string, incoming ...BlockTaintState) BlockTaintState {
	out := NewBlockTaintState(blockID)
	if len(incoming) == 0 {
		return out
	}
	for _, in := range incoming {
		for v, tainted := range in.Tainted {
			if tainted {
				out.Tainted[v] = true
			}
		}
	}
	for v := range out.Tainted {
		sanitizedEverywhere := true
		for _, in := range incoming {
			if in.Tainted[v] && !in.Sanitized[v] {
				sanitizedEverywhere = false
				break
			}
		}
		if sanitizedEverywhere {
			out.Sanitized[v] = true
		}
	}
	for _, in := range incoming {
		out.Conditions = append(out.Conditions, in.Conditions...)
	}
	return out
}
