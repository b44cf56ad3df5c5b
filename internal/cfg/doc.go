// Package cfg implements flow-sensitive verification over one
// function's control flow graph: per-block taint state with
// conservative join-point merging, bounded acyclic path enumeration
// between a source block and a sink block, and per-path taint
// simulation that replays sanitizer and assignment effects in block
// order.
//
// Function names require a small normalization step at this
// boundary: call-args and assignments carry the qualified name
// ("accountService.createAccount") while the CFG relation is keyed by
// the method stem ("createAccount"). That split is deliberate and is
// preserved here, not "fixed" — normalization happens only when
// looking up a function's CFG.
package cfg
