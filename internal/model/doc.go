// Package model defines the entities the taint engine reads from and
// writes to: the relational shapes handed down by the indexer (Symbol,
// Assignment, FunctionCallArg, FunctionReturn, the CFG triple) and the
// shapes the engine produces (Pattern, Sanitizer, TaintPath).
//
// Every type here is a plain value — the engine never mutates a row it
// read from the store in place. File paths on every entity are assumed
// already forward-slash normalized by the store layer.
package model
