// Package propagation implements flow-insensitive intra-procedural
// taint tracing: given one source occurrence and its enclosing
// function, it computes the set of tainted (function, variable)
// elements reachable purely through the assignment, call-arg, and
// return relations, then emits candidate taint paths to every sink
// those elements can reach.
//
// When a candidate path's sink lies in a different function from the
// propagated taint, the trace hands off to the inter-procedural
// analyzer for a function-effect summary rather than inlining the
// callee.
package propagation
