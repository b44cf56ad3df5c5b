// Package interproc computes function effect summaries instead of
// inlining a callee's control flow graph into its caller: given a
// caller's tainted variables and an argument mapping, it reports
// whether the callee's return value ends up tainted, what happens to
// each parameter, and whether any parameter passes through to the
// return value unsanitized.
//
// Effects are memoized on a canonical signature of the call so that
// repeated calls with the same taint state are computed once.
// Recursion depth is capped; a callee with no CFG data is a hard
// failure rather than a silent "unmodified" effect, since the latter
// would quietly extinguish a real taint flow.
package interproc
