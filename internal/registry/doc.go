// Package registry builds the immutable (sources, sinks, sanitizers)
// triple that drives discovery and propagation.
//
// A Registry is a pure value. FromDefaults, WithFrameworks, and
// WithRuleRegistry each return a new Registry; none of them mutate
// the receiver. This is what lets a Cache and every concurrent
// analysis share one Registry without locking.
package registry
