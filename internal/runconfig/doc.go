// Package runconfig loads the engine's optional pattern-override file:
// a YAML document letting a caller add project-specific sources,
// sinks, and sanitizers on top of the built-in registry without
// recompiling. It implements registry.RuleRegistry so it plugs
// straight into Registry.WithRuleRegistry.
package runconfig
