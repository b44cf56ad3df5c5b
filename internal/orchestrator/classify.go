package orchestrator

import "github.com/taintgraph/engine/internal/model"

// classify maps a sink's vulnerability category onto the engine's
// human-readable vulnerability type string.
func classify(cat model.PatternCategory) string {
	switch cat {
	case model.CategorySQL:
		return "SQL Injection"
	case model.CategoryCommand:
		return "Command Injection"
	case model.CategoryXSS:
		return "Cross-Site Scripting (XSS)"
	case model.CategoryPath:
		return "Path Traversal"
	case model.CategoryLDAP:
		return "LDAP Injection"
	case model.CategoryNoSQL:
		return "NoSQL Injection"
	default:
		return "Data Exposure"
	}
}

// severityOf buckets a vulnerability type into one of the summary's
// four severity counters. Command and SQL injection give an attacker
// the most direct route to full compromise and are rated critical;
// XSS, LDAP, and NoSQL injection are rated high; path traversal is
// rated medium; anything else (the "Data Exposure" catch-all) is low.
func severityOf(vulnType string) string {
	switch vulnType {
	case "Command Injection", "SQL Injection":
		return "critical"
	case "Cross-Site Scripting (XSS)", "LDAP Injection", "NoSQL Injection":
		return "high"
	case "Path Traversal":
		return "medium"
	default:
		return "low"
	}
}
