package orchestrator

import (
	json "github.com/goccy/go-json"
)

// ToJSON renders result as compact JSON, field names matching the
// engine's documented output shape exactly.
func ToJSON(result Result) ([]byte, error) {
	return json.Marshal(result)
}

// ToJSONIndent renders result as indented JSON for human-facing
// output (terminal, saved report file).
func ToJSONIndent(result Result) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
