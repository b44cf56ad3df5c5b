package runconfig

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/taintgraph/engine/internal/model"
	"github.com/taintgraph/engine/internal/registry"
)

// sanitizerEntry is one sanitizer override: a function name and the
// vulnerability categories it neutralizes, by category string.
type sanitizerEntry struct {
	Name       string   `yaml:"name"`
	Categories []string `yaml:"categories"`
}

// Overrides is the parsed shape of a pattern-override YAML file.
// Every section is additive: its patterns are layered on top of the
// built-in registry, not a replacement for it.
type Overrides struct {
	Sources    map[string][]string `yaml:"sources"`
	Sinks      map[string][]string `yaml:"sinks"`
	Sanitizers []sanitizerEntry    `yaml:"sanitizers"`
}

// Load reads and parses a pattern-override file at path.
func Load(path string) (Overrides, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("reading pattern overrides: %w", err)
	}
	var out Overrides
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return Overrides{}, fmt.Errorf("parsing pattern overrides: %w", err)
	}
	return out, nil
}

// Contribute implements registry.RuleRegistry: it layers the
// override's sources/sinks/sanitizers on top of the built-in
// defaults, so a caller with no overrides file can pass an
// Overrides{} and get the defaults back unchanged.
func (o Overrides) Contribute() (map[string][]string, map[model.PatternCategory][]string, []model.Sanitizer) {
	base := registry.FromDefaults()

	sources := cloneStrMap(base.Sources())
	for bucket, pats := range o.Sources {
		sources[bucket] = append(sources[bucket], pats...)
	}

	sinks := cloneCatMap(base.Sinks())
	for catName, pats := range o.Sinks {
		cat := model.PatternCategory(catName)
		sinks[cat] = append(sinks[cat], pats...)
	}

	sanitizers := append([]model.Sanitizer(nil), base.Sanitizers()...)
	for _, s := range o.Sanitizers {
		cats := map[model.PatternCategory]struct{}{}
		for _, c := range s.Categories {
			cats[model.PatternCategory(c)] = struct{}{}
		}
		sanitizers = append(sanitizers, model.Sanitizer{FunctionName: s.Name, Categories: cats})
	}

	return sources, sinks, sanitizers
}

// IsEmpty reports whether the overrides file contributed nothing, in
// which case the caller can skip WithRuleRegistry entirely.
func (o Overrides) IsEmpty() bool {
	return len(o.Sources) == 0 && len(o.Sinks) == 0 && len(o.Sanitizers) == 0
}

func cloneStrMap(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func cloneCatMap(in map[model.PatternCategory][]string) map[model.PatternCategory][]string {
	out := make(map[model.PatternCategory][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}
