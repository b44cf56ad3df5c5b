package discovery

import (
	"sort"
	"strings"

	"github.com/taintgraph/engine/internal/cache"
	"github.com/taintgraph/engine/internal/model"
)

// Source is a concrete source occurrence ready to seed a trace.
type Source struct {
	File    string
	Line    int
	Column  int
	Name    string
	Pattern string
	Bucket  string
}

// Sink is a concrete sink occurrence tagged with its vulnerability
// category and the relation that contributed it.
type Sink struct {
	File     string
	Line     int
	Column   int
	Name     string
	Pattern  string
	Category model.PatternCategory
	Metadata string
}

// networkIndicators are callee/name substrings that, when found near
// a file-I/O source, make it plausibly external.
var networkIndicators = []string{
	"requests.get", "requests.post", "urlopen", "urllib", "download",
	"scrape", "BeautifulSoup", "fetch", "http.Get", "http.Post",
}

const externalProximityWindow = 50

// FindSources iterates every configured source pattern and returns
// the Cache's pre-cached hits, in stable (file, line) order. A nil
// patterns map returns every precomputed hit.
func FindSources(c *cache.Cache, patterns map[string][]string) []Source {
	hits := c.AllSourceHits()
	var out []Source
	for pat, ph := range hits {
		if patterns != nil && !patternConfigured(patterns, pat) {
			continue
		}
		for _, h := range ph {
			out = append(out, Source{
				File: h.File, Line: h.Line, Column: h.Column,
				Name: h.Name, Pattern: h.Pattern, Bucket: h.Bucket,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// FindSinks iterates every configured sink pattern and returns the
// Cache's pre-cached hits, in stable (file, line) order. Implicit ORM
// sinks are always included regardless of the requested pattern map.
func FindSinks(c *cache.Cache, patterns map[model.PatternCategory][]string) []Sink {
	hits := c.AllSinkHits()
	var out []Sink
	for pat, sh := range hits {
		allowed := patterns == nil
		for _, h := range sh {
			if !allowed && patternCategoryConfigured(patterns, h.Category, pat) {
				allowed = true
			}
			if h.Metadata == "orm_queries" {
				allowed = true
			}
			if allowed {
				out = append(out, Sink{
					File: h.File, Line: h.Line, Column: h.Column,
					Name: h.Name, Pattern: h.Pattern, Category: h.Category, Metadata: h.Metadata,
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}

func patternConfigured(patterns map[string][]string, pat string) bool {
	for _, list := range patterns {
		for _, p := range list {
			if p == pat {
				return true
			}
		}
	}
	return false
}

func patternCategoryConfigured(patterns map[model.PatternCategory][]string, cat model.PatternCategory, pat string) bool {
	for _, p := range patterns[cat] {
		if p == pat {
			return true
		}
	}
	return false
}

// IsExternalSource validates whether src is plausibly externally
// controlled before it is allowed to seed a trace. Web request
// patterns, environment/CLI inputs, and scraping response accessors
// are external by definition. File-I/O sources are external only if a
// network/download/scraping call exists within ±50 lines in the same
// file. When unsure, the source is treated as not external.
func IsExternalSource(src Source, c *cache.Cache) bool {
	switch src.Bucket {
	case "network", "scraping", "env_cli", "python", "javascript":
		return true
	case "file_io":
		return hasNearbyNetworkCall(c, src.File, src.Line)
	default:
		return false
	}
}

func hasNearbyNetworkCall(c *cache.Cache, file string, line int) bool {
	for _, call := range c.CallSymbolsInFile(file) {
		if abs(call.Line-line) > externalProximityWindow {
			continue
		}
		for _, ind := range networkIndicators {
			if strings.Contains(call.Name, ind) {
				return true
			}
		}
	}
	for _, arg := range c.CallArgsInFile(file) {
		if abs(arg.Line-line) > externalProximityWindow {
			continue
		}
		for _, ind := range networkIndicators {
			if strings.Contains(arg.CalleeFunction, ind) {
				return true
			}
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
