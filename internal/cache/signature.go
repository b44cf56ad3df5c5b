package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/taintgraph/engine/internal/model"
)

// computeSignature produces a stable signature over the source and
// sink pattern maps: normalized category/bucket -> sorted patterns,
// serialized canonically, then hashed. Two calls with the same maps
// (up to key/pattern ordering) always produce the same signature;
// different maps almost certainly produce different ones.
func computeSignature(sources map[string][]string, sinks map[model.PatternCategory][]string) string {
	var b strings.Builder

	b.WriteString("sources:")
	for _, bucket := range sortedKeys(sources) {
		b.WriteString(bucket)
		b.WriteByte('=')
		patterns := append([]string(nil), sources[bucket]...)
		sort.Strings(patterns)
		b.WriteString(strings.Join(patterns, ","))
		b.WriteByte(';')
	}

	b.WriteString("sinks:")
	var sinkCats []string
	for cat := range sinks {
		sinkCats = append(sinkCats, string(cat))
	}
	sort.Strings(sinkCats)
	for _, cat := range sinkCats {
		b.WriteString(cat)
		b.WriteByte('=')
		patterns := append([]string(nil), sinks[model.PatternCategory(cat)]...)
		sort.Strings(patterns)
		b.WriteString(strings.Join(patterns, ","))
		b.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
