package interproc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// callSignature canonically serializes a call so that two calls with
// the same caller/callee and the same argument/taint state hash
// identically regardless of map iteration order.
func callSignature(callerFile, callerFunc, calleeFile, calleeFunc string, argsMapping map[string]string, taintState map[string]bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|%s|", callerFile, callerFunc, calleeFile, calleeFunc)

	params := make([]string, 0, len(argsMapping))
	for p := range argsMapping {
		params = append(params, p)
	}
	sort.Strings(params)
	for _, p := range params {
		fmt.Fprintf(&b, "%s=%s;", p, argsMapping[p])
	}
	b.WriteByte('|')

	vars := make([]string, 0, len(taintState))
	for v := range taintState {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	for _, v := range vars {
		fmt.Fprintf(&b, "%s=%t;", v, taintState[v])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
