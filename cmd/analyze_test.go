package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeCmd_ShortMatchesHelpListing(t *testing.T) {
	assert.Equal(t, "Run taint analysis against an indexed program store", analyzeCmd.Short)
}

func TestAnalyzeCmd_RequiresExactlyOneArg(t *testing.T) {
	assert.NoError(t, analyzeCmd.Args(analyzeCmd, []string{"store.db"}))
	assert.Error(t, analyzeCmd.Args(analyzeCmd, []string{}))
	assert.Error(t, analyzeCmd.Args(analyzeCmd, []string{"a.db", "b.db"}))
}

func TestAnalyzeCmd_RegisteredUnderRoot(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "analyze" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeCmd_DefaultFlags(t *testing.T) {
	depth, err := analyzeCmd.Flags().GetInt("max-depth")
	assert.NoError(t, err)
	assert.Equal(t, 5, depth)

	useCFG, err := analyzeCmd.Flags().GetBool("use-cfg")
	assert.NoError(t, err)
	assert.True(t, useCFG)

	strict, err := analyzeCmd.Flags().GetBool("strict-fidelity")
	assert.NoError(t, err)
	assert.True(t, strict)
}
