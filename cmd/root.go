package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/taintgraph/engine/output"
)

var (
	verboseFlag bool
	Version     = "0.1.0"
	GitCommit   = "HEAD"
)

var rootCmd = &cobra.Command{
	Use:   "taintgraph",
	Short: "Inter-procedural taint analysis over a pre-indexed program graph",
	Long: `taintgraph traces data flow from untrusted sources to dangerous sinks
(SQL injection, XSS, command injection, path traversal, LDAP/NoSQL injection)
across an already-indexed, read-only program representation.

It does not parse source code itself: it reads symbols, assignments, call
graphs, and control-flow blocks out of a store built by an upstream indexer,
and reports the shortest tainted path for every source/sink pair it confirms.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verboseFlag, _ = cmd.Flags().GetBool("verbose") //nolint:all
		_ = godotenv.Load()

		// Show banner for help command
		if cmd.Name() == "help" || (len(os.Args) == 1 || (len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h"))) {
			noBanner, _ := cmd.Flags().GetBool("no-banner")
			logger := output.NewLogger(output.VerbosityDefault)
			if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
				output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
			} else if logger.IsTTY() && !noBanner {
				fmt.Fprintln(os.Stderr, output.GetCompactBanner(Version))
				fmt.Fprintln(os.Stderr)
			}
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-banner", false, "Disable startup banner")
}
