package cmd

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/taintgraph/engine/internal/fidelity"
	"github.com/taintgraph/engine/internal/orchestrator"
	"github.com/taintgraph/engine/internal/runconfig"
	"github.com/taintgraph/engine/internal/store"
	"github.com/taintgraph/engine/output"
)

var (
	analyzeMaxDepth        int
	analyzeUseCFG          bool
	analyzeMemoryLimitMB   int
	analyzeStrictFidelity  bool
	analyzeMaxPathsPerPair int
	analyzeFrameworks      []string
	analyzeRulesPath       string
	analyzeOutputPath      string
	analyzeNoFail          bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <store.db>",
	Short: "Run taint analysis against an indexed program store",
	Long: `analyze opens a read-only indexed program store and traces data flow
from every externally-controlled source to every dangerous sink it can reach,
emitting a single JSON result object to stdout (or --output).`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeMaxDepth, "max-depth", 5, "inter-procedural and legacy call-graph hop ceiling")
	analyzeCmd.Flags().BoolVar(&analyzeUseCFG, "use-cfg", true, "enable flow-sensitive CFG verification")
	analyzeCmd.Flags().IntVar(&analyzeMemoryLimitMB, "memory-limit-mb", 0, "cache preload soft limit (0 = auto)")
	analyzeCmd.Flags().BoolVar(&analyzeStrictFidelity, "strict-fidelity", true, "fail the run when a fidelity reconciliation fails (warnings are only logged)")
	analyzeCmd.Flags().IntVar(&analyzeMaxPathsPerPair, "max-paths-per-pair", 100, "CFG path enumeration cap per source/sink pair")
	analyzeCmd.Flags().StringSliceVar(&analyzeFrameworks, "framework", nil, "framework-specific pattern sets to layer in (flask, django, fastapi, express, koa, fastify)")
	analyzeCmd.Flags().StringVar(&analyzeRulesPath, "rules", "", "path to a pattern-override YAML file")
	analyzeCmd.Flags().StringVarP(&analyzeOutputPath, "output", "o", "", "write JSON result to this path instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeNoFail, "no-fail", false, "exit 0 even when vulnerabilities are found")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := output.NewLogger(verbosityFromFlags(cmd))

	st, err := store.OpenSQLite(args[0])
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	cfg := orchestrator.DefaultConfig()
	cfg.MaxDepth = analyzeMaxDepth
	cfg.UseCFG = analyzeUseCFG
	cfg.MemoryLimitMB = analyzeMemoryLimitMB
	cfg.StrictFidelity = analyzeStrictFidelity
	cfg.MaxPathsPerPair = analyzeMaxPathsPerPair
	cfg.Frameworks = analyzeFrameworks

	if analyzeRulesPath != "" {
		overrides, err := runconfig.Load(analyzeRulesPath)
		if err != nil {
			return fmt.Errorf("loading pattern overrides: %w", err)
		}
		if !overrides.IsEmpty() {
			cfg.RuleRegistry = overrides
		}
	}

	result := orchestrator.Run(context.Background(), st, cfg, logger)
	result.RunID = uuid.New().String()

	raw, err := orchestrator.ToJSONIndent(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	var decoded struct {
		TaintPaths []json.RawMessage `json:"taint_paths"`
	}
	_ = json.Unmarshal(raw, &decoded)
	jsonManifest := fidelity.NewOutputManifest(fidelity.StageJSONOutput, result.TotalVulnerabilities)
	jsonReceipt := fidelity.NewJSONOutputReceipt(len(decoded.TaintPaths))
	if _, err := fidelity.Reconcile(jsonManifest, jsonReceipt, cfg.StrictFidelity, logger); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	if analyzeOutputPath == "" {
		fmt.Println(string(raw))
	} else if err := os.WriteFile(analyzeOutputPath, raw, 0o644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("analysis failed: %s", result.Error)
	}
	if result.TotalVulnerabilities > 0 && !analyzeNoFail {
		os.Exit(1)
	}
	return nil
}

func verbosityFromFlags(cmd *cobra.Command) output.VerbosityLevel {
	if verboseFlag {
		return output.VerbosityVerbose
	}
	return output.VerbosityDefault
}
