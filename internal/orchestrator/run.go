package orchestrator

import (
	"context"
	"fmt"

	"github.com/taintgraph/engine/internal/cache"
	"github.com/taintgraph/engine/internal/discovery"
	"github.com/taintgraph/engine/internal/fidelity"
	"github.com/taintgraph/engine/internal/interproc"
	"github.com/taintgraph/engine/internal/model"
	"github.com/taintgraph/engine/internal/propagation"
	"github.com/taintgraph/engine/internal/registry"
	"github.com/taintgraph/engine/internal/store"
	"github.com/taintgraph/engine/output"
)

// Run executes one full analysis: preload, discover, trace every
// externally-controlled source, deduplicate, classify, and assemble
// the result. logger may be nil.
func Run(ctx context.Context, st store.Store, cfg Config, logger *output.Logger) Result {
	reg := registry.FromDefaults().WithFrameworks(cfg.Frameworks).WithRuleRegistry(cfg.RuleRegistry)

	c := cache.New(cfg.MemoryLimitMB)
	if err := c.Preload(ctx, st, reg.Sources(), reg.Sinks()); err != nil {
		return failureResult(fmt.Sprintf("preloading index: %v", err))
	}

	sources := discovery.FindSources(c, cfg.SourcePatterns)
	sinks := discovery.FindSinks(c, cfg.SinkPatterns)

	discoveryManifest := fidelity.NewDiscoveryManifest(len(sources), len(sinks))
	if _, err := fidelity.Reconcile(discoveryManifest, fidelity.Receipt{}, cfg.StrictFidelity, logger); err != nil {
		return failureResult(err.Error())
	}

	ip := interproc.New(c, reg, cfg.MaxDepth, cfg.MaxPathsPerPair)
	tracer := propagation.NewTracer(c, reg, ip, propagation.Options{
		MaxDepth: cfg.MaxDepth,
		UseCFG:   cfg.UseCFG,
		MaxPaths: cfg.MaxPathsPerPair,
	})

	var allPaths []model.TaintPath
	var diagnostics []string
	sourcesChecked := 0

	for _, src := range sources {
		if !discovery.IsExternalSource(src, c) {
			continue
		}
		if _, ok := c.EnclosingFunction(src.File, src.Line); !ok {
			continue
		}
		sourcesChecked++

		paths, err := traceOneSource(tracer, src, sinks)
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("%s:%d: %v", src.File, src.Line, err))
			if logger != nil {
				logger.Warning("skipping source %s:%d: %v", src.File, src.Line, err)
			}
			continue
		}
		allPaths = append(allPaths, paths...)
	}

	sinksAnalyzed := 0
	if sourcesChecked > 0 {
		sinksAnalyzed = len(sinks)
	}
	analysisManifest := fidelity.NewAnalysisManifest(sinksAnalyzed, sourcesChecked)
	analysisReceipt := fidelity.NewAnalysisReceipt(sinksAnalyzed)
	if _, err := fidelity.Reconcile(analysisManifest, analysisReceipt, cfg.StrictFidelity, logger); err != nil {
		return failureResult(err.Error())
	}

	preDedup := len(allPaths)
	deduped := dedupAcrossRun(allPaths)

	dedupManifest := fidelity.NewDedupManifest(preDedup, len(deduped))
	if _, err := fidelity.Reconcile(dedupManifest, fidelity.Receipt{}, cfg.StrictFidelity, logger); err != nil {
		return failureResult(err.Error())
	}

	byType := map[string]int{}
	summary := Summary{ByType: byType}
	for i := range deduped {
		deduped[i].VulnerabilityType = classify(deduped[i].Sink.Category)
		byType[deduped[i].VulnerabilityType]++

		switch severityOf(deduped[i].VulnerabilityType) {
		case "critical":
			summary.CriticalCount++
		case "high":
			summary.HighCount++
		case "medium":
			summary.MediumCount++
		default:
			summary.LowCount++
		}
	}
	summary.TotalCount = len(deduped)

	return Result{
		Success:               true,
		SourcesFound:          len(sources),
		SinksFound:            len(sinks),
		TaintPaths:            deduped,
		VulnerabilitiesByType: byType,
		TotalVulnerabilities:  len(deduped),
		Summary:               summary,
		Diagnostics:           diagnostics,
	}
}

// traceOneSource isolates a single source's trace so that an
// unexpected panic inside one function's analysis — an
// index-consistency error surfacing as a nil-map or out-of-range
// access rather than a typed error — is recorded as a diagnostic for
// that source instead of aborting every other source's results.
func traceOneSource(tracer *propagation.Tracer, src discovery.Source, sinks []discovery.Sink) (paths []model.TaintPath, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panic: %v", r)
		}
	}()
	return tracer.Trace(src, sinks), nil
}
