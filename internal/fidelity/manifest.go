package fidelity

// Stage identifies one of the five points in the pipeline where a
// manifest/receipt pair is reconciled.
type Stage string

const (
	StageDiscovery  Stage = "discovery"
	StageAnalysis   Stage = "analysis"
	StageDedup      Stage = "dedup"
	StageDBOutput   Stage = "db_output"
	StageJSONOutput Stage = "json_output"
)

// Manifest records what a pipeline stage produced. Only the fields
// relevant to the stage's reconciliation rule are populated; the rest
// stay at their zero value.
type Manifest struct {
	Stage Stage

	SourceCount int
	SinkCount   int

	SinksAnalyzed  int
	SourcesChecked int

	PreDedupCount  int
	PostDedupCount int

	PathsToWrite int
}

// Receipt records what actually landed downstream of a stage.
type Receipt struct {
	SinksToAnalyze int
	DBRows         int
	JSONCount      int
}

// NewDiscoveryManifest builds the manifest for the discovery stage
// from the number of sources and sinks found.
func NewDiscoveryManifest(sourceCount, sinkCount int) Manifest {
	return Manifest{Stage: StageDiscovery, SourceCount: sourceCount, SinkCount: sinkCount}
}

// NewAnalysisManifest builds the manifest for the analysis stage.
func NewAnalysisManifest(sinksAnalyzed, sourcesChecked int) Manifest {
	return Manifest{Stage: StageAnalysis, SinksAnalyzed: sinksAnalyzed, SourcesChecked: sourcesChecked}
}

// NewDedupManifest builds the manifest for the dedup stage.
func NewDedupManifest(preCount, postCount int) Manifest {
	return Manifest{Stage: StageDedup, PreDedupCount: preCount, PostDedupCount: postCount}
}

// RemovedCount is how many paths dedup discarded.
func (m Manifest) RemovedCount() int {
	return m.PreDedupCount - m.PostDedupCount
}

// RemovalRatio is the fraction of pre-dedup paths that were discarded.
// A pre-dedup count of zero yields a ratio of zero rather than a
// division by zero.
func (m Manifest) RemovalRatio() float64 {
	if m.PreDedupCount == 0 {
		return 0
	}
	return float64(m.RemovedCount()) / float64(m.PreDedupCount)
}

// NewOutputManifest builds the manifest for either output stage; the
// stage argument must be StageDBOutput or StageJSONOutput.
func NewOutputManifest(stage Stage, pathsToWrite int) Manifest {
	return Manifest{Stage: stage, PathsToWrite: pathsToWrite}
}

// NewAnalysisReceipt builds the receipt compared against an analysis
// manifest: how many sinks the orchestrator queued for analysis.
func NewAnalysisReceipt(sinksToAnalyze int) Receipt {
	return Receipt{SinksToAnalyze: sinksToAnalyze}
}

// NewDBOutputReceipt builds the receipt for the db_output stage.
func NewDBOutputReceipt(dbRows int) Receipt {
	return Receipt{DBRows: dbRows}
}

// NewJSONOutputReceipt builds the receipt for the json_output stage.
func NewJSONOutputReceipt(jsonCount int) Receipt {
	return Receipt{JSONCount: jsonCount}
}
