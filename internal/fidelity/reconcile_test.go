package fidelity

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupManifest_RemovalRatio(t *testing.T) {
	cases := []struct {
		name     string
		pre      int
		post     int
		wantRem  int
		wantRate float64
	}{
		{"partial removal", 100, 40, 60, 0.6},
		{"no removal", 50, 50, 0, 0.0},
		{"zero input", 0, 0, 0, 0.0},
		{"complete dedup", 100, 0, 100, 1.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := NewDedupManifest(c.pre, c.post)
			assert.Equal(t, c.wantRem, m.RemovedCount())
			assert.InDelta(t, c.wantRate, m.RemovalRatio(), 0.0001)
		})
	}
}

func TestReconcile_DiscoveryWarnsOnZeroCounts(t *testing.T) {
	result, err := Reconcile(NewDiscoveryManifest(0, 0), Receipt{}, true, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, result.Status)
	assert.Len(t, result.Warnings, 2)
	assert.Empty(t, result.Errors)
}

func TestReconcile_DiscoveryOKWhenBothFound(t *testing.T) {
	result, err := Reconcile(NewDiscoveryManifest(3, 1), Receipt{}, true, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
	assert.Empty(t, result.Warnings)
}

func TestReconcile_AnalysisFailsWhenPipelineStalled(t *testing.T) {
	manifest := NewAnalysisManifest(0, 5)
	receipt := NewAnalysisReceipt(10)

	result, err := Reconcile(manifest, receipt, true, nil)
	require.Error(t, err)
	var fidelityErr *TaintFidelityError
	require.ErrorAs(t, err, &fidelityErr)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, StageAnalysis, result.Stage)
	assert.Contains(t, result.Errors[0], "0/10 sinks")
}

func TestReconcile_AnalysisOKWhenNoSinksExpected(t *testing.T) {
	manifest := NewAnalysisManifest(0, 0)
	receipt := NewAnalysisReceipt(0)

	result, err := Reconcile(manifest, receipt, true, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)
}

func TestReconcile_DedupWarnsAboveHalfRemoved(t *testing.T) {
	manifest := NewDedupManifest(100, 40)

	result, err := Reconcile(manifest, Receipt{}, true, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, result.Status)
	assert.Contains(t, result.Warnings[0], "60/100")
}

func TestReconcile_DBOutputFailsOnTotalLoss(t *testing.T) {
	manifest := NewOutputManifest(StageDBOutput, 25)
	receipt := NewDBOutputReceipt(0)

	result, err := Reconcile(manifest, receipt, true, nil)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Errors[0], "100% LOSS")
}

func TestReconcile_DBOutputWarnsOnPartialMismatch(t *testing.T) {
	manifest := NewOutputManifest(StageDBOutput, 25)
	receipt := NewDBOutputReceipt(20)

	result, err := Reconcile(manifest, receipt, true, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, result.Status)
	assert.Contains(t, result.Warnings[0], "delta=5")
}

func TestReconcile_JSONOutputFailsOnTotalLoss(t *testing.T) {
	manifest := NewOutputManifest(StageJSONOutput, 10)
	receipt := NewJSONOutputReceipt(0)

	result, err := Reconcile(manifest, receipt, true, nil)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, result.Status)
}

func TestReconcile_NonStrictReturnsResultWithoutError(t *testing.T) {
	manifest := NewOutputManifest(StageDBOutput, 25)
	receipt := NewDBOutputReceipt(0)

	result, err := Reconcile(manifest, receipt, false, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.NotEmpty(t, result.Errors)
}

func TestReconcile_EnvVarOverridesStrictToFalse(t *testing.T) {
	t.Setenv("TAINT_FIDELITY_STRICT", "0")
	defer os.Unsetenv("TAINT_FIDELITY_STRICT")

	manifest := NewOutputManifest(StageDBOutput, 25)
	receipt := NewDBOutputReceipt(0)

	result, err := Reconcile(manifest, receipt, true, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status)
}
