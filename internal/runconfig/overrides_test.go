package runconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taintgraph/engine/internal/model"
)

const sampleYAML = `
sources:
  custom:
    - getCustomInput
sinks:
  sql:
    - rawQuery
sanitizers:
  - name: myEscape
    categories: [xss]
`

func TestLoad_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	o, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"getCustomInput"}, o.Sources["custom"])
	assert.Equal(t, []string{"rawQuery"}, o.Sinks["sql"])
	require.Len(t, o.Sanitizers, 1)
	assert.Equal(t, "myEscape", o.Sanitizers[0].Name)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/overrides.yaml")
	assert.Error(t, err)
}

func TestContribute_LayersOnTopOfDefaults(t *testing.T) {
	o := Overrides{
		Sources: map[string][]string{"custom": {"getCustomInput"}},
		Sinks:   map[string][]string{"sql": {"rawQuery"}},
		Sanitizers: []sanitizerEntry{
			{Name: "myEscape", Categories: []string{"xss"}},
		},
	}

	sources, sinks, sanitizers := o.Contribute()

	assert.Contains(t, sources["custom"], "getCustomInput")
	assert.Contains(t, sources["python"], "request.GET") // default preserved
	assert.Contains(t, sinks[model.CategorySQL], "rawQuery")
	assert.Contains(t, sinks[model.CategorySQL], "cursor.execute") // default preserved

	found := false
	for _, s := range sanitizers {
		if s.FunctionName == "myEscape" {
			found = true
			assert.True(t, s.Covers(model.CategoryXSS))
		}
	}
	assert.True(t, found)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, Overrides{}.IsEmpty())
	assert.False(t, Overrides{Sources: map[string][]string{"a": {"b"}}}.IsEmpty())
}
