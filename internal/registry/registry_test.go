package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taintgraph/engine/internal/model"
)

func TestFromDefaults_PopulatesBuiltins(t *testing.T) {
	r := FromDefaults()

	assert.NotEmpty(t, r.Sources()["python"])
	assert.NotEmpty(t, r.Sources()["javascript"])
	assert.NotEmpty(t, r.Sinks()[model.CategorySQL])
	assert.NotEmpty(t, r.Sinks()[model.CategoryXSS])
	assert.NotEmpty(t, r.Sanitizers())
}

func TestWithFrameworks_IsImmutable(t *testing.T) {
	base := FromDefaults()
	baseSourcesBefore := len(base.Sources()["javascript"])
	baseSinksBefore := len(base.Sinks()[model.CategorySQL])

	withExpress := base.WithFrameworks([]string{Express})

	assert.Equal(t, baseSourcesBefore, len(base.Sources()["javascript"]), "original registry must not change")
	assert.Equal(t, baseSinksBefore, len(base.Sinks()[model.CategorySQL]), "original registry must not change")
	assert.Greater(t, len(withExpress.Sinks()[model.CategorySQL]), baseSinksBefore)
}

func TestWithFrameworks_ExpressAddsResponseSinksAndORMSinks(t *testing.T) {
	r := FromDefaults().WithFrameworks([]string{Express})

	assert.Contains(t, r.Sinks()[model.CategoryXSS], "res.send")
	assert.Contains(t, r.Sinks()[model.CategoryPath], "res.sendFile")
	assert.Contains(t, r.Sinks()[model.CategorySQL], "knex.raw")
	assert.Contains(t, r.Sinks()[model.CategorySQL], "sequelize.query")
}

func TestWithFrameworks_UnknownFrameworkIsIgnored(t *testing.T) {
	base := FromDefaults()
	r := base.WithFrameworks([]string{"not-a-real-framework"})

	assert.Equal(t, base.Sources(), r.Sources())
	assert.Equal(t, base.Sinks(), r.Sinks())
}

func TestIsSanitizer(t *testing.T) {
	r := FromDefaults()

	tests := []struct {
		name string
		want bool
	}{
		{"html.escape", true},
		{"validate_input", true},
		{"sanitizeHTML", true},
		{"secure_filename", true},
		{"cursor.execute", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsSanitizer(tt.name))
		})
	}
}

type stubRuleRegistry struct{}

func (stubRuleRegistry) Contribute() (map[string][]string, map[model.PatternCategory][]string, []model.Sanitizer) {
	return map[string][]string{"custom": {"myapp.get_input"}},
		map[model.PatternCategory][]string{model.CategorySQL: {"myorm.raw"}},
		[]model.Sanitizer{{FunctionName: "myapp.clean", Categories: map[model.PatternCategory]struct{}{model.CategorySQL: {}}}}
}

func TestWithRuleRegistry_ReplacesPatternSets(t *testing.T) {
	base := FromDefaults()
	r := base.WithRuleRegistry(stubRuleRegistry{})

	assert.Equal(t, []string{"myapp.get_input"}, r.Sources()["custom"])
	assert.Equal(t, []string{"myorm.raw"}, r.Sinks()[model.CategorySQL])
	assert.Empty(t, r.Sources()["python"])

	// base is unaffected
	assert.NotEmpty(t, base.Sources()["python"])
}
