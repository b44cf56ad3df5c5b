package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_Covers(t *testing.T) {
	tests := []struct {
		name string
		san  Sanitizer
		cat  PatternCategory
		want bool
	}{
		{
			name: "does not cover sql",
			san: Sanitizer{
				FunctionName: "escape_html",
				Categories:   map[PatternCategory]struct{}{CategoryXSS: {}},
			},
			cat:  CategorySQL,
			want: false,
		},
		{
			name: "covers xss",
			san: Sanitizer{
				FunctionName: "escape_html",
				Categories:   map[PatternCategory]struct{}{CategoryXSS: {}},
			},
			cat:  CategoryXSS,
			want: true,
		},
		{
			name: "covers multiple categories",
			san: Sanitizer{
				FunctionName: "validate",
				Categories: map[PatternCategory]struct{}{
					CategorySQL:  {},
					CategoryPath: {},
				},
			},
			cat:  CategoryPath,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.san.Covers(tt.cat))
		})
	}
}

func TestTaintPath_PathLength(t *testing.T) {
	p := TaintPath{
		Steps: []Step{
			{Kind: StepSource},
			{Kind: StepPropagation},
			{Kind: StepSink},
		},
	}
	assert.Equal(t, 3, p.PathLength())

	empty := TaintPath{}
	assert.Equal(t, 0, empty.PathLength())
}
