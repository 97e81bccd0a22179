package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIDs(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "keeps input order",
			input: []string{"c", "a", "b"},
			want:  []string{"c", "a", "b"},
		},
		{
			name:  "removes duplicates keeping first",
			input: []string{"b", "a", "B", "a"},
			want:  []string{"b", "a"},
		},
		{
			name:  "filters blanks",
			input: []string{"a", "", "  ", "b"},
			want:  []string{"a", "b"},
		},
		{
			name:  "empty input",
			input: []string{},
			want:  []string{},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIDs(tt.input))
		})
	}
}

func TestNormalizeStringSlice_CustomStrategy(t *testing.T) {
	got := NormalizeStringSlice([]string{"Room A", "room a", "Room B"}, strings.ToUpper)
	assert.Equal(t, []string{"ROOM A", "ROOM B"}, got)
}

func TestPipeline_Apply(t *testing.T) {
	p := Pipeline{strings.TrimSpace, strings.ToUpper}
	assert.Equal(t, "ABC", p.Apply("  abc "))
	assert.Equal(t, "x", Pipeline{}.Apply("x"))
}
