package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameTokens(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"Example First Nation", []string{"example"}},
		{"The Township of Red Lake", []string{"red", "lake"}},
		{"Moose Cree First Nation", []string{"moose", "cree"}},
		{"Kenora Public Library", []string{"kenora"}},
		{"The First Nation", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := NameTokens(tt.name)
		if tt.want == nil {
			assert.Empty(t, got, tt.name)
		} else {
			assert.Equal(t, tt.want, got, tt.name)
		}
	}
}

func TestNameSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("Example First Nation", "Example First Nation"))
	assert.Equal(t, 1.0, NameSimilarity("Moose Cree First Nation", "Moose Cree Nation"))
	assert.InDelta(t, 0.5, NameSimilarity("Moose Cree First Nation", "Moose Factory"), 0.001)
	assert.Equal(t, 0.0, NameSimilarity("Example Town", "Somewhere Else"))
	assert.Equal(t, 0.0, NameSimilarity("The First Nation", "Example"))
}
