package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupRegistryTryClaim(t *testing.T) {
	tests := []struct {
		name   string
		claims []string
		want   []bool
	}{
		{"distinct names", []string{"a", "b", "c"}, []bool{true, true, true}},
		{"same name", []string{"order", "order"}, []bool{true, false}},
		{"case variants", []string{"Order", "ORDER", "order"}, []bool{true, false, false}},
		{"empty name is a name", []string{"", ""}, []bool{true, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDedupRegistry()
			for i, name := range tt.claims {
				assert.Equal(t, tt.want[i], d.TryClaim(name), "claim %d (%q)", i, name)
			}
		})
	}
}

func TestDedupRegistryReset(t *testing.T) {
	d := NewDedupRegistry()
	assert.True(t, d.TryClaim("a"))
	assert.True(t, d.Claimed("A"))
	assert.False(t, d.Claimed("b"), "Claimed does not claim")
	assert.Equal(t, 1, d.Len())

	d.Reset()
	assert.Equal(t, 0, d.Len())
	assert.True(t, d.TryClaim("a"))
}

func TestEqualFold(t *testing.T) {
	assert.True(t, EqualFold("Main", "MAIN"))
	assert.True(t, EqualFold("σ", "Σ"))
	assert.False(t, EqualFold("main", "mains"))
}
