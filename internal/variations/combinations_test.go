package variations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"variations-service/internal/models"
)

func TestGenerateCombinations_Order(t *testing.T) {
	combos := GenerateCombinations(colorSize())

	require.Len(t, combos, 4)
	got := make([]string, len(combos))
	for i, c := range combos {
		got[i] = names(c)
	}
	assert.Equal(t, []string{"Red/S", "Red/M", "Blue/S", "Blue/M"}, got)

	first := combos[0]
	ch, ok := first.Choice(id(2))
	require.True(t, ok)
	assert.Equal(t, "Size", ch.AxisName)
	assert.Equal(t, id(21), ch.OptionID)
}

func TestGenerateCombinations_Completeness(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
	}{
		{"single axis", []int{3}},
		{"two axes", []int{2, 3}},
		{"three axes", []int{2, 3, 4}},
		{"single option axes", []int{1, 1, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var axes []models.VariationType
			want := 1
			next := 100
			for a, n := range tt.counts {
				var opts []models.VariationOption
				for o := 0; o < n; o++ {
					opts = append(opts, newOption(next, "opt"))
					next++
				}
				axes = append(axes, newAxis(a+1, "axis", opts...))
				want *= n
			}

			combos := GenerateCombinations(axes)
			assert.Len(t, combos, want)
			assert.Equal(t, want, CombinationCount(axes))

			seen := map[string]bool{}
			for _, c := range combos {
				require.Len(t, c.Choices, len(axes))
				for i, ch := range c.Choices {
					assert.Equal(t, axes[i].ID, ch.AxisID)
				}
				key := c.OptionSet().Key()
				assert.False(t, seen[key], "duplicate combination %s", key)
				seen[key] = true
			}
		})
	}
}

func TestGenerateCombinations_Empty(t *testing.T) {
	assert.Empty(t, GenerateCombinations(nil))
	assert.Equal(t, 0, CombinationCount(nil))

	axes := []models.VariationType{
		newAxis(1, "Color", newOption(11, "Red")),
		newAxis(2, "Size"),
	}
	assert.Empty(t, GenerateCombinations(axes))
	assert.Equal(t, 0, CombinationCount(axes))
}

func TestGenerateCombinations_DoesNotShareBacking(t *testing.T) {
	axes := []models.VariationType{
		newAxis(1, "A", newOption(11, "a1"), newOption(12, "a2")),
		newAxis(2, "B", newOption(21, "b1"), newOption(22, "b2")),
		newAxis(3, "C", newOption(31, "c1"), newOption(32, "c2")),
	}
	combos := GenerateCombinations(axes)
	require.Len(t, combos, 8)
	assert.Equal(t, "a1/b1/c1", names(combos[0]))
	assert.Equal(t, "a1/b1/c2", names(combos[1]))
	assert.Equal(t, "a2/b2/c2", names(combos[7]))
}
