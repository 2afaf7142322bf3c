// Package variations holds the pure variation logic: enumerating option
// combinations, merging them with stored variants, turning edited grid rows
// back into variant records, and resolving a storefront selection.
package variations

import (
	"github.com/google/uuid"
	"variations-service/internal/models"
)

// Choice is the option picked for one axis of a combination
type Choice struct {
	AxisID     uuid.UUID `json:"axisId"`
	AxisName   string    `json:"label"`
	OptionID   uuid.UUID `json:"id"`
	OptionName string    `json:"name"`
}

// Combination assigns exactly one option to every axis, in axis order
type Combination struct {
	Choices []Choice `json:"options"`
}

// Choice returns the option chosen for axisID
func (c Combination) Choice(axisID uuid.UUID) (Choice, bool) {
	for _, ch := range c.Choices {
		if ch.AxisID == axisID {
			return ch, true
		}
	}
	return Choice{}, false
}

// OptionIDs returns the chosen option ids in axis order
func (c Combination) OptionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Choices))
	for i, ch := range c.Choices {
		ids[i] = ch.OptionID
	}
	return ids
}

// OptionSet returns the chosen option ids as a set
func (c Combination) OptionSet() OptionSet {
	return NewOptionSet(c.OptionIDs()...)
}

// GenerateCombinations returns the Cartesian product of the options of every
// axis. Partial combinations are expanded in order, each one by every option
// of the next axis, so Color:[Red,Blue] x Size:[S,M] yields Red/S, Red/M,
// Blue/S, Blue/M. No axes, or an axis without options, yields nothing.
func GenerateCombinations(axes []models.VariationType) []Combination {
	if len(axes) == 0 {
		return []Combination{}
	}

	result := [][]Choice{{}}
	for _, axis := range axes {
		if len(axis.Options) == 0 {
			return []Combination{}
		}

		next := make([][]Choice, 0, len(result)*len(axis.Options))
		for _, partial := range result {
			for _, option := range axis.Options {
				choices := make([]Choice, len(partial), len(partial)+1)
				copy(choices, partial)
				choices = append(choices, Choice{
					AxisID:     axis.ID,
					AxisName:   axis.Name,
					OptionID:   option.ID,
					OptionName: option.Name,
				})
				next = append(next, choices)
			}
		}
		result = next
	}

	combinations := make([]Combination, len(result))
	for i, choices := range result {
		combinations[i] = Combination{Choices: choices}
	}
	return combinations
}

// CombinationCount returns the size GenerateCombinations would produce
func CombinationCount(axes []models.VariationType) int {
	if len(axes) == 0 {
		return 0
	}
	count := 1
	for _, axis := range axes {
		count *= len(axis.Options)
	}
	return count
}
