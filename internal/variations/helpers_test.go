package variations

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"variations-service/internal/models"
)

// id returns a deterministic uuid whose byte order follows n
func id(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func newAxis(axisID int, name string, options ...models.VariationOption) models.VariationType {
	axis := models.VariationType{ID: id(axisID), Name: name, Kind: models.DisplayKindRadio}
	for i := range options {
		options[i].VariationTypeID = axis.ID
		options[i].Position = i
	}
	axis.Options = options
	return axis
}

func newOption(optionID int, name string, images ...models.Image) models.VariationOption {
	return models.VariationOption{ID: id(optionID), Name: name, Images: images}
}

func intPtr(v int) *int { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// colorSize builds the Color:[Red,Blue] x Size:[S,M] fixture.
// Option ids: Red=11, Blue=12, S=21, M=22.
func colorSize() []models.VariationType {
	return []models.VariationType{
		newAxis(1, "Color", newOption(11, "Red", models.Image{ID: "imgA", Thumb: "a-thumb"}), newOption(12, "Blue")),
		newAxis(2, "Size", newOption(21, "S"), newOption(22, "M")),
	}
}

func names(c Combination) string {
	s := ""
	for i, ch := range c.Choices {
		if i > 0 {
			s += "/"
		}
		s += ch.OptionName
	}
	return s
}
