package variations

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"variations-service/internal/models"
)

const (
	// UnboundedQuantity stands in for an untracked (nil) quantity
	UnboundedQuantity = math.MaxInt32

	// MaxPickerQuantity caps how many units one cart line may request
	MaxPickerQuantity = 10

	// LowStockThreshold is the quantity under which "N left" is shown
	LowStockThreshold = 10
)

// Selection maps a variation type id to the chosen option id. It may cover
// only some of the product's axes.
type Selection map[uuid.UUID]uuid.UUID

// Resolution is what the storefront shows for a selection
type Resolution struct {
	Price            decimal.Decimal `json:"price"`
	Quantity         int             `json:"quantity"`
	Unbounded        bool            `json:"unbounded"`
	Images           []models.Image  `json:"images"`
	VariantID        *uuid.UUID      `json:"variantId,omitempty"`
	Matched          bool            `json:"matched"`
	Complete         bool            `json:"complete"`
	Selected         Selection       `json:"selected"`
	InStock          bool            `json:"inStock"`
	LowStock         bool            `json:"lowStock"`
	MaxOrderQuantity int             `json:"maxOrderQuantity"`
}

// Resolve finds the price, quantity and images for a selection. Entries for
// unknown axes or options are ignored. Only a selection covering every axis
// can match a stored variant; anything else falls back to the product's own
// price and quantity.
func Resolve(product *models.Product, selection Selection) Resolution {
	selected := validSelection(product, selection)
	complete := len(product.VariationTypes) > 0 && len(selected) == len(product.VariationTypes)

	res := Resolution{
		Price:    product.Price,
		Images:   resolveImages(product, selected),
		Selected: selected,
		Complete: complete,
	}
	quantity := product.Quantity

	if complete {
		ids := make([]uuid.UUID, 0, len(selected))
		for _, optionID := range selected {
			ids = append(ids, optionID)
		}
		if variant := findVariant(product.Variants, NewOptionSet(ids...)); variant != nil {
			if variant.Price != nil {
				res.Price = *variant.Price
			}
			quantity = variant.Quantity
			id := variant.ID
			res.VariantID = &id
			res.Matched = true
		}
	}

	if quantity == nil {
		res.Unbounded = true
		res.Quantity = UnboundedQuantity
	} else {
		res.Quantity = *quantity
	}

	res.InStock = res.Quantity > 0
	res.LowStock = !res.Unbounded && res.Quantity < LowStockThreshold
	res.MaxOrderQuantity = min(MaxPickerQuantity, max(res.Quantity, 0))
	return res
}

// DefaultSelection picks, for every axis, the requested option when it is an
// option of that axis and the axis's first option otherwise. Axes without
// options are left out.
func DefaultSelection(product *models.Product, requested Selection) Selection {
	selection := make(Selection, len(product.VariationTypes))
	for i := range product.VariationTypes {
		axis := &product.VariationTypes[i]
		if len(axis.Options) == 0 {
			continue
		}
		if optionID, ok := requested[axis.ID]; ok {
			if _, found := axis.FindOption(optionID); found {
				selection[axis.ID] = optionID
				continue
			}
		}
		selection[axis.ID] = axis.Options[0].ID
	}
	return selection
}

func validSelection(product *models.Product, selection Selection) Selection {
	valid := make(Selection, len(selection))
	for i := range product.VariationTypes {
		axis := &product.VariationTypes[i]
		optionID, ok := selection[axis.ID]
		if !ok {
			continue
		}
		if _, found := axis.FindOption(optionID); found {
			valid[axis.ID] = optionID
		}
	}
	return valid
}

// findVariant returns the stored variant whose option set equals set. When
// several match, the one with the lowest id wins.
func findVariant(variants []models.Variant, set OptionSet) *models.Variant {
	var found *models.Variant
	for i := range variants {
		v := &variants[i]
		if !NewOptionSet(v.OptionIDs...).Equal(set) {
			continue
		}
		if found == nil || lessID(v.ID, found.ID) {
			found = v
		}
	}
	return found
}

// resolveImages walks the axes in declared order and returns the images of
// the first selected option that has any, else the product images.
func resolveImages(product *models.Product, selected Selection) []models.Image {
	for i := range product.VariationTypes {
		axis := &product.VariationTypes[i]
		optionID, ok := selected[axis.ID]
		if !ok {
			continue
		}
		option, found := axis.FindOption(optionID)
		if found && len(option.Images) > 0 {
			return option.Images
		}
	}
	if product.Images == nil {
		return []models.Image{}
	}
	return product.Images
}
