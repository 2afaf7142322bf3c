package variations

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"variations-service/internal/models"
)

func storefrontProduct() *models.Product {
	return &models.Product{
		ID:             id(500),
		Name:           "Tee",
		Price:          dec("20"),
		Quantity:       intPtr(40),
		Status:         models.ProductStatusPublished,
		Images:         []models.Image{{ID: "product", Thumb: "p-thumb"}},
		VariationTypes: colorSize(),
		Variants: []models.Variant{
			{ID: id(900), OptionIDs: []uuid.UUID{id(11), id(21)}, Price: decPtr("25"), Quantity: intPtr(3)},
			{ID: id(901), OptionIDs: []uuid.UUID{id(12), id(22)}, Quantity: nil},
			{ID: id(902), OptionIDs: []uuid.UUID{id(22), id(11)}, Price: decPtr("30"), Quantity: intPtr(0)},
		},
	}
}

func TestResolve_CompleteSelectionMatchesVariant(t *testing.T) {
	res := Resolve(storefrontProduct(), Selection{id(1): id(11), id(2): id(21)})

	assert.True(t, res.Complete)
	assert.True(t, res.Matched)
	assert.Equal(t, id(900), *res.VariantID)
	assert.True(t, dec("25").Equal(res.Price))
	assert.Equal(t, 3, res.Quantity)
	assert.False(t, res.Unbounded)
	assert.True(t, res.InStock)
	assert.True(t, res.LowStock)
	assert.Equal(t, 3, res.MaxOrderQuantity)
}

func TestResolve_NilVariantFieldsUseProductPriceAndUnbounded(t *testing.T) {
	res := Resolve(storefrontProduct(), Selection{id(1): id(12), id(2): id(22)})

	assert.True(t, res.Matched)
	assert.True(t, dec("20").Equal(res.Price))
	assert.True(t, res.Unbounded)
	assert.Equal(t, UnboundedQuantity, res.Quantity)
	assert.False(t, res.LowStock)
	assert.Equal(t, MaxPickerQuantity, res.MaxOrderQuantity)
}

func TestResolve_SoldOut(t *testing.T) {
	// variant stored in Size, Color order
	res := Resolve(storefrontProduct(), Selection{id(2): id(22), id(1): id(11)})

	assert.True(t, res.Matched)
	assert.Equal(t, id(902), *res.VariantID)
	assert.Equal(t, 0, res.Quantity)
	assert.False(t, res.InStock)
	assert.Equal(t, 0, res.MaxOrderQuantity)
}

func TestResolve_FallsBackToProduct(t *testing.T) {
	tests := []struct {
		name      string
		selection Selection
		complete  bool
	}{
		{"partial", Selection{id(1): id(11)}, false},
		{"empty", Selection{}, false},
		{"no stored variant", Selection{id(1): id(12), id(2): id(21)}, true},
		{"unknown option dropped", Selection{id(1): id(11), id(2): id(99)}, false},
		{"option from other axis dropped", Selection{id(1): id(21), id(2): id(21)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(storefrontProduct(), tt.selection)

			assert.Equal(t, tt.complete, res.Complete)
			assert.False(t, res.Matched)
			assert.Nil(t, res.VariantID)
			assert.True(t, dec("20").Equal(res.Price))
			assert.Equal(t, 40, res.Quantity)
			assert.False(t, res.LowStock)
			assert.Equal(t, MaxPickerQuantity, res.MaxOrderQuantity)
		})
	}
}

func TestResolve_IgnoresUnknownAxes(t *testing.T) {
	res := Resolve(storefrontProduct(), Selection{id(1): id(11), id(2): id(21), id(7): id(70)})

	assert.True(t, res.Matched)
	assert.Len(t, res.Selected, 2)
	_, ok := res.Selected[id(7)]
	assert.False(t, ok)
}

func TestResolve_UnboundedProductQuantity(t *testing.T) {
	product := storefrontProduct()
	product.Quantity = nil

	res := Resolve(product, Selection{})

	assert.True(t, res.Unbounded)
	assert.Equal(t, UnboundedQuantity, res.Quantity)
	assert.True(t, res.InStock)
}

func TestResolve_Images(t *testing.T) {
	product := storefrontProduct()

	// Red has images
	res := Resolve(product, Selection{id(1): id(11)})
	require.Len(t, res.Images, 1)
	assert.Equal(t, "imgA", res.Images[0].ID)

	// Blue has none, S has none: product images
	res = Resolve(product, Selection{id(1): id(12), id(2): id(21)})
	require.Len(t, res.Images, 1)
	assert.Equal(t, "product", res.Images[0].ID)

	// a later axis with images is used when earlier selected options have none
	product.VariationTypes[1].Options[1].Images = []models.Image{{ID: "imgM"}}
	res = Resolve(product, Selection{id(1): id(12), id(2): id(22)})
	require.Len(t, res.Images, 1)
	assert.Equal(t, "imgM", res.Images[0].ID)

	// declared axis order decides, not selection order
	res = Resolve(product, Selection{id(2): id(22), id(1): id(11)})
	assert.Equal(t, "imgA", res.Images[0].ID)
}

func TestResolve_NoImagesAnywhere(t *testing.T) {
	product := storefrontProduct()
	product.Images = nil

	res := Resolve(product, Selection{id(1): id(12)})

	assert.NotNil(t, res.Images)
	assert.Empty(t, res.Images)
}

func TestResolve_DuplicateVariantsLowestIDWins(t *testing.T) {
	product := storefrontProduct()
	product.Variants = append(product.Variants, models.Variant{
		ID: id(800), OptionIDs: []uuid.UUID{id(21), id(11)}, Price: decPtr("19"), Quantity: intPtr(8),
	})

	res := Resolve(product, Selection{id(1): id(11), id(2): id(21)})

	assert.Equal(t, id(800), *res.VariantID)
	assert.True(t, dec("19").Equal(res.Price))
}

func TestResolve_NoAxes(t *testing.T) {
	product := &models.Product{Price: dec("5"), Quantity: intPtr(2)}

	res := Resolve(product, Selection{id(1): id(11)})

	assert.False(t, res.Complete)
	assert.False(t, res.Matched)
	assert.Equal(t, 2, res.Quantity)
	assert.True(t, res.LowStock)
	assert.Equal(t, 2, res.MaxOrderQuantity)
}

func TestDefaultSelection(t *testing.T) {
	product := storefrontProduct()
	product.VariationTypes = append(product.VariationTypes, newAxis(3, "Material"))

	sel := DefaultSelection(product, nil)
	assert.Equal(t, Selection{id(1): id(11), id(2): id(21)}, sel)

	sel = DefaultSelection(product, Selection{id(2): id(22), id(1): id(99)})
	assert.Equal(t, Selection{id(1): id(11), id(2): id(22)}, sel)
}
