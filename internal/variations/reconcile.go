package variations

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"variations-service/internal/models"
)

// PricedCombination is a combination enriched with the price and quantity
// shown on the admin grid. Price and Quantity may be nil when the stored
// variant has them unset.
type PricedCombination struct {
	Combination
	Price     *decimal.Decimal `json:"price"`
	Quantity  *int             `json:"quantity"`
	VariantID *uuid.UUID       `json:"variantId,omitempty"`
	Existing  bool             `json:"existing"`
}

// DuplicateMatch records stored variants sharing one option set
type DuplicateMatch struct {
	OptionKey  string      `json:"optionKey"`
	VariantIDs []uuid.UUID `json:"variantIds"`
	Chosen     uuid.UUID   `json:"chosen"`
}

// ReconcileResult is the merged grid plus integrity findings
type ReconcileResult struct {
	Rows       []PricedCombination `json:"rows"`
	Duplicates []DuplicateMatch    `json:"duplicates,omitempty"`
	Orphaned   []uuid.UUID         `json:"orphaned,omitempty"`
}

// variantIndex groups stored variants by canonical option key. Within a key
// the variant with the lowest id comes first.
type variantIndex map[string][]*models.Variant

func indexVariants(variants []models.Variant) variantIndex {
	index := make(variantIndex, len(variants))
	for i := range variants {
		v := &variants[i]
		key := OptionKey(v.OptionIDs)
		bucket := index[key]
		pos := len(bucket)
		for j, other := range bucket {
			if lessID(v.ID, other.ID) {
				pos = j
				break
			}
		}
		bucket = append(bucket, nil)
		copy(bucket[pos+1:], bucket[pos:])
		bucket[pos] = v
		index[key] = bucket
	}
	return index
}

// Reconcile merges generated combinations with stored variants. A
// combination whose option set equals a variant's (in any order) takes that
// variant's price and quantity as stored; every other combination gets the
// defaults. The output has one row per combination, in input order.
func Reconcile(combinations []Combination, existing []models.Variant, defaultPrice decimal.Decimal, defaultQuantity *int) ReconcileResult {
	index := indexVariants(existing)
	used := make(map[string]bool, len(index))

	result := ReconcileResult{Rows: make([]PricedCombination, 0, len(combinations))}
	for _, combination := range combinations {
		key := combination.OptionSet().Key()
		row := PricedCombination{Combination: combination}

		if matches := index[key]; len(matches) > 0 {
			chosen := matches[0]
			row.Price = copyDecimal(chosen.Price)
			row.Quantity = copyInt(chosen.Quantity)
			id := chosen.ID
			row.VariantID = &id
			row.Existing = true

			if len(matches) > 1 && !used[key] {
				dup := DuplicateMatch{OptionKey: key, Chosen: chosen.ID}
				for _, m := range matches {
					dup.VariantIDs = append(dup.VariantIDs, m.ID)
				}
				result.Duplicates = append(result.Duplicates, dup)
			}
			used[key] = true
		} else {
			price := defaultPrice
			row.Price = &price
			row.Quantity = copyInt(defaultQuantity)
		}

		result.Rows = append(result.Rows, row)
	}

	for i := range existing {
		if !used[OptionKey(existing[i].OptionIDs)] {
			result.Orphaned = append(result.Orphaned, existing[i].ID)
		}
	}
	return result
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func copyDecimal(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := *v
	return &d
}
