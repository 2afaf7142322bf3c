package variations

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"variations-service/internal/models"
)

// Skip reasons reported by Normalize
const (
	SkipMissingOption    = "missing option"
	SkipUnknownOption    = "unknown option"
	SkipDuplicateOptions = "duplicate combination"
	SkipMalformedField   = "malformed field"
)

// VariantRecord is a normalized row ready to be stored
type VariantRecord struct {
	OptionIDs []uuid.UUID      `json:"optionIds"`
	Price     *decimal.Decimal `json:"price"`
	Quantity  *int             `json:"quantity"`
}

// Key returns the canonical option key of the record
func (r VariantRecord) Key() string {
	return OptionKey(r.OptionIDs)
}

// Variant converts the record into a storable variant for productID
func (r VariantRecord) Variant(productID uuid.UUID) models.Variant {
	ids := make([]uuid.UUID, len(r.OptionIDs))
	copy(ids, r.OptionIDs)
	return models.Variant{
		ProductID: productID,
		OptionIDs: ids,
		OptionKey: r.Key(),
		Price:     copyDecimal(r.Price),
		Quantity:  copyInt(r.Quantity),
	}
}

// SkippedRow explains why a submitted row was not kept
type SkippedRow struct {
	Index  int        `json:"index"`
	AxisID *uuid.UUID `json:"axisId,omitempty"`
	Field  string     `json:"field,omitempty"`
	Reason string     `json:"reason"`
}

func (s SkippedRow) String() string {
	if s.Field != "" {
		return fmt.Sprintf("row %d: %s %q", s.Index, s.Reason, s.Field)
	}
	if s.AxisID != nil {
		return fmt.Sprintf("row %d: %s for axis %s", s.Index, s.Reason, s.AxisID)
	}
	return fmt.Sprintf("row %d: %s", s.Index, s.Reason)
}

// NormalizeResult holds the records to store and the dropped rows
type NormalizeResult struct {
	Records []VariantRecord `json:"records"`
	Skipped []SkippedRow    `json:"skipped,omitempty"`
}

// Normalize turns submitted grid rows into variant records, one option id per
// axis in axis order. An option is taken by id when the id belongs to the
// axis, otherwise looked up by name within the axis. Rows that still miss an
// axis, repeat an earlier row's option set, or carry a field that could not
// be decoded are dropped and reported.
//
// An absent price or quantity becomes an explicit 0; only a literal null is
// kept as nil.
func Normalize(axes []models.VariationType, rows []models.VariationRow) NormalizeResult {
	result := NormalizeResult{Records: make([]VariantRecord, 0, len(rows))}
	if len(axes) == 0 {
		return result
	}

	seen := make(map[string]bool, len(rows))

rows:
	for i, row := range rows {
		if len(row.Malformed) > 0 {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Field: row.Malformed[0], Reason: SkipMalformedField})
			continue
		}

		ids := make([]uuid.UUID, 0, len(axes))
		for a := range axes {
			axis := &axes[a]
			axisID := axis.ID

			ref, ok := row.Options[axisID]
			if !ok {
				result.Skipped = append(result.Skipped, SkippedRow{Index: i, AxisID: &axisID, Reason: SkipMissingOption})
				continue rows
			}
			optionID, ok := resolveOptionRef(axis, ref)
			if !ok {
				result.Skipped = append(result.Skipped, SkippedRow{Index: i, AxisID: &axisID, Reason: SkipUnknownOption})
				continue rows
			}
			ids = append(ids, optionID)
		}

		key := OptionKey(ids)
		if seen[key] {
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Reason: SkipDuplicateOptions})
			continue
		}
		seen[key] = true

		result.Records = append(result.Records, VariantRecord{
			OptionIDs: ids,
			Price:     normalizePrice(row.Price),
			Quantity:  normalizeQuantity(row.Quantity),
		})
	}
	return result
}

func resolveOptionRef(axis *models.VariationType, ref models.OptionRef) (uuid.UUID, bool) {
	if ref.ID != nil {
		if option, ok := axis.FindOption(*ref.ID); ok {
			return option.ID, true
		}
	}

	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return uuid.Nil, false
	}
	for _, option := range axis.Options {
		if option.Name == name {
			return option.ID, true
		}
	}
	for _, option := range axis.Options {
		if strings.EqualFold(option.Name, name) {
			return option.ID, true
		}
	}
	return uuid.Nil, false
}

func normalizePrice(field models.NullableDecimal) *decimal.Decimal {
	if !field.Present {
		zero := decimal.Zero
		return &zero
	}
	return copyDecimal(field.Value)
}

func normalizeQuantity(field models.NullableInt) *int {
	if !field.Present {
		zero := 0
		return &zero
	}
	return copyInt(field.Value)
}

// RowsFromReconciled converts a reconciled grid into the rows the admin form
// submits when nothing is edited. Price and quantity are always present, with
// nil kept as an explicit null.
func RowsFromReconciled(rows []PricedCombination) []models.VariationRow {
	out := make([]models.VariationRow, len(rows))
	for i, row := range rows {
		options := make(map[uuid.UUID]models.OptionRef, len(row.Choices))
		for _, ch := range row.Choices {
			id := ch.OptionID
			options[ch.AxisID] = models.OptionRef{ID: &id, Name: ch.OptionName}
		}
		out[i] = models.VariationRow{
			Options:  options,
			Price:    models.NullableDecimal{Present: true, Value: copyDecimal(row.Price)},
			Quantity: models.NullableInt{Present: true, Value: copyInt(row.Quantity)},
		}
	}
	return out
}
