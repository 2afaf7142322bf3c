package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LegacyAxisKeyPrefix is the form-field prefix the admin grid used before the
// typed options map existed: "variation_type_<axisId>": {"id": ..., "name": ...}
const LegacyAxisKeyPrefix = "variation_type_"

var jsonNull = []byte("null")

// NullableInt distinguishes an absent field from an explicit null.
// Present is false when the key was missing from the payload.
type NullableInt struct {
	Present bool
	Value   *int
}

// IntValue returns a present, non-null field
func IntValue(v int) NullableInt {
	return NullableInt{Present: true, Value: &v}
}

// IntNull returns a present, explicit null
func IntNull() NullableInt {
	return NullableInt{Present: true}
}

func (n *NullableInt) UnmarshalJSON(data []byte) error {
	n.Present = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		n.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n NullableInt) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return jsonNull, nil
	}
	return json.Marshal(*n.Value)
}

// NullableDecimal distinguishes an absent price from an explicit null
type NullableDecimal struct {
	Present bool
	Value   *decimal.Decimal
}

// DecimalValue returns a present, non-null field
func DecimalValue(d decimal.Decimal) NullableDecimal {
	return NullableDecimal{Present: true, Value: &d}
}

// DecimalNull returns a present, explicit null
func DecimalNull() NullableDecimal {
	return NullableDecimal{Present: true}
}

func (n *NullableDecimal) UnmarshalJSON(data []byte) error {
	n.Present = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		n.Value = nil
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	n.Value = &d
	return nil
}

func (n NullableDecimal) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return jsonNull, nil
	}
	return n.Value.MarshalJSON()
}

// OptionRef identifies the option chosen for one axis in a submitted row.
// ID may be missing when the client only kept the option name.
type OptionRef struct {
	ID   *uuid.UUID `json:"id,omitempty"`
	Name string     `json:"name"`
}

// UnmarshalJSON treats a blank or unparseable id as no id, so the option
// falls back to being matched by name
func (o *OptionRef) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*o = OptionRef{Name: wire.Name}

	var raw string
	if json.Unmarshal(wire.ID, &raw) != nil {
		return nil
	}
	if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
		o.ID = &id
	}
	return nil
}

// VariationRow is one row of the admin variation grid as submitted back
// for saving: one option per axis plus the edited price and quantity.
//
// Malformed lists the fields that could not be decoded. A row with any
// malformed field is skipped when the grid is saved.
type VariationRow struct {
	Options   map[uuid.UUID]OptionRef
	Price     NullableDecimal
	Quantity  NullableInt
	Malformed []string
}

type variationRowWire struct {
	Options  map[uuid.UUID]OptionRef `json:"options"`
	Price    *NullableDecimal        `json:"price,omitempty"`
	Quantity *NullableInt            `json:"quantity,omitempty"`
}

// UnmarshalJSON accepts both the typed "options" map and the legacy
// "variation_type_<axisId>" keys. When both name the same axis the typed
// map wins. Undecodable fields are recorded in Malformed instead of failing
// the whole request.
func (r *VariationRow) UnmarshalJSON(data []byte) error {
	*r = VariationRow{Options: make(map[uuid.UUID]OptionRef)}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		r.Malformed = append(r.Malformed, "row")
		return nil
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		switch {
		case key == "options":
			// applied below
		case key == "price":
			if err := r.Price.UnmarshalJSON(value); err != nil {
				r.Price = NullableDecimal{}
				r.Malformed = append(r.Malformed, key)
			}
		case key == "quantity":
			if err := r.Quantity.UnmarshalJSON(value); err != nil {
				r.Quantity = NullableInt{}
				r.Malformed = append(r.Malformed, key)
			}
		case strings.HasPrefix(key, LegacyAxisKeyPrefix):
			axisID, err := uuid.Parse(strings.TrimPrefix(key, LegacyAxisKeyPrefix))
			if err != nil {
				r.Malformed = append(r.Malformed, key)
				continue
			}
			var ref OptionRef
			if err := json.Unmarshal(value, &ref); err != nil {
				r.Malformed = append(r.Malformed, key)
				continue
			}
			r.Options[axisID] = ref
		}
	}

	if value, ok := raw["options"]; ok {
		r.applyTypedOptions(value)
	}
	sort.Strings(r.Malformed)
	return nil
}

func (r *VariationRow) applyTypedOptions(value json.RawMessage) {
	var opts map[string]json.RawMessage
	if err := json.Unmarshal(value, &opts); err != nil {
		r.Malformed = append(r.Malformed, "options")
		return
	}
	for key, refData := range opts {
		axisID, err := uuid.Parse(key)
		if err != nil {
			r.Malformed = append(r.Malformed, "options."+key)
			continue
		}
		var ref OptionRef
		if err := json.Unmarshal(refData, &ref); err != nil {
			r.Malformed = append(r.Malformed, "options."+key)
			continue
		}
		r.Options[axisID] = ref
	}
}

func (r VariationRow) MarshalJSON() ([]byte, error) {
	wire := variationRowWire{Options: r.Options}
	if r.Price.Present {
		wire.Price = &r.Price
	}
	if r.Quantity.Present {
		wire.Quantity = &r.Quantity
	}
	return json.Marshal(wire)
}

// SaveVariationsRequest is the body of the grid save endpoint
type SaveVariationsRequest struct {
	Variations []VariationRow `json:"variations"`
}

// SelectionRequest carries a storefront selection keyed by variation type id
type SelectionRequest struct {
	Options map[uuid.UUID]uuid.UUID `json:"options"`
}

// CartQuoteRequest asks whether a selection can be added to the cart
type CartQuoteRequest struct {
	Options  map[uuid.UUID]uuid.UUID `json:"option_ids"`
	Quantity int                     `json:"quantity" binding:"required,min=1"`
}
