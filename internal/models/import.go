package models

// ImportTemplateColumn describes a fixed column of the variation sheet
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number
	Example     string `json:"example"`
}

// ImportRowError reports a sheet row that could not be turned into a variant
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult summarizes a variation sheet import
type ImportResult struct {
	Success      bool             `json:"success"`
	TotalRows    int              `json:"totalRows"`
	SavedCount   int              `json:"savedCount"`
	SkippedCount int              `json:"skippedCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
}

// Sheet cell markers for explicit nulls
const (
	SheetUnlimitedQuantity = "unlimited"
	SheetDefaultPrice      = "default"
)

// VariationSheetColumns returns the fixed trailing columns of the variation
// sheet. Axis columns come first, one per variation type, named after it.
func VariationSheetColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "Price", Description: "Variant price. Empty means 0, \"" + SheetDefaultPrice + "\" uses the product price", Required: false, Type: "number", Example: "29.99"},
		{Name: "Quantity", Description: "Stock for the variant. Empty means 0, \"" + SheetUnlimitedQuantity + "\" disables stock tracking", Required: false, Type: "number", Example: "12"},
	}
}
