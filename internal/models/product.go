package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductStatus represents the publication status of a product
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "DRAFT"
	ProductStatusPublished ProductStatus = "PUBLISHED"
	ProductStatusArchived  ProductStatus = "ARCHIVED"
)

// DisplayKind controls how the storefront renders a variation type
type DisplayKind string

const (
	DisplayKindSelect DisplayKind = "Select"
	DisplayKindRadio  DisplayKind = "Radio"
	DisplayKindImage  DisplayKind = "Image"
)

// Valid reports whether k is one of the supported display kinds
func (k DisplayKind) Valid() bool {
	switch k {
	case DisplayKindSelect, DisplayKindRadio, DisplayKindImage:
		return true
	}
	return false
}

// Image is a media item with its pre-rendered sizes
type Image struct {
	ID    string `json:"id"`
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

// Product is the sellable item that owns variation types and variants.
// Price and Quantity are the defaults used when no variant applies; a nil
// Quantity means stock is not tracked.
type Product struct {
	ID             uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID       string                      `json:"tenantId" gorm:"column:tenant_id;not null;index"`
	Name           string                      `json:"name" gorm:"not null"`
	Slug           string                      `json:"slug" gorm:"not null;index"`
	Description    *string                     `json:"description,omitempty"`
	Price          decimal.Decimal             `json:"price" gorm:"type:numeric(12,2);not null"`
	Quantity       *int                        `json:"quantity"`
	Status         ProductStatus               `json:"status" gorm:"not null;default:'DRAFT'"`
	Images         datatypes.JSONSlice[Image]  `json:"images" gorm:"type:jsonb"`
	CreatedByID    string                      `json:"createdById,omitempty" gorm:"column:created_by_id"`
	VariationTypes []VariationType             `json:"variationTypes" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variants       []Variant                   `json:"variations" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
	DeletedAt      *gorm.DeletedAt             `json:"deletedAt,omitempty" gorm:"index"`
}

// VariationType is one axis of variation (Color, Size) on a product
type VariationType struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID uuid.UUID         `json:"productId" gorm:"type:uuid;not null;index"`
	Name      string            `json:"name" gorm:"not null"`
	Kind      DisplayKind       `json:"type" gorm:"column:kind;not null;default:'Select'"`
	Position  int               `json:"position" gorm:"not null;default:0"`
	Options   []VariationOption `json:"options" gorm:"foreignKey:VariationTypeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// FindOption returns the option of this type with the given id
func (t *VariationType) FindOption(id uuid.UUID) (*VariationOption, bool) {
	for i := range t.Options {
		if t.Options[i].ID == id {
			return &t.Options[i], true
		}
	}
	return nil, false
}

// VariationOption is one value on a variation type
type VariationOption struct {
	ID              uuid.UUID                  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	VariationTypeID uuid.UUID                  `json:"variationTypeId" gorm:"type:uuid;not null;index"`
	Name            string                     `json:"name" gorm:"not null"`
	Position        int                        `json:"position" gorm:"not null;default:0"`
	Images          datatypes.JSONSlice[Image] `json:"images" gorm:"type:jsonb"`
	CreatedAt       time.Time                  `json:"createdAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
}

// Variant is a persisted, priced combination of one option per variation type.
// OptionIDs keeps the submitted axis order; OptionKey is the canonical sorted
// form used for set comparison and uniqueness.
type Variant struct {
	ID        uuid.UUID                      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID uuid.UUID                      `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_variant_product_option_key"`
	OptionIDs datatypes.JSONSlice[uuid.UUID] `json:"variation_type_option_ids" gorm:"column:variation_type_option_ids;type:jsonb;not null"`
	OptionKey string                         `json:"-" gorm:"column:option_key;not null;uniqueIndex:idx_variant_product_option_key"`
	Price     *decimal.Decimal               `json:"price" gorm:"type:numeric(12,2)"`
	Quantity  *int                           `json:"quantity"`
	CreatedAt time.Time                      `json:"createdAt"`
	UpdatedAt time.Time                      `json:"updatedAt"`
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Slug        *string         `json:"slug,omitempty"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    *int            `json:"quantity,omitempty"`
	Status      *ProductStatus  `json:"status,omitempty"`
	Images      []Image         `json:"images,omitempty"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Slug        *string          `json:"slug,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    NullableInt      `json:"quantity"` // null stops stock tracking
	Status      *ProductStatus   `json:"status,omitempty"`
	Images      []Image          `json:"images,omitempty"`
}

// ListProductsRequest holds list filters and pagination
type ListProductsRequest struct {
	Page   int
	Limit  int
	Status *ProductStatus
	Search *string
}

// CreateVariationTypeRequest represents a request to add a variation type
type CreateVariationTypeRequest struct {
	Name     string      `json:"name" binding:"required"`
	Kind     DisplayKind `json:"type"`
	Position *int        `json:"position,omitempty"`
	Options  []VariationOptionRequest `json:"options,omitempty"`
}

// UpdateVariationTypeRequest represents a request to edit a variation type
type UpdateVariationTypeRequest struct {
	Name     *string      `json:"name,omitempty"`
	Kind     *DisplayKind `json:"type,omitempty"`
	Position *int         `json:"position,omitempty"`
}

// VariationOptionRequest creates or edits a variation option
type VariationOptionRequest struct {
	Name     *string `json:"name,omitempty"`
	Position *int    `json:"position,omitempty"`
	Images   []Image `json:"images,omitempty"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the VariationType model
func (VariationType) TableName() string {
	return "variation_types"
}

// TableName returns the table name for the VariationOption model
func (VariationOption) TableName() string {
	return "variation_type_options"
}

// TableName returns the table name for the Variant model
func (Variant) TableName() string {
	return "product_variations"
}
