package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"variations-service/internal/config"
	"variations-service/internal/models"
	"variations-service/internal/repository"
	"variations-service/internal/spreadsheet"
	"variations-service/internal/variations"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrVariationTypeNotFound = errors.New("variation type not found")
	ErrOptionNotFound        = errors.New("variation option not found")
	ErrIncompleteSelection   = errors.New("an option must be selected for every variation type")
	ErrQuantityUnavailable   = errors.New("requested quantity is not available")
	ErrProductNotPublished   = errors.New("product is not published")
	ErrInvalidSheet          = errors.New("invalid variation sheet")
	ErrInvalidInput          = errors.New("invalid input")
	ErrLimitExceeded         = errors.New("variation limit exceeded")
	ErrSaveFailed            = errors.New("failed to save variations")
)

// Actions reported on variation type and option change events
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EventPublisher announces variation changes. A nil *events.Publisher
// satisfies it and publishes nothing.
type EventPublisher interface {
	PublishVariationsSaved(ctx context.Context, product *models.Product, actorID string, saved, skipped int) error
	PublishVariationTypeChanged(ctx context.Context, product *models.Product, actorID string, typeID uuid.UUID, action string) error
	PublishVariationOptionChanged(ctx context.Context, product *models.Product, actorID string, optionID uuid.UUID, action string) error
}

type noopPublisher struct{}

func (noopPublisher) PublishVariationsSaved(context.Context, *models.Product, string, int, int) error {
	return nil
}

func (noopPublisher) PublishVariationTypeChanged(context.Context, *models.Product, string, uuid.UUID, string) error {
	return nil
}

func (noopPublisher) PublishVariationOptionChanged(context.Context, *models.Product, string, uuid.UUID, string) error {
	return nil
}

// VariationService handles products, their variation axes and the variant grid
type VariationService struct {
	repo      repository.VariationsRepositoryInterface
	publisher EventPublisher
	settings  config.Settings
	logger    *logrus.Entry
}

// NewVariationService creates a new VariationService
func NewVariationService(repo repository.VariationsRepositoryInterface, publisher EventPublisher, settings config.Settings, logger *logrus.Logger) *VariationService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &VariationService{
		repo:      repo,
		publisher: publisher,
		settings:  settings,
		logger:    logger.WithField("component", "variation-service"),
	}
}

// VariationGrid is the admin view of every combination with its price and stock
type VariationGrid struct {
	ProductID      uuid.UUID                      `json:"productId"`
	VariationTypes []models.VariationType         `json:"variationTypes"`
	Variations     []variations.PricedCombination `json:"variations"`
	Duplicates     []variations.DuplicateMatch    `json:"duplicates,omitempty"`
	Orphaned       []uuid.UUID                    `json:"orphaned,omitempty"`
}

// SaveResult reports the outcome of a grid save
type SaveResult struct {
	Saved   int                     `json:"saved"`
	Skipped []variations.SkippedRow `json:"skipped"`
}

// StorefrontProduct is the product page payload: the product with its axes
// and variants, the effective selection and what it resolves to
type StorefrontProduct struct {
	Product    *models.Product       `json:"product"`
	Selected   variations.Selection  `json:"selectedOptions"`
	Resolution variations.Resolution `json:"resolution"`
}

// CartQuote is the priced result of an add-to-cart check
type CartQuote struct {
	ProductID uuid.UUID            `json:"productId"`
	VariantID *uuid.UUID           `json:"variantId,omitempty"`
	Options   variations.Selection `json:"options"`
	Quantity  int                  `json:"quantity"`
	UnitPrice decimal.Decimal      `json:"unitPrice"`
	LineTotal decimal.Decimal      `json:"lineTotal"`
	Currency  string               `json:"currency"`
	Images    []models.Image       `json:"images"`
}

// ---- Products ----

// CreateProduct creates a product without variation types
func (s *VariationService) CreateProduct(ctx context.Context, tenantID, actorID string, req models.CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Images:      datatypes.JSONSlice[models.Image](req.Images),
		CreatedByID: actorID,
	}
	if req.Slug != nil {
		product.Slug = repository.GenerateSlug(*req.Slug)
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		product.Status = *req.Status
	}

	if err := s.repo.CreateProduct(ctx, tenantID, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// GetProduct returns a product with its variation types and variants
func (s *VariationService) GetProduct(ctx context.Context, tenantID string, productID uuid.UUID) (*models.Product, error) {
	return s.loadProduct(ctx, tenantID, productID)
}

// ListProducts returns a page of products. Page and limit are clamped to
// the configured bounds.
func (s *VariationService) ListProducts(ctx context.Context, tenantID string, req models.ListProductsRequest) ([]models.Product, int64, models.ListProductsRequest, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = s.settings.DefaultPageSize
		if req.Limit < 1 {
			req.Limit = 20
		}
	}
	if s.settings.MaxPageSize > 0 && req.Limit > s.settings.MaxPageSize {
		req.Limit = s.settings.MaxPageSize
	}

	products, total, err := s.repo.ListProducts(ctx, tenantID, req)
	if err != nil {
		return nil, 0, req, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, req, nil
}

// UpdateProduct applies the fields present in req
func (s *VariationService) UpdateProduct(ctx context.Context, tenantID string, productID uuid.UUID, req models.UpdateProductRequest) (*models.Product, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		slug := repository.GenerateSlug(*req.Slug)
		if slug == "" {
			return nil, fmt.Errorf("%w: slug cannot be empty", ErrInvalidInput)
		}
		updates["slug"] = slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
		}
		updates["price"] = *req.Price
	}
	if req.Quantity.Present {
		if req.Quantity.Value != nil && *req.Quantity.Value < 0 {
			return nil, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
		}
		updates["quantity"] = req.Quantity.Value
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		updates["status"] = *req.Status
	}
	if req.Images != nil {
		updates["images"] = datatypes.JSONSlice[models.Image](req.Images)
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateProduct(ctx, tenantID, productID, updates); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}
	return s.loadProduct(ctx, tenantID, productID)
}

// DeleteProduct removes a product and all of its variation data
func (s *VariationService) DeleteProduct(ctx context.Context, tenantID string, productID uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, tenantID, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// ---- Variation types ----

// CreateVariationType adds an axis, optionally with its options
func (s *VariationService) CreateVariationType(ctx context.Context, tenantID, actorID string, productID uuid.UUID, req models.CreateVariationTypeRequest) (*models.VariationType, error) {
	product, err := s.loadProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := checkAxisName(product.VariationTypes, uuid.Nil, name); err != nil {
		return nil, err
	}
	kind := req.Kind
	if kind == "" {
		kind = models.DisplayKindSelect
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown variation type %q", ErrInvalidInput, kind)
	}
	if s.settings.MaxVariationTypes > 0 && len(product.VariationTypes) >= s.settings.MaxVariationTypes {
		return nil, fmt.Errorf("%w: at most %d variation types per product", ErrLimitExceeded, s.settings.MaxVariationTypes)
	}

	variationType := &models.VariationType{
		ID:        uuid.New(),
		ProductID: product.ID,
		Name:      name,
		Kind:      kind,
		Position:  len(product.VariationTypes),
	}
	if req.Position != nil {
		variationType.Position = *req.Position
	}
	for i, opt := range req.Options {
		if opt.Name == nil || strings.TrimSpace(*opt.Name) == "" {
			return nil, fmt.Errorf("%w: option %d has no name", ErrInvalidInput, i)
		}
		option := models.VariationOption{
			ID:              uuid.New(),
			VariationTypeID: variationType.ID,
			Name:            strings.TrimSpace(*opt.Name),
			Position:        i,
			Images:          datatypes.JSONSlice[models.Image](opt.Images),
		}
		if opt.Position != nil {
			option.Position = *opt.Position
		}
		variationType.Options = append(variationType.Options, option)
	}

	axes := append(append([]models.VariationType{}, product.VariationTypes...), *variationType)
	if err := s.checkLimits(axes); err != nil {
		return nil, err
	}

	if err := s.repo.CreateVariationType(ctx, variationType); err != nil {
		return nil, fmt.Errorf("failed to create variation type: %w", err)
	}
	s.repo.InvalidateProduct(ctx, tenantID, product.ID)
	_ = s.publisher.PublishVariationTypeChanged(ctx, product, actorID, variationType.ID, ActionCreated)
	return variationType, nil
}

// UpdateVariationType renames, re-kinds or moves an axis
func (s *VariationService) UpdateVariationType(ctx context.Context, tenantID, actorID string, productID, typeID uuid.UUID, req models.UpdateVariationTypeRequest) (*models.VariationType, error) {
	product, axis, err := s.loadAxis(ctx, tenantID, productID, typeID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		if err := checkAxisName(product.VariationTypes, axis.ID, name); err != nil {
			return nil, err
		}
		updates["name"] = name
		axis.Name = name
	}
	if req.Kind != nil {
		if !req.Kind.Valid() {
			return nil, fmt.Errorf("%w: unknown variation type %q", ErrInvalidInput, *req.Kind)
		}
		updates["kind"] = *req.Kind
		axis.Kind = *req.Kind
	}
	if req.Position != nil {
		updates["position"] = *req.Position
		axis.Position = *req.Position
	}
	if len(updates) == 0 {
		return axis, nil
	}

	if err := s.repo.UpdateVariationType(ctx, typeID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVariationTypeNotFound
		}
		return nil, fmt.Errorf("failed to update variation type: %w", err)
	}
	s.repo.InvalidateProduct(ctx, tenantID, product.ID)
	_ = s.publisher.PublishVariationTypeChanged(ctx, product, actorID, typeID, ActionUpdated)
	return axis, nil
}

// DeleteVariationType removes an axis, its options and every variant of the product
func (s *VariationService) DeleteVariationType(ctx context.Context, tenantID, actorID string, productID, typeID uuid.UUID) error {
	product, _, err := s.loadAxis(ctx, tenantID, productID, typeID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteVariationType(ctx, product.ID, typeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVariationTypeNotFound
		}
		return fmt.Errorf("failed to delete variation type: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"product_id":     product.ID,
		"variation_type": typeID,
		"variants":       len(product.Variants),
	}).Info("Variation type deleted; product variants cleared")

	s.repo.InvalidateProduct(ctx, tenantID, product.ID)
	_ = s.publisher.PublishVariationTypeChanged(ctx, product, actorID, typeID, ActionDeleted)
	return nil
}

// ---- Variation options ----

// CreateVariationOption appends an option to an axis
func (s *VariationService) CreateVariationOption(ctx context.Context, tenantID, actorID string, productID, typeID uuid.UUID, req models.VariationOptionRequest) (*models.VariationOption, error) {
	product, axis, err := s.loadAxis(ctx, tenantID, productID, typeID)
	if err != nil {
		return nil, err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	option := &models.VariationOption{
		ID:              uuid.New(),
		VariationTypeID: axis.ID,
		Name:            strings.TrimSpace(*req.Name),
		Position:        len(axis.Options),
		Images:          datatypes.JSONSlice[models.Image](req.Images),
	}
	if req.Position != nil {
		option.Position = *req.Position
	}

	axes := make([]models.VariationType, len(product.VariationTypes))
	copy(axes, product.VariationTypes)
	for i := range axes {
		if axes[i].ID == axis.ID {
			axes[i].Options = append(append([]models.VariationOption{}, axes[i].Options...), *option)
		}
	}
	if err := s.checkLimits(axes); err != nil {
		return nil, err
	}

	if err := s.repo.CreateVariationOption(ctx, option); err != nil {
		return nil, fmt.Errorf("failed to create variation option: %w", err)
	}
	s.repo.InvalidateProduct(ctx, tenantID, product.ID)
	_ = s.publisher.PublishVariationOptionChanged(ctx, product, actorID, option.ID, ActionCreated)
	return option, nil
}

// UpdateVariationOption edits an option's name, position or images
func (s *VariationService) UpdateVariationOption(ctx context.Context, tenantID, actorID string, productID, typeID, optionID uuid.UUID, req models.VariationOptionRequest) (*models.VariationOption, error) {
	product, axis, err := s.loadAxis(ctx, tenantID, productID, typeID)
	if err != nil {
		return nil, err
	}
	option, ok := axis.FindOption(optionID)
	if !ok {
		return nil, ErrOptionNotFound
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		updates["name"] = name
		option.Name = name
	}
	if req.Position != nil {
		updates["position"] = *req.Position
		option.Position = *req.Position
	}
	if req.Images != nil {
		images := datatypes.JSONSlice[models.Image](req.Images)
		updates["images"] = images
		option.Images = images
	}
	if len(updates) == 0 {
		return option, nil
	}

	if err := s.repo.UpdateVariationOption(ctx, optionID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOptionNotFound
		}
		return nil, fmt.Errorf("failed to update variation option: %w", err)
	}
	s.repo.InvalidateProduct(ctx, tenantID, product.ID)
	_ = s.publisher.PublishVariationOptionChanged(ctx, product, actorID, optionID, ActionUpdated)
	return option, nil
}

// DeleteVariationOption removes an option and the variants that use it
func (s *VariationService) DeleteVariationOption(ctx context.Context, tenantID, actorID string, productID, typeID, optionID uuid.UUID) error {
	product, axis, err := s.loadAxis(ctx, tenantID, productID, typeID)
	if err != nil {
		return err
	}
	if _, ok := axis.FindOption(optionID); !ok {
		return ErrOptionNotFound
	}
	if err := s.repo.DeleteVariationOption(ctx, product.ID, optionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOptionNotFound
		}
		return fmt.Errorf("failed to delete variation option: %w", err)
	}
	s.repo.InvalidateProduct(ctx, tenantID, product.ID)
	_ = s.publisher.PublishVariationOptionChanged(ctx, product, actorID, optionID, ActionDeleted)
	return nil
}

// ---- Variation grid ----

// GetVariationGrid lists every combination of the product's options with
// the stored price and quantity, or the product's own when none is stored
func (s *VariationService) GetVariationGrid(ctx context.Context, tenantID string, productID uuid.UUID) (*VariationGrid, error) {
	product, err := s.loadProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return s.buildGrid(product), nil
}

func (s *VariationService) buildGrid(product *models.Product) *VariationGrid {
	combinations := variations.GenerateCombinations(product.VariationTypes)
	result := variations.Reconcile(combinations, product.Variants, product.Price, product.Quantity)
	s.logIntegrity(product.TenantID, product.ID, result)

	return &VariationGrid{
		ProductID:      product.ID,
		VariationTypes: product.VariationTypes,
		Variations:     result.Rows,
		Duplicates:     result.Duplicates,
		Orphaned:       result.Orphaned,
	}
}

// SaveVariations replaces the product's variants with the submitted rows
func (s *VariationService) SaveVariations(ctx context.Context, tenantID, actorID string, productID uuid.UUID, rows []models.VariationRow) (*SaveResult, error) {
	product, err := s.loadProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return s.saveRows(ctx, product, actorID, rows)
}

func (s *VariationService) saveRows(ctx context.Context, product *models.Product, actorID string, rows []models.VariationRow) (*SaveResult, error) {
	normalized := variations.Normalize(product.VariationTypes, rows)
	for _, skipped := range normalized.Skipped {
		s.logger.WithFields(logrus.Fields{
			"tenant_id":  product.TenantID,
			"product_id": product.ID,
			"row":        skipped.Index,
			"reason":     skipped.Reason,
			"field":      skipped.Field,
		}).Warn("Skipping variation row")
	}

	variants := make([]models.Variant, len(normalized.Records))
	for i, record := range normalized.Records {
		variants[i] = record.Variant(product.ID)
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repository.VariationsRepositoryInterface) error {
		if err := txRepo.ReplaceVariants(ctx, product.ID, variants); err != nil {
			return err
		}
		return txRepo.UpdateProduct(ctx, product.TenantID, product.ID, map[string]interface{}{})
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tenant_id":  product.TenantID,
			"product_id": product.ID,
		}).Error("Failed to replace variants")
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	s.repo.InvalidateProduct(ctx, product.TenantID, product.ID)

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  product.TenantID,
		"product_id": product.ID,
		"saved":      len(variants),
		"skipped":    len(normalized.Skipped),
	}).Info("Variations saved")
	_ = s.publisher.PublishVariationsSaved(ctx, product, actorID, len(variants), len(normalized.Skipped))

	skipped := normalized.Skipped
	if skipped == nil {
		skipped = []variations.SkippedRow{}
	}
	return &SaveResult{Saved: len(variants), Skipped: skipped}, nil
}

// ---- Storefront ----

// ResolveSelection resolves exactly the given, possibly partial, selection
func (s *VariationService) ResolveSelection(ctx context.Context, tenantID string, productID uuid.UUID, selection variations.Selection) (*variations.Resolution, error) {
	product, err := s.loadPublished(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	res := variations.Resolve(product, selection)
	return &res, nil
}

// GetStorefrontProduct returns the product page: requested options are kept
// where valid and every other axis starts on its first option
func (s *VariationService) GetStorefrontProduct(ctx context.Context, tenantID string, productID uuid.UUID, requested variations.Selection) (*StorefrontProduct, error) {
	product, err := s.loadPublished(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	selected := variations.DefaultSelection(product, requested)
	return &StorefrontProduct{
		Product:    product,
		Selected:   selected,
		Resolution: variations.Resolve(product, selected),
	}, nil
}

// QuoteCartLine checks that quantity units of the selected combination can
// be ordered and prices the line
func (s *VariationService) QuoteCartLine(ctx context.Context, tenantID string, productID uuid.UUID, selection variations.Selection, quantity int) (*CartQuote, error) {
	product, err := s.loadPublished(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	res := variations.Resolve(product, selection)
	if len(product.VariationTypes) > 0 && !res.Complete {
		return nil, ErrIncompleteSelection
	}
	if quantity < 1 || !res.InStock || quantity > res.MaxOrderQuantity {
		return nil, fmt.Errorf("%w: %d requested, at most %d", ErrQuantityUnavailable, quantity, res.MaxOrderQuantity)
	}

	return &CartQuote{
		ProductID: product.ID,
		VariantID: res.VariantID,
		Options:   res.Selected,
		Quantity:  quantity,
		UnitPrice: res.Price,
		LineTotal: res.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Currency:  s.settings.Currency,
		Images:    res.Images,
	}, nil
}

// ---- Spreadsheets ----

// ExportVariationSheet renders the variation grid as an xlsx workbook and
// returns it with a download file name
func (s *VariationService) ExportVariationSheet(ctx context.Context, tenantID string, productID uuid.UUID) ([]byte, string, error) {
	product, err := s.loadProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, "", err
	}
	grid := s.buildGrid(product)

	var buf bytes.Buffer
	if err := spreadsheet.WriteVariationSheet(&buf, grid.VariationTypes, grid.Variations); err != nil {
		return nil, "", fmt.Errorf("failed to write variation sheet: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("%s-variations.xlsx", product.Slug), nil
}

// ImportVariationSheet replaces the grid with the rows of an uploaded sheet.
// Rows with bad numbers or unknown options are reported, not saved. A sheet
// without a single usable row is rejected and the grid is left untouched.
func (s *VariationService) ImportVariationSheet(ctx context.Context, tenantID, actorID string, productID uuid.UUID, r io.Reader) (*models.ImportResult, error) {
	product, err := s.loadProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	sheet, err := spreadsheet.ReadVariationSheet(r, product.VariationTypes)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrInvalidSheet) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
		}
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("%w: no valid rows (%d rejected)", ErrInvalidSheet, len(sheet.Errors))
	}

	saved, err := s.saveRows(ctx, product, actorID, sheet.Rows)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{
		TotalRows:  sheet.TotalRows,
		SavedCount: saved.Saved,
		Errors:     sheet.Errors,
	}
	for _, skipped := range saved.Skipped {
		rowErr := models.ImportRowError{
			Row:     sheet.RowNumbers[skipped.Index],
			Code:    "ROW_SKIPPED",
			Message: skipped.Reason,
		}
		if skipped.AxisID != nil {
			for _, axis := range product.VariationTypes {
				if axis.ID == *skipped.AxisID {
					rowErr.Column = axis.Name
				}
			}
		}
		result.Errors = append(result.Errors, rowErr)
	}
	result.SkippedCount = len(result.Errors)
	result.Success = result.SkippedCount == 0
	return result, nil
}

// PurgeProductVariations drops all variation data of deleted products
func (s *VariationService) PurgeProductVariations(ctx context.Context, tenantID string, productIDs []uuid.UUID) (int64, error) {
	deleted, err := s.repo.DeleteVariationsByProductIDs(ctx, productIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to purge variations: %w", err)
	}
	for _, id := range productIDs {
		s.repo.InvalidateProduct(ctx, tenantID, id)
	}
	return deleted, nil
}

// ---- helpers ----

func (s *VariationService) loadProduct(ctx context.Context, tenantID string, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetProduct(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

func (s *VariationService) loadPublished(ctx context.Context, tenantID string, productID uuid.UUID) (*models.Product, error) {
	product, err := s.loadProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product.Status != models.ProductStatusPublished {
		return nil, ErrProductNotPublished
	}
	return product, nil
}

func (s *VariationService) loadAxis(ctx context.Context, tenantID string, productID, typeID uuid.UUID) (*models.Product, *models.VariationType, error) {
	product, err := s.loadProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, nil, err
	}
	for i := range product.VariationTypes {
		if product.VariationTypes[i].ID == typeID {
			return product, &product.VariationTypes[i], nil
		}
	}
	return nil, nil, ErrVariationTypeNotFound
}

func (s *VariationService) checkLimits(axes []models.VariationType) error {
	if limit := s.settings.MaxOptionsPerType; limit > 0 {
		for _, axis := range axes {
			if len(axis.Options) > limit {
				return fmt.Errorf("%w: %q has more than %d options", ErrLimitExceeded, axis.Name, limit)
			}
		}
	}
	if limit := s.settings.MaxCombinations; limit > 0 {
		if count := variations.CombinationCount(axes); count > limit {
			return fmt.Errorf("%w: %d combinations, at most %d", ErrLimitExceeded, count, limit)
		}
	}
	return nil
}

func (s *VariationService) logIntegrity(tenantID string, productID uuid.UUID, result variations.ReconcileResult) {
	for _, dup := range result.Duplicates {
		s.logger.WithFields(logrus.Fields{
			"tenant_id":   tenantID,
			"product_id":  productID,
			"option_key":  dup.OptionKey,
			"variant_ids": dup.VariantIDs,
			"chosen":      dup.Chosen,
		}).Warn("Duplicate variants share an option set; using the lowest id")
	}
	if len(result.Orphaned) > 0 {
		s.logger.WithFields(logrus.Fields{
			"tenant_id":  tenantID,
			"product_id": productID,
			"orphaned":   len(result.Orphaned),
		}).Warn("Stored variants match no current combination")
	}
}

// checkAxisName keeps axis names usable as sheet headers: unique per product
// and distinct from the fixed price and quantity columns
func checkAxisName(axes []models.VariationType, self uuid.UUID, name string) error {
	if spreadsheet.ReservedHeader(name) {
		return fmt.Errorf("%w: %q is a reserved variation type name", ErrInvalidInput, name)
	}
	key := spreadsheet.HeaderKey(name)
	for _, axis := range axes {
		if axis.ID != self && spreadsheet.HeaderKey(axis.Name) == key {
			return fmt.Errorf("%w: variation type %q already exists", ErrInvalidInput, axis.Name)
		}
	}
	return nil
}

func validStatus(status models.ProductStatus) bool {
	switch status {
	case models.ProductStatusDraft, models.ProductStatusPublished, models.ProductStatusArchived:
		return true
	}
	return false
}
