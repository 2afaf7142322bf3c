package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"variations-service/internal/models"
	"variations-service/internal/services"
	"variations-service/internal/variations"
)

// VariationService is the service surface the HTTP handlers depend on
type VariationService interface {
	CreateProduct(ctx context.Context, tenantID, actorID string, req models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, tenantID string, productID uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, tenantID string, req models.ListProductsRequest) ([]models.Product, int64, models.ListProductsRequest, error)
	UpdateProduct(ctx context.Context, tenantID string, productID uuid.UUID, req models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, tenantID string, productID uuid.UUID) error

	CreateVariationType(ctx context.Context, tenantID, actorID string, productID uuid.UUID, req models.CreateVariationTypeRequest) (*models.VariationType, error)
	UpdateVariationType(ctx context.Context, tenantID, actorID string, productID, typeID uuid.UUID, req models.UpdateVariationTypeRequest) (*models.VariationType, error)
	DeleteVariationType(ctx context.Context, tenantID, actorID string, productID, typeID uuid.UUID) error
	CreateVariationOption(ctx context.Context, tenantID, actorID string, productID, typeID uuid.UUID, req models.VariationOptionRequest) (*models.VariationOption, error)
	UpdateVariationOption(ctx context.Context, tenantID, actorID string, productID, typeID, optionID uuid.UUID, req models.VariationOptionRequest) (*models.VariationOption, error)
	DeleteVariationOption(ctx context.Context, tenantID, actorID string, productID, typeID, optionID uuid.UUID) error

	GetVariationGrid(ctx context.Context, tenantID string, productID uuid.UUID) (*services.VariationGrid, error)
	SaveVariations(ctx context.Context, tenantID, actorID string, productID uuid.UUID, rows []models.VariationRow) (*services.SaveResult, error)
	ExportVariationSheet(ctx context.Context, tenantID string, productID uuid.UUID) ([]byte, string, error)
	ImportVariationSheet(ctx context.Context, tenantID, actorID string, productID uuid.UUID, r io.Reader) (*models.ImportResult, error)

	ResolveSelection(ctx context.Context, tenantID string, productID uuid.UUID, selection variations.Selection) (*variations.Resolution, error)
	GetStorefrontProduct(ctx context.Context, tenantID string, productID uuid.UUID, requested variations.Selection) (*services.StorefrontProduct, error)
	QuoteCartLine(ctx context.Context, tenantID string, productID uuid.UUID, selection variations.Selection, quantity int) (*services.CartQuote, error)
}

var _ VariationService = (*services.VariationService)(nil)

// respondError maps service errors onto the error envelope
func respondError(c *gin.Context, err error, fallbackCode string) {
	status := http.StatusInternalServerError
	code := fallbackCode

	switch {
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrVariationTypeNotFound),
		errors.Is(err, services.ErrOptionNotFound),
		errors.Is(err, services.ErrProductNotPublished):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidSheet):
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, services.ErrLimitExceeded):
		status, code = http.StatusBadRequest, "LIMIT_EXCEEDED"
	case errors.Is(err, services.ErrIncompleteSelection):
		status, code = http.StatusBadRequest, "INCOMPLETE_SELECTION"
	case errors.Is(err, services.ErrQuantityUnavailable):
		status, code = http.StatusConflict, "QUANTITY_UNAVAILABLE"
	case errors.Is(err, services.ErrSaveFailed):
		code = "SAVE_FAILED"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		// don't leak driver errors
		message = "Internal error: " + code
	}

	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
		},
	})
}

func validationError(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "VALIDATION_ERROR",
			Message: message,
			Field:   field,
		},
	})
}

// uuidParam parses a path parameter, writing a 400 when it is not a UUID
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		validationError(c, name, "Invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
