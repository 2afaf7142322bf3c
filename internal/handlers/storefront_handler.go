package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"variations-service/internal/middleware"
	"variations-service/internal/models"
	"variations-service/internal/variations"
)

// StorefrontHandler serves the public product page and add-to-cart checks
type StorefrontHandler struct {
	service VariationService
}

func NewStorefrontHandler(service VariationService) *StorefrontHandler {
	return &StorefrontHandler{service: service}
}

// GetProduct returns a published product with the effective selection and
// what it resolves to. Malformed entries in options[...] are ignored, like
// unknown ones.
// @Summary Get storefront product
// @Tags storefront
// @Produce json
// @Param id path string true "Product ID"
// @Param options query object false "options[<variationTypeId>]=<optionId>"
// @Success 200 {object} models.SuccessResponse{data=services.StorefrontProduct}
// @Failure 404 {object} models.ErrorResponse
// @Router /storefront/products/{id} [get]
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	requested := variations.Selection{}
	for axis, option := range c.QueryMap("options") {
		axisID, err := uuid.Parse(axis)
		if err != nil {
			continue
		}
		optionID, err := uuid.Parse(option)
		if err != nil {
			continue
		}
		requested[axisID] = optionID
	}

	page, err := h.service.GetStorefrontProduct(c.Request.Context(), middleware.GetTenantID(c), productID, requested)
	if err != nil {
		respondError(c, err, "FETCH_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: page})
}

// ResolveSelection resolves price, stock and images for a possibly partial
// selection
// @Summary Resolve selection
// @Tags storefront
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param selection body models.SelectionRequest true "Selected options by variation type"
// @Success 200 {object} models.SuccessResponse{data=variations.Resolution}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /storefront/products/{id}/resolve [post]
func (h *StorefrontHandler) ResolveSelection(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "options", err.Error())
		return
	}

	res, err := h.service.ResolveSelection(c.Request.Context(), middleware.GetTenantID(c), productID, variations.Selection(req.Options))
	if err != nil {
		respondError(c, err, "FETCH_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: res})
}

// QuoteCartLine checks that a selection can be added to the cart in the
// requested quantity and prices the line
// @Summary Quote cart line
// @Tags storefront
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param quote body models.CartQuoteRequest true "Selection and quantity"
// @Success 200 {object} models.SuccessResponse{data=services.CartQuote}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /storefront/products/{id}/cart-quote [post]
func (h *StorefrontHandler) QuoteCartLine(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.CartQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "quantity", err.Error())
		return
	}

	quote, err := h.service.QuoteCartLine(c.Request.Context(), middleware.GetTenantID(c), productID, variations.Selection(req.Options), req.Quantity)
	if err != nil {
		respondError(c, err, "QUOTE_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: quote})
}
