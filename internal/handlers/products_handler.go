package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"variations-service/internal/middleware"
	"variations-service/internal/models"
)

type ProductsHandler struct {
	service VariationService
}

func NewProductsHandler(service VariationService) *ProductsHandler {
	return &ProductsHandler{service: service}
}

// CreateProduct creates a new product
// @Summary Create product
// @Description Create a product without variation types
// @Tags products
// @Accept json
// @Produce json
// @Param product body models.CreateProductRequest true "Product"
// @Success 201 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products [post]
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "", err.Error())
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err, "CREATE_FAILED")
		return
	}

	c.JSON(http.StatusCreated, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// GetProducts lists products
// @Summary List products
// @Tags products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Param status query string false "DRAFT, PUBLISHED or ARCHIVED"
// @Param search query string false "Matches name or slug"
// @Success 200 {object} models.ProductListResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products [get]
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	req := models.ListProductsRequest{Page: page, Limit: limit}
	if status := c.Query("status"); status != "" {
		s := models.ProductStatus(status)
		req.Status = &s
	}
	if search := c.Query("search"); search != "" {
		req.Search = &search
	}

	products, total, applied, err := h.service.ListProducts(c.Request.Context(), middleware.GetTenantID(c), req)
	if err != nil {
		respondError(c, err, "FETCH_FAILED")
		return
	}

	totalPages := int((total + int64(applied.Limit) - 1) / int64(applied.Limit))
	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    products,
		Pagination: &models.PaginationInfo{
			Page:        applied.Page,
			Limit:       applied.Limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     applied.Page < totalPages,
			HasPrevious: applied.Page > 1,
		},
	})
}

// GetProduct retrieves a single product with its variation types and variants
// @Summary Get product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.ProductResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), middleware.GetTenantID(c), productID)
	if err != nil {
		respondError(c, err, "FETCH_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// UpdateProduct updates the fields present in the body. "quantity": null
// stops stock tracking.
// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body models.UpdateProductRequest true "Fields to change"
// @Success 200 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "", err.Error())
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), middleware.GetTenantID(c), productID, req)
	if err != nil {
		respondError(c, err, "UPDATE_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// DeleteProduct deletes a product and its variations
// @Summary Delete product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), middleware.GetTenantID(c), productID); err != nil {
		respondError(c, err, "DELETE_FAILED")
		return
	}

	message := "Product deleted successfully"
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: &message,
	})
}
