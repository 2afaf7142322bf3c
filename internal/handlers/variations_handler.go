package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"variations-service/internal/middleware"
	"variations-service/internal/models"
)

// MaxSheetSize bounds uploaded variation sheets
const MaxSheetSize = 10 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// VariationsHandler serves the admin endpoints for variation types, options
// and the variant grid
type VariationsHandler struct {
	service VariationService
}

func NewVariationsHandler(service VariationService) *VariationsHandler {
	return &VariationsHandler{service: service}
}

// CreateVariationType adds a variation type to a product
// @Summary Create variation type
// @Tags variations
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param variationType body models.CreateVariationTypeRequest true "Variation type, optionally with options"
// @Success 201 {object} models.VariationTypeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/variation-types [post]
func (h *VariationsHandler) CreateVariationType(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.CreateVariationTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "", err.Error())
		return
	}

	variationType, err := h.service.CreateVariationType(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), productID, req)
	if err != nil {
		respondError(c, err, "CREATE_FAILED")
		return
	}

	c.JSON(http.StatusCreated, models.VariationTypeResponse{
		Success: true,
		Data:    variationType,
	})
}

// UpdateVariationType edits a variation type
// @Summary Update variation type
// @Tags variations
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param typeId path string true "Variation type ID"
// @Param variationType body models.UpdateVariationTypeRequest true "Fields to change"
// @Success 200 {object} models.VariationTypeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/variation-types/{typeId} [put]
func (h *VariationsHandler) UpdateVariationType(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	typeID, ok := uuidParam(c, "typeId")
	if !ok {
		return
	}

	var req models.UpdateVariationTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "", err.Error())
		return
	}

	variationType, err := h.service.UpdateVariationType(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), productID, typeID, req)
	if err != nil {
		respondError(c, err, "UPDATE_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.VariationTypeResponse{
		Success: true,
		Data:    variationType,
	})
}

// DeleteVariationType removes a variation type. All variants of the product
// are cleared.
// @Summary Delete variation type
// @Tags variations
// @Produce json
// @Param id path string true "Product ID"
// @Param typeId path string true "Variation type ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/variation-types/{typeId} [delete]
func (h *VariationsHandler) DeleteVariationType(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	typeID, ok := uuidParam(c, "typeId")
	if !ok {
		return
	}

	if err := h.service.DeleteVariationType(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), productID, typeID); err != nil {
		respondError(c, err, "DELETE_FAILED")
		return
	}

	message := "Variation type deleted successfully"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

// CreateVariationOption adds an option to a variation type
// @Summary Create variation option
// @Tags variations
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param typeId path string true "Variation type ID"
// @Param option body models.VariationOptionRequest true "Option"
// @Success 201 {object} models.VariationOptionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/variation-types/{typeId}/options [post]
func (h *VariationsHandler) CreateVariationOption(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	typeID, ok := uuidParam(c, "typeId")
	if !ok {
		return
	}

	var req models.VariationOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "", err.Error())
		return
	}

	option, err := h.service.CreateVariationOption(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), productID, typeID, req)
	if err != nil {
		respondError(c, err, "CREATE_FAILED")
		return
	}

	c.JSON(http.StatusCreated, models.VariationOptionResponse{
		Success: true,
		Data:    option,
	})
}

// UpdateVariationOption edits an option
// @Summary Update variation option
// @Tags variations
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param typeId path string true "Variation type ID"
// @Param optionId path string true "Option ID"
// @Param option body models.VariationOptionRequest true "Fields to change"
// @Success 200 {object} models.VariationOptionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/variation-types/{typeId}/options/{optionId} [put]
func (h *VariationsHandler) UpdateVariationOption(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	typeID, ok := uuidParam(c, "typeId")
	if !ok {
		return
	}
	optionID, ok := uuidParam(c, "optionId")
	if !ok {
		return
	}

	var req models.VariationOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "", err.Error())
		return
	}

	option, err := h.service.UpdateVariationOption(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), productID, typeID, optionID, req)
	if err != nil {
		respondError(c, err, "UPDATE_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.VariationOptionResponse{
		Success: true,
		Data:    option,
	})
}

// DeleteVariationOption removes an option and the variants using it
// @Summary Delete variation option
// @Tags variations
// @Produce json
// @Param id path string true "Product ID"
// @Param typeId path string true "Variation type ID"
// @Param optionId path string true "Option ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/variation-types/{typeId}/options/{optionId} [delete]
func (h *VariationsHandler) DeleteVariationOption(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	typeID, ok := uuidParam(c, "typeId")
	if !ok {
		return
	}
	optionID, ok := uuidParam(c, "optionId")
	if !ok {
		return
	}

	if err := h.service.DeleteVariationOption(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), productID, typeID, optionID); err != nil {
		respondError(c, err, "DELETE_FAILED")
		return
	}

	message := "Variation option deleted successfully"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

// GetVariations returns every option combination with its price and quantity
// @Summary Get variation grid
// @Tags variations
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.SuccessResponse{data=services.VariationGrid}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/variations [get]
func (h *VariationsHandler) GetVariations(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	grid, err := h.service.GetVariationGrid(c.Request.Context(), middleware.GetTenantID(c), productID)
	if err != nil {
		respondError(c, err, "FETCH_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: grid})
}

// SaveVariations replaces the product's variants with the submitted grid.
// Rows naming an unknown option, or repeating a combination, are skipped
// and reported.
// @Summary Save variation grid
// @Tags variations
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param variations body models.SaveVariationsRequest true "Grid rows"
// @Success 200 {object} models.SuccessResponse{data=services.SaveResult}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/variations [put]
func (h *VariationsHandler) SaveVariations(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.SaveVariationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "variations", err.Error())
		return
	}

	result, err := h.service.SaveVariations(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), productID, req.Variations)
	if err != nil {
		respondError(c, err, "SAVE_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: result})
}

// ExportVariations downloads the variation grid as an Excel workbook
// @Summary Export variation grid
// @Tags variations
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Product ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/variations/export [get]
func (h *VariationsHandler) ExportVariations(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	data, filename, err := h.service.ExportVariationSheet(c.Request.Context(), middleware.GetTenantID(c), productID)
	if err != nil {
		respondError(c, err, "EXPORT_FAILED")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ImportVariations replaces the variation grid with an uploaded sheet
// @Summary Import variation grid
// @Tags variations
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Product ID"
// @Param file formData file true "Variation sheet (.xlsx)"
// @Success 200 {object} models.SuccessResponse{data=models.ImportResult}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/variations/import [post]
func (h *VariationsHandler) ImportVariations(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxSheetSize)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_REQUIRED",
				Message: "Please upload an Excel (.xlsx) file",
				Field:   "file",
			},
		})
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_FORMAT",
				Message: "Only XLSX files are supported",
				Field:   "file",
			},
		})
		return
	}

	result, err := h.service.ImportVariationSheet(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), productID, file)
	if err != nil {
		respondError(c, err, "IMPORT_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: result})
}
