package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"catalogadmin/catalog-service/internal/app/catalog/entity"
	"catalogadmin/catalog-service/internal/app/catalog/service"
	"catalogadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contentTypeLD = "application/ld+json; charset=utf-8"
	errorTitle    = "An error occurred"
)

// CatalogHandler обрабатывает HTTP запросы для каталога
type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService service.CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// === CATEGORIES HANDLERS ===

// ListCategories обрабатывает GET /categories (с кешированием)
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.catalogService.ListCategories(c.Request.Context(), page)
	if err != nil {
		h.internalError(c, "Failed to get categories", err)
		return
	}

	respondJSONLD(c, http.StatusOK, entity.NewCollection(entity.CategoriesPath, result.Items, result.Total, page))
}

// CreateCategory обрабатывает POST /categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var in entity.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), in)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create category")
		return
	}

	category.Context = "/contexts/Category"
	respondJSONLD(c, http.StatusCreated, category)
}

// GetCategory обрабатывает GET /categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "Invalid category ID")
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get category")
		return
	}

	category.Context = "/contexts/Category"
	respondJSONLD(c, http.StatusOK, category)
}

// UpdateCategory обрабатывает PUT /categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "Invalid category ID")
	if !ok {
		return
	}

	var in entity.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, in)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update category")
		return
	}

	category.Context = "/contexts/Category"
	respondJSONLD(c, http.StatusOK, category)
}

// DeleteCategory обрабатывает DELETE /categories/:id
// Категорию с товарами удалить нельзя (409)
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "Invalid category ID")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "Failed to delete category")
		return
	}

	c.Status(http.StatusNoContent)
}

// === PRODUCTS HANDLERS ===

// ListProducts обрабатывает GET /products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.catalogService.ListProducts(c.Request.Context(), page)
	if err != nil {
		h.internalError(c, "Failed to get products", err)
		return
	}

	respondJSONLD(c, http.StatusOK, entity.NewCollection(entity.ProductsPath, result.Items, result.Total, page))
}

// CreateProduct обрабатывает POST /products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var in entity.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), in)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create product")
		return
	}

	product.Context = "/contexts/Product"
	respondJSONLD(c, http.StatusCreated, product)
}

// GetProduct обрабатывает GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "Invalid product ID")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get product")
		return
	}

	product.Context = "/contexts/Product"
	respondJSONLD(c, http.StatusOK, product)
}

// UpdateProduct обрабатывает PUT /products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "Invalid product ID")
	if !ok {
		return
	}

	var in entity.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update product")
		return
	}

	product.Context = "/contexts/Product"
	respondJSONLD(c, http.StatusOK, product)
}

// DeleteProduct обрабатывает DELETE /products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "Invalid product ID")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "Failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// === HELPERS ===

// handleServiceError переводит ошибки service layer в HTTP статусы
func (h *CatalogHandler) handleServiceError(c *gin.Context, err error, fallback string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondViolations(c, vErr)
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "Category not found")
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrCategoryAlreadyExists):
		respondError(c, http.StatusConflict, "Category with this name already exists")
	case errors.Is(err, service.ErrCategoryHasProducts):
		respondError(c, http.StatusConflict, "Cannot delete category: it still has products")
	default:
		h.internalError(c, fallback, err)
	}
}

func (h *CatalogHandler) internalError(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	logger.Error().
		Err(err).
		Str("request_id", c.GetString(logger.RequestIDKey)).
		Msg(message)
	respondError(c, http.StatusInternalServerError, message)
}

// parseID разбирает :id маршрута, при ошибке отвечает 400
func parseID(c *gin.Context, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, message)
		return uuid.Nil, false
	}
	return id, true
}

// parsePage читает page и itemsPerPage
// itemsPerPage больше максимума обрезается, нечисловые и неположительные значения отклоняются
func parsePage(c *gin.Context) (entity.Page, error) {
	page := entity.Page{Number: 1, Size: entity.DefaultItemsPerPage}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, errors.New("page must be a positive integer")
		}
		page.Number = n
	}

	if raw := c.Query("itemsPerPage"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, errors.New("itemsPerPage must be a positive integer")
		}
		page.Size = min(n, entity.MaxItemsPerPage)
	}

	return page, nil
}

func respondJSONLD(c *gin.Context, status int, body interface{}) {
	c.Header("Content-Type", contentTypeLD)
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, description string) {
	respondJSONLD(c, status, entity.ErrorResponse{
		Context:     "/contexts/Error",
		Type:        "hydra:Error",
		Title:       errorTitle,
		Description: description,
	})
}

// respondViolations отвечает 422 со списком нарушений по полям
func respondViolations(c *gin.Context, vErr *service.ValidationError) {
	violations := make([]entity.Violation, 0, len(vErr.Fields))
	lines := make([]string, 0, len(vErr.Fields))
	for _, f := range vErr.Fields {
		violations = append(violations, entity.Violation{PropertyPath: f.Field, Message: f.Message})
		lines = append(lines, f.Field+": "+f.Message)
	}

	respondJSONLD(c, http.StatusUnprocessableEntity, entity.ErrorResponse{
		Context:     "/contexts/ConstraintViolationList",
		Type:        "ConstraintViolationList",
		Title:       errorTitle,
		Description: strings.Join(lines, "\n"),
		Violations:  violations,
	})
}
