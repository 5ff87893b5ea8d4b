package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/services"
)

type ProductsHandler struct {
	products *services.ProductService
}

func NewProductsHandler(products *services.ProductService) *ProductsHandler {
	return &ProductsHandler{products: products}
}

// GET /api/products
func (h *ProductsHandler) List(c *gin.Context) {
	filter := repos.ProductFilter{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 25),
		SKU:      c.Query("sku"),
		Query:    c.Query("q"),
	}
	if raw, ok := c.GetQuery("is_active"); ok {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_is_active", err)
			return
		}
		filter.IsActive = &active
	}

	products, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_products_failed", err)
		return
	}
	RespondOK(c, gin.H{
		"products":  products,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// GET /api/products/:id
func (h *ProductsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}
	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, statusFor(err), "product_not_found", err)
		return
	}
	RespondOK(c, gin.H{"product": product})
}

// POST /api/products
func (h *ProductsHandler) Create(c *gin.Context) {
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_product_body", err)
		return
	}
	product, err := h.products.Create(c.Request.Context(), input)
	if err != nil {
		RespondError(c, statusFor(err), "create_product_failed", err)
		return
	}
	RespondCreated(c, gin.H{"product": product})
}

// PUT /api/products/:id
func (h *ProductsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_product_body", err)
		return
	}
	product, err := h.products.Update(c.Request.Context(), id, input)
	if err != nil {
		RespondError(c, statusFor(err), "update_product_failed", err)
		return
	}
	RespondOK(c, gin.H{"product": product})
}

// DELETE /api/products/:id
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, statusFor(err), "delete_product_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// DELETE /api/products
func (h *ProductsHandler) DeleteAll(c *gin.Context) {
	deleted, err := h.products.DeleteAll(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_products_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
