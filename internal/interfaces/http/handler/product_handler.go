package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	app "storefront/internal/application/catalog"
	"storefront/internal/domain/catalog"
)

type ProductHandler struct {
	svc *app.Service
}

func NewProductHandler(svc *app.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// List serves the catalog page. Query parameters:
// page, limit, search, category, sort, order.
func (h *ProductHandler) List(c *gin.Context) {
	q := catalog.PageQuery{
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", catalog.DefaultLimit),
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.DefaultQuery("sort", catalog.SortByName),
		Order:    c.DefaultQuery("order", catalog.OrderAsc),
	}

	page, err := h.svc.ListProducts(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toPageResponse(page))
}

func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, categories)
}

func (h *ProductHandler) Show(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "product not found"})
		return
	}

	product, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toProductResponse(product))
}

type createProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON payload")
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), app.CreateProductCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		Stock:       req.Stock,
		Category:    req.Category,
		Image:       req.Image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, toProductResponse(product), "product created successfully")
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "product not found"})
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON payload")
		return
	}

	patch := catalog.Patch{
		Name:        req.Name,
		Description: req.Description,
		Stock:       req.Stock,
		Category:    req.Category,
		Image:       req.Image,
	}
	if req.Price != nil {
		price := decimal.NewFromFloat(*req.Price)
		patch.Price = &price
	}

	product, err := h.svc.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, toProductResponse(product), "product updated successfully")
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
