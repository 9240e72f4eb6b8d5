package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seedworks/internal/services"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GetProducts lists active products
// GET /api/products?category=
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, products)
}

// GetProduct returns one product
// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, product)
}

// Purchase buys quantity units of a product
// POST /api/products/:id/purchase
func (h *ProductHandler) Purchase(c *gin.Context) {
	account, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	req := struct {
		Quantity int `json:"quantity"`
	}{Quantity: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	res, err := h.productService.Purchase(c.Request.Context(), account, id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": res})
}

// GetOrders lists the account's ownerships
// GET /api/orders?active=true
func (h *ProductHandler) GetOrders(c *gin.Context) {
	account, ok := accountID(c)
	if !ok {
		return
	}
	orders, err := h.productService.ListOrders(c.Request.Context(), account, c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, orders)
}
