package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
}

func (r ProductRequest) input() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
	}
}

// ProductUpdateRequest has no stock; use PUT /admin/inventory/:product_id.
type ProductUpdateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
}

func (r ProductUpdateRequest) details() usecase.ProductDetails {
	return usecase.ProductDetails{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
	}
}

type InventoryUpdateRequest struct {
	Stock  *int64 `json:"stock"`
	Reason string `json:"reason"`
}

// /admin/products and /admin/inventory
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc) {
	admin := e.Group("/admin", authMW, middleware.AdminRoleGuard())

	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.PUT("/inventory/:product_id", h.updateInventory)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	adminID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req ProductRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), adminID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	adminID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req ProductUpdateRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.UpdateProduct(c.Request().Context(), adminID, id, req.details())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	adminID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	adminID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	productID, err := pathID(c, "product_id")
	if err != nil {
		return writeError(c, err)
	}

	var req InventoryUpdateRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if req.Stock == nil {
		return writeError(c, model.InvalidInput("stock required"))
	}

	adj, err := h.uc.AdjustStock(c.Request().Context(), adminID, productID, *req.Stock, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, adj)
}
