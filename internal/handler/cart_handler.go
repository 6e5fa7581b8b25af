package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int64 `json:"quantity"`
}

type ClearCartResponse struct {
	Count int64 `json:"count"`
}

type CheckoutResponse struct {
	OrderID int64 `json:"order_id"`
}

// /cart and /cart/checkout
type CartHandler struct {
	cart     *usecase.CartUsecase
	checkout *usecase.CheckoutUsecase
}

func NewCartHandler(cart *usecase.CartUsecase, checkout *usecase.CheckoutUsecase) *CartHandler {
	return &CartHandler{cart: cart, checkout: checkout}
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc) {
	g := e.Group("/cart", authMW)

	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.PATCH("/items/:id", h.updateItem)
	g.DELETE("/items/:id", h.removeItem)
	g.DELETE("/items", h.clear)
	g.POST("/checkout", h.doCheckout)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.cart.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req AddCartItemRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	item, err := h.cart.AddItem(c.Request().Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req UpdateCartItemRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if req.Quantity == nil {
		return writeError(c, model.InvalidInput("quantity required"))
	}

	out, err := h.cart.UpdateItemQuantity(c.Request().Context(), itemID, userID, *req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.cart.RemoveItem(c.Request().Context(), itemID, userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "removed"})
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	n, err := h.cart.ClearCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ClearCartResponse{Count: n})
}

func (h *CartHandler) doCheckout(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	order, err := h.checkout.Checkout(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CheckoutResponse{OrderID: order.ID})
}
