package http

import (
	"github.com/gin-gonic/gin"
)

func (h *Handler) AddToCart(c *gin.Context) {
	var req CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	item, err := h.cart.Add(c.Request.Context(), currentActor(c).UserID, uint64(req.ProductID), int64(req.Quantity))
	if err != nil {
		h.respondError(c, err, "Failed to add to cart")
		return
	}
	ok(c, "Product added to cart", item)
}

func (h *Handler) GetCart(c *gin.Context) {
	items, err := h.cart.Get(c.Request.Context(), currentActor(c).UserID)
	if err != nil {
		h.respondError(c, err, "Failed to fetch cart")
		return
	}
	ok(c, "", gin.H{"items": items})
}

func (h *Handler) UpdateCart(c *gin.Context) {
	var req CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	item, err := h.cart.UpdateQuantity(c.Request.Context(), currentActor(c).UserID, uint64(req.ProductID), int64(req.Quantity))
	if err != nil {
		h.respondError(c, err, "Failed to update cart")
		return
	}
	ok(c, "Cart updated", item)
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	productID := paramID(c, "productId")
	if productID == 0 {
		h.badRequest(c, "Invalid product ID")
		return
	}
	if err := h.cart.Remove(c.Request.Context(), currentActor(c).UserID, productID); err != nil {
		h.respondError(c, err, "Failed to remove from cart")
		return
	}
	ok(c, "Product removed from cart", nil)
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context(), currentActor(c).UserID); err != nil {
		h.respondError(c, err, "Failed to clear cart")
		return
	}
	ok(c, "Cart cleared", nil)
}
