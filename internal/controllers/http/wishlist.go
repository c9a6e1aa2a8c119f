package http

import (
	"github.com/gin-gonic/gin"
)

func (h *Handler) AddToWishlist(c *gin.Context) {
	var req WishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	entry, err := h.wishlist.Add(c.Request.Context(), currentActor(c).UserID, uint64(req.ProductID))
	if err != nil {
		h.respondError(c, err, "Failed to add to wishlist")
		return
	}
	created(c, "Product added to wishlist", entry)
}

func (h *Handler) ListWishlist(c *gin.Context) {
	page, err := h.wishlist.List(c.Request.Context(), currentActor(c).UserID,
		c.Query("category"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch wishlist")
		return
	}
	ok(c, "", WishlistList{Items: page.Items, Pagination: page.Page, CategoryCounts: page.CategoryCounts})
}

func (h *Handler) CheckWishlist(c *gin.Context) {
	status, err := h.wishlist.Check(c.Request.Context(), currentActor(c).UserID, paramID(c, "productId"))
	if err != nil {
		h.respondError(c, err, "Failed to check wishlist")
		return
	}
	ok(c, "", status)
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	entryID := paramID(c, "wishlistId")
	if entryID == 0 {
		h.badRequest(c, "Invalid wishlist ID format")
		return
	}
	if err := h.wishlist.Remove(c.Request.Context(), currentActor(c).UserID, entryID); err != nil {
		h.respondError(c, err, "Failed to remove from wishlist")
		return
	}
	ok(c, "Product removed from wishlist", nil)
}

func (h *Handler) ClearWishlist(c *gin.Context) {
	n, err := h.wishlist.Clear(c.Request.Context(), currentActor(c).UserID)
	if err != nil {
		h.respondError(c, err, "Failed to clear wishlist")
		return
	}
	ok(c, "Wishlist cleared", gin.H{"deletedCount": n})
}
