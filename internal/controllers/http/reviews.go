package http

import (
	"strconv"

	"market-service/internal/services"

	"github.com/gin-gonic/gin"
)

func productReviewsKey(productID uint64) string {
	return "http:reviews:product:" + strconv.FormatUint(productID, 10)
}

func (h *Handler) CreateReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	ctx := c.Request.Context()
	review, err := h.reviews.Create(ctx, services.ReviewInput{
		UserName:  req.UserName,
		ProductID: uint64(req.ProductID),
		Rating:    int(req.Rating),
		Comment:   req.Comment,
	})
	if err != nil {
		h.respondError(c, err, "Failed to create review")
		return
	}
	h.dropCached(ctx, productReviewsKey(review.ProductID))
	created(c, "Review created successfully", review)
}

func (h *Handler) ProductReviews(c *gin.Context) {
	productID := paramID(c, "productId")
	if productID == 0 {
		h.badRequest(c, "Invalid product ID")
		return
	}
	ctx := c.Request.Context()
	reviews, err := h.cachedJSON(ctx, productReviewsKey(productID), func() (any, error) {
		return h.reviews.ListByProduct(ctx, productID)
	})
	if err != nil {
		h.respondError(c, err, "Failed to fetch reviews")
		return
	}
	ok(c, "", reviews)
}

func (h *Handler) UserReviews(c *gin.Context) {
	var productID *uint64
	if raw := c.Query("productId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			h.badRequest(c, "Invalid product ID")
			return
		}
		productID = &id
	}
	res, err := h.reviews.ListByUserName(c.Request.Context(), c.Param("userName"), productID)
	if err != nil {
		h.respondError(c, err, "Failed to fetch reviews")
		return
	}
	ok(c, "", res)
}
