package http

import (
	"github.com/gin-gonic/gin"
)

func (h *Handler) InitiateCOD(c *gin.Context) {
	var req InitiateCODRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "orderId is required")
		return
	}

	res, err := h.payments.InitiateCOD(c.Request.Context(), currentActor(c).UserID, string(req.OrderID), req.Notes)
	if err != nil {
		h.respondError(c, err, "Failed to initiate payment")
		return
	}
	created(c, "COD payment initiated", res)
}

func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	var req StatusRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	res, err := h.payments.UpdateStatus(c.Request.Context(), currentActor(c), c.Param("paymentId"), req.Status)
	if err != nil {
		h.respondError(c, err, "Failed to update payment")
		return
	}
	ok(c, "Payment status updated", res)
}

func (h *Handler) GetPayment(c *gin.Context) {
	p, err := h.payments.Get(c.Request.Context(), currentActor(c), c.Param("paymentId"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch payment")
		return
	}
	ok(c, "", p)
}

func (h *Handler) ListPayments(c *gin.Context) {
	page, err := h.payments.ListMine(c.Request.Context(), currentActor(c).UserID,
		c.Query("status"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch payments")
		return
	}
	ok(c, "", PaymentList{Payments: page.Payments, Pagination: page.Page})
}
