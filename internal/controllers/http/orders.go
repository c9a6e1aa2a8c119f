package http

import (
	"strings"
	"time"

	"market-service/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	if len(req.Items) > 0 && req.ShippingAddress == nil {
		h.badRequest(c, "Shipping address is required")
		return
	}

	res, err := h.orders.CreateOrder(c.Request.Context(), currentActor(c).UserID, req.toInput())
	if err != nil {
		h.respondError(c, err, "Failed to create order")
		return
	}
	created(c, "Order created successfully", res)
}

func (h *Handler) ListOrders(c *gin.Context) {
	page, err := h.orders.ListForUser(c.Request.Context(), currentActor(c).UserID,
		c.Query("status"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch orders")
		return
	}
	ok(c, "", orderList(page, orderSummary))
}

func (h *Handler) OrderStats(c *gin.Context) {
	userID := currentActor(c).UserID
	stats, err := h.orders.Stats(c.Request.Context(), &userID)
	if err != nil {
		h.respondError(c, err, "Failed to fetch order statistics")
		return
	}
	ok(c, "", stats)
}

func (h *Handler) RecentOrders(c *gin.Context) {
	orders, err := h.orders.Recent(c.Request.Context(), currentActor(c).UserID, queryInt(c, "limit"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch recent orders")
		return
	}
	ok(c, "", recentOrders(orders))
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.orders.GetByOrderID(c.Request.Context(), currentActor(c), c.Param("orderId"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch order details")
		return
	}
	ok(c, "", orderDetail(o))
}

func (h *Handler) CancelOrder(c *gin.Context) {
	var req CancelOrderRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	o, err := h.orders.Cancel(c.Request.Context(), currentActor(c), c.Param("orderId"), req.Reason)
	if err != nil {
		h.respondError(c, err, "Failed to cancel order")
		return
	}
	ok(c, "Order cancelled successfully", gin.H{
		"orderId":            o.OrderID,
		"orderStatus":        o.OrderStatus,
		"cancelledAt":        o.CancelledAt,
		"cancelledBy":        o.CancelledBy,
		"cancellationReason": o.CancellationReason,
		"isActive":           o.IsActive,
	})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req StatusRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), currentActor(c), c.Param("orderId"), req.Status)
	if err != nil {
		h.respondError(c, err, "Failed to update order status")
		return
	}
	ok(c, "Order status updated successfully", gin.H{
		"orderId":        o.OrderID,
		"orderStatus":    o.OrderStatus,
		"statusDisplay":  o.OrderStatus.Display(),
		"actualDelivery": o.ActualDelivery,
		"updatedAt":      o.UpdatedAt,
	})
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func (h *Handler) ListAllOrders(c *gin.Context) {
	from, okFrom := parseDate(c.Query("startDate"))
	to, okTo := parseDate(c.Query("endDate"))
	if !okFrom || !okTo {
		h.badRequest(c, "Invalid date range")
		return
	}

	page, err := h.orders.ListAll(c.Request.Context(), currentActor(c), services.AdminOrderQuery{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
		Search:        c.Query("search"),
		From:          from,
		To:            to,
		Page:          queryInt(c, "page"),
		Limit:         queryInt(c, "limit"),
	})
	if err != nil {
		h.respondError(c, err, "Failed to fetch orders")
		return
	}
	ok(c, "", orderList(page, adminOrderSummary))
}
