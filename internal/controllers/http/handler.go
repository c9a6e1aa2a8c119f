package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"market-service/internal/policy"
	"market-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const responseCacheTTL = 10 * time.Second

// Services bundles the application services the API exposes.
type Services struct {
	Orders   *services.OrderService
	Payments *services.PaymentService
	Catalog  *services.CatalogService
	Cart     *services.CartService
	Reviews  *services.ReviewService
	Wishlist *services.WishlistService
	Auth     *services.AuthService
	Users    *services.UserService
}

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	orders   *services.OrderService
	payments *services.PaymentService
	catalog  *services.CatalogService
	cart     *services.CartService
	reviews  *services.ReviewService
	wishlist *services.WishlistService
	auth     *services.AuthService
	users    *services.UserService
	rdb      *redis.Client
	checks   map[string]HealthCheck
	log      *logrus.Entry
}

// NewHandler builds the API handler. rdb may be nil, in which case response
// caching is skipped.
func NewHandler(svc Services, rdb *redis.Client, log *logrus.Entry) *Handler {
	return &Handler{
		orders:   svc.Orders,
		payments: svc.Payments,
		catalog:  svc.Catalog,
		cart:     svc.Cart,
		reviews:  svc.Reviews,
		wishlist: svc.Wishlist,
		auth:     svc.Auth,
		users:    svc.Users,
		rdb:      rdb,
		checks:   map[string]HealthCheck{},
		log:      log,
	}
}

func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api/v1")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/products", h.ListProducts)
	api.GET("/products/by-producer/:producerId", h.ListProducerProducts)
	api.GET("/products/:productId", h.GetProduct)
	api.GET("/categories", h.ListCategories)
	api.GET("/reviews/product/:productId", h.ProductReviews)
	api.GET("/reviews/user/:userName", h.UserReviews)

	authed := api.Group("", h.Authenticate())
	authed.POST("/auth/logout", h.Logout)

	orders := authed.Group("/orders")
	orders.POST("", RequirePermission(policy.Orders, policy.Create), h.CreateOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/stats", h.OrderStats)
	orders.GET("/recent", h.RecentOrders)
	orders.GET("/:orderId", h.GetOrder)
	orders.PUT("/:orderId/cancel", h.CancelOrder)
	orders.PUT("/:orderId/status", RequirePermission(policy.Orders, policy.UpdateStatus), h.UpdateOrderStatus)

	payments := authed.Group("/payments")
	payments.POST("/initiate-cod", RequirePermission(policy.Payments, policy.Create), h.InitiateCOD)
	payments.GET("", h.ListPayments)
	payments.GET("/:paymentId", h.GetPayment)
	payments.PUT("/:paymentId/status", RequirePermission(policy.Payments, policy.UpdateStatus), h.UpdatePaymentStatus)

	authed.GET("/profile", h.GetProfile)
	authed.PUT("/profile", h.UpdateProfile)
	authed.PUT("/profile/password", h.ChangePassword)
	authed.PUT("/profile/image", h.UpdateProfileImage)

	producer := authed.Group("/producer")
	producer.POST("/products", h.CreateProduct)
	producer.GET("/products", h.ListOwnProducts)
	producer.GET("/products/:productId", h.GetOwnProduct)
	producer.PUT("/products/:productId", h.UpdateProduct)
	producer.DELETE("/products/:productId", h.DeleteProduct)
	producer.POST("/products/:productId/image", h.UploadProductImage)
	producer.POST("/categories", h.CreateCategory)

	cart := authed.Group("/cart", RequirePermission(policy.Cart, policy.Manage))
	cart.POST("", h.AddToCart)
	cart.GET("", h.GetCart)
	cart.PUT("", h.UpdateCart)
	cart.DELETE("/:productId", h.RemoveFromCart)
	cart.DELETE("", h.ClearCart)

	authed.POST("/reviews", RequirePermission(policy.Reviews, policy.Create), h.CreateReview)

	wishlist := authed.Group("/wishlist", RequirePermission(policy.Wishlist, policy.Manage))
	wishlist.POST("", h.AddToWishlist)
	wishlist.GET("", h.ListWishlist)
	wishlist.GET("/check/:productId", h.CheckWishlist)
	wishlist.DELETE("/:wishlistId", h.RemoveFromWishlist)
	wishlist.DELETE("", h.ClearWishlist)

	admin := authed.Group("/admin")
	admin.GET("/orders", RequirePermission(policy.Orders, policy.ReadAny), h.ListAllOrders)
	users := admin.Group("/users", RequirePermission(policy.Users, policy.Manage))
	users.GET("", h.ListUsers)
	users.GET("/pending", h.PendingUsers)
	users.GET("/:id", h.GetUser)
	users.DELETE("/:id", h.DeleteUser)
	users.PUT("/:id/approve", h.ApproveUser)

	authed.GET("/dashboard/:role", h.Dashboard)
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.WithError(err).WithField("dependency", name).Warn("health check failed")
			report[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "up"
	}
	c.JSON(status, Envelope{Success: status == http.StatusOK, Message: http.StatusText(status), Data: report})
}

// cachedJSON serves key from redis when present and otherwise stores the
// freshly loaded value for a short while.
func (h *Handler) cachedJSON(ctx context.Context, key string, load func() (any, error)) (any, error) {
	if h.rdb != nil {
		if b, err := h.rdb.Get(ctx, key).Bytes(); err == nil {
			return json.RawMessage(b), nil
		}
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	if h.rdb != nil {
		if data, err := json.Marshal(v); err == nil {
			h.rdb.Set(ctx, key, data, responseCacheTTL)
		}
	}
	return v, nil
}

func (h *Handler) dropCached(ctx context.Context, keys ...string) {
	if h.rdb == nil {
		return
	}
	if err := h.rdb.Del(ctx, keys...).Err(); err != nil {
		h.log.WithError(err).WithField("keys", keys).Warn("failed to drop cached response")
	}
}

func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	return n
}

// paramID parses a numeric path parameter; zero means invalid.
func paramID(c *gin.Context, name string) uint64 {
	n, _ := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	return n
}

// bindOptionalJSON decodes the body when one was sent.
func bindOptionalJSON(c *gin.Context, v any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(v)
}
