package http

import (
	"net/http"

	"market-service/internal/apperr"
	"market-service/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	categoriesCacheKey = "http:categories"
	maxImageUpload     = 10 << 20
)

func (h *Handler) ListProducts(c *gin.Context) {
	page, err := h.catalog.ListProducts(c.Request.Context(), services.ProductQuery{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		MinPrice: c.Query("minPrice"),
		MaxPrice: c.Query("maxPrice"),
		Sort:     c.Query("sort"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	})
	if err != nil {
		h.respondError(c, err, "Failed to fetch products")
		return
	}
	ok(c, "", ProductList{Products: page.Products, Pagination: page.Page})
}

func (h *Handler) ListProducerProducts(c *gin.Context) {
	producerID := paramID(c, "producerId")
	if producerID == 0 {
		h.badRequest(c, "Invalid producer ID")
		return
	}
	page, err := h.catalog.ListByProducer(c.Request.Context(), producerID, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch products")
		return
	}
	ok(c, "", ProductList{Products: page.Products, Pagination: page.Page})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id := paramID(c, "productId")
	if id == 0 {
		h.badRequest(c, "Invalid product ID")
		return
	}
	p, err := h.catalog.GetPublicProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to fetch product")
		return
	}
	ok(c, "", p)
}

func (h *Handler) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()
	categories, err := h.cachedJSON(ctx, categoriesCacheKey, func() (any, error) {
		return h.catalog.ListCategories(ctx)
	})
	if err != nil {
		h.respondError(c, err, "Failed to fetch categories")
		return
	}
	ok(c, "", categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	ctx := c.Request.Context()
	cat, err := h.catalog.CreateCategory(ctx, currentActor(c), req.Name, req.Icon, req.Description)
	if err != nil {
		h.respondError(c, err, "Failed to create category")
		return
	}
	h.dropCached(ctx, categoriesCacheKey)
	created(c, "Category created successfully", cat)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), currentActor(c), req.toInput())
	if err != nil {
		h.respondError(c, err, "Failed to create product")
		return
	}
	created(c, "Product created successfully", p)
}

func (h *Handler) ListOwnProducts(c *gin.Context) {
	page, err := h.catalog.ListOwn(c.Request.Context(), currentActor(c), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch products")
		return
	}
	ok(c, "", ProductList{Products: page.Products, Pagination: page.Page})
}

func (h *Handler) GetOwnProduct(c *gin.Context) {
	id := paramID(c, "productId")
	if id == 0 {
		h.badRequest(c, "Invalid product ID")
		return
	}
	p, err := h.catalog.GetOwn(c.Request.Context(), currentActor(c), id)
	if err != nil {
		h.respondError(c, err, "Failed to fetch product")
		return
	}
	ok(c, "", p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id := paramID(c, "productId")
	if id == 0 {
		h.badRequest(c, "Invalid product ID")
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), currentActor(c), id, req.toInput())
	if err != nil {
		h.respondError(c, err, "Failed to update product")
		return
	}
	ok(c, "Product updated successfully", p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id := paramID(c, "productId")
	if id == 0 {
		h.badRequest(c, "Invalid product ID")
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), currentActor(c), id); err != nil {
		h.respondError(c, err, "Failed to delete product")
		return
	}
	ok(c, "Product deleted successfully", nil)
}

func (h *Handler) UploadProductImage(c *gin.Context) {
	id := paramID(c, "productId")
	if id == 0 {
		h.badRequest(c, "Invalid product ID")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageUpload)
	header, err := c.FormFile("image")
	if err != nil {
		h.badRequest(c, "Image file is required (max 10MB)")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.respondError(c, apperr.Unexpected("open upload", err), "Failed to upload image")
		return
	}
	defer file.Close()

	p, err := h.catalog.UploadImage(c.Request.Context(), currentActor(c), id, file, header.Filename)
	if err != nil {
		h.respondError(c, err, "Failed to upload image")
		return
	}
	ok(c, "Image uploaded successfully", p)
}
