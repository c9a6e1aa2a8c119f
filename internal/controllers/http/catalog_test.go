package http

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"market-service/internal/apperr"
	"market-service/internal/domain"
	"market-service/internal/infra/imagestore"
	"market-service/internal/logger"
	"market-service/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func listed(p *domain.Product) *domain.Product {
	flag := "Yes"
	p.AddToSellPost = &flag
	return p
}

func TestGetProduct(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setupMocks func(a *testAPI)
		wantStatus int
	}{
		{
			name: "listed product",
			path: "/api/v1/products/3",
			setupMocks: func(a *testAPI) {
				a.products.On("FindByID", mock.Anything, uint64(3)).Return(listed(catalogProduct(3, "rice", "100", "5")), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unlisted product is hidden",
			path: "/api/v1/products/3",
			setupMocks: func(a *testAPI) {
				a.products.On("FindByID", mock.Anything, uint64(3)).Return(catalogProduct(3, "rice", "100", "5"), nil)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "non numeric id",
			path:       "/api/v1/products/abc",
			setupMocks: func(a *testAPI) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t, nil)
			tt.setupMocks(a)

			w := a.do(http.MethodGet, tt.path, "", nil)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestCart(t *testing.T) {
	t.Run("update on empty cart", func(t *testing.T) {
		a := newTestAPI(t, nil)
		token := a.signIn(t, 7, domain.RoleConsumer)
		a.carts.On("SetQuantity", mock.Anything, uint64(7), uint64(3), int64(2)).Return(false, nil)
		a.carts.On("Items", mock.Anything, uint64(7)).Return(nil, nil)

		w := a.do(http.MethodPut, "/api/v1/cart", token, map[string]any{"productId": 3, "quantity": 2})

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decode(t, w)
		assert.Equal(t, apperr.CodeCartNotFound, env.Error)
		assert.Equal(t, "Cart not found", env.Message)
	})

	t.Run("remove missing line", func(t *testing.T) {
		a := newTestAPI(t, nil)
		token := a.signIn(t, 7, domain.RoleConsumer)
		a.carts.On("Remove", mock.Anything, uint64(7), uint64(3)).Return(false, nil)
		a.carts.On("Items", mock.Anything, uint64(7)).Return([]domain.CartItem{{ProductID: 4, Quantity: 1}}, nil)

		w := a.do(http.MethodDelete, "/api/v1/cart/3", token, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Product not found in cart", decode(t, w).Message)
	})

	t.Run("get empty cart", func(t *testing.T) {
		a := newTestAPI(t, nil)
		token := a.signIn(t, 7, domain.RoleConsumer)
		a.carts.On("Items", mock.Anything, uint64(7)).Return(nil, nil)

		w := a.do(http.MethodGet, "/api/v1/cart", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var res struct {
			Items []domain.CartItem `json:"items"`
		}
		decodeData(t, w, &res)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
	})
}

func TestWishlist(t *testing.T) {
	t.Run("already present", func(t *testing.T) {
		a := newTestAPI(t, nil)
		token := a.signIn(t, 7, domain.RoleConsumer)
		a.products.On("FindByID", mock.Anything, uint64(3)).Return(catalogProduct(3, "rice", "100", "5"), nil)
		a.wishlist.On("FindByProduct", mock.Anything, uint64(7), uint64(3)).Return(&domain.WishlistEntry{ID: 11}, nil)

		w := a.do(http.MethodPost, "/api/v1/wishlist", token, WishlistRequest{ProductID: 3})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Product already in wishlist", decode(t, w).Message)
	})

	t.Run("check", func(t *testing.T) {
		a := newTestAPI(t, nil)
		token := a.signIn(t, 7, domain.RoleConsumer)
		a.wishlist.On("FindByProduct", mock.Anything, uint64(7), uint64(3)).Return(&domain.WishlistEntry{ID: 11}, nil)

		w := a.do(http.MethodGet, "/api/v1/wishlist/check/3", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var status services.WishlistStatus
		decodeData(t, w, &status)
		assert.True(t, status.IsWishlisted)
		require.NotNil(t, status.WishlistID)
		assert.Equal(t, uint64(11), *status.WishlistID)
	})

	t.Run("remove someone else's entry", func(t *testing.T) {
		a := newTestAPI(t, nil)
		token := a.signIn(t, 7, domain.RoleConsumer)
		a.wishlist.On("Delete", mock.Anything, uint64(7), uint64(11)).Return(false, nil)

		w := a.do(http.MethodDelete, "/api/v1/wishlist/11", token, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProductReviews_CachedUntilNewReview(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := newTestAPI(t, rdb)
	token := a.signIn(t, 7, domain.RoleConsumer)
	a.reviews.On("ListByProduct", mock.Anything, uint64(3)).
		Return([]domain.Review{{ID: 1, ProductID: 3, Rating: 4}, {ID: 2, ProductID: 3, Rating: 5}}, nil)
	a.reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)

	for i := 0; i < 2; i++ {
		w := a.do(http.MethodGet, "/api/v1/reviews/product/3", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var res services.ProductReviews
		decodeData(t, w, &res)
		assert.Equal(t, 2, res.Count)
		assert.InDelta(t, 4.5, res.AverageRating, 0.001)
	}
	a.reviews.AssertNumberOfCalls(t, "ListByProduct", 1)

	w := a.do(http.MethodPost, "/api/v1/reviews", token, map[string]any{
		"userName": "rahim", "productId": 3, "rating": 3, "comment": "ok",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.False(t, mr.Exists(productReviewsKey(3)))
}

func pngUpload(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadProductImage(t *testing.T) {
	dir := t.TempDir()
	store, err := imagestore.New(dir, "/uploads", 800)
	require.NoError(t, err)

	tests := []struct {
		name       string
		filename   string
		owner      uint64
		wantStatus int
	}{
		{name: "owner uploads png", filename: "rice.png", owner: 99, wantStatus: http.StatusOK},
		{name: "unsupported extension", filename: "rice.gif", owner: 99, wantStatus: http.StatusBadRequest},
		{name: "not the owner", filename: "rice.png", owner: 100, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t, nil)
			a.handler.catalog = services.NewCatalogService(a.products, store, logger.Discard())
			token := a.signIn(t, 99, domain.RoleProducer)
			p := catalogProduct(3, "rice", "100", "5")
			p.ProducerID = tt.owner
			a.products.On("FindByID", mock.Anything, uint64(3)).Return(p, nil)
			a.products.On("Update", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

			body, contentType := pngUpload(t, tt.filename)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/producer/products/3/image", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			a.router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got domain.Product
			decodeData(t, w, &got)
			require.True(t, strings.HasPrefix(got.Image, "/uploads/"), got.Image)
			_, err := os.Stat(filepath.Join(dir, strings.TrimPrefix(got.Image, "/uploads/")))
			assert.NoError(t, err)
		})
	}
}
