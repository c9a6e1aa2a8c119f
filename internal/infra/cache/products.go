// Package cache holds the redis-backed read models: the product read-through
// cache and the token revocation list.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"market-service/internal/domain"
	"market-service/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const productKeyPrefix = "product:"

func productKey(id uint64) string {
	return productKeyPrefix + strconv.FormatUint(id, 10)
}

// cachedProduct keeps the raw columns that the API representation hides.
type cachedProduct struct {
	domain.Product
	RawPrice    string `json:"rawPrice"`
	RawQuantity string `json:"rawQuantity"`
}

// ProductRepository decorates a repository.ProductRepository with a redis
// read-through cache on FindByID. Writes through the decorator invalidate.
type ProductRepository struct {
	repository.ProductRepository
	rdb   *redis.Client
	ttl   time.Duration
	group singleflight.Group
	log   *logrus.Entry
}

func NewProductRepository(inner repository.ProductRepository, rdb *redis.Client, ttl time.Duration, log *logrus.Entry) *ProductRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ProductRepository{ProductRepository: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *ProductRepository) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	key := productKey(id)

	if p, ok := c.lookup(ctx, key); ok {
		return p, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		p, err := c.ProductRepository.FindByID(ctx, id)
		if err != nil || p == nil {
			return p, err
		}
		c.store(ctx, key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p, _ := v.(*domain.Product)
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (c *ProductRepository) lookup(ctx context.Context, key string) (*domain.Product, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).Warn("product cache read failed")
		return nil, false
	}
	var cp cachedProduct
	if err := json.Unmarshal(raw, &cp); err != nil {
		c.log.WithError(err).Warnf("dropping undecodable cache entry %s", key)
		c.rdb.Del(ctx, key)
		return nil, false
	}
	p := cp.Product
	p.RawPrice = cp.RawPrice
	p.RawQuantity = cp.RawQuantity
	p.Normalize()
	return &p, true
}

func (c *ProductRepository) store(ctx context.Context, key string, p *domain.Product) {
	body, err := json.Marshal(cachedProduct{Product: *p, RawPrice: p.RawPrice, RawQuantity: p.RawQuantity})
	if err != nil {
		c.log.WithError(err).Warnf("encode product %d for cache", p.ID)
		return
	}
	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("product cache write failed")
	}
}

// Invalidate drops cached entries. Failures are logged; entries expire on their own.
func (c *ProductRepository) Invalidate(ctx context.Context, ids ...uint64) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.WithError(err).Warnf("invalidate %d product cache entries", len(keys))
	}
}

func (c *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if err := c.ProductRepository.Update(ctx, p); err != nil {
		return err
	}
	c.Invalidate(ctx, p.ID)
	return nil
}

// SetQuantity drops the cached copy whether or not the swap won, so a caller
// retrying after a stale read sees the stored value.
func (c *ProductRepository) SetQuantity(ctx context.Context, id uint64, expected, next string) (bool, error) {
	swapped, err := c.ProductRepository.SetQuantity(ctx, id, expected, next)
	c.Invalidate(ctx, id)
	return swapped, err
}

func (c *ProductRepository) Delete(ctx context.Context, id uint64) error {
	if err := c.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	c.Invalidate(ctx, id)
	return nil
}

// Warmup preloads the given products, skipping ones that fail to load.
func (c *ProductRepository) Warmup(ctx context.Context, ids []uint64) error {
	var failed int
	for _, id := range ids {
		p, err := c.ProductRepository.FindByID(ctx, id)
		if err != nil {
			failed++
			c.log.WithError(err).Warnf("warm up product %d", id)
			continue
		}
		if p != nil {
			c.store(ctx, productKey(id), p)
		}
	}
	if failed > 0 {
		return fmt.Errorf("warm up: %d of %d products failed", failed, len(ids))
	}
	return nil
}
