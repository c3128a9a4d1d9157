package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultCacheTTL bounds how long a cached product may be served.
const DefaultCacheTTL = 5 * time.Minute

// CachedProductRepository is a cache-aside decorator that keeps single
// products in redis in front of another ProductRepository. The wrapped
// repository stays the source of truth: cache failures are logged and the
// call falls through to it.
type CachedProductRepository struct {
	ProductRepository
	cache *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedProductRepository wraps repo with a redis cache.
func NewCachedProductRepository(repo ProductRepository, cache *redis.Client, ttl time.Duration, log *zap.Logger) *CachedProductRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedProductRepository{
		ProductRepository: repo,
		cache:             cache,
		ttl:               ttl,
		log:               log,
	}
}

func productCacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// FindByID serves the product from redis when cached and fills the cache
// on a miss.
func (r *CachedProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	key := productCacheKey(id)
	data, err := r.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var product models.Product
		jsonErr := json.Unmarshal(data, &product)
		if jsonErr == nil {
			return &product, nil
		}
		r.log.Warn("Discarding unreadable cached product", zap.String("key", key), zap.Error(jsonErr))
	case !errors.Is(err, redis.Nil):
		r.log.Warn("Product cache read failed", zap.String("key", key), zap.Error(err))
	}

	product, err := r.ProductRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, product)
	return product, nil
}

// Save writes through to the wrapped repository and refreshes the cache.
func (r *CachedProductRepository) Save(ctx context.Context, product *models.Product) error {
	if err := r.ProductRepository.Save(ctx, product); err != nil {
		return err
	}
	r.store(ctx, product)
	return nil
}

// DeleteByID deletes from the wrapped repository and evicts the cache entry.
func (r *CachedProductRepository) DeleteByID(ctx context.Context, id string) error {
	if err := r.ProductRepository.DeleteByID(ctx, id); err != nil {
		return err
	}
	if err := r.cache.Del(ctx, productCacheKey(id)).Err(); err != nil {
		r.log.Warn("Product cache eviction failed", zap.String("product_id", id), zap.Error(err))
	}
	return nil
}

func (r *CachedProductRepository) store(ctx context.Context, product *models.Product) {
	data, err := json.Marshal(product)
	if err != nil {
		r.log.Warn("Failed to encode product for cache", zap.String("product_id", product.ID), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, productCacheKey(product.ID), data, r.ttl).Err(); err != nil {
		r.log.Warn("Product cache write failed", zap.String("product_id", product.ID), zap.Error(err))
	}
}

var _ ProductRepository = (*CachedProductRepository)(nil)
