package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/ruizhu/shopapi/app/models"
	"github.com/ruizhu/shopapi/pkg/cache"
	"github.com/ruizhu/shopapi/pkg/logger"
)

const productListKey = "products:all"

func productKey(id uint) string { return fmt.Sprintf("products:%d", id) }

// CachedProductRepository reads products through a cache and drops the
// affected keys on every write. Cache failures are logged and bypassed.
type CachedProductRepository struct {
	*ProductRepository
	cache cache.Store
	ttl   time.Duration
}

func NewCachedProductRepository(inner *ProductRepository, c cache.Store, ttl time.Duration) *CachedProductRepository {
	return &CachedProductRepository{ProductRepository: inner, cache: c, ttl: ttl}
}

func (r *CachedProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if r.lookup(ctx, productKey(id), &p) {
		return &p, nil
	}
	found, err := r.ProductRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, productKey(id), found)
	return found, nil
}

func (r *CachedProductRepository) All(ctx context.Context) ([]models.Product, error) {
	var list []models.Product
	if r.lookup(ctx, productListKey, &list) && list != nil {
		return list, nil
	}
	list, err := r.ProductRepository.All(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, productListKey, list)
	return list, nil
}

func (r *CachedProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := r.ProductRepository.Create(ctx, p); err != nil {
		return err
	}
	r.forget(ctx, productListKey)
	return nil
}

func (r *CachedProductRepository) Save(ctx context.Context, p *models.Product) error {
	err := r.ProductRepository.Save(ctx, p)
	r.forget(ctx, productKey(p.ID), productListKey)
	return err
}

func (r *CachedProductRepository) Replace(ctx context.Context, id uint, p *models.Product) error {
	err := r.ProductRepository.Replace(ctx, id, p)
	r.forget(ctx, productKey(id), productListKey)
	return err
}

func (r *CachedProductRepository) Delete(ctx context.Context, id uint) error {
	err := r.ProductRepository.Delete(ctx, id)
	r.forget(ctx, productKey(id), productListKey)
	return err
}

func (r *CachedProductRepository) SetImageURL(ctx context.Context, id uint, url string) error {
	err := r.ProductRepository.SetImageURL(ctx, id, url)
	r.forget(ctx, productKey(id), productListKey)
	return err
}

func (r *CachedProductRepository) lookup(ctx context.Context, key string, dest any) bool {
	hit, err := r.cache.Get(ctx, key, dest)
	if err != nil {
		logger.WithCtx(ctx).Warn("product cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (r *CachedProductRepository) store(ctx context.Context, key string, v any) {
	if err := r.cache.Set(ctx, key, v, r.ttl); err != nil {
		logger.WithCtx(ctx).Warn("product cache write failed", "key", key, "error", err)
	}
}

func (r *CachedProductRepository) forget(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Warn("product cache invalidation failed", "keys", keys, "error", err)
	}
}
