package service

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
)

const defaultProductCacheTTL = 5 * time.Minute

type cachedCatalog struct {
	catalog repository.Catalog
	cache   repository.ProductDetailCache
	ttl     time.Duration
	log     logger.Logger
}

// NewCachedCatalog serves product details from cache before asking the storefront.
// Stock is never cached; only descriptive product details go through here.
func NewCachedCatalog(catalog repository.Catalog, cache repository.ProductDetailCache, ttl time.Duration, log logger.Logger) repository.Catalog {
	if ttl <= 0 {
		ttl = defaultProductCacheTTL
	}
	return &cachedCatalog{
		catalog: catalog,
		cache:   cache,
		ttl:     ttl,
		log:     log,
	}
}

func (c *cachedCatalog) GetProduct(ctx context.Context, productID int64) (entity.Product, error) {
	cached, err := c.cache.Get(ctx, productID)
	if err == nil && cached != nil {
		c.log.Debugf("Product %d found in cache", productID)
		return *cached, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		c.log.Warnf("Error getting product %d from cache: %v. Fetching from storefront.", productID, err)
	}

	product, err := c.catalog.GetProduct(ctx, productID)
	if err != nil {
		return entity.Product{}, err
	}
	if errSetCache := c.cache.Set(ctx, &product, c.ttl); errSetCache != nil {
		c.log.Warnf("Failed to set product %d to cache: %v", productID, errSetCache)
	}
	return product, nil
}
