package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	productDetailCacheKeyPrefix = "product_detail:"
)

type productDetailCacheRepository struct {
	client redis.Cmdable
}

func NewProductDetailCacheRepository(client redis.Cmdable) repository.ProductDetailCache {
	return &productDetailCacheRepository{
		client: client,
	}
}

func (r *productDetailCacheRepository) getProductDetailKey(productID int64) string {
	return productDetailCacheKeyPrefix + strconv.FormatInt(productID, 10)
}

func (r *productDetailCacheRepository) Get(ctx context.Context, productID int64) (*entity.Product, error) {
	key := r.getProductDetailKey(productID)
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product detail for productID %d from redis: %w", productID, err)
	}

	var product entity.Product
	if err := json.Unmarshal(val, &product); err != nil {
		_ = r.Delete(ctx, productID)
		return nil, fmt.Errorf("failed to unmarshal product detail data for productID %d: %w", productID, err)
	}
	return &product, nil
}

func (r *productDetailCacheRepository) Set(ctx context.Context, product *entity.Product, ttl time.Duration) error {
	if product == nil || product.ID == 0 {
		return errors.New("cannot cache nil product details or product details with empty productID")
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product details for productID %d: %w", product.ID, err)
	}

	if err := r.client.Set(ctx, r.getProductDetailKey(product.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set product detail for productID %d to redis: %w", product.ID, err)
	}
	return nil
}

func (r *productDetailCacheRepository) Delete(ctx context.Context, productID int64) error {
	if err := r.client.Del(ctx, r.getProductDetailKey(productID)).Err(); err != nil {
		return fmt.Errorf("failed to delete product detail for productID %d from redis: %w", productID, err)
	}
	return nil
}
