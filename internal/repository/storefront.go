package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
)

// StockOracle returns ErrNotFound when the storefront has no stock record for a product.
type StockOracle interface {
	GetStock(ctx context.Context, productID int64) (entity.Stock, error)
}

type Catalog interface {
	GetProduct(ctx context.Context, productID int64) (entity.Product, error)
}

type Notifier interface {
	Error(ctx context.Context, message string)
}
