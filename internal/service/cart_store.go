package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// User-facing notification texts. Exactly one is emitted per rejected operation.
const (
	NotifyAddFailed    = "Failed to add product"
	NotifyRemoveFailed = "Failed to remove product"
	NotifyUpdateFailed = "Failed to change product amount"
	NotifyClearFailed  = "Failed to clear cart"
	NotifyOutOfStock   = "Requested quantity is out of stock"
)

const (
	opAddProduct          = "add_product"
	opRemoveProduct       = "remove_product"
	opUpdateProductAmount = "update_product_amount"
	opClearCart           = "clear_cart"
)

const tracerName = "github.com/Abdurahmanit/GroupProject/cart-service/internal/service"

type UpdateProductAmount struct {
	ProductID int64 `json:"productId"`
	Amount    int   `json:"amount"`
}

type CartStoreDeps struct {
	KV       repository.KVStore
	Stock    repository.StockOracle
	Catalog  repository.Catalog
	Notifier repository.Notifier
	Log      logger.Logger
	Metrics  *metrics.MetricsManager
}

// CartStore holds one cart and mirrors it to the key-value store under a single key.
//
// A CartStore has exactly one writer: it does no locking and must not be called
// concurrently. SessionRegistry enforces this for the HTTP surface. The stored value is
// replaced whole on every successful mutation (last writer wins).
//
// Mutations are applied to a copy that replaces the in-memory cart only after the
// write succeeded, so a rejected operation never leaves a partial change behind.
type CartStore struct {
	key      string
	cart     entity.Cart
	kv       repository.KVStore
	stock    repository.StockOracle
	catalog  repository.Catalog
	notifier repository.Notifier
	log      logger.Logger
	metrics  *metrics.MetricsManager
	tracer   trace.Tracer
}

// NewCartStore loads the cart persisted under key. A missing or unreadable value yields an
// empty cart; only a failing read from the store is an error.
func NewCartStore(ctx context.Context, key string, deps CartStoreDeps) (*CartStore, error) {
	if key == "" {
		return nil, errors.New("cart storage key cannot be empty")
	}
	if deps.KV == nil || deps.Stock == nil || deps.Catalog == nil || deps.Notifier == nil {
		return nil, errors.New("cart store requires kv store, stock oracle, catalog and notifier")
	}
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}

	cart := entity.NewCart()
	blob, err := deps.KV.Get(ctx, key)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Debugf("No persisted cart under %s, starting empty", key)
	case err != nil:
		return nil, fmt.Errorf("could not load cart %s: %w", key, err)
	default:
		decoded, err := entity.DecodeCart(blob)
		if err != nil {
			// The bad value stays in place until the next successful commit overwrites it.
			log.Warnf("Discarding unreadable cart under %s, starting empty: %v", key, err)
			break
		}
		cart = decoded
	}

	return &CartStore{
		key:      key,
		cart:     cart,
		kv:       deps.KV,
		stock:    deps.Stock,
		catalog:  deps.Catalog,
		notifier: deps.Notifier,
		log:      log.With("cart_key", key),
		metrics:  deps.Metrics,
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// Cart returns a snapshot; changing it does not affect the store.
func (s *CartStore) Cart() entity.Cart {
	return s.cart.Clone()
}

func (s *CartStore) AddProduct(ctx context.Context, productID int64) (err error) {
	ctx, span := s.startSpan(ctx, "CartStore.AddProduct", productID)
	defer func() { s.finish(span, opAddProduct, err) }()

	s.log.Infof("Adding product %d to cart", productID)
	stock, err := s.lookupStock(ctx, productID)
	if err != nil {
		return s.reject(ctx, NotifyAddFailed, err)
	}
	if stock.Amount <= 0 {
		return s.reject(ctx, NotifyAddFailed, fmt.Errorf("%w: product %d has no stock", domain.ErrOutOfStock, productID))
	}

	next := s.cart.Clone()
	if item, _ := next.GetItem(productID); item != nil {
		if item.Amount >= stock.Amount {
			return s.reject(ctx, NotifyOutOfStock, fmt.Errorf("%w: product %d has %d in cart and %d in stock",
				domain.ErrOutOfStock, productID, item.Amount, stock.Amount))
		}
		if err := next.IncrementItem(productID); err != nil {
			return s.reject(ctx, NotifyAddFailed, err)
		}
	} else {
		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return s.reject(ctx, NotifyAddFailed, fmt.Errorf("%w: product %d details: %v", domain.ErrTransportFailure, productID, err))
		}
		if err := next.AddItem(product); err != nil {
			return s.reject(ctx, NotifyAddFailed, err)
		}
	}

	if err := s.commit(ctx, next); err != nil {
		return s.reject(ctx, NotifyAddFailed, err)
	}
	s.log.Infof("Product %d added to cart", productID)
	return nil
}

func (s *CartStore) RemoveProduct(ctx context.Context, productID int64) (err error) {
	ctx, span := s.startSpan(ctx, "CartStore.RemoveProduct", productID)
	defer func() { s.finish(span, opRemoveProduct, err) }()

	s.log.Infof("Removing product %d from cart", productID)
	next := s.cart.Clone()
	if err := next.RemoveItem(productID); err != nil {
		return s.reject(ctx, NotifyRemoveFailed, err)
	}
	if err := s.commit(ctx, next); err != nil {
		return s.reject(ctx, NotifyRemoveFailed, err)
	}
	s.log.Infof("Product %d removed from cart", productID)
	return nil
}

// UpdateProductAmount sets the amount of an entry already in the cart. When the product
// is not in the cart nothing changes and no notification is sent, but the unchanged cart
// is still written back.
func (s *CartStore) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) (err error) {
	ctx, span := s.startSpan(ctx, "CartStore.UpdateProductAmount", req.ProductID)
	span.SetAttributes(attribute.Int("cart.requested_amount", req.Amount))
	defer func() { s.finish(span, opUpdateProductAmount, err) }()

	s.log.Infof("Updating product %d amount to %d", req.ProductID, req.Amount)
	if req.Amount < 1 {
		return s.reject(ctx, NotifyUpdateFailed, fmt.Errorf("%w: got %d for product %d", domain.ErrInvalidAmount, req.Amount, req.ProductID))
	}

	stock, err := s.lookupStock(ctx, req.ProductID)
	if err != nil {
		return s.reject(ctx, NotifyUpdateFailed, err)
	}

	next := s.cart.Clone()
	item, _ := next.GetItem(req.ProductID)
	if item == nil {
		s.log.Debugf("Product %d is not in cart, rewriting cart unchanged", req.ProductID)
		if err := s.commit(ctx, next); err != nil {
			return s.reject(ctx, NotifyUpdateFailed, err)
		}
		return nil
	}

	if exceedsStock(item.Amount, req.Amount, stock.Amount) {
		return s.reject(ctx, NotifyOutOfStock, fmt.Errorf("%w: product %d has %d in cart and %d in stock",
			domain.ErrOutOfStock, req.ProductID, item.Amount, stock.Amount))
	}
	if err := next.UpdateItemAmount(req.ProductID, req.Amount); err != nil {
		return s.reject(ctx, NotifyUpdateFailed, err)
	}
	if err := s.commit(ctx, next); err != nil {
		return s.reject(ctx, NotifyUpdateFailed, err)
	}
	s.log.Infof("Product %d amount set to %d", req.ProductID, req.Amount)
	return nil
}

func (s *CartStore) Clear(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, "CartStore.Clear")
	defer func() { s.finish(span, opClearCart, err) }()

	if err := s.commit(ctx, entity.NewCart()); err != nil {
		return s.reject(ctx, NotifyClearFailed, err)
	}
	s.log.Info("Cart cleared")
	return nil
}

// exceedsStock compares the amount already stored, not the requested one, against stock.
// A requested amount above stock therefore passes while the stored amount is below it.
func exceedsStock(stored, requested, available int) bool {
	return stored <= 0 || (stored >= available && requested > 0)
}

func (s *CartStore) lookupStock(ctx context.Context, productID int64) (entity.Stock, error) {
	started := time.Now()
	stock, err := s.stock.GetStock(ctx, productID)
	s.metrics.ObserveStockLookup(started)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.Stock{}, fmt.Errorf("%w: no stock record for product %d", domain.ErrOutOfStock, productID)
		}
		return entity.Stock{}, fmt.Errorf("%w: stock for product %d: %v", domain.ErrTransportFailure, productID, err)
	}
	return stock, nil
}

func (s *CartStore) commit(ctx context.Context, next entity.Cart) error {
	blob, err := next.Encode()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistFailure, err)
	}
	if err := s.kv.Set(ctx, s.key, blob); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistFailure, err)
	}
	s.cart = next
	return nil
}

func (s *CartStore) reject(ctx context.Context, message string, err error) error {
	s.log.Warnf("Cart operation rejected: %v", err)
	s.notifier.Error(ctx, message)
	s.metrics.ObserveNotification()
	return err
}

func (s *CartStore) startSpan(ctx context.Context, name string, productID int64) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.Int64("product.id", productID)))
}

func (s *CartStore) finish(span trace.Span, operation string, err error) {
	s.metrics.ObserveOperation(operation, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
