package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/memory"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/notifier"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "cart", StorageKey("cart", ""))
	assert.Equal(t, "cart:abc", StorageKey("cart", "abc"))
}

func TestSessionRegistry_IsolatesSessions(t *testing.T) {
	kv := memory.NewKVStore()
	stock := new(MockStockOracle)
	catalog := new(MockCatalog)
	stock.On("GetStock", mock.Anything, int64(42)).Return(entity.Stock{ID: 42, Amount: 5}, nil)
	catalog.On("GetProduct", mock.Anything, int64(42)).Return(product(42), nil)

	recorders := map[string]*notifier.Recorder{}
	registry := NewSessionRegistry("cart", CartStoreDeps{KV: kv, Stock: stock, Catalog: catalog}, func(sessionID string) repository.Notifier {
		r := &notifier.Recorder{}
		recorders[sessionID] = r
		return r
	})
	ctx := context.Background()

	require.NoError(t, registry.Do(ctx, "alice", func(store *CartStore) error {
		return store.AddProduct(ctx, 42)
	}))
	err := registry.Do(ctx, "bob", func(store *CartStore) error {
		return store.RemoveProduct(ctx, 42)
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	blob, err := kv.Get(ctx, "cart:alice")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":42,"title":"Tênis de Caminhada","price":179.9,"image":"https://img.example/tenis.jpg","amount":1}]`, blob)
	_, err = kv.Get(ctx, "cart:bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.Empty(t, recorders["alice"].Messages)
	assert.Equal(t, []string{NotifyRemoveFailed}, recorders["bob"].Messages)
}

func TestSessionRegistry_ReusesLoadedStore(t *testing.T) {
	kv := memory.NewKVStore()
	require.NoError(t, kv.Set(context.Background(), "cart", `[{"id":7,"title":"t","price":1,"image":"i","amount":2}]`))
	m := metrics.NewMetricsManager("sessions_test")
	registry := NewSessionRegistry("cart", CartStoreDeps{
		KV: kv, Stock: new(MockStockOracle), Catalog: new(MockCatalog), Notifier: &notifier.Recorder{}, Metrics: m,
	}, nil)
	ctx := context.Background()

	var first, second *CartStore
	require.NoError(t, registry.Do(ctx, "", func(store *CartStore) error { first = store; return nil }))
	require.NoError(t, registry.Do(ctx, "", func(store *CartStore) error { second = store; return nil }))

	assert.Same(t, first, second)
	assert.Equal(t, 2, first.Cart()[0].Amount)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestSessionRegistry_LoadFailureIsRetried(t *testing.T) {
	kv := new(MockKVStore)
	kv.On("Get", mock.Anything, "cart:s1").Return("", repository.ErrConnectionFailed).Once()
	kv.On("Get", mock.Anything, "cart:s1").Return("[]", nil).Once()
	registry := NewSessionRegistry("cart", CartStoreDeps{
		KV: kv, Stock: new(MockStockOracle), Catalog: new(MockCatalog), Notifier: &notifier.Recorder{},
	}, nil)
	called := 0
	fn := func(store *CartStore) error { called++; return nil }

	assert.ErrorIs(t, registry.Do(context.Background(), "s1", fn), repository.ErrConnectionFailed)
	assert.Equal(t, 0, registry.Len())
	require.NoError(t, registry.Do(context.Background(), "s1", fn))
	assert.Equal(t, 1, called)
	assert.Equal(t, 1, registry.Len())
	kv.AssertExpectations(t)
}

func TestSessionRegistry_SerializesSameSession(t *testing.T) {
	kv := memory.NewKVStore()
	stock := new(MockStockOracle)
	catalog := new(MockCatalog)
	stock.On("GetStock", mock.Anything, int64(42)).Return(entity.Stock{ID: 42, Amount: 100}, nil)
	catalog.On("GetProduct", mock.Anything, int64(42)).Return(product(42), nil)
	registry := NewSessionRegistry("cart", CartStoreDeps{KV: kv, Stock: stock, Catalog: catalog}, func(string) repository.Notifier {
		return notifier.Multi()
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, registry.Do(ctx, "shared", func(store *CartStore) error {
				return store.AddProduct(ctx, 42)
			}))
		}()
	}
	wg.Wait()

	require.NoError(t, registry.Do(ctx, "shared", func(store *CartStore) error {
		assert.Equal(t, entity.Cart{entry(42, 20)}, store.Cart())
		return nil
	}))
}

func TestSessionRegistry_FailedLoadsDoNotAccumulate(t *testing.T) {
	kv := new(MockKVStore)
	kv.On("Get", mock.Anything, mock.Anything).Return("", repository.ErrConnectionFailed)
	registry := NewSessionRegistry("cart", CartStoreDeps{
		KV: kv, Stock: new(MockStockOracle), Catalog: new(MockCatalog), Notifier: &notifier.Recorder{},
	}, nil)

	for i := 0; i < 50; i++ {
		err := registry.Do(context.Background(), fmt.Sprintf("visitor-%d", i), func(*CartStore) error { return nil })
		require.Error(t, err)
	}
	assert.Equal(t, 0, registry.Len())
}

func TestSessionRegistry_RecoversFromCorruptCart(t *testing.T) {
	kv := memory.NewKVStore()
	require.NoError(t, kv.Set(context.Background(), "cart:s1", `[{"id":1,"amount":0}]`))
	stock := new(MockStockOracle)
	catalog := new(MockCatalog)
	stock.On("GetStock", mock.Anything, int64(42)).Return(entity.Stock{ID: 42, Amount: 5}, nil)
	catalog.On("GetProduct", mock.Anything, int64(42)).Return(product(42), nil)
	notes := &notifier.Recorder{}
	registry := NewSessionRegistry("cart", CartStoreDeps{KV: kv, Stock: stock, Catalog: catalog, Notifier: notes}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, registry.Do(ctx, "s1", func(store *CartStore) error {
			return store.Clear(ctx)
		}))
	}
	blob, err := kv.Get(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Equal(t, "[]", blob)

	require.NoError(t, registry.Do(ctx, "s1", func(store *CartStore) error {
		return store.AddProduct(ctx, 42)
	}))
	require.NoError(t, registry.Do(ctx, "s1", func(store *CartStore) error {
		assert.Equal(t, entity.Cart{entry(42, 1)}, store.Cart())
		return nil
	}))
	assert.Empty(t, notes.Messages)
}
