package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorefront(t *testing.T) *StorefrontClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stock/1":
			fmt.Fprint(w, `{"id":1,"amount":3}`)
		case "/stock/2":
			fmt.Fprint(w, `{"id":2,`)
		case "/stock/3":
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, "boom")
		case "/stock/4":
			fmt.Fprint(w, `{"id":5,"amount":3}`)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/1" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprint(w, `{"id":1,"title":"Tênis de Caminhada Leve Confortável","price":179.9,"image":"https://img.example/1.jpg","category":"calcados"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewStorefrontClient(StorefrontClientConfig{BaseURL: srv.URL + "/", Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func TestStorefrontClient_GetStock(t *testing.T) {
	c := newStorefront(t)
	ctx := context.Background()

	stock, err := c.GetStock(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.Stock{ID: 1, Amount: 3}, stock)

	_, err = c.GetStock(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = c.GetStock(ctx, 2)
	assert.ErrorContains(t, err, "decode")

	_, err = c.GetStock(ctx, 3)
	assert.ErrorContains(t, err, "unexpected status 500")

	_, err = c.GetStock(ctx, 4)
	assert.ErrorContains(t, err, "response carries id 5")
}

func TestStorefrontClient_GetProduct(t *testing.T) {
	c := newStorefront(t)

	product, err := c.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), product.ID)
	assert.Equal(t, 179.9, product.Price)
	assert.JSONEq(t, `"calcados"`, string(product.Extra["category"]))

	_, err = c.GetProduct(context.Background(), 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNewStorefrontClient_RequiresURL(t *testing.T) {
	_, err := NewStorefrontClient(StorefrontClientConfig{})
	assert.Error(t, err)
}
