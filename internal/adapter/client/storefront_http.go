package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
)

const (
	defaultStorefrontTimeout = 5 * time.Second
	maxErrorBodyBytes        = 512
)

type StorefrontClientConfig struct {
	BaseURL string // e.g. "http://localhost:3333" for the json-server fake API
	Timeout time.Duration
}

// StorefrontClient implements repository.StockOracle and repository.Catalog against
// the storefront REST API (GET /stock/{id}, GET /products/{id}).
type StorefrontClient struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func NewStorefrontClient(cfg StorefrontClientConfig) (*StorefrontClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("storefront api url is not configured")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid storefront api url %q: %w", cfg.BaseURL, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultStorefrontTimeout
	}
	return &StorefrontClient{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *StorefrontClient) GetStock(ctx context.Context, productID int64) (entity.Stock, error) {
	var stock entity.Stock
	if err := c.getJSON(ctx, fmt.Sprintf("/stock/%d", productID), &stock); err != nil {
		return entity.Stock{}, fmt.Errorf("get stock for product %d: %w", productID, err)
	}
	if stock.ID != productID {
		return entity.Stock{}, fmt.Errorf("get stock for product %d: response carries id %d", productID, stock.ID)
	}
	return stock, nil
}

func (c *StorefrontClient) GetProduct(ctx context.Context, productID int64) (entity.Product, error) {
	var product entity.Product
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", productID), &product); err != nil {
		return entity.Product{}, fmt.Errorf("get product %d: %w", productID, err)
	}
	if product.ID != productID {
		return entity.Product{}, fmt.Errorf("get product %d: response carries id %d", productID, product.ID)
	}
	return product, nil
}

func (c *StorefrontClient) getJSON(ctx context.Context, path string, out interface{}) error {
	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint.Path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return repository.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("request %s: unexpected status %d: %s", endpoint.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint.Path, err)
	}
	return nil
}
