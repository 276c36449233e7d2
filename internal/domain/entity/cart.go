package entity

import (
	"encoding/json"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain"
)

type CartEntry struct {
	Product
	Amount int
}

type cartEntryJSON struct {
	productJSON
	Amount int `json:"amount"`
}

// MarshalJSON writes the product attributes and the amount as one flat object.
func (e CartEntry) MarshalJSON() ([]byte, error) {
	return mergeJSON(cartEntryJSON{productJSON: e.known(), Amount: e.Amount}, e.Extra)
}

func (e *CartEntry) UnmarshalJSON(data []byte) error {
	var product Product
	if err := product.UnmarshalJSON(data); err != nil {
		return err
	}
	var amount struct {
		Amount int `json:"amount"`
	}
	if err := json.Unmarshal(data, &amount); err != nil {
		return err
	}
	delete(product.Extra, "amount")
	if len(product.Extra) == 0 {
		product.Extra = nil
	}
	*e = CartEntry{Product: product, Amount: amount.Amount}
	return nil
}

// Cart is ordered by insertion and holds at most one entry per product.
type Cart []CartEntry

func NewCart() Cart {
	return make(Cart, 0)
}

func (c Cart) GetItem(productID int64) (*CartEntry, int) {
	for i := range c {
		if c[i].ID == productID {
			return &c[i], i
		}
	}
	return nil, -1
}

func (c Cart) Clone() Cart {
	clone := make(Cart, len(c))
	copy(clone, c)
	for i := range clone {
		clone[i].Extra = c[i].cloneExtra()
	}
	return clone
}

func (c *Cart) AddItem(product Product) error {
	if item, _ := c.GetItem(product.ID); item != nil {
		return fmt.Errorf("%w: product %d", domain.ErrDuplicateEntry, product.ID)
	}
	*c = append(*c, CartEntry{Product: product, Amount: 1})
	return nil
}

func (c Cart) IncrementItem(productID int64) error {
	item, _ := c.GetItem(productID)
	if item == nil {
		return fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	item.Amount++
	return nil
}

func (c Cart) UpdateItemAmount(productID int64, amount int) error {
	if amount < 1 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidAmount, amount)
	}
	item, _ := c.GetItem(productID)
	if item == nil {
		return fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	item.Amount = amount
	return nil
}

func (c *Cart) RemoveItem(productID int64) error {
	_, index := c.GetItem(productID)
	if index == -1 {
		return fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	items := *c
	*c = append(items[:index:index], items[index+1:]...)
	return nil
}

func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c))
	for _, item := range c {
		if item.Amount < 1 {
			return fmt.Errorf("product %d has amount %d: %w", item.ID, item.Amount, domain.ErrInvalidAmount)
		}
		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("product %d: %w", item.ID, domain.ErrDuplicateEntry)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// Encode produces the blob written to the key-value store: a JSON array of entries.
func (c Cart) Encode() (string, error) {
	items := c
	if items == nil {
		items = NewCart()
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cart: %w", err)
	}
	return string(data), nil
}

func DecodeCart(blob string) (Cart, error) {
	var cart Cart
	if err := json.Unmarshal([]byte(blob), &cart); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptCart, err)
	}
	if cart == nil {
		cart = NewCart()
	}
	if err := cart.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptCart, err)
	}
	return cart, nil
}
