package entity

import (
	"encoding/json"
)

// Product attributes other than ID are opaque to the cart. Fields the storefront sends
// beyond the named ones are kept verbatim in Extra and written back out unchanged.
type Product struct {
	ID    int64
	Title string
	Price float64
	Image string
	Extra map[string]json.RawMessage
}

type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

type productJSON struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

var productKeys = map[string]struct{}{"id": {}, "title": {}, "price": {}, "image": {}}

func (p Product) known() productJSON {
	return productJSON{ID: p.ID, Title: p.Title, Price: p.Price, Image: p.Image}
}

func (p Product) MarshalJSON() ([]byte, error) {
	return mergeJSON(p.known(), p.Extra)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var known productJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	*p = Product{ID: known.ID, Title: known.Title, Price: known.Price, Image: known.Image}
	for key, value := range all {
		if _, ok := productKeys[key]; ok {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[key] = value
	}
	return nil
}

func (p Product) cloneExtra() map[string]json.RawMessage {
	if p.Extra == nil {
		return nil
	}
	extra := make(map[string]json.RawMessage, len(p.Extra))
	for key, value := range p.Extra {
		extra[key] = append(json.RawMessage(nil), value...)
	}
	return extra
}

// mergeJSON encodes known and adds every extra key known does not already set.
func mergeJSON(known interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, ok := fields[key]; !ok {
			fields[key] = value
		}
	}
	return json.Marshal(fields)
}
