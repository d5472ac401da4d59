package domain

import (
	"encoding/json"
	"fmt"
)

// CartItem is one line of the shopper's cart. The cart lives in the
// browser; the server sees it twice: as the checkout request body, and
// round-tripped through the payment session's string-only metadata. Name,
// price and image are the client's copies and are only trusted as the
// synthetic fallback when no catalog table resolves the id.
type CartItem struct {
	ProductID      string `json:"id"`
	SourceTable    string `json:"source_table"`
	Name           string `json:"name,omitempty"`
	Price          int64  `json:"price,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	SelectedSize   string `json:"selected_size,omitempty"`
	SelectedLength string `json:"selected_length,omitempty"`
	Quantity       int64  `json:"quantity"`
}

// Subtotal sums price*quantity across items, in minor units.
func Subtotal(items []CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * it.Quantity
	}
	return total
}

// EncodeCartItems serializes a cart for the session metadata side channel.
// Metadata values are strings, so the cart travels as one JSON string.
func EncodeCartItems(items []CartItem) (string, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode cart items: %w", err)
	}
	return string(b), nil
}

// DecodeCartItems parses the cart out of session metadata.
func DecodeCartItems(raw string) ([]CartItem, error) {
	var items []CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart items: %w", err)
	}
	return items, nil
}
