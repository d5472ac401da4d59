package domain

import (
	"encoding/json"
	"time"
)

// Catalog table names, in the order product resolution scans them. The
// catalog is denormalized across these per-category tables; ids are not
// guaranteed unique across tables, so this order is the tie-break.
var ProductTables = []string{
	"grillz_products",
	"chain_products",
	"watch_products",
	"earring_products",
	"pendant_products",
	"bracelet_products",
	"glasses_products",
	"diamond_products",
	"engagement_ring_products",
	"hip_hop_ring_products",
	"vvs_simulant_products",
	"custom_products",
}

// BuyNowTables is the fixed search order for the single-item checkout
// variant, which only ever sells from the grillz and custom pages.
var BuyNowTables = []string{"grillz_products", "custom_products"}

// ConsolidatedTable mirrors every per-category row with a source_table
// column, letting resolution run as a single lookup.
const ConsolidatedTable = "products"

// LengthPrice is one entry of a product's lengths_and_prices JSON column.
// When the shopper picks a length, its price and payment price reference
// override the product-level ones.
type LengthPrice struct {
	Identifier      string `json:"identifier"`
	Price           int64  `json:"price"`
	PaymentPriceRef string `json:"payment_price_ref,omitempty"`
}

// Product is a catalog row. Prices are minor currency units (cents).
// Rows are written out of band; the checkout flow only reads them.
type Product struct {
	ID                 string        `json:"id" db:"id"`
	Name               string        `json:"name" db:"name"`
	Description        string        `json:"description" db:"description"`
	Price              int64         `json:"price" db:"price"`
	OriginalPrice      *int64        `json:"original_price,omitempty" db:"original_price"`
	DiscountPercentage *int64        `json:"discount_percentage,omitempty" db:"discount_percentage"`
	Category           string        `json:"category" db:"category"`
	Material           string        `json:"material" db:"material"`
	Color              string        `json:"color" db:"color"`
	Sizes              []string      `json:"sizes" db:"sizes"`
	LengthsAndPrices   []LengthPrice `json:"lengths_and_prices,omitempty" db:"lengths_and_prices"`
	InStock            bool          `json:"in_stock" db:"in_stock"`
	ShipsToday         bool          `json:"ships_today" db:"ships_today"`
	StripePriceID      string        `json:"stripe_price_id" db:"stripe_price_id"`
	StripeProductID    string        `json:"stripe_product_id" db:"stripe_product_id"`
	ImageURL           string        `json:"image_url" db:"image_url"`
	Rating             float64       `json:"rating" db:"rating"`
	ReviewCount        int           `json:"review_count" db:"review_count"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// LengthPrice returns the variant entry matching identifier, or nil.
func (p *Product) LengthPrice(identifier string) *LengthPrice {
	for i := range p.LengthsAndPrices {
		if p.LengthsAndPrices[i].Identifier == identifier {
			return &p.LengthsAndPrices[i]
		}
	}
	return nil
}

// UnitPrice returns the price charged for the given selected length,
// falling back to the base price when no variant matches.
func (p *Product) UnitPrice(selectedLength string) int64 {
	if selectedLength != "" {
		if lp := p.LengthPrice(selectedLength); lp != nil {
			return lp.Price
		}
	}
	return p.Price
}

// Snapshot returns the JSON product snapshot embedded in order rows.
func (p *Product) Snapshot() json.RawMessage {
	b, _ := json.Marshal(p)
	return b
}

// SyntheticProduct builds a degraded product record from a cart item's own
// fields, used when no catalog table yields a row for its id.
func SyntheticProduct(item CartItem) *Product {
	return &Product{
		ID:       item.ProductID,
		Name:     item.Name,
		Price:    item.Price,
		ImageURL: item.ImageURL,
	}
}
