package catalog

// Variant is one purchasable configuration of a product. Prices are integer
// minor currency units; a price of exactly 0 renders as "price unavailable"
// downstream rather than failing.
type Variant struct {
	ID         string   `json:"id"`
	Size       string   `json:"size,omitempty"`
	Color      string   `json:"color,omitempty"`
	PriceCents int      `json:"priceCents"`
	Inventory  int      `json:"inventory"`
	Images     []string `json:"images"`
}

// Product is a read-only catalog entry. Products are never mutated at
// runtime; every lookup returns the shared instance.
type Product struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags,omitempty"`
	Featured    bool      `json:"featured,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	Variants    []Variant `json:"variants"`
}

// FirstVariant returns the product's lead variant, used for card pricing and
// fallback imagery.
func (p *Product) FirstVariant() *Variant {
	if p == nil || len(p.Variants) == 0 {
		return nil
	}
	return &p.Variants[0]
}
