package cart

import (
	"github.com/nevbird/storefront-api/internal/catalog"
)

// FallbackImage is shown when neither the line nor the catalog carries one.
const FallbackImage = "/images/core-tee-1.png"

// FallbackTitle is shown when no title can be derived at all.
const FallbackTitle = "Product"

// ProductFinder is the catalog surface the resolver consumes.
type ProductFinder interface {
	FindByKey(key string) (*catalog.Product, bool)
	FindByVariantID(id string) (*catalog.Product, *catalog.Variant, bool)
}

// Resolved is the canonical display tuple derived from a raw line.
type Resolved struct {
	ProductID  string `json:"productId"`
	VariantID  string `json:"variantId,omitempty"`
	Title      string `json:"title"`
	Image      string `json:"image"`
	PriceCents int    `json:"priceCents"`
	Qty        int    `json:"qty"`
}

// PriceUnavailable reports the price-unavailable warning condition. It is a
// data-quality signal for display, not an error.
func (r Resolved) PriceUnavailable() bool {
	return r.PriceCents <= 0
}

// Resolve derives the canonical display fields for one line. Each field
// follows its own precedence chain, first non-empty wins: the line's own
// value, then an embedded product/variant object carried through Extra, then
// the catalog, then a fixed fallback. Pure; identical input and catalog
// state always yield identical output.
func Resolve(item Item, finder ProductFinder) Resolved {
	embeddedProduct, _ := item.Extra["product"].(map[string]any)
	embeddedVariant, _ := item.Extra["variant"].(map[string]any)
	embeddedVariants := variantMaps(embeddedProduct)

	productID := item.ProductID
	if productID == "" {
		productID = mapString(embeddedProduct, "id", "slug")
	}
	if productID == "" {
		productID = stringish(item.Extra["id"])
	}

	variantID := item.VariantID
	if variantID == "" {
		variantID = mapString(embeddedVariant, "id")
	}

	// An embedded product in catalog shape carries its own variants; a
	// variantId that names one of them resolves there even when the
	// product is unknown to the catalog.
	if embeddedVariant == nil && variantID != "" {
		for _, v := range embeddedVariants {
			if mapString(v, "id") == variantID {
				embeddedVariant = v
				break
			}
		}
	}

	var firstEmbeddedVariant map[string]any
	if len(embeddedVariants) > 0 {
		firstEmbeddedVariant = embeddedVariants[0]
	}

	var (
		product *catalog.Product
		variant *catalog.Variant
	)
	if finder != nil {
		if p, ok := finder.FindByKey(productID); ok {
			product = p
		}
		if variantID != "" {
			if p, v, ok := finder.FindByVariantID(variantID); ok {
				variant = v
				if product == nil {
					product = p
				}
			}
		}
	}

	out := Resolved{
		ProductID: productID,
		VariantID: variantID,
		Title:     resolveTitle(item, embeddedProduct, embeddedVariant, product),
		Image:     resolveImage(item, embeddedProduct, embeddedVariant, firstEmbeddedVariant, product, variant),
		Qty:       resolveQty(item),
	}
	out.PriceCents = resolvePrice(item, embeddedProduct, embeddedVariant, firstEmbeddedVariant, product, variant)
	return out
}

func resolveTitle(item Item, embeddedProduct, embeddedVariant map[string]any, product *catalog.Product) string {
	if item.Title != "" {
		return item.Title
	}
	if title := mapString(embeddedVariant, "title", "name"); title != "" {
		return title
	}
	if title := mapString(embeddedProduct, "title", "name"); title != "" {
		return title
	}
	if product != nil && product.Title != "" {
		return product.Title
	}
	return FallbackTitle
}

func resolveImage(item Item, embeddedProduct, embeddedVariant, firstEmbeddedVariant map[string]any, product *catalog.Product, variant *catalog.Variant) string {
	if item.Image != "" {
		return item.Image
	}
	if img := mapImage(embeddedVariant); img != "" {
		return img
	}
	if variant != nil && len(variant.Images) > 0 {
		return variant.Images[0]
	}
	if img := mapImage(embeddedProduct); img != "" {
		return img
	}
	if img := mapImage(firstEmbeddedVariant); img != "" {
		return img
	}
	if product != nil {
		if v := product.FirstVariant(); v != nil && len(v.Images) > 0 {
			return v.Images[0]
		}
	}
	return FallbackImage
}

func resolvePrice(item Item, embeddedProduct, embeddedVariant, firstEmbeddedVariant map[string]any, product *catalog.Product, variant *catalog.Variant) int {
	if item.PriceCents != nil {
		return *item.PriceCents
	}
	if cents, ok := mapInt(embeddedVariant, "priceCents"); ok {
		return cents
	}
	if variant != nil {
		return variant.PriceCents
	}
	if cents, ok := mapInt(embeddedProduct, "priceCents"); ok {
		return cents
	}
	if cents, ok := mapInt(firstEmbeddedVariant, "priceCents"); ok {
		return cents
	}
	if product != nil {
		if v := product.FirstVariant(); v != nil {
			return v.PriceCents
		}
	}
	return 0
}

func resolveQty(item Item) int {
	if item.Qty != 0 {
		return item.Qty
	}
	if n, ok := asInt(item.Extra["quantity"]); ok && n != 0 {
		return n
	}
	return 1
}

func mapString(m map[string]any, keys ...string) string {
	if m == nil {
		return ""
	}
	for _, key := range keys {
		if s := stringish(m[key]); s != "" {
			return s
		}
	}
	return ""
}

func mapInt(m map[string]any, key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	return asInt(m[key])
}

// variantMaps extracts the variants array from an embedded product carried in
// catalog shape. Non-map entries are skipped.
func variantMaps(m map[string]any) []map[string]any {
	raw, ok := m["variants"].([]any)
	if !ok {
		return nil
	}
	variants := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if v, ok := entry.(map[string]any); ok {
			variants = append(variants, v)
		}
	}
	return variants
}

// mapImage probes the shapes embedded objects historically used for images:
// a bare "image" string or an "images" array.
func mapImage(m map[string]any) string {
	if m == nil {
		return ""
	}
	if s, _ := m["image"].(string); s != "" {
		return s
	}
	if images, ok := m["images"].([]any); ok && len(images) > 0 {
		if s, _ := images[0].(string); s != "" {
			return s
		}
	}
	return ""
}
