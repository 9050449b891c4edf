package cart

import (
	"bytes"
	"encoding/json"
)

// Item is one cart line. ProductID and VariantID together form the line's
// identity; an empty VariantID means the product has no variant dimension
// and only matches other variant-less lines.
//
// Title, Image and PriceCents are a denormalized snapshot captured at
// add-time; they are not re-synced if the catalog changes. A nil PriceCents
// means the call site never captured a price, while an explicit 0 records a
// price-unavailable snapshot.
//
// Extra carries any unknown fields verbatim through serialization. Legacy
// call-site shapes (a "quantity" alias, embedded product/variant objects, a
// bare "id") arrive there and are interpreted only by Resolve.
type Item struct {
	ProductID  string
	VariantID  string
	Title      string
	Image      string
	PriceCents *int
	Qty        int
	Extra      map[string]any
}

// sameLine reports whether the item matches the given identity key.
func (it Item) sameLine(productID, variantID string) bool {
	return it.ProductID == productID && it.VariantID == variantID
}

// MarshalJSON flattens the canonical fields and the Extra passthrough into
// one object so persisted blobs round-trip field-for-field.
func (it Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(it.Extra)+6)
	for key, value := range it.Extra {
		out[key] = value
	}
	out["productId"] = it.ProductID
	if it.VariantID != "" {
		out["variantId"] = it.VariantID
	}
	if it.Title != "" {
		out["title"] = it.Title
	}
	if it.Image != "" {
		out["image"] = it.Image
	}
	if it.PriceCents != nil {
		out["priceCents"] = *it.PriceCents
	}
	if it.Qty != 0 {
		out["qty"] = it.Qty
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts any JSON object, lifting the canonical fields and
// folding everything else into Extra untouched.
func (it *Item) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*it = Item{}
	for key, value := range raw {
		switch key {
		case "productId":
			it.ProductID = stringish(value)
		case "variantId":
			// historical payloads stored numeric variant ids
			it.VariantID = stringish(value)
		case "title":
			it.Title, _ = value.(string)
		case "image":
			it.Image, _ = value.(string)
		case "priceCents":
			if n, ok := asInt(value); ok {
				it.PriceCents = &n
			}
		case "qty":
			if n, ok := asInt(value); ok {
				it.Qty = n
			}
		default:
			if it.Extra == nil {
				it.Extra = map[string]any{}
			}
			it.Extra[key] = value
		}
	}
	return nil
}

func stringish(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return json.Number(formatFloat(v)).String()
	default:
		return ""
	}
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func formatFloat(f float64) string {
	data, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return string(data)
}

// IntPtr is a small helper for building price snapshots.
func IntPtr(value int) *int {
	return &value
}

// StringPtr mirrors IntPtr for optional identity keys.
func StringPtr(value string) *string {
	return &value
}
