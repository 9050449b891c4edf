package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nevbird/storefront-api/pkg/pagination"
)

//go:embed seed/catalog.json
var seedCatalog []byte

const (
	SortNone      = "none"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// Service is the read-only catalog. All lookups are linear scans; the
// dataset is small and static per process.
type Service struct {
	products []Product
}

// New wraps an already-loaded product list.
func New(products []Product) *Service {
	return &Service{products: products}
}

// Load reads the catalog from the given JSON file, or from the embedded seed
// dataset when path is empty.
func Load(path string) (*Service, error) {
	raw := seedCatalog
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		raw = data
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(products), nil
}

// All returns the full product list in catalog order.
func (s *Service) All() []Product {
	return s.products
}

// FindByID returns the product with the given id.
func (s *Service) FindByID(id string) (*Product, bool) {
	if id == "" {
		return nil, false
	}
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], true
		}
	}
	return nil, false
}

// FindBySlug returns the product with the given slug.
func (s *Service) FindBySlug(slug string) (*Product, bool) {
	if slug == "" {
		return nil, false
	}
	for i := range s.products {
		if s.products[i].Slug == slug {
			return &s.products[i], true
		}
	}
	return nil, false
}

// FindByVariantID scans every product's variants for the given variant id,
// returning the owning product and the variant.
func (s *Service) FindByVariantID(id string) (*Product, *Variant, bool) {
	if id == "" {
		return nil, nil, false
	}
	for i := range s.products {
		for j := range s.products[i].Variants {
			if s.products[i].Variants[j].ID == id {
				return &s.products[i], &s.products[i].Variants[j], true
			}
		}
	}
	return nil, nil, false
}

// FindByKey resolves a loosely-typed key the way cart call sites historically
// addressed products: product id, slug, or any variant id.
func (s *Service) FindByKey(key string) (*Product, bool) {
	if key == "" {
		return nil, false
	}
	if p, ok := s.FindByID(key); ok {
		return p, true
	}
	if p, ok := s.FindBySlug(key); ok {
		return p, true
	}
	if p, _, ok := s.FindByVariantID(key); ok {
		return p, true
	}
	return nil, false
}

// Categories returns the distinct category list, sorted, with "all" first.
func (s *Service) Categories() []string {
	seen := map[string]struct{}{}
	for _, p := range s.products {
		category := p.Category
		if category == "" {
			category = "uncategorized"
		}
		seen[category] = struct{}{}
	}
	categories := make([]string, 0, len(seen)+1)
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return append([]string{CategoryAll}, categories...)
}

// ListFilters describe the supported browse knobs.
type ListFilters struct {
	Query    string
	Category string
	Sort     string
}

// ListResult is one page of the filtered catalog.
type ListResult struct {
	Products []Product
	Total    int
}

// List applies search, category filter, price sort and pagination.
func (s *Service) List(filters ListFilters, page pagination.Params) ListResult {
	query := strings.ToLower(strings.TrimSpace(filters.Query))

	matched := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if !matchesQuery(p, query) {
			continue
		}
		if filters.Category != "" && filters.Category != CategoryAll && p.Category != filters.Category {
			continue
		}
		matched = append(matched, p)
	}

	switch filters.Sort {
	case SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool {
			return leadPrice(matched[i]) < leadPrice(matched[j])
		})
	case SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool {
			return leadPrice(matched[i]) > leadPrice(matched[j])
		})
	}

	start, end := pagination.Window(len(matched), page)
	return ListResult{
		Products: matched[start:end],
		Total:    len(matched),
	}
}

func matchesQuery(p Product, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(p.Tags, " ")), query)
}

func leadPrice(p Product) int {
	if v := p.FirstVariant(); v != nil {
		return v.PriceCents
	}
	return 0
}
