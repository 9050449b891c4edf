package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nevbird/storefront-api/api/responses"
	"github.com/nevbird/storefront-api/api/validators"
	"github.com/nevbird/storefront-api/internal/catalog"
	pkgerrors "github.com/nevbird/storefront-api/pkg/errors"
	"github.com/nevbird/storefront-api/pkg/logger"
	"github.com/nevbird/storefront-api/pkg/pagination"
)

const maxSearchLen = 120

type productListResponse struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ProductsList serves the storefront's browse page: search, category filter,
// price sort and offset pagination.
func ProductsList(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sort := r.URL.Query().Get("sort")
		switch sort {
		case "", catalog.SortNone, catalog.SortPriceAsc, catalog.SortPriceDesc:
		default:
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unsupported sort").WithDetails(map[string]any{"field": "sort"}))
			return
		}

		query := r.URL.Query().Get("q")
		if query == "" {
			query = r.URL.Query().Get("query")
		}

		filters := catalog.ListFilters{
			Query:    validators.SanitizeString(query, maxSearchLen),
			Category: validators.SanitizeString(r.URL.Query().Get("category"), maxSearchLen),
			Sort:     sort,
		}
		page := pagination.Params{Limit: limit, Offset: offset}

		result := svc.List(filters, page)
		responses.WriteSuccess(w, productListResponse{
			Products: result.Products,
			Total:    result.Total,
			Limit:    pagination.NormalizeLimit(page.Limit),
			Offset:   pagination.NormalizeOffset(page.Offset),
		})
	}
}

// ProductsCategories serves the distinct category list for the filter bar.
func ProductsCategories(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"categories": svc.Categories()})
	}
}

// ProductBySlug serves the product detail page.
func ProductBySlug(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		product, ok := svc.FindBySlug(slug)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		responses.WriteSuccess(w, product)
	}
}
