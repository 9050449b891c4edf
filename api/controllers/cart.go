package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nevbird/storefront-api/api/middleware"
	"github.com/nevbird/storefront-api/api/responses"
	"github.com/nevbird/storefront-api/api/validators"
	cartsvc "github.com/nevbird/storefront-api/internal/cart"
	pkgerrors "github.com/nevbird/storefront-api/pkg/errors"
	"github.com/nevbird/storefront-api/pkg/logger"
)

type cartView struct {
	Items      []cartsvc.Resolved `json:"items"`
	TotalItems int                `json:"totalItems"`
	TotalCents int                `json:"totalCents"`
}

// newCartView resolves every line for display and aggregates over the
// resolved values, so lines that never captured a price still show their
// catalog price in the totals.
func newCartView(snap cartsvc.Snapshot, finder cartsvc.ProductFinder) cartView {
	view := cartView{Items: make([]cartsvc.Resolved, 0, len(snap.Items))}
	for _, item := range snap.Items {
		resolved := cartsvc.Resolve(item, finder)
		view.Items = append(view.Items, resolved)
		view.TotalItems += resolved.Qty
		view.TotalCents += resolved.PriceCents * resolved.Qty
	}
	return view
}

func storeFromRequest(ctx context.Context, manager *cartsvc.Manager) *cartsvc.Store {
	return manager.StoreFor(ctx, middleware.SessionIDFromContext(ctx))
}

// CartFetch returns the session's cart with every line resolved for display.
func CartFetch(manager *cartsvc.Manager, finder cartsvc.ProductFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromRequest(r.Context(), manager)
		responses.WriteSuccess(w, newCartView(store.Snapshot(), finder))
	}
}

// CartAddItem merges a line into the session's cart. The body is accepted in
// any of the historical call-site shapes; unknown fields ride along untouched.
func CartAddItem(manager *cartsvc.Manager, finder cartsvc.ProductFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item cartsvc.Item
		if err := validators.DecodeJSONBody(r, &item); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(item.ProductID) == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
			return
		}

		store := storeFromRequest(r.Context(), manager)
		store.Add(r.Context(), item)
		responses.WriteSuccess(w, newCartView(store.Snapshot(), finder))
	}
}

type cartItemPatch struct {
	VariantID  *string `json:"variantId"`
	Title      *string `json:"title"`
	Image      *string `json:"image"`
	PriceCents *int    `json:"priceCents"`
	Qty        *int    `json:"qty"`
}

// CartUpdateItem patches the identified line. A missing variantId in the
// body targets every variant of the product.
func CartUpdateItem(manager *cartsvc.Manager, finder cartsvc.ProductFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productID")

		var payload cartItemPatch
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patch := cartsvc.Patch{
			Title:      payload.Title,
			Image:      payload.Image,
			PriceCents: payload.PriceCents,
			Qty:        payload.Qty,
		}

		store := storeFromRequest(r.Context(), manager)
		store.Update(r.Context(), productID, payload.VariantID, patch.Mutator())
		responses.WriteSuccess(w, newCartView(store.Snapshot(), finder))
	}
}

// CartRemoveItem removes the identified line; without a variantId query
// parameter every variant of the product goes.
func CartRemoveItem(manager *cartsvc.Manager, finder cartsvc.ProductFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productID")

		var variantID *string
		if raw := r.URL.Query().Get("variantId"); raw != "" {
			variantID = &raw
		}

		store := storeFromRequest(r.Context(), manager)
		store.Remove(r.Context(), productID, variantID)
		responses.WriteSuccess(w, newCartView(store.Snapshot(), finder))
	}
}

// CartClear empties the session's cart unconditionally.
func CartClear(manager *cartsvc.Manager, finder cartsvc.ProductFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := storeFromRequest(r.Context(), manager)
		store.Clear(r.Context())
		responses.WriteSuccess(w, newCartView(store.Snapshot(), finder))
	}
}
