package controllers

import (
	"net/http"

	"github.com/nevbird/storefront-api/api/middleware"
	"github.com/nevbird/storefront-api/api/responses"
	"github.com/nevbird/storefront-api/api/validators"
	cartsvc "github.com/nevbird/storefront-api/internal/cart"
	checkoutsvc "github.com/nevbird/storefront-api/internal/checkout"
	"github.com/nevbird/storefront-api/pkg/logger"
)

// CheckoutQuote prices the session's cart without mutating it.
func CheckoutQuote(svc *checkoutsvc.Service, manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := manager.StoreFor(r.Context(), middleware.SessionIDFromContext(r.Context()))
		responses.WriteSuccess(w, svc.QuoteFor(r.Context(), store.Snapshot()))
	}
}

// CheckoutSubmit validates the shipping form and places the order. The cart
// is cleared only when the submit succeeds.
func CheckoutSubmit(svc *checkoutsvc.Service, manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form checkoutsvc.ShippingForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := manager.StoreFor(r.Context(), middleware.SessionIDFromContext(r.Context()))
		result, err := svc.Submit(r.Context(), store, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
