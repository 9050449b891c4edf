package checkout

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/nevbird/storefront-api/internal/cart"
	"github.com/nevbird/storefront-api/pkg/config"
	pkgerrors "github.com/nevbird/storefront-api/pkg/errors"
	"github.com/nevbird/storefront-api/pkg/logger"
	"github.com/nevbird/storefront-api/pkg/payments"
)

// SessionCreator is the payment-session surface the orchestrator consumes.
// A nil value switches submits into mock mode.
type SessionCreator interface {
	CreateSession(ctx context.Context, items []payments.LineItem) (string, error)
}

// ShippingForm is the buyer-facing checkout form. Validation mirrors what the
// storefront collects; payment card details never reach this service.
type ShippingForm struct {
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"fullName" validate:"required,min=2"`
	Phone      string `json:"phone" validate:"omitempty,min=7"`
	Address    string `json:"address" validate:"required,min=4"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required,min=3"`
	Country    string `json:"country" validate:"omitempty,len=2"`
}

// Line is one priced order-summary row.
type Line struct {
	cart.Resolved
	LineTotalCents int `json:"lineTotalCents"`
}

// Quote is the full order summary for the cart's current state.
type Quote struct {
	Lines            []Line `json:"lines"`
	SubtotalCents    int    `json:"subtotalCents"`
	ShippingCents    int    `json:"shippingCents"`
	TaxCents         int    `json:"taxCents"`
	TotalCents       int    `json:"totalCents"`
	PriceUnavailable bool   `json:"priceUnavailable"`
}

// Result is the outcome of a successful submit.
type Result struct {
	RedirectURL string `json:"redirectUrl"`
	Mock        bool   `json:"mock"`
}

// Service orchestrates checkout: it reads the cart, prices an order summary,
// validates the shipping form, and on submit clears the cart and hands the
// buyer a redirect target. It never mutates the cart on failure.
type Service struct {
	cfg        config.CheckoutConfig
	catalog    cart.ProductFinder
	payments   SessionCreator
	successURL string
	validate   *validator.Validate
	logg       *logger.Logger
}

// NewService builds the orchestrator. A nil payment client enables mock
// mode: submits succeed locally and redirect to successURL.
func NewService(cfg config.CheckoutConfig, finder cart.ProductFinder, client SessionCreator, successURL string, logg *logger.Logger) *Service {
	return &Service{
		cfg:        cfg,
		catalog:    finder,
		payments:   client,
		successURL: successURL,
		validate:   validator.New(),
		logg:       logg,
	}
}

// QuoteFor prices the cart snapshot: per-line totals from resolved prices,
// flat shipping waived above the free threshold, tax on the subtotal rounded
// half away from zero. Lines that resolve to a zero price are included at 0
// and flagged rather than dropped.
func (s *Service) QuoteFor(ctx context.Context, snap cart.Snapshot) Quote {
	quote := Quote{Lines: make([]Line, 0, len(snap.Items))}
	for _, item := range snap.Items {
		resolved := cart.Resolve(item, s.catalog)
		line := Line{
			Resolved:       resolved,
			LineTotalCents: resolved.PriceCents * resolved.Qty,
		}
		if resolved.PriceUnavailable() {
			quote.PriceUnavailable = true
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "product_id", resolved.ProductID), "checkout.quote.price_unavailable")
			}
		}
		quote.Lines = append(quote.Lines, line)
		quote.SubtotalCents += line.LineTotalCents
	}

	if quote.SubtotalCents > 0 && quote.SubtotalCents <= s.cfg.FreeShippingMinCents {
		quote.ShippingCents = s.cfg.ShippingFlatCents
	}
	quote.TaxCents = int(decimal.NewFromInt(int64(quote.SubtotalCents)).
		Mul(s.cfg.TaxRateDecimal()).
		Round(0).
		IntPart())
	quote.TotalCents = quote.SubtotalCents + quote.ShippingCents + quote.TaxCents
	return quote
}

// Submit validates the form, builds a payment session from the resolved
// lines, and clears the cart only after the session (or the mock path)
// succeeds. Any failure leaves the cart intact.
func (s *Service) Submit(ctx context.Context, store *cart.Store, form ShippingForm) (*Result, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping details")
	}

	snap := store.Snapshot()
	if len(snap.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	if s.payments == nil {
		store.Clear(ctx)
		return &Result{RedirectURL: s.successURL, Mock: true}, nil
	}

	lines := make([]payments.LineItem, 0, len(snap.Items))
	for _, item := range snap.Items {
		resolved := cart.Resolve(item, s.catalog)
		lines = append(lines, payments.LineItem{
			Name:            resolved.Title,
			Quantity:        resolved.Qty,
			UnitAmountCents: resolved.PriceCents,
		})
	}

	url, err := s.payments.CreateSession(ctx, lines)
	if err != nil {
		return nil, err
	}

	store.Clear(ctx)
	return &Result{RedirectURL: url}, nil
}
