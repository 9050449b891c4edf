package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/nevbird/storefront-api/internal/cart"
	"github.com/nevbird/storefront-api/internal/catalog"
	"github.com/nevbird/storefront-api/pkg/config"
	pkgerrors "github.com/nevbird/storefront-api/pkg/errors"
	"github.com/nevbird/storefront-api/pkg/payments"
)

type stubSessions struct {
	url   string
	err   error
	calls int
	got   []payments.LineItem
}

func (s *stubSessions) CreateSession(ctx context.Context, items []payments.LineItem) (string, error) {
	s.calls++
	s.got = items
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func testConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		FreeShippingMinCents: 10000,
		ShippingFlatCents:    650,
		TaxRate:              "0.07",
	}
}

func testFinder(t *testing.T) *catalog.Service {
	t.Helper()
	svc, err := catalog.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return svc
}

func validForm() ShippingForm {
	return ShippingForm{
		Email:      "buyer@example.com",
		FullName:   "Ada Example",
		Address:    "1 Main Street",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func cartWith(items ...cart.Item) *cart.Store {
	s := cart.NewStore(nil, nil)
	for _, it := range items {
		s.Add(context.Background(), it)
	}
	return s
}

func TestQuoteBelowFreeShippingThreshold(t *testing.T) {
	t.Parallel()

	svc := NewService(testConfig(), testFinder(t), nil, "/thank-you", nil)
	store := cartWith(cart.Item{ProductID: "p1", PriceCents: cart.IntPtr(2500), Qty: 1})

	q := svc.QuoteFor(context.Background(), store.Snapshot())
	if q.SubtotalCents != 2500 {
		t.Fatalf("subtotal: got %d", q.SubtotalCents)
	}
	if q.ShippingCents != 650 {
		t.Fatalf("expected flat shipping, got %d", q.ShippingCents)
	}
	if q.TaxCents != 175 {
		t.Fatalf("tax: got %d", q.TaxCents)
	}
	if q.TotalCents != 2500+650+175 {
		t.Fatalf("total: got %d", q.TotalCents)
	}
}

func TestQuoteFreeShippingAboveThreshold(t *testing.T) {
	t.Parallel()

	svc := NewService(testConfig(), testFinder(t), nil, "/thank-you", nil)
	store := cartWith(
		cart.Item{ProductID: "p1", PriceCents: cart.IntPtr(2500), Qty: 2},
		cart.Item{ProductID: "p2", PriceCents: cart.IntPtr(6500), Qty: 1},
	)

	q := svc.QuoteFor(context.Background(), store.Snapshot())
	if q.SubtotalCents != 11500 {
		t.Fatalf("subtotal: got %d", q.SubtotalCents)
	}
	if q.ShippingCents != 0 {
		t.Fatalf("expected free shipping above threshold, got %d", q.ShippingCents)
	}
	if q.TaxCents != 805 {
		t.Fatalf("tax: got %d", q.TaxCents)
	}
}

func TestQuoteShippingChargedAtExactThreshold(t *testing.T) {
	t.Parallel()

	svc := NewService(testConfig(), testFinder(t), nil, "/thank-you", nil)
	store := cartWith(cart.Item{ProductID: "p1", PriceCents: cart.IntPtr(10000), Qty: 1})

	q := svc.QuoteFor(context.Background(), store.Snapshot())
	if q.ShippingCents != 650 {
		t.Fatalf("threshold is exclusive, got shipping %d", q.ShippingCents)
	}
}

func TestQuoteTaxRoundsHalfAway(t *testing.T) {
	t.Parallel()

	svc := NewService(testConfig(), testFinder(t), nil, "/thank-you", nil)
	store := cartWith(cart.Item{ProductID: "p1", PriceCents: cart.IntPtr(1050), Qty: 1})

	// 1050 * 0.07 = 73.5
	q := svc.QuoteFor(context.Background(), store.Snapshot())
	if q.TaxCents != 74 {
		t.Fatalf("expected 73.5 to round up, got %d", q.TaxCents)
	}
}

func TestQuoteFlagsPriceUnavailable(t *testing.T) {
	t.Parallel()

	svc := NewService(testConfig(), testFinder(t), nil, "/thank-you", nil)
	store := cartWith(cart.Item{ProductID: "ghost", Qty: 1})

	q := svc.QuoteFor(context.Background(), store.Snapshot())
	if !q.PriceUnavailable {
		t.Fatal("expected price-unavailable flag")
	}
	if len(q.Lines) != 1 || q.Lines[0].LineTotalCents != 0 {
		t.Fatalf("unpriced line must still appear at 0, got %+v", q.Lines)
	}
}

func TestQuoteResolvesMissingPricesFromCatalog(t *testing.T) {
	t.Parallel()

	svc := NewService(testConfig(), testFinder(t), nil, "/thank-you", nil)
	store := cartWith(cart.Item{ProductID: "p1", Qty: 2})

	q := svc.QuoteFor(context.Background(), store.Snapshot())
	if q.SubtotalCents != 5000 {
		t.Fatalf("expected catalog-resolved subtotal 5000, got %d", q.SubtotalCents)
	}
}

func TestSubmitRejectsInvalidForm(t *testing.T) {
	t.Parallel()

	svc := NewService(testConfig(), testFinder(t), nil, "/thank-you", nil)
	store := cartWith(cart.Item{ProductID: "p1", PriceCents: cart.IntPtr(2500), Qty: 1})

	form := validForm()
	form.Email = "not-an-email"
	_, err := svc.Submit(context.Background(), store, form)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.TotalItems() != 1 {
		t.Fatal("cart must be untouched on validation failure")
	}
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	svc := NewService(testConfig(), testFinder(t), nil, "/thank-you", nil)
	_, err := svc.Submit(context.Background(), cart.NewStore(nil, nil), validForm())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestSubmitMockModeClearsCart(t *testing.T) {
	t.Parallel()

	svc := NewService(testConfig(), testFinder(t), nil, "/thank-you", nil)
	store := cartWith(cart.Item{ProductID: "p1", PriceCents: cart.IntPtr(2500), Qty: 1})

	res, err := svc.Submit(context.Background(), store, validForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Mock || res.RedirectURL != "/thank-you" {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.TotalItems() != 0 {
		t.Fatal("expected cart cleared after mock submit")
	}
}

func TestSubmitCreatesSessionAndClearsCart(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{url: "https://pay.example.com/s/123"}
	svc := NewService(testConfig(), testFinder(t), sessions, "/thank-you", nil)
	store := cartWith(cart.Item{ProductID: "p1", VariantID: "p1-s-white", Qty: 2})

	res, err := svc.Submit(context.Background(), store, validForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.RedirectURL != sessions.url || res.Mock {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.TotalItems() != 0 {
		t.Fatal("expected cart cleared after successful session")
	}

	if len(sessions.got) != 1 {
		t.Fatalf("expected one line item, got %v", sessions.got)
	}
	line := sessions.got[0]
	if line.Name != "Core Tee" || line.Quantity != 2 || line.UnitAmountCents != 2500 {
		t.Fatalf("unexpected resolved line %+v", line)
	}
}

func TestSubmitFailureLeavesCartIntact(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{err: errors.New("gateway down")}
	svc := NewService(testConfig(), testFinder(t), sessions, "/thank-you", nil)
	store := cartWith(cart.Item{ProductID: "p1", PriceCents: cart.IntPtr(2500), Qty: 1})

	if _, err := svc.Submit(context.Background(), store, validForm()); err == nil {
		t.Fatal("expected error from failed session")
	}
	if store.TotalItems() != 1 {
		t.Fatal("cart must survive payment failure")
	}
}
