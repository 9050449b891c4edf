package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	cartsvc "github.com/nevbird/storefront-api/internal/cart"
	"github.com/nevbird/storefront-api/internal/catalog"
	checkoutsvc "github.com/nevbird/storefront-api/internal/checkout"
	"github.com/nevbird/storefront-api/pkg/config"
	"github.com/nevbird/storefront-api/pkg/metrics"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		Cart: config.CartConfig{
			SessionCookie: "nevbird_session",
		},
		Checkout: config.CheckoutConfig{
			FreeShippingMinCents: 10000,
			ShippingFlatCents:    650,
			TaxRate:              "0.07",
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	catalogSvc, err := catalog.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	manager := cartsvc.NewManager(cartsvc.NewMemorySlotFactory(), nil)
	checkoutSvc := checkoutsvc.NewService(cfg.Checkout, catalogSvc, nil, "/thank-you", nil)

	registry := prometheus.NewRegistry()
	return NewRouter(RouterParams{
		Config:      cfg,
		Logger:      nil,
		Catalog:     catalogSvc,
		CartManager: manager,
		Checkout:    checkoutSvc,
		Metrics:     metrics.NewHTTPMetrics(registry),
		Registry:    registry,
	})
}

func TestRouterHealthAndProducts(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	for _, target := range []string{
		"/health/live",
		"/health/ready",
		"/api/v1/products",
		"/api/v1/products/categories",
		"/api/v1/products/core-tee",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
	}
}

func TestRouterCartFlowWithSessionCookie(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"productId":"p1","variantId":"p1-s-white","qty":2}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "nevbird_session" {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	// same cookie sees the same cart
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope struct {
		Data struct {
			TotalItems int `json:"totalItems"`
			TotalCents int `json:"totalCents"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.TotalItems != 2 || envelope.Data.TotalCents != 5000 {
		t.Fatalf("unexpected cart %+v", envelope.Data)
	}

	// a cookie-less request gets a fresh cart
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	envelope.Data.TotalItems = -1
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.TotalItems != 0 {
		t.Fatalf("expected fresh cart without cookie, got %+v", envelope.Data)
	}
}

func TestRouterCheckoutQuote(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"productId":"p2","qty":1}`)))
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/quote", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope struct {
		Data checkoutsvc.Quote `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.SubtotalCents != 6500 {
		t.Fatalf("expected catalog-priced subtotal 6500, got %+v", envelope.Data)
	}
}

func TestRouterMetricsExposed(t *testing.T) {
	t.Parallel()

	router := testRouter(t)

	// generate one observation first
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	t.Parallel()

	router := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
