package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nevbird/storefront-api/internal/catalog"
)

func testCatalogService(t *testing.T) *catalog.Service {
	t.Helper()
	svc, err := catalog.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return svc
}

func TestProductsListDefaults(t *testing.T) {
	t.Parallel()

	handler := ProductsList(testCatalogService(t), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Data productListResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Total != 10 {
		t.Fatalf("expected total 10, got %d", envelope.Data.Total)
	}
	if envelope.Data.Limit != 12 || envelope.Data.Offset != 0 {
		t.Fatalf("unexpected page defaults %+v", envelope.Data)
	}
}

func TestProductsListFilters(t *testing.T) {
	t.Parallel()

	handler := ProductsList(testCatalogService(t), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?query=hoodie&category=active", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var envelope struct {
		Data productListResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Total != 1 || envelope.Data.Products[0].Slug != "performance-hoodie" {
		t.Fatalf("unexpected filter result %+v", envelope.Data)
	}
}

func TestProductsListRejectsBadInput(t *testing.T) {
	t.Parallel()

	handler := ProductsList(testCatalogService(t), nil)

	for _, target := range []string{
		"/api/v1/products?limit=abc",
		"/api/v1/products?limit=0",
		"/api/v1/products?offset=-1",
		"/api/v1/products?sort=alphabetical",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestProductsCategories(t *testing.T) {
	t.Parallel()

	handler := ProductsCategories(testCatalogService(t))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/categories", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var envelope struct {
		Data struct {
			Categories []string `json:"categories"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Categories) == 0 || envelope.Data.Categories[0] != "all" {
		t.Fatalf("expected 'all' first, got %v", envelope.Data.Categories)
	}
}

func TestProductBySlug(t *testing.T) {
	t.Parallel()

	handler := ProductBySlug(testCatalogService(t), nil)

	router := chi.NewRouter()
	router.Get("/api/v1/products/{slug}", handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/core-tee", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/no-such-thing", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
