package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-drycleaning/internal/catalog"
	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := catalog.NewService(catalog.ServiceConfig{Store: catalog.NewDefaultMemoryStore()})
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Route("/api/v1/pricing", catalog.NewHandler(catalog.HandlerConfig{Service: svc}).Routes)
	return r
}

func get(t *testing.T, h http.Handler, target string, dst any) int {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	if dst != nil {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
	}
	return rr.Code
}

func TestServiceListModifiersByCategory(t *testing.T) {
	svc, err := catalog.NewService(catalog.ServiceConfig{Store: catalog.NewDefaultMemoryStore()})
	require.NoError(t, err)
	leather := pricing.CategoryLeather

	listing, err := svc.ListModifiers(context.Background(), &leather, true)
	require.NoError(t, err)
	require.NotNil(t, listing.Groups)
	for _, m := range listing.Modifiers {
		require.True(t, m.Active)
		require.True(t, m.AppliesTo(leather), m.Code)
	}
	for _, m := range listing.Groups.General {
		require.Empty(t, m.CategoryRestrictions)
	}
	require.Equal(t, len(listing.Modifiers), len(listing.Groups.General)+len(listing.Groups.Specific))
	require.Equal(t, "KIDS_ITEMS", listing.Modifiers[0].Code)

	codes, err := svc.ApplicableModifierCodes(context.Background(), leather)
	require.NoError(t, err)
	require.Contains(t, codes, "LEATHER_IRONING")
	require.NotContains(t, codes, "SILK_MATERIAL")
	require.NotContains(t, codes, "URGENT_CLEANING")
}

func TestServiceListModifiersIncludesInactiveOnRequest(t *testing.T) {
	svc, err := catalog.NewService(catalog.ServiceConfig{Store: catalog.NewDefaultMemoryStore()})
	require.NoError(t, err)

	active, err := svc.ListModifiers(context.Background(), nil, true)
	require.NoError(t, err)
	all, err := svc.ListModifiers(context.Background(), nil, false)
	require.NoError(t, err)
	require.Nil(t, all.Groups)
	require.Len(t, all.Modifiers, len(active.Modifiers)+1)
}

func TestServiceDiscountApplicability(t *testing.T) {
	store := catalog.NewMemoryStore(nil, nil, []catalog.Discount{
		{Code: "EVERCARD", Percentage: 10, Active: true},
		{Code: "STAFF", Percentage: 20, Active: true, ExcludedCategories: []pricing.Category{pricing.CategoryFur}},
	})
	svc, err := catalog.NewService(catalog.ServiceConfig{Store: store})
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := svc.IsDiscountApplicableToCategory(ctx, "EVERCARD", pricing.CategoryLaundry)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.IsDiscountApplicableToCategory(ctx, "EVERCARD", pricing.CategoryClothing)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.IsDiscountApplicableToCategory(ctx, "STAFF", pricing.CategoryLaundry)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.IsDiscountApplicableToCategory(ctx, "UNKNOWN", pricing.CategoryClothing)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHandlerModifiers(t *testing.T) {
	router := newTestRouter(t)

	var resp struct {
		Data catalog.ModifierListing `json:"data"`
	}
	require.Equal(t, http.StatusOK, get(t, router, "/api/v1/pricing/modifiers?category=clothing", &resp))
	require.NotNil(t, resp.Data.Groups)
	require.NotEmpty(t, resp.Data.Groups.Specific)

	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/pricing/modifiers?active=maybe", &errResp))
	require.Equal(t, "VALIDATION_FAILED", errResp.Error.Code)
}

func TestHandlerModifierCodesAndDiscounts(t *testing.T) {
	router := newTestRouter(t)

	var codes struct {
		Data struct {
			Category string   `json:"category"`
			Codes    []string `json:"codes"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, get(t, router, "/api/v1/pricing/categories/fur/modifier-codes", &codes))
	require.Equal(t, "FUR", codes.Data.Category)
	require.Contains(t, codes.Data.Codes, "KIDS_ITEMS")
	require.NotContains(t, codes.Data.Codes, "FUR_COLLARS")

	var discounts struct {
		Data []catalog.Discount `json:"data"`
	}
	require.Equal(t, http.StatusOK, get(t, router, "/api/v1/pricing/discounts", &discounts))
	require.Len(t, discounts.Data, 5)
	require.Equal(t, "NONE", discounts.Data[0].Code)

	var applicable struct {
		Data struct {
			Applicable bool `json:"applicable"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, get(t, router, "/api/v1/pricing/discounts/evercard/applicable?category=DYEING", &applicable))
	require.False(t, applicable.Data.Applicable)
	require.Equal(t, http.StatusOK, get(t, router, "/api/v1/pricing/discounts/EVERCARD/applicable?category=CLOTHING", &applicable))
	require.True(t, applicable.Data.Applicable)

	require.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/pricing/discounts/EVERCARD/applicable", nil))
}

func TestHandlerPriceList(t *testing.T) {
	router := newTestRouter(t)

	var resp struct {
		Data []pricing.PriceListItemView `json:"data"`
	}
	require.Equal(t, http.StatusOK, get(t, router, "/api/v1/pricing/price-list?category=LEATHER", &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, catalog.PriceItemID("leather-jacket"), resp.Data[0].ID)
	require.NotNil(t, resp.Data[0].BlackPrice)
}

func TestHandlerWithoutService(t *testing.T) {
	h := catalog.NewHandler(catalog.HandlerConfig{})
	rr := httptest.NewRecorder()
	h.Modifiers(rr, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/modifiers", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
