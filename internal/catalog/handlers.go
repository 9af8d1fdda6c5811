package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-drycleaning/internal/common"
	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

// Handler exposes read-only pricing catalog endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Routes mounts the catalog endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/price-list", h.PriceList)
	r.Get("/modifiers", h.Modifiers)
	r.Get("/discounts", h.Discounts)
	r.Get("/categories/{category}/modifier-codes", h.ModifierCodes)
	r.Get("/discounts/{code}/applicable", h.DiscountApplicable)
}

// PriceList handles GET /api/v1/pricing/price-list.
func (h *Handler) PriceList(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	items, err := h.service.ListPriceItems(r.Context(), categoryQuery(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, items)
}

// Modifiers handles GET /api/v1/pricing/modifiers.
func (h *Handler) Modifiers(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	activeOnly, err := boolQuery(r, "active", true)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	listing, err := h.service.ListModifiers(r.Context(), categoryQuery(r), activeOnly)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, listing)
}

// Discounts handles GET /api/v1/pricing/discounts.
func (h *Handler) Discounts(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	activeOnly, err := boolQuery(r, "active", true)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	discounts, err := h.service.ListDiscounts(r.Context(), activeOnly)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, discounts)
}

// ModifierCodes handles GET /api/v1/pricing/categories/{category}/modifier-codes.
func (h *Handler) ModifierCodes(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	category := normalizeCategory(chi.URLParam(r, "category"))
	codes, err := h.service.ApplicableModifierCodes(r.Context(), category)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{"category": category, "codes": codes})
}

// DiscountApplicable handles GET /api/v1/pricing/discounts/{code}/applicable?category=.
func (h *Handler) DiscountApplicable(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	category := categoryQuery(r)
	if category == nil {
		common.WriteError(w, common.NewAppError(common.CodeValidation, "category query parameter is required", http.StatusBadRequest, nil))
		return
	}
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	ok, err := h.service.IsDiscountApplicableToCategory(r.Context(), code, *category)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{"code": code, "category": *category, "applicable": ok})
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return false
	}
	return true
}

func normalizeCategory(raw string) pricing.Category {
	return pricing.Category(strings.ToUpper(strings.TrimSpace(raw)))
}

func categoryQuery(r *http.Request) *pricing.Category {
	raw := strings.TrimSpace(r.URL.Query().Get("category"))
	if raw == "" {
		return nil
	}
	c := normalizeCategory(raw)
	return &c
}

func boolQuery(r *http.Request, key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, common.NewAppError(common.CodeValidation, key+" must be a boolean", http.StatusBadRequest, errors.New(raw))
	}
	return v, nil
}
