package quote

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-drycleaning/internal/common"
	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

type characteristicsPayload struct {
	Color     *string `json:"color" validate:"omitempty,max=64"`
	Material  *string `json:"material" validate:"omitempty,max=64"`
	WearLevel *string `json:"wearLevel" validate:"omitempty,max=64"`
}

type itemPayload struct {
	PriceListItemID string                  `json:"priceListItemId" validate:"required,uuid"`
	Quantity        int                     `json:"quantity" validate:"max=10000"`
	Characteristics *characteristicsPayload `json:"characteristics" validate:"omitempty"`
	ModifierCodes   []string                `json:"modifierCodes" validate:"max=50,dive,required,max=64"`
}

type discountPayload struct {
	Type       string `json:"type" validate:"required,max=32"`
	Percentage *int64 `json:"percentage"`
}

// CalculateRequest is the body of POST /api/v1/pricing/calculate.
type CalculateRequest struct {
	Items    []itemPayload    `json:"items" validate:"min=1,max=200,dive"`
	Urgency  string           `json:"urgency" validate:"max=32"`
	Discount *discountPayload `json:"discount" validate:"omitempty"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// Handler exposes the calculation endpoint.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service   *Service
	Validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	v := cfg.Validator
	if v == nil {
		v = NewValidator()
	}
	return &Handler{service: cfg.Service, validate: v}
}

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

// Calculate handles POST /api/v1/pricing/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "quote service not configured", nil)
		return
	}
	var body CalculateRequest
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	req, err := BuildRequest(h.validate, body)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	res, err := h.service.Calculate(r.Context(), req)
	if err != nil {
		common.WriteError(w, ToAppError(err))
		return
	}
	common.Data(w, http.StatusOK, res)
}

// BuildRequest validates body and converts it into a Request. Codes and option names
// are upper-cased; quantity and percentage bounds are left to the engine.
func BuildRequest(validate *validator.Validate, body CalculateRequest) (Request, error) {
	if validate == nil {
		validate = NewValidator()
	}
	if err := validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, FieldError{Field: trimRoot(fe.Namespace()), Rule: fe.Tag()})
			}
			return Request{}, common.NewAppError(common.CodeValidation, "request validation failed", http.StatusUnprocessableEntity, err).WithDetails(fields)
		}
		return Request{}, common.NewAppError(common.CodeInvalidPayload, "invalid request", http.StatusBadRequest, err)
	}

	req := Request{
		Items:   make([]pricing.CalculationItemRequest, 0, len(body.Items)),
		Urgency: pricing.Urgency(strings.ToUpper(strings.TrimSpace(body.Urgency))),
	}
	for _, it := range body.Items {
		id, err := uuid.Parse(it.PriceListItemID)
		if err != nil {
			return Request{}, common.NewAppError(common.CodeValidation, "priceListItemId must be a UUID", http.StatusUnprocessableEntity, err)
		}
		item := pricing.CalculationItemRequest{
			PriceListItemID: id,
			Quantity:        it.Quantity,
			ModifierCodes:   normalizeCodes(it.ModifierCodes),
		}
		if it.Characteristics != nil {
			item.Characteristics = &pricing.ItemCharacteristics{
				Color:     it.Characteristics.Color,
				Material:  it.Characteristics.Material,
				WearLevel: it.Characteristics.WearLevel,
			}
		}
		req.Items = append(req.Items, item)
	}
	if body.Discount != nil {
		req.Discount = pricing.DiscountSelector{
			Type:             pricing.DiscountType(strings.ToUpper(strings.TrimSpace(body.Discount.Type))),
			CustomPercentage: body.Discount.Percentage,
		}
	}
	return req, nil
}

func normalizeCodes(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	return out
}

func trimRoot(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
