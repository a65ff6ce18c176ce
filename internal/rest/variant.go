package rest

import (
	"context"
	"net/http"

	"postPilot/business/optimizer"
	"postPilot/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type (
	VariantHandler struct {
		validate       *validator.Validate
		variantService VariantService
		store          optimizer.VariantStore
	}

	VariantService interface {
		CreateVariant(ctx context.Context, variant domain.Variant) (domain.Variant, error)
	}

	CreateVariantRequest struct {
		ID         string         `json:"id"`
		PersonaID  string         `json:"persona_id" validate:"required"`
		Dimensions map[string]any `json:"dimensions" validate:"required,min=1"`
	}
)

func NewVariantHandler(svc VariantService, store optimizer.VariantStore) *VariantHandler {
	return &VariantHandler{
		validate:       validator.New(),
		variantService: svc,
		store:          store,
	}
}

// POST /api/v1/variants
func (h *VariantHandler) CreateVariant(c echo.Context) error {
	var req CreateVariantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	created, err := h.variantService.CreateVariant(c.Request().Context(), domain.Variant{
		ID:         req.ID,
		PersonaID:  req.PersonaID,
		Dimensions: datatypes.JSONMap(req.Dimensions),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

// GET /api/v1/variants?persona_id=p1
func (h *VariantHandler) GetAllVariants(c echo.Context) error {
	personaID := c.QueryParam("persona_id")

	variants, err := h.store.LoadAll(c.Request().Context(), personaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(variants))
}

// GET /api/v1/variants/count
func (h *VariantHandler) CountVariants(c echo.Context) error {
	count, err := h.store.Count(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(echo.Map{"count": count}))
}
