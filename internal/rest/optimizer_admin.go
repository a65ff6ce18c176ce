package rest

import (
	"net/http"

	"postPilot/business/optimizer"
	"postPilot/domain"

	"github.com/labstack/echo/v4"
)

type OptimizerAdminHandler struct {
	cfgRepo optimizer.ConfigRepository
}

func NewOptimizerAdminHandler(cfgRepo optimizer.ConfigRepository) *OptimizerAdminHandler {
	return &OptimizerAdminHandler{
		cfgRepo: cfgRepo,
	}
}

// GET /api/v1/admin/optimizer/config?persona_id=p1
func (h *OptimizerAdminHandler) GetConfig(c echo.Context) error {
	ctx := c.Request().Context()
	personaID := c.QueryParam("persona_id")

	if personaID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "persona_id is required",
		})
	}

	cfg, ok, err := h.cfgRepo.GetConfig(ctx, personaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "config not found",
		})
	}

	return c.JSON(http.StatusOK, cfg)
}

// PUT /api/v1/admin/optimizer/config
// body: OptimizerConfig JSON
func (h *OptimizerAdminHandler) UpsertConfig(c echo.Context) error {
	ctx := c.Request().Context()

	var body domain.OptimizerConfig
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid body: " + err.Error(),
		})
	}
	if body.PersonaID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "persona_id is required",
		})
	}
	if body.ExplorationRatio < 0 || body.ExplorationRatio > 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "exploration_ratio must be within [0, 1]",
		})
	}

	if err := h.cfgRepo.UpsertConfig(ctx, body); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
	})
}
