package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"postPilot/business/optimizer"
	"postPilot/domain"
	"postPilot/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type (
	OptimizerHandler struct {
		validate         *validator.Validate
		optimizerService OptimizerService
	}

	OptimizerService interface {
		Select(ctx context.Context, req optimizer.SelectionRequest) ([]domain.RankedVariant, error)
		DebugSelect(ctx context.Context, req optimizer.SelectionRequest) ([]domain.DebugSelection, error)
		Record(ctx context.Context, event domain.EngagementEvent) error
		PipelineStats() optimizer.PipelineStats
	}

	SelectQuery struct {
		PersonaID      string `query:"persona_id" validate:"required"`
		N              int    `query:"n"`
		MinImpressions int64  `query:"min_impressions"`
		// pointer so an omitted param falls back to the persona config
		// while an explicit exploration_ratio=0 still disables exploration
		ExplorationRatio *float64 `query:"exploration_ratio"`
		Algorithm        string   `query:"algorithm" validate:"omitempty,oneof=thompson thompson_heap"`
	}

	RecordRequest struct {
		VariantID string         `json:"variant_id" validate:"required"`
		PersonaID string         `json:"persona_id"`
		EventType string         `json:"event_type" validate:"required,oneof=impression like share comment click repost save view"`
		Weight    float64        `json:"weight"`
		Metadata  map[string]any `json:"metadata"`
	}
)

// ResponseError is the flat error payload used across the API handlers.
type ResponseError struct {
	Message string `json:"message"`
}

func NewOptimizerHandler(svc OptimizerService) *OptimizerHandler {
	return &OptimizerHandler{
		validate:         validator.New(),
		optimizerService: svc,
	}
}

// GET /api/v1/selections?persona_id=p1&n=5&algorithm=thompson
func (h *OptimizerHandler) Select(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.SelectLatency.Observe(time.Since(start).Seconds())
	}()
	metrics.SelectRequests.Inc()

	var q SelectQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.N < 0 {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "n must not be negative"})
	}

	ratio := -1.0
	if q.ExplorationRatio != nil {
		ratio = *q.ExplorationRatio
	}

	ranked, err := h.optimizerService.Select(c.Request().Context(), optimizer.SelectionRequest{
		PersonaID:        q.PersonaID,
		TopK:             q.N,
		MinImpressions:   q.MinImpressions,
		ExplorationRatio: ratio,
		Algorithm:        q.Algorithm,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMalformedVariant) {
			return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ranked))
}

// GET /api/v1/selections/debug?persona_id=p1&n=5
func (h *OptimizerHandler) DebugSelect(c echo.Context) error {
	var q SelectQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.N < 0 {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "n must not be negative"})
	}

	rows, err := h.optimizerService.DebugSelect(c.Request().Context(), optimizer.SelectionRequest{
		PersonaID:      q.PersonaID,
		TopK:           q.N,
		MinImpressions: q.MinImpressions,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMalformedVariant) {
			return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rows))
}

// POST /api/v1/engagements
func (h *OptimizerHandler) Record(c echo.Context) error {
	metrics.RecordRequests.Inc()

	var req RecordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	event := domain.EngagementEvent{
		VariantID: req.VariantID,
		PersonaID: req.PersonaID,
		EventType: req.EventType,
		Weight:    req.Weight,
		Metadata:  datatypes.JSONMap(req.Metadata),
		CreatedAt: time.Now(),
	}

	if err := h.optimizerService.Record(c.Request().Context(), event); err != nil {
		switch {
		case errors.Is(err, domain.ErrQueueFull):
			return c.JSON(http.StatusTooManyRequests, ResponseError{Message: "feedback queue is full, retry later"})
		case errors.Is(err, domain.ErrPipelineStopped):
			return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: "feedback pipeline is stopped"})
		default:
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("engagement recorded"))
}

// GET /api/v1/engagements/pipeline
func (h *OptimizerHandler) PipelineStats(c echo.Context) error {
	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.optimizerService.PipelineStats()))
}
