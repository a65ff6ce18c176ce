package router

import (
	"postPilot/internal/middleware"
	"postPilot/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetSelectionRoutes(api *echo.Group, handler *rest.OptimizerHandler) {
	selections := api.Group("/selections", middleware.AuthMiddleware())
	selections.GET("", handler.Select)
	selections.GET("/debug", handler.DebugSelect)
}

func SetEngagementRoutes(api *echo.Group, handler *rest.OptimizerHandler) {
	engagements := api.Group("/engagements", middleware.AuthMiddleware())
	engagements.POST("", handler.Record)
	engagements.GET("/pipeline", handler.PipelineStats)
}

func SetVariantRoutes(api *echo.Group, handler *rest.VariantHandler) {
	variants := api.Group("/variants", middleware.AuthMiddleware())
	variants.GET("", handler.GetAllVariants)
	variants.GET("/count", handler.CountVariants)
	variants.POST("", handler.CreateVariant, middleware.AdminOnly())
}

func SetOptimizerAdminRoutes(api *echo.Group, handler *rest.OptimizerAdminHandler) {
	admin := api.Group("/admin/optimizer", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.GET("/config", handler.GetConfig)
	admin.PUT("/config", handler.UpsertConfig)
}
