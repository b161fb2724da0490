package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authCtrl "agrisense/pkg/auth/controller"
	catalogCtrl "agrisense/pkg/catalog/controller"
	cropCtrl "agrisense/pkg/crop/controller"
	deviceCtrl "agrisense/pkg/device/controller"
	fieldCtrl "agrisense/pkg/field/controller"
	"agrisense/pkg/middleware"
	readingCtrl "agrisense/pkg/reading/controller"
)

type Options struct {
	DevUserID   string
	RequireUser bool
	// Metrics is the /metrics handler; nil serves the default registry.
	Metrics http.Handler
}

func New(
	e *echo.Echo,
	opts Options,
	fields fieldCtrl.FieldController,
	catalog catalogCtrl.CatalogController,
	crops cropCtrl.CropController,
	devices deviceCtrl.DeviceController,
	readings readingCtrl.ReadingController,
	auth authCtrl.AuthController,
	healthCtrl interface{ Health(echo.Context) error },
) *echo.Echo {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	e.GET("/health", healthCtrl.Health)
	e.GET("/metrics", echo.WrapHandler(metrics))

	api := e.Group("")
	api.Use(middleware.RequireUser(opts.RequireUser))
	api.Use(middleware.Owner(opts.DevUserID))

	api.GET("/whoami", auth.WhoAmI)

	api.POST("/fields", fields.Create)
	api.GET("/fields", fields.List)
	api.GET("/fields/:id", fields.Get)
	api.PATCH("/fields/:id", fields.Update)
	api.DELETE("/fields/:id", fields.Delete)
	api.GET("/fields/:id/crops", crops.ListByField)
	api.GET("/fields/:id/devices", devices.ListByField)
	api.GET("/fields/:id/frost-risk", crops.FieldFrostRisk)

	api.POST("/species", catalog.CreateSpecies)
	api.GET("/species", catalog.ListSpecies)
	api.GET("/species/:id", catalog.GetSpecies)
	api.DELETE("/species/:id", catalog.DeleteSpecies)
	api.POST("/species/:id/varieties", catalog.AddVariety)
	api.GET("/varieties/:id", catalog.GetVariety)
	api.DELETE("/varieties/:id", catalog.DeleteVariety)
	api.GET("/varieties/:id/stages", catalog.ListStages)
	api.POST("/varieties/:id/stages", catalog.AddStages)
	api.POST("/varieties/:id/stages/import", catalog.ImportStages)

	api.POST("/crops", crops.Create)
	api.GET("/crops", crops.List)
	api.GET("/crops/:id", crops.Get)
	api.PATCH("/crops/:id", crops.Update)
	api.DELETE("/crops/:id", crops.Delete)
	api.POST("/crops/:id/advance", crops.Advance)
	api.GET("/crops/:id/stages", crops.History)
	api.GET("/crops/:id/frost-risk", crops.FrostRisk)

	api.POST("/devices", devices.Register)
	api.GET("/devices", devices.List)
	api.GET("/devices/:mac", devices.Get)
	api.PATCH("/devices/:mac", devices.Update)
	api.DELETE("/devices/:mac", devices.Remove)
	api.GET("/devices/:mac/liveness", devices.Liveness)
	api.POST("/devices/:mac/readings", readings.Ingest)
	api.GET("/devices/:mac/readings", readings.Recent)
	return e
}
