package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agrisense/pkg/httpx"
	"agrisense/pkg/reading/service"
)

type ReadingCtrl struct{ svc service.ReadingService }

func New(svc service.ReadingService) *ReadingCtrl { return &ReadingCtrl{svc: svc} }

func (h *ReadingCtrl) Ingest(c echo.Context) error {
	var in service.ReadingInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	out, err := h.svc.Ingest(c.Request().Context(), c.Param("mac"), in, service.SourceHTTP)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

// Recent lists a device's readings newest first; ?limit= defaults to 50.
func (h *ReadingCtrl) Recent(c echo.Context) error {
	limit, err := httpx.QueryInt(c, "limit", 50, 1, 1000)
	if err != nil {
		return err
	}
	out, err := h.svc.Recent(c.Request().Context(), c.Param("mac"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
