package controllerImp

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"agrisense/pkg/device/service"
	"agrisense/pkg/httpx"
	"agrisense/pkg/middleware"
)

type DeviceCtrl struct{ svc service.DeviceService }

func New(svc service.DeviceService) *DeviceCtrl { return &DeviceCtrl{svc: svc} }

func badJSON(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
}

func (h *DeviceCtrl) Register(c echo.Context) error {
	var req service.RegisterDevice
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = middleware.UserID(c)
	}
	out, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *DeviceCtrl) List(c echo.Context) error {
	out, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeviceCtrl) Get(c echo.Context) error {
	out, err := h.svc.Get(c.Request().Context(), c.Param("mac"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeviceCtrl) Update(c echo.Context) error {
	var p service.DevicePatch
	if err := c.Bind(&p); err != nil {
		return badJSON(c)
	}
	out, err := h.svc.Update(c.Request().Context(), c.Param("mac"), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeviceCtrl) Remove(c echo.Context) error {
	mac, err := h.svc.Remove(c.Request().Context(), c.Param("mac"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"mac": mac})
}

func (h *DeviceCtrl) Liveness(c echo.Context) error {
	out, err := h.svc.Liveness(c.Request().Context(), c.Param("mac"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeviceCtrl) ListByField(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.ListByField(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
