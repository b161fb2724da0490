package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"agrisense/pkg/apperr"
	"agrisense/pkg/climate"
	"agrisense/pkg/crop/service"
	"agrisense/pkg/httpx"
)

type FrostEvaluator interface {
	Evaluate(ctx context.Context, cropID uuid.UUID, window time.Duration) (*climate.Evaluation, error)
	EvaluateField(ctx context.Context, fieldID uuid.UUID, window time.Duration) ([]climate.Evaluation, error)
}

type CropCtrl struct {
	svc   service.CropService
	frost FrostEvaluator
}

func New(svc service.CropService, frost FrostEvaluator) *CropCtrl { return &CropCtrl{svc: svc, frost: frost} }

func badJSON(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
}

func (h *CropCtrl) Create(c echo.Context) error {
	var req service.PlantCrop
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	out, err := h.svc.Plant(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CropCtrl) List(c echo.Context) error {
	out, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CropCtrl) Get(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CropCtrl) Update(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var p service.CropPatch
	if err := c.Bind(&p); err != nil {
		return badJSON(c)
	}
	out, err := h.svc.Update(c.Request().Context(), id, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CropCtrl) Delete(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	deleted, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"id": deleted.String()})
}

type advanceReq struct {
	BloomStageID *uuid.UUID `json:"bloom_stage_id"`
}

// Advance accepts an empty body to move to the next stage by number.
func (h *CropCtrl) Advance(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req advanceReq
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return badJSON(c)
		}
	}
	out, err := h.svc.AdvanceStage(c.Request().Context(), id, req.BloomStageID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CropCtrl) History(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.History(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func window(c echo.Context) (time.Duration, error) {
	raw := c.QueryParam("window")
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, apperr.Validationf("window must be a positive duration such as 30m or 2h")
	}
	return d, nil
}

func (h *CropCtrl) FrostRisk(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	w, err := window(c)
	if err != nil {
		return err
	}
	out, err := h.frost.Evaluate(c.Request().Context(), id, w)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CropCtrl) ListByField(c echo.Context) error {
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

func (h *CropCtrl) FieldFrostRisk(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	w, err := window(c)
	if err != nil {
		return err
	}
	out, err := h.frost.EvaluateField(c.Request().Context(), id, w)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
