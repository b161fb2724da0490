package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agrisense/pkg/apperr"
	"agrisense/pkg/catalog/importer"
	"agrisense/pkg/catalog/service"
	"agrisense/pkg/httpx"
)

type CatalogCtrl struct{ svc service.CatalogService }

func New(svc service.CatalogService) *CatalogCtrl { return &CatalogCtrl{svc} }

func badJSON(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
}

func (h *CatalogCtrl) CreateSpecies(c echo.Context) error {
	var req service.SpeciesInput
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	sp, err := h.svc.CreateSpecies(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sp)
}

func (h *CatalogCtrl) ListSpecies(c echo.Context) error {
	out, err := h.svc.ListSpecies(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogCtrl) GetSpecies(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	sp, err := h.svc.GetSpecies(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sp)
}

func (h *CatalogCtrl) DeleteSpecies(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteSpecies(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id.String()})
}

func (h *CatalogCtrl) AddVariety(c echo.Context) error {
	speciesID, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.VarietyInput
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	v, err := h.svc.AddVariety(c.Request().Context(), speciesID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *CatalogCtrl) GetVariety(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	v, err := h.svc.GetVariety(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CatalogCtrl) DeleteVariety(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteVariety(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id.String()})
}

func (h *CatalogCtrl) ListStages(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.svc.ListStages(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// AddStages accepts either a single stage object or an array of them.
func (h *CatalogCtrl) AddStages(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var req stagesReq
	if err := c.Bind(&req); err != nil {
		return badJSON(c)
	}
	out, err := h.svc.AddStages(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

// ImportStages takes a multipart "file" (.csv, .xlsx, .html) and an optional "sheet".
func (h *CatalogCtrl) ImportStages(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validationf("multipart field \"file\" is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	stages, err := importer.Read(fh.Filename, f, c.FormValue("sheet"))
	if err != nil {
		return apperr.Wrap(apperr.Validation, "stage table", err)
	}
	out, err := h.svc.AddStages(c.Request().Context(), id, stages)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}
