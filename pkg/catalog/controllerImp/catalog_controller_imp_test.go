package controllerImp

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/entities"
	"agrisense/internal/testdb"
	"agrisense/pkg/apperr"
	"agrisense/pkg/catalog/repositoryImp"
	"agrisense/pkg/catalog/serviceImp"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	h := New(serviceImp.NewCatalogService(repositoryImp.New(testdb.Open(t))))
	e.POST("/species", h.CreateSpecies)
	e.GET("/species/:id", h.GetSpecies)
	e.POST("/species/:id/varieties", h.AddVariety)
	e.GET("/varieties/:id/stages", h.ListStages)
	e.POST("/varieties/:id/stages", h.AddStages)
	e.POST("/varieties/:id/stages/import", h.ImportStages)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createVariety(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/species", `{"common_name":"Apple","varieties":[{"name":"Golden Delicious"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sp entities.Species
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sp))
	require.Len(t, sp.Varieties, 1)
	return sp.Varieties[0].ID.String()
}

func TestAddStagesSingleOrArray(t *testing.T) {
	e := newServer(t)
	vid := createVariety(t, e)

	rec := doJSON(e, http.MethodPost, "/varieties/"+vid+"/stages", `{"name":"Full Bloom","number":7,"crit_temp_10":-2.0,"crit_temp_90":-3.9}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodPost, "/varieties/"+vid+"/stages", `[{"name":"Silver Tip","number":1},{"name":"Post Bloom","number":8}]`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodGet, "/varieties/"+vid+"/stages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stages []entities.BloomStage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stages))
	require.Len(t, stages, 3)
	assert.Equal(t, []int{1, 7, 8}, []int{stages[0].Number, stages[1].Number, stages[2].Number})

	rec = doJSON(e, http.MethodPost, "/varieties/"+vid+"/stages", `{"name":"Dup","number":7}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestImportStagesCSV(t *testing.T) {
	e := newServer(t)
	vid := createVariety(t, e)

	data, err := os.ReadFile("../importer/testdata/golden_delicious.csv")
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "golden_delicious.csv")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/varieties/"+vid+"/stages/import", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var stages []entities.BloomStage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stages))
	assert.Len(t, stages, 8)
}

func TestImportStagesRejectsUnknownFormat(t *testing.T) {
	e := newServer(t)
	vid := createVariety(t, e)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "stages.pdf")
	_, _ = fw.Write([]byte("%PDF"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/varieties/"+vid+"/stages/import", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
