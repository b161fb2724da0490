package controllerImp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/internal/testdb"
)

type healthBody struct {
	Status struct {
		OK bool `json:"ok"`
	} `json:"status"`
	Checks map[string]sub `json:"checks"`
}

func call(t *testing.T, h *HealthCtrl) (int, healthBody) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	require.NoError(t, h.Health(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	var body healthBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthReportsOptionalFailures(t *testing.T) {
	h := NewHealthCtrl(testdb.Open(t), Check{
		Name:  "redis",
		Probe: func(context.Context) error { return errors.New("connection refused") },
	})

	code, body := call(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Status.OK)
	assert.True(t, body.Checks["database"].OK)
	assert.False(t, body.Checks["redis"].OK)
	assert.Equal(t, "connection refused", body.Checks["redis"].Err)
}

func TestHealthFailsOnRequiredCheck(t *testing.T) {
	h := NewHealthCtrl(nil, Check{Name: "mqtt", Required: true, Probe: func(context.Context) error { return nil }})

	code, body := call(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, body.Checks["database"].OK)
	assert.True(t, body.Checks["mqtt"].OK)
}
