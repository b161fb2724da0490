// Package httpx holds small request-parsing helpers shared by the controllers.
package httpx

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"agrisense/pkg/apperr"
)

func ParamUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Validationf("invalid %s", name)
	}
	return id, nil
}

// QueryInt returns def when the parameter is absent; otherwise it must be an
// integer in [min, max].
func QueryInt(c echo.Context, name string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, apperr.Validationf("%s must be an integer between %d and %d", name, min, max)
	}
	return n, nil
}
