package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agrisense/pkg/auth/controller"
	"agrisense/pkg/middleware"
)

type authCtrl struct{ fallback string }

// NewAuthController reports the caller resolved by the owner middleware.
// fallback is the dev user assigned when no header was sent.
func NewAuthController(fallback string) controller.AuthController { return &authCtrl{fallback: fallback} }

func (h *authCtrl) WhoAmI(c echo.Context) error {
	uid := middleware.UserID(c)
	return c.JSON(http.StatusOK, map[string]any{
		"uid":      uid,
		"fallback": uid == h.fallback && c.Request().Header.Get(middleware.UserHeader) == "",
	})
}
