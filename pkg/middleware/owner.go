package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const UserHeader = "X-User-ID"

// Owner resolves the calling user from the X-User-ID header or the uid query
// parameter and stores it under "uid". Callers without one get fallback.
func Owner(fallback string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := strings.TrimSpace(c.Request().Header.Get(UserHeader))
			if uid == "" {
				uid = strings.TrimSpace(c.QueryParam("uid"))
			}
			if uid == "" {
				uid = fallback
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}

// UserID is the uid resolved by Owner or RequireUser, "" when neither ran.
func UserID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}
