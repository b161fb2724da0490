package controller

import "github.com/labstack/echo/v4"

type ReadingController interface {
	Ingest(c echo.Context) error
	Recent(c echo.Context) error
}
