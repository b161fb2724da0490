package controller

import "github.com/labstack/echo/v4"

type DeviceController interface {
	Register(c echo.Context) error
	List(c echo.Context) error
	Get(c echo.Context) error
	Update(c echo.Context) error
	Remove(c echo.Context) error
	Liveness(c echo.Context) error
	ListByField(c echo.Context) error
}
