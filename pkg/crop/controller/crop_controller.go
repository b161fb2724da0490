package controller

import "github.com/labstack/echo/v4"

type CropController interface {
	Create(c echo.Context) error
	List(c echo.Context) error
	Get(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
	Advance(c echo.Context) error
	History(c echo.Context) error
	FrostRisk(c echo.Context) error
	ListByField(c echo.Context) error
	FieldFrostRisk(c echo.Context) error
}
