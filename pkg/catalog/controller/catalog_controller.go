package controller

import "github.com/labstack/echo/v4"

type CatalogController interface {
	CreateSpecies(c echo.Context) error
	ListSpecies(c echo.Context) error
	GetSpecies(c echo.Context) error
	DeleteSpecies(c echo.Context) error
	AddVariety(c echo.Context) error
	GetVariety(c echo.Context) error
	DeleteVariety(c echo.Context) error
	ListStages(c echo.Context) error
	AddStages(c echo.Context) error
	ImportStages(c echo.Context) error
}
