// Package apperr carries the error kinds the API distinguishes and maps them to HTTP.
package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type Kind int

const (
	Internal Kind = iota
	NotFound
	Conflict
	Validation
)

func (k Kind) Status() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Validation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error   { return newf(NotFound, format, args...) }
func Conflictf(format string, args ...any) *Error   { return newf(Conflict, format, args...) }
func Validationf(format string, args ...any) *Error { return newf(Validation, format, args...) }

// Wrap tags err with a kind, keeping it for errors.Is / errors.As.
func Wrap(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Message: msg, Err: err}
}

// KindOf reports the kind of err, Internal when it carries none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// FromGorm translates store errors; what is reported as not found is named by what.
func FromGorm(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFoundf("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(Conflict, what+" already exists", err)
	default:
		return err
	}
}

// HTTPErrorHandler renders every error as {"error": "..."} with a status
// derived from its kind. Echo's own HTTP errors keep their code.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal error"

	var he *echo.HTTPError
	var ae *Error
	switch {
	case errors.As(err, &ae):
		status = ae.Kind.Status()
		if ae.Kind != Internal {
			msg = ae.Error()
		}
	case errors.As(err, &he):
		status = he.Code
		msg = fmt.Sprint(he.Message)
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, map[string]string{"error": msg})
}
