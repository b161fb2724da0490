package controllerImp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var appStart = time.Now()

// Check is one optional dependency probe. Required checks fail the endpoint;
// the others are only reported.
type Check struct {
	Name     string
	Required bool
	Probe    func(ctx context.Context) error
}

type HealthCtrl struct {
	db     *gorm.DB
	checks []Check
}

func NewHealthCtrl(db *gorm.DB, checks ...Check) *HealthCtrl {
	return &HealthCtrl{db: db, checks: checks}
}

type sub struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

func (h *HealthCtrl) pingDB(ctx context.Context) error {
	if h.db == nil {
		return errors.New("gorm db is nil")
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	checks := map[string]sub{}
	allOK := true
	record := func(name string, required bool, err error) {
		if err != nil {
			checks[name] = sub{OK: false, Err: err.Error()}
			if required {
				allOK = false
			}
			return
		}
		checks[name] = sub{OK: true}
	}

	record("database", true, h.pingDB(ctx))
	for _, ch := range h.checks {
		record(ch.Name, ch.Required, ch.Probe(ctx))
	}

	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]any{
		"status":     map[string]any{"ok": allOK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks":     checks,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}
