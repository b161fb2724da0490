package serviceImp

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/pkg/apperr"
	"agrisense/pkg/cadence"
	deviceRepo "agrisense/pkg/device/repository"
	"agrisense/pkg/observability"
	"agrisense/pkg/reading/repository"
	"agrisense/pkg/reading/service"
	"agrisense/pkg/telemetry/lastseen"
)

// MaxClockSkew is how far past the server clock a device may stamp a reading.
const MaxClockSkew = 2 * time.Minute

// Deps are the optional collaborators of the reading service; nil members are skipped.
type Deps struct {
	Clock     clockwork.Clock
	Publisher service.Publisher
	LastSeen  lastseen.Store
	Metrics   *observability.Metrics
}

type readingSvc struct {
	r       repository.ReadingRepository
	devices deviceRepo.DeviceRepository
	deps    Deps
}

func NewReadingService(r repository.ReadingRepository, devices deviceRepo.DeviceRepository, deps Deps) service.ReadingService {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &readingSvc{r: r, devices: devices, deps: deps}
}

func (s *readingSvc) reject(source, reason string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.IngestRejected.WithLabelValues(source, reason).Inc()
	}
}

func (s *readingSvc) device(ctx context.Context, mac string) (*entities.Device, error) {
	m := strings.ToUpper(strings.TrimSpace(mac))
	d, err := s.devices.FindByMAC(ctx, m)
	if err != nil {
		return nil, apperr.FromGorm(err, "device")
	}
	return d, nil
}

func (s *readingSvc) Ingest(ctx context.Context, mac string, in service.ReadingInput, source string) (*entities.Reading, error) {
	if in.Temperature == nil {
		s.reject(source, "invalid")
		return nil, apperr.Validationf("temperature is required")
	}
	d, err := s.device(ctx, mac)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			s.reject(source, "unknown_device")
		}
		return nil, err
	}

	state := d.UpdateInterval
	if in.State != nil && strings.TrimSpace(*in.State) != "" {
		tier, err := cadence.Parse(*in.State)
		if err != nil {
			s.reject(source, "invalid")
			return nil, apperr.Wrap(apperr.Validation, "", err)
		}
		state = &tier
	}
	now := s.deps.Clock.Now()
	at := now
	if in.CreatedAt != nil && !in.CreatedAt.IsZero() {
		at = *in.CreatedAt
	}
	if at.After(now.Add(MaxClockSkew)) {
		s.reject(source, "invalid")
		return nil, apperr.Validationf("created_at %s is ahead of the server clock", at.UTC().Format(time.RFC3339))
	}

	r := &entities.Reading{
		DeviceMAC:    d.MAC,
		CreatedAt:    at.UTC(),
		Temperature:  *in.Temperature,
		Humidity:     in.Humidity,
		Pressure:     in.Pressure,
		BatteryValue: in.BatteryValue,
		TBU:          in.TBU,
		State:        state,
		ErrorCode:    in.ErrorCode,
		RSSI:         in.RSSI,
	}
	if err := s.r.Create(ctx, r); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflictf("reading %s already stored", r.ID)
		}
		return nil, err
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.ReadingsIngested.WithLabelValues(source).Inc()
	}
	if r.ErrorCode == entities.ErrorLowBattery {
		slog.Warn("device reports low battery", "mac", d.MAC, "battery", r.BatteryValue)
	}

	if s.deps.LastSeen != nil {
		if err := s.deps.LastSeen.Touch(ctx, d.MAC, r.CreatedAt); err != nil {
			slog.Warn("last-seen update failed", "mac", d.MAC, "error", err)
		}
	}
	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.Publish(ctx, r); err != nil {
			slog.Error("publish reading failed", "mac", d.MAC, "error", err)
			if s.deps.Metrics != nil {
				s.deps.Metrics.PublishErrors.Inc()
			}
		} else if s.deps.Metrics != nil {
			s.deps.Metrics.ReadingsPublished.Inc()
		}
	}
	return r, nil
}

func (s *readingSvc) Recent(ctx context.Context, mac string, limit int) ([]entities.Reading, error) {
	d, err := s.device(ctx, mac)
	if err != nil {
		return nil, err
	}
	return s.r.Recent(ctx, d.MAC, limit)
}
