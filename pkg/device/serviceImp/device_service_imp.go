package serviceImp

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/pkg/apperr"
	"agrisense/pkg/cadence"
	"agrisense/pkg/device/repository"
	"agrisense/pkg/device/service"
	fieldRepo "agrisense/pkg/field/repository"
	"agrisense/pkg/observability"
	readingRepo "agrisense/pkg/reading/repository"
	"agrisense/pkg/telemetry/lastseen"
)

type Deps struct {
	Clock     clockwork.Clock
	LastSeen  lastseen.Store // optional
	Metrics   *observability.Metrics
	Tolerance float64 // missed gaps before a device counts as silent
}

type deviceSvc struct {
	r        repository.DeviceRepository
	fields   fieldRepo.FieldRepository
	readings readingRepo.ReadingRepository
	deps     Deps
}

func NewDeviceService(r repository.DeviceRepository, fields fieldRepo.FieldRepository, readings readingRepo.ReadingRepository, deps Deps) service.DeviceService {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Tolerance <= 0 {
		deps.Tolerance = 3
	}
	return &deviceSvc{r: r, fields: fields, readings: readings, deps: deps}
}

func parseType(s string) (entities.DeviceType, error) {
	t := entities.DeviceType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", apperr.Validationf("device_type must be MASTER or SLAVE (got %q)", s)
	}
	return t, nil
}

func parseTier(s *string) (*entities.UpdateInterval, error) {
	if s == nil {
		return nil, nil
	}
	u, err := cadence.Parse(*s)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "", err)
	}
	return &u, nil
}

// checkShape applies the rules that need no store access.
func checkShape(d *entities.Device) error {
	switch d.DeviceType {
	case entities.DeviceMaster:
		if d.UpdateInterval != nil {
			return apperr.Validationf("update_interval applies to slaves only")
		}
		if d.MasterMAC != nil {
			return apperr.Validationf("a master cannot have a master_mac")
		}
	case entities.DeviceSlave:
		if d.UpdateInterval == nil {
			tier := cadence.Default
			d.UpdateInterval = &tier
		}
		if d.MasterMAC != nil && *d.MasterMAC == d.MAC {
			return apperr.Validationf("a device cannot be its own master")
		}
	}
	if !d.IsSold && (d.FieldID != nil || d.MasterMAC != nil) {
		return apperr.Validationf("an unsold device cannot be assigned to a field or a master")
	}
	return nil
}

// checkRefs verifies field and master references against the store.
func (s *deviceSvc) checkRefs(ctx context.Context, d *entities.Device) error {
	if d.FieldID != nil {
		if _, err := s.fields.FindByID(ctx, *d.FieldID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validationf("field %s does not exist", *d.FieldID)
			}
			return err
		}
	}
	if d.MasterMAC != nil {
		m, err := s.r.FindByMAC(ctx, *d.MasterMAC)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validationf("master %s does not exist", *d.MasterMAC)
		}
		if err != nil {
			return err
		}
		if m.DeviceType != entities.DeviceMaster {
			return apperr.Validationf("master_mac %s is not a MASTER device", m.MAC)
		}
	}
	return nil
}

func (s *deviceSvc) Register(ctx context.Context, in service.RegisterDevice) (*entities.Device, error) {
	mac, err := NormalizeMAC(in.MAC)
	if err != nil {
		return nil, err
	}
	typ, err := parseType(in.DeviceType)
	if err != nil {
		return nil, err
	}
	tier, err := parseTier(in.UpdateInterval)
	if err != nil {
		return nil, err
	}
	d := &entities.Device{
		MAC:            mac,
		Name:           strings.TrimSpace(in.Name),
		DeviceType:     typ,
		IsActive:       true,
		IsSold:         in.IsSold,
		UserID:         strings.TrimSpace(in.UserID),
		FieldID:        in.FieldID,
		UpdateInterval: tier,
	}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}
	if in.MasterMAC != nil && strings.TrimSpace(*in.MasterMAC) != "" {
		m, err := NormalizeMAC(*in.MasterMAC)
		if err != nil {
			return nil, err
		}
		d.MasterMAC = &m
	}
	if err := checkShape(d); err != nil {
		return nil, err
	}

	if _, err := s.r.FindByMAC(ctx, mac); err == nil {
		return nil, apperr.Conflictf("device %s is already registered", mac)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := s.checkRefs(ctx, d); err != nil {
		return nil, err
	}
	if err := s.r.Create(ctx, d); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflictf("device %s is already registered", mac)
		}
		return nil, err
	}
	slog.Info("device registered", "mac", d.MAC, "type", d.DeviceType)
	return s.r.FindByMAC(ctx, mac)
}

func (s *deviceSvc) find(ctx context.Context, mac string) (*entities.Device, error) {
	m, err := NormalizeMAC(mac)
	if err != nil {
		return nil, err
	}
	d, err := s.r.FindByMAC(ctx, m)
	if err != nil {
		return nil, apperr.FromGorm(err, "device")
	}
	return d, nil
}

func (s *deviceSvc) Get(ctx context.Context, mac string) (*service.DeviceDetail, error) {
	d, err := s.find(ctx, mac)
	if err != nil {
		return nil, err
	}
	out := &service.DeviceDetail{Device: *d, Slaves: []entities.Device{}, Readings: []entities.Reading{}}
	if d.FieldID != nil {
		f, err := s.fields.FindByID(ctx, *d.FieldID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		out.Field = f
	}
	if d.DeviceType == entities.DeviceMaster {
		if out.Slaves, err = s.r.Slaves(ctx, d.MAC); err != nil {
			return nil, err
		}
	}
	if out.Readings, err = s.readings.Recent(ctx, d.MAC, service.RecentReadings); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *deviceSvc) List(ctx context.Context) ([]entities.Device, error) {
	return s.r.List(ctx)
}

func (s *deviceSvc) ListByField(ctx context.Context, fieldID uuid.UUID) ([]entities.Device, error) {
	if _, err := s.fields.FindByID(ctx, fieldID); err != nil {
		return nil, apperr.FromGorm(err, "field")
	}
	return s.r.ListByField(ctx, fieldID)
}

func (s *deviceSvc) Update(ctx context.Context, mac string, p service.DevicePatch) (*entities.Device, error) {
	cur, err := s.find(ctx, mac)
	if err != nil {
		return nil, err
	}
	wasMaster := cur.DeviceType == entities.DeviceMaster

	if p.Name != nil {
		cur.Name = strings.TrimSpace(*p.Name)
	}
	if p.DeviceType != nil {
		if cur.DeviceType, err = parseType(*p.DeviceType); err != nil {
			return nil, err
		}
		if cur.DeviceType == entities.DeviceMaster {
			// a promoted slave drops its slave-only settings
			cur.UpdateInterval, cur.MasterMAC = nil, nil
		}
	}
	if p.IsActive != nil {
		cur.IsActive = *p.IsActive
	}
	if p.IsSold != nil {
		cur.IsSold = *p.IsSold
	}
	if p.UserID != nil {
		cur.UserID = strings.TrimSpace(*p.UserID)
	}
	if p.FieldID != nil {
		if strings.TrimSpace(*p.FieldID) == "" {
			cur.FieldID = nil
		} else {
			id, err := uuid.Parse(*p.FieldID)
			if err != nil {
				return nil, apperr.Validationf("invalid field_id")
			}
			cur.FieldID = &id
		}
	}
	if p.UpdateInterval != nil {
		if cur.UpdateInterval, err = parseTier(p.UpdateInterval); err != nil {
			return nil, err
		}
	}
	if p.MasterMAC != nil {
		if strings.TrimSpace(*p.MasterMAC) == "" {
			cur.MasterMAC = nil
		} else {
			m, err := NormalizeMAC(*p.MasterMAC)
			if err != nil {
				return nil, err
			}
			cur.MasterMAC = &m
		}
	}

	if err := checkShape(cur); err != nil {
		return nil, err
	}
	if wasMaster && cur.DeviceType == entities.DeviceSlave {
		slaves, err := s.r.Slaves(ctx, cur.MAC)
		if err != nil {
			return nil, err
		}
		if len(slaves) > 0 {
			return nil, apperr.Conflictf("master %s still has %d slave(s)", cur.MAC, len(slaves))
		}
	}
	if err := s.checkRefs(ctx, cur); err != nil {
		return nil, err
	}
	if err := s.r.Update(ctx, cur); err != nil {
		return nil, apperr.FromGorm(err, "device")
	}
	out, err := s.r.FindByMAC(ctx, cur.MAC)
	if err != nil {
		return nil, apperr.FromGorm(err, "device")
	}
	return out, nil
}

func (s *deviceSvc) Remove(ctx context.Context, mac string) (string, error) {
	d, err := s.find(ctx, mac)
	if err != nil {
		return "", err
	}
	if err := s.r.Delete(ctx, d.MAC); err != nil {
		return "", apperr.FromGorm(err, "device")
	}
	if s.deps.LastSeen != nil {
		if err := s.deps.LastSeen.Forget(ctx, d.MAC); err != nil {
			slog.Warn("last-seen cleanup failed", "mac", d.MAC, "error", err)
		}
	}
	slog.Info("device removed", "mac", d.MAC)
	return d.MAC, nil
}

func (s *deviceSvc) Liveness(ctx context.Context, mac string) (*service.Liveness, error) {
	d, err := s.find(ctx, mac)
	if err != nil {
		return nil, err
	}
	last, err := s.lastSeen(ctx, d.MAC)
	if err != nil {
		return nil, err
	}
	out := &service.Liveness{
		MAC:            d.MAC,
		UpdateInterval: d.UpdateInterval,
		ExpectedGapSec: int(cadence.ExpectedGap(d.UpdateInterval).Seconds()),
		LastReadingAt:  last,
		Silent:         cadence.Silent(last, d.UpdateInterval, s.deps.Clock.Now(), s.deps.Tolerance),
	}
	if out.Silent && s.deps.Metrics != nil {
		s.deps.Metrics.SilentDevices.Inc()
	}
	return out, nil
}

// lastSeen prefers the cache and falls back to the readings table.
func (s *deviceSvc) lastSeen(ctx context.Context, mac string) (*time.Time, error) {
	if s.deps.LastSeen != nil {
		at, ok, err := s.deps.LastSeen.Get(ctx, mac)
		if err == nil && ok {
			return &at, nil
		}
		if err != nil {
			slog.Warn("last-seen cache read failed", "mac", mac, "error", err)
		}
	}
	return s.readings.LastAt(ctx, mac)
}
