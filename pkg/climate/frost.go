// Package climate judges frost risk for crops from their bloom-stage thresholds.
package climate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/pkg/observability"
)

type RiskLevel string

const (
	RiskNone    RiskLevel = "NONE"
	RiskPartial RiskLevel = "PARTIAL"
	RiskSevere  RiskLevel = "SEVERE"
	// RiskUnknown means there was nothing to judge: no stage or no recent readings.
	RiskUnknown RiskLevel = "UNKNOWN"
)

// Classify compares temp to the stage thresholds. Severe is checked first so
// that coinciding or inverted thresholds resolve to the worse class.
func Classify(temp float64, st entities.BloomStage) RiskLevel {
	switch {
	case temp <= st.CritTemp90:
		return RiskSevere
	case temp >= st.CritTemp10:
		return RiskNone
	default:
		return RiskPartial
	}
}

type CropLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*entities.Crop, error)
	ListByField(ctx context.Context, fieldID uuid.UUID) ([]entities.Crop, error)
}

type ReadingSource interface {
	// ColdestOnField returns the lowest-temperature reading taken in
	// [since, until] by any device assigned to the field,
	// gorm.ErrRecordNotFound when there is none.
	ColdestOnField(ctx context.Context, fieldID uuid.UUID, since, until time.Time) (*entities.Reading, error)
}

type Evaluation struct {
	CropID         uuid.UUID            `json:"crop_id"`
	FieldID        uuid.UUID            `json:"field_id"`
	BloomStage     *entities.BloomStage `json:"bloom_stage"`
	MinTemperature *float64             `json:"min_temperature"`
	ColdestDevice  string               `json:"coldest_device,omitempty"`
	ObservedAt     *time.Time           `json:"observed_at,omitempty"`
	Level          RiskLevel            `json:"level"`
	Reason         string               `json:"reason,omitempty"`
	WindowSec      int                  `json:"window_sec"`
	EvaluatedAt    time.Time            `json:"evaluated_at"`
}

type Evaluator struct {
	crops    CropLookup
	readings ReadingSource
	window   time.Duration
	clock    clockwork.Clock
	metrics  *observability.Metrics
}

// NewEvaluator looks back window when no per-call window is given. metrics may be nil.
func NewEvaluator(crops CropLookup, readings ReadingSource, window time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *Evaluator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if window <= 0 {
		window = time.Hour
	}
	return &Evaluator{crops: crops, readings: readings, window: window, clock: clock, metrics: metrics}
}

func (e *Evaluator) Window() time.Duration { return e.window }

// Evaluate judges one crop. window <= 0 uses the evaluator default.
func (e *Evaluator) Evaluate(ctx context.Context, cropID uuid.UUID, window time.Duration) (*Evaluation, error) {
	c, err := e.crops.Get(ctx, cropID)
	if err != nil {
		return nil, err
	}
	return e.evaluate(ctx, c, window)
}

// EvaluateField judges every crop on the field.
func (e *Evaluator) EvaluateField(ctx context.Context, fieldID uuid.UUID, window time.Duration) ([]Evaluation, error) {
	crops, err := e.crops.ListByField(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	out := make([]Evaluation, 0, len(crops))
	for i := range crops {
		ev, err := e.evaluate(ctx, &crops[i], window)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, nil
}

func (e *Evaluator) evaluate(ctx context.Context, c *entities.Crop, window time.Duration) (*Evaluation, error) {
	if window <= 0 {
		window = e.window
	}
	now := e.clock.Now().UTC()
	ev := &Evaluation{
		CropID:      c.ID,
		FieldID:     c.FieldID,
		BloomStage:  c.CurrentBloomStage,
		Level:       RiskUnknown,
		WindowSec:   int(window.Seconds()),
		EvaluatedAt: now,
	}
	if c.CurrentBloomStage == nil {
		ev.Reason = "crop has no current bloom stage"
		e.count(ev)
		return ev, nil
	}

	coldest, err := e.readings.ColdestOnField(ctx, c.FieldID, now.Add(-window), now)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ev.Reason = "no readings from field devices in window"
		e.count(ev)
		return ev, nil
	}
	if err != nil {
		return nil, err
	}

	t := coldest.Temperature
	at := coldest.CreatedAt
	ev.MinTemperature = &t
	ev.ColdestDevice = coldest.DeviceMAC
	ev.ObservedAt = &at
	ev.Level = Classify(t, *c.CurrentBloomStage)
	if ev.Level == RiskSevere {
		slog.Warn("severe frost risk", "crop_id", c.ID, "field_id", c.FieldID, "stage", c.CurrentBloomStage.Name, "min_temperature", t)
	}
	e.count(ev)
	return ev, nil
}

func (e *Evaluator) count(ev *Evaluation) {
	if e.metrics != nil {
		e.metrics.FrostEvaluations.WithLabelValues(string(ev.Level)).Inc()
	}
}
