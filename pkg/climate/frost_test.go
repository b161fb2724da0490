package climate

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/internal/fixtures"
	"agrisense/internal/testdb"
	"agrisense/pkg/apperr"
	catalogRepoImp "agrisense/pkg/catalog/repositoryImp"
	cropRepoImp "agrisense/pkg/crop/repositoryImp"
	"agrisense/pkg/crop/service"
	"agrisense/pkg/crop/serviceImp"
	deviceRepoImp "agrisense/pkg/device/repositoryImp"
	deviceService "agrisense/pkg/device/service"
	deviceSvcImp "agrisense/pkg/device/serviceImp"
	fieldRepoImp "agrisense/pkg/field/repositoryImp"
	fieldService "agrisense/pkg/field/service"
	fieldSvcImp "agrisense/pkg/field/serviceImp"
	"agrisense/pkg/observability"
	readingRepoImp "agrisense/pkg/reading/repositoryImp"
	readingService "agrisense/pkg/reading/service"
	readingSvcImp "agrisense/pkg/reading/serviceImp"
)

func TestClassify(t *testing.T) {
	fullBloom := entities.BloomStage{CritTemp10: -2.0, CritTemp90: -3.9}
	cases := []struct {
		temp float64
		want RiskLevel
	}{
		{5, RiskNone},
		{-2.0, RiskNone},
		{-2.1, RiskPartial},
		{-3.8, RiskPartial},
		{-3.9, RiskSevere},
		{-10, RiskSevere},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.temp, fullBloom), "temp %v", tc.temp)
	}

	// equal thresholds leave no partial band; inverted ones still prefer severe
	assert.Equal(t, RiskSevere, Classify(-2, entities.BloomStage{CritTemp10: -2, CritTemp90: -2}))
	assert.Equal(t, RiskSevere, Classify(-3, entities.BloomStage{CritTemp10: -4, CritTemp90: -2}))
}

var t0 = time.Date(2026, 4, 12, 5, 0, 0, 0, time.UTC)

type env struct {
	ev      *Evaluator
	crops   service.CropService
	metrics *observability.Metrics
	field   *entities.Field
	apple   *entities.Variety
	db      *gorm.DB
	ctx     context.Context
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testdb.Open(t)
	clock := clockwork.NewFakeClockAt(t0)
	fields := fieldRepoImp.New(db)
	e := &env{
		crops:   serviceImp.NewCropService(cropRepoImp.New(db), fields, catalogRepoImp.New(db), clock),
		metrics: observability.NewMetricsForTesting(),
		field:   fixtures.Field(t, db, "North Orchard", 11.1194, 46.0664),
		apple:   fixtures.Variety(t, db, "Golden Delicious", fixtures.GoldenDelicious),
		db:      db,
		ctx:     context.Background(),
	}
	e.ev = NewEvaluator(e.crops, readingRepoImp.New(db), time.Hour, clock, e.metrics)

	other := fixtures.Field(t, db, "South Vineyard", 11.2, 46.1)
	fixtures.SoldSlave(t, db, "AA:BB:CC:00:00:01", e.field.ID)
	fixtures.SoldSlave(t, db, "AA:BB:CC:00:00:02", e.field.ID)
	fixtures.SoldSlave(t, db, "AA:BB:CC:00:00:03", other.ID)

	fixtures.Reading(t, db, "AA:BB:CC:00:00:01", -1.0, t0.Add(-10*time.Minute))
	fixtures.Reading(t, db, "AA:BB:CC:00:00:02", -2.6, t0.Add(-40*time.Minute))
	fixtures.Reading(t, db, "AA:BB:CC:00:00:02", -8.0, t0.Add(-3*time.Hour)) // outside the default window
	fixtures.Reading(t, db, "AA:BB:CC:00:00:03", -9.0, t0.Add(-5*time.Minute))
	return e
}

func (e *env) plant(t *testing.T, stageNumber int) uuid.UUID {
	t.Helper()
	in := service.PlantCrop{FieldID: e.field.ID, VarietyID: e.apple.ID}
	if stageNumber > 0 {
		id := e.apple.BloomStages[stageNumber-1].ID
		in.CurrentBloomStageID = &id
	}
	c, err := e.crops.Plant(e.ctx, in)
	require.NoError(t, err)
	return c.ID
}

func TestEvaluateUsesColdestFieldReadingInWindow(t *testing.T) {
	e := setup(t)
	id := e.plant(t, 7) // Full Bloom: -2.0 / -3.9

	ev, err := e.ev.Evaluate(e.ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, RiskPartial, ev.Level)
	require.NotNil(t, ev.MinTemperature)
	assert.Equal(t, -2.6, *ev.MinTemperature)
	assert.Equal(t, "AA:BB:CC:00:00:02", ev.ColdestDevice)
	assert.Equal(t, 3600, ev.WindowSec)
	assert.Equal(t, "Full Bloom", ev.BloomStage.Name)

	ev, err = e.ev.Evaluate(e.ctx, id, 4*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, RiskSevere, ev.Level)
	assert.Equal(t, -8.0, *ev.MinTemperature)

	ev, err = e.ev.Evaluate(e.ctx, id, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, RiskUnknown, ev.Level)
	assert.Nil(t, ev.MinTemperature)
	assert.NotEmpty(t, ev.Reason)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.FrostEvaluations.WithLabelValues("SEVERE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.FrostEvaluations.WithLabelValues("UNKNOWN")))
}

func TestEvaluateWithoutStageIsUnknown(t *testing.T) {
	e := setup(t)
	id := e.plant(t, 0)

	ev, err := e.ev.Evaluate(e.ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, RiskUnknown, ev.Level)
	assert.Nil(t, ev.BloomStage)
}

func TestEvaluateField(t *testing.T) {
	e := setup(t)
	e.plant(t, 1) // Silver Tip tolerates -2.6
	e.plant(t, 8) // Post Bloom: -1.9 / -3.0

	evs, err := e.ev.EvaluateField(e.ctx, e.field.ID, 0)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	levels := []RiskLevel{evs[0].Level, evs[1].Level}
	assert.ElementsMatch(t, []RiskLevel{RiskNone, RiskPartial}, levels)

	_, err = e.ev.EvaluateField(e.ctx, uuid.New(), 0)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = e.ev.Evaluate(e.ctx, uuid.New(), 0)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestEvaluateIgnoresReadingsStampedAfterNow(t *testing.T) {
	e := setup(t)
	id := e.plant(t, 7)
	fixtures.Reading(t, e.db, "AA:BB:CC:00:00:01", -12.0, t0.Add(6*time.Hour))

	ev, err := e.ev.Evaluate(e.ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, RiskPartial, ev.Level)
	assert.Equal(t, -2.6, *ev.MinTemperature)
	assert.False(t, ev.ObservedAt.After(t0))
}

func TestSevereFrostAcrossMasterAndSlave(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(t0)
	fRepo, rRepo, dRepo := fieldRepoImp.New(db), readingRepoImp.New(db), deviceRepoImp.New(db)

	fields := fieldSvcImp.NewFieldService(fRepo)
	devices := deviceSvcImp.NewDeviceService(dRepo, fRepo, rRepo, deviceSvcImp.Deps{Clock: clock})
	readings := readingSvcImp.NewReadingService(rRepo, dRepo, readingSvcImp.Deps{Clock: clock})
	crops := serviceImp.NewCropService(cropRepoImp.New(db), fRepo, catalogRepoImp.New(db), clock)
	ev := NewEvaluator(crops, rRepo, time.Hour, clock, nil)

	lon, lat := 11.1194, 46.0664
	f, err := fields.Create(ctx, fieldService.CreateField{Name: "F", Longitude: &lon, Latitude: &lat, UserID: "alice"})
	require.NoError(t, err)
	v := fixtures.Variety(t, db, "Golden Delicious", []entities.BloomStage{{Number: 1, Name: "Pink", CritTemp10: -2.0, CritTemp90: -3.9}})

	master := "AA:AA:AA:AA:AA:0D"
	_, err = devices.Register(ctx, deviceService.RegisterDevice{MAC: master, DeviceType: "MASTER", IsSold: true, UserID: "alice", FieldID: &f.ID})
	require.NoError(t, err)
	_, err = devices.Register(ctx, deviceService.RegisterDevice{MAC: "AA:AA:AA:AA:AA:0E", DeviceType: "SLAVE", IsSold: true, UserID: "alice", FieldID: &f.ID, MasterMAC: &master})
	require.NoError(t, err)

	stage := v.BloomStages[0].ID
	c, err := crops.Plant(ctx, service.PlantCrop{FieldID: f.ID, VarietyID: v.ID, CurrentBloomStageID: &stage})
	require.NoError(t, err)

	cold := -4.0
	_, err = readings.Ingest(ctx, "AA:AA:AA:AA:AA:0E", readingService.ReadingInput{Temperature: &cold}, readingService.SourceHTTP)
	require.NoError(t, err)

	out, err := ev.Evaluate(ctx, c.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, RiskSevere, out.Level)
	assert.Equal(t, -4.0, *out.MinTemperature)
	assert.Equal(t, "AA:AA:AA:AA:AA:0E", out.ColdestDevice)
	assert.Equal(t, "Pink", out.BloomStage.Name)
}
