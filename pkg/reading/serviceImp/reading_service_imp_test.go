package serviceImp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/entities"
	"agrisense/internal/fixtures"
	"agrisense/internal/testdb"
	"agrisense/pkg/apperr"
	deviceRepoImp "agrisense/pkg/device/repositoryImp"
	"agrisense/pkg/observability"
	"agrisense/pkg/reading/repositoryImp"
	"agrisense/pkg/reading/service"
	"agrisense/pkg/telemetry/lastseen"
)

const mac = "AA:BB:CC:00:00:02"

var t0 = time.Date(2026, 4, 12, 5, 0, 0, 0, time.UTC)

type fakePublisher struct {
	got []entities.Reading
	err error
}

func (p *fakePublisher) Publish(_ context.Context, r *entities.Reading) error {
	if p.err != nil {
		return p.err
	}
	p.got = append(p.got, *r)
	return nil
}

type env struct {
	svc     service.ReadingService
	pub     *fakePublisher
	seen    *lastseen.Memory
	metrics *observability.Metrics
	ctx     context.Context
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testdb.Open(t)
	f := fixtures.Field(t, db, "North Orchard", 11.1194, 46.0664)
	fixtures.SoldSlave(t, db, mac, f.ID)

	e := &env{pub: &fakePublisher{}, seen: lastseen.NewMemory(), metrics: observability.NewMetricsForTesting(), ctx: context.Background()}
	e.svc = NewReadingService(repositoryImp.New(db), deviceRepoImp.New(db), Deps{
		Clock:     clockwork.NewFakeClockAt(t0),
		Publisher: e.pub,
		LastSeen:  e.seen,
		Metrics:   e.metrics,
	})
	return e
}

func temp(v float64) *float64 { return &v }

func TestIngestDefaultsStateAndTime(t *testing.T) {
	e := setup(t)

	r, err := e.svc.Ingest(e.ctx, "aa:bb:cc:00:00:02", service.ReadingInput{Temperature: temp(-1.5), BatteryValue: 87}, service.SourceHTTP)
	require.NoError(t, err)
	assert.Equal(t, mac, r.DeviceMAC)
	assert.True(t, r.CreatedAt.Equal(t0))
	require.NotNil(t, r.State)
	assert.Equal(t, entities.IntervalNormal, *r.State)

	at, ok, _ := e.seen.Get(e.ctx, mac)
	assert.True(t, ok)
	assert.True(t, at.Equal(t0))

	require.Len(t, e.pub.got, 1)
	assert.Equal(t, r.ID, e.pub.got[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ReadingsIngested.WithLabelValues("http")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ReadingsPublished))
}

func TestIngestKeepsSampleTimeAndState(t *testing.T) {
	e := setup(t)
	sampled := time.Date(2026, 4, 12, 6, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	state := "high"

	r, err := e.svc.Ingest(e.ctx, mac, service.ReadingInput{Temperature: temp(2), CreatedAt: &sampled, State: &state}, service.SourceMQTT)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, r.CreatedAt.Location())
	assert.True(t, r.CreatedAt.Equal(sampled))
	assert.Equal(t, entities.IntervalHigh, *r.State)

	recent, err := e.svc.Recent(e.ctx, mac, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestIngestRejections(t *testing.T) {
	e := setup(t)

	_, err := e.svc.Ingest(e.ctx, mac, service.ReadingInput{}, service.SourceHTTP)
	assert.True(t, apperr.Is(err, apperr.Validation))

	bad := "TURBO"
	_, err = e.svc.Ingest(e.ctx, mac, service.ReadingInput{Temperature: temp(1), State: &bad}, service.SourceHTTP)
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = e.svc.Ingest(e.ctx, "AA:BB:CC:00:00:99", service.ReadingInput{Temperature: temp(1)}, service.SourceMQTT)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.IngestRejected.WithLabelValues("http", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.IngestRejected.WithLabelValues("mqtt", "unknown_device")))
	assert.Empty(t, e.pub.got)
}

func TestIngestSurvivesPublishFailure(t *testing.T) {
	e := setup(t)
	e.pub.err = errors.New("broker down")

	_, err := e.svc.Ingest(e.ctx, mac, service.ReadingInput{Temperature: temp(1)}, service.SourceHTTP)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.PublishErrors))

	recent, err := e.svc.Recent(e.ctx, mac, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestIngestRejectsReadingsFromTheFuture(t *testing.T) {
	e := setup(t)
	ahead := t0.Add(6 * time.Hour)

	_, err := e.svc.Ingest(e.ctx, mac, service.ReadingInput{Temperature: temp(-12), CreatedAt: &ahead}, service.SourceMQTT)
	assert.True(t, apperr.Is(err, apperr.Validation))
	_, ok, _ := e.seen.Get(e.ctx, mac)
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.IngestRejected.WithLabelValues("mqtt", "invalid")))

	skewed := t0.Add(MaxClockSkew - time.Second)
	r, err := e.svc.Ingest(e.ctx, mac, service.ReadingInput{Temperature: temp(1), CreatedAt: &skewed}, service.SourceMQTT)
	require.NoError(t, err)
	assert.True(t, r.CreatedAt.Equal(skewed))
}
