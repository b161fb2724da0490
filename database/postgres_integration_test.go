//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"agrisense/entities"
	"agrisense/pkg/geo"
)

func TestPostgisRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := tcpostgres.Run(ctx, "postgis/postgis:16-3.4",
		tcpostgres.WithDatabase("agrisense"),
		tcpostgres.WithUsername("agri"),
		tcpostgres.WithPassword("agri"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pg)
	require.NoError(t, err)

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := OpenPostgresDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var colType string
	require.NoError(t, db.Raw(`SELECT format_type(atttypid, atttypmod) FROM pg_attribute
		WHERE attrelid = 'fields'::regclass AND attname = 'gps_coords'`).Scan(&colType).Error)
	assert.Equal(t, "geography(Point,4326)", colType)

	pt, err := geo.NewPoint(11.1194, 46.0664)
	require.NoError(t, err)
	f := entities.Field{ID: uuid.New(), Name: "North Orchard", Point: pt, UserID: "alice"}
	require.NoError(t, db.WithContext(ctx).Create(&f).Error)

	var back entities.Field
	require.NoError(t, db.WithContext(ctx).First(&back, "id = ?", f.ID).Error)
	assert.InDelta(t, 11.1194, back.Point.Longitude, 1e-9)
	assert.InDelta(t, 46.0664, back.Point.Latitude, 1e-9)

	var wkt string
	require.NoError(t, db.Raw(`SELECT ST_AsText(gps_coords) FROM fields WHERE id = ?`, f.ID).Scan(&wkt).Error)
	assert.Equal(t, "POINT(11.1194 46.0664)", wkt)
}
