// Package geo holds the geographic point stored on fields.
package geo

import (
	"database/sql/driver"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SRID of WGS84, the only reference system fields are stored in.
const SRID = 4326

var (
	ErrLongitudeRange = errors.New("longitude must be between -180 and 180")
	ErrLatitudeRange  = errors.New("latitude must be between -90 and 90")
)

// Point is a WGS84 location. X is longitude, Y is latitude.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	SRID      int     `json:"-"`
}

func Validate(lon, lat float64) error {
	if lon < -180 || lon > 180 {
		return ErrLongitudeRange
	}
	if lat < -90 || lat > 90 {
		return ErrLatitudeRange
	}
	return nil
}

// NewPoint validates the bounds and tags the point with SRID 4326.
func NewPoint(lon, lat float64) (Point, error) {
	if err := Validate(lon, lat); err != nil {
		return Point{}, err
	}
	return Point{Longitude: lon, Latitude: lat, SRID: SRID}, nil
}

func (p Point) orb() orb.Point { return orb.Point{p.Longitude, p.Latitude} }

// Value encodes the point as hex EWKB, which PostGIS accepts as geography input.
func (p Point) Value() (driver.Value, error) {
	srid := p.SRID
	if srid == 0 {
		srid = SRID
	}
	return ewkb.MarshalToHex(p.orb(), srid)
}

// Scan accepts hex EWKB text (PostGIS text output and the sqlite column)
// or raw EWKB bytes.
func (p *Point) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Point{}
		return nil
	case string:
		b, err := hex.DecodeString(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("geo: decode hex: %w", err)
		}
		raw = b
	case []byte:
		if b, err := hex.DecodeString(strings.TrimSpace(string(v))); err == nil {
			raw = b
		} else {
			raw = v
		}
	default:
		return fmt.Errorf("geo: unsupported scan type %T", src)
	}

	g, srid, err := ewkb.Unmarshal(raw)
	if err != nil {
		return fmt.Errorf("geo: unmarshal ewkb: %w", err)
	}
	pt, ok := g.(orb.Point)
	if !ok {
		return fmt.Errorf("geo: expected point, got %s", g.GeoJSONType())
	}
	if srid != 0 && srid != SRID {
		return fmt.Errorf("geo: unexpected srid %d", srid)
	}
	*p = Point{Longitude: pt.Lon(), Latitude: pt.Lat(), SRID: SRID}
	return nil
}

func (Point) GormDataType() string { return "geography" }

func (Point) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "geography(Point,4326)"
	}
	return "text"
}

func (p Point) String() string {
	return fmt.Sprintf("POINT(%g %g)", p.Longitude, p.Latitude)
}
