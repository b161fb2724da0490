package serviceImp

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/internal/testdb"
	"agrisense/pkg/apperr"
	"agrisense/pkg/field/repositoryImp"
	"agrisense/pkg/field/service"
)

func f64(v float64) *float64 { return &v }

type FieldServiceSuite struct {
	suite.Suite
	db  *gorm.DB
	svc service.FieldService
	ctx context.Context
}

func (s *FieldServiceSuite) SetupTest() {
	s.db = testdb.Open(s.T())
	s.svc = NewFieldService(repositoryImp.New(s.db))
	s.ctx = context.Background()
}

func (s *FieldServiceSuite) create(name string, lon, lat float64) *entities.Field {
	f, err := s.svc.Create(s.ctx, service.CreateField{Name: name, Longitude: f64(lon), Latitude: f64(lat), UserID: "alice"})
	s.Require().NoError(err)
	return f
}

func (s *FieldServiceSuite) TestCreateRoundTripsCoordinates() {
	f := s.create("North Orchard", 11.1194, 46.0664)

	s.NotEqual(uuid.Nil, f.ID)
	got, err := s.svc.Get(s.ctx, f.ID)
	s.Require().NoError(err)
	s.InDelta(11.1194, got.Point.Longitude, 1e-9)
	s.InDelta(46.0664, got.Point.Latitude, 1e-9)
	s.Equal("alice", got.UserID)
}

func (s *FieldServiceSuite) TestCreateAcceptsBoundaryCoordinates() {
	f := s.create("Edge", 180, -90)
	s.Equal(180.0, f.Point.Longitude)
	s.Equal(-90.0, f.Point.Latitude)
}

func (s *FieldServiceSuite) TestCreateValidation() {
	cases := []service.CreateField{
		{Name: "", Longitude: f64(0), Latitude: f64(0), UserID: "u"},
		{Name: "x", Latitude: f64(0), UserID: "u"},
		{Name: "x", Longitude: f64(181), Latitude: f64(0), UserID: "u"},
		{Name: "x", Longitude: f64(0), Latitude: f64(-90.1), UserID: "u"},
		{Name: "x", Longitude: f64(0), Latitude: f64(0)},
	}
	for _, in := range cases {
		_, err := s.svc.Create(s.ctx, in)
		s.True(apperr.Is(err, apperr.Validation), "%+v: %v", in, err)
	}
	list, err := s.svc.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *FieldServiceSuite) TestSameNameSameOwnerGetsDistinctRecords() {
	a := s.create("Twin", 1, 1)
	b := s.create("Twin", 2, 2)
	s.NotEqual(a.ID, b.ID)
	s.Equal(1.0, a.Point.Longitude)
	s.Equal(2.0, b.Point.Longitude)
}

func (s *FieldServiceSuite) TestListNewestFirst() {
	old := s.create("old", 1, 1)
	s.Require().NoError(s.db.Model(&entities.Field{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)
	fresh := s.create("fresh", 2, 2)

	list, err := s.svc.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(fresh.ID, list[0].ID)
	s.Equal(old.ID, list[1].ID)
}

func (s *FieldServiceSuite) TestUpdateKeepsOmittedCoordinate() {
	f := s.create("North", 11.1194, 46.0664)

	got, err := s.svc.Update(s.ctx, f.ID, service.FieldPatch{Latitude: f64(46.5)})
	s.Require().NoError(err)
	s.InDelta(11.1194, got.Point.Longitude, 1e-9)
	s.Equal(46.5, got.Point.Latitude)
	s.Equal("North", got.Name)

	name, bio := "Renamed", true
	got, err = s.svc.Update(s.ctx, f.ID, service.FieldPatch{Name: &name, IsBio: &bio})
	s.Require().NoError(err)
	s.Equal("Renamed", got.Name)
	s.True(got.IsBio)
	s.Equal(46.5, got.Point.Latitude)

	owner := "bob"
	got, err = s.svc.Update(s.ctx, f.ID, service.FieldPatch{UserID: &owner})
	s.Require().NoError(err)
	s.Equal("bob", got.UserID)
	s.Equal("Renamed", got.Name)
}

func (s *FieldServiceSuite) TestUpdateErrors() {
	_, err := s.svc.Update(s.ctx, uuid.New(), service.FieldPatch{})
	s.True(apperr.Is(err, apperr.NotFound))

	f := s.create("North", 1, 1)
	_, err = s.svc.Update(s.ctx, f.ID, service.FieldPatch{Longitude: f64(-200)})
	s.True(apperr.Is(err, apperr.Validation))

	blank := " "
	_, err = s.svc.Update(s.ctx, f.ID, service.FieldPatch{UserID: &blank})
	s.True(apperr.Is(err, apperr.Validation))
}

func (s *FieldServiceSuite) TestDeleteCascades() {
	f := s.create("Doomed", 1, 1)
	other := s.create("Kept", 2, 2)

	crop := entities.Crop{FieldID: f.ID, VarietyID: uuid.New(), PlantedAt: time.Now()}
	keptCrop := entities.Crop{FieldID: other.ID, VarietyID: uuid.New(), PlantedAt: time.Now()}
	s.Require().NoError(s.db.Create(&crop).Error)
	s.Require().NoError(s.db.Create(&keptCrop).Error)
	s.Require().NoError(s.db.Create(&entities.StageTransition{CropID: crop.ID, ToStageID: uuid.New(), ChangedAt: time.Now()}).Error)
	dev := entities.Device{MAC: "AA:BB:CC:DD:EE:01", DeviceType: entities.DeviceMaster, IsSold: true, FieldID: &f.ID}
	s.Require().NoError(s.db.Create(&dev).Error)

	id, err := s.svc.Delete(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(f.ID, id)

	_, err = s.svc.Get(s.ctx, f.ID)
	s.True(apperr.Is(err, apperr.NotFound))

	var n int64
	s.db.Model(&entities.Crop{}).Where("field_id = ?", f.ID).Count(&n)
	s.Zero(n)
	s.db.Model(&entities.Crop{}).Where("field_id = ?", other.ID).Count(&n)
	s.Equal(int64(1), n)
	s.db.Model(&entities.StageTransition{}).Count(&n)
	s.Zero(n)

	var reloaded entities.Device
	s.Require().NoError(s.db.First(&reloaded, "mac = ?", dev.MAC).Error)
	s.Nil(reloaded.FieldID)
}

func (s *FieldServiceSuite) TestDeleteUnknown() {
	_, err := s.svc.Delete(s.ctx, uuid.New())
	s.True(apperr.Is(err, apperr.NotFound))
}

func TestFieldServiceSuite(t *testing.T) {
	suite.Run(t, new(FieldServiceSuite))
}
