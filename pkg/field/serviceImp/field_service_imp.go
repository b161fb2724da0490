package serviceImp

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"agrisense/entities"
	"agrisense/pkg/apperr"
	"agrisense/pkg/field/repository"
	"agrisense/pkg/field/service"
	"agrisense/pkg/geo"
)

type fieldSvc struct{ r repository.FieldRepository }

func NewFieldService(r repository.FieldRepository) service.FieldService { return &fieldSvc{r} }

func (s *fieldSvc) Create(ctx context.Context, in service.CreateField) (*entities.Field, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if in.Longitude == nil || in.Latitude == nil {
		return nil, apperr.Validationf("longitude and latitude are required")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, apperr.Validationf("user_id is required")
	}
	pt, err := geo.NewPoint(*in.Longitude, *in.Latitude)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid coordinates", err)
	}

	f := &entities.Field{ID: uuid.New(), Name: name, IsBio: in.IsBio, Point: pt, UserID: in.UserID}
	if err := s.r.Create(ctx, f); err != nil {
		return nil, apperr.FromGorm(err, "field")
	}
	return s.Get(ctx, f.ID)
}

func (s *fieldSvc) Get(ctx context.Context, id uuid.UUID) (*entities.Field, error) {
	f, err := s.r.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromGorm(err, "field")
	}
	return f, nil
}

func (s *fieldSvc) List(ctx context.Context) ([]entities.Field, error) {
	return s.r.List(ctx)
}

func (s *fieldSvc) Update(ctx context.Context, id uuid.UUID, p service.FieldPatch) (*entities.Field, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, apperr.Validationf("name cannot be empty")
	}
	if p.UserID != nil && strings.TrimSpace(*p.UserID) == "" {
		return nil, apperr.Validationf("user_id cannot be empty")
	}
	if p.Longitude != nil {
		if err := geo.Validate(*p.Longitude, 0); err != nil {
			return nil, apperr.Wrap(apperr.Validation, "invalid coordinates", err)
		}
	}
	if p.Latitude != nil {
		if err := geo.Validate(0, *p.Latitude); err != nil {
			return nil, apperr.Wrap(apperr.Validation, "invalid coordinates", err)
		}
	}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	lon, lat := cur.Point.Longitude, cur.Point.Latitude
	if p.Longitude != nil {
		lon = *p.Longitude
	}
	if p.Latitude != nil {
		lat = *p.Latitude
	}
	pt, err := geo.NewPoint(lon, lat)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid coordinates", err)
	}
	cur.Point = pt
	if p.Name != nil {
		cur.Name = strings.TrimSpace(*p.Name)
	}
	if p.IsBio != nil {
		cur.IsBio = *p.IsBio
	}
	if p.UserID != nil {
		cur.UserID = strings.TrimSpace(*p.UserID)
	}

	if err := s.r.Update(ctx, cur); err != nil {
		return nil, apperr.FromGorm(err, "field")
	}
	return s.Get(ctx, id)
}

func (s *fieldSvc) Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	if err := s.r.Delete(ctx, id); err != nil {
		return uuid.Nil, apperr.FromGorm(err, "field")
	}
	return id, nil
}
