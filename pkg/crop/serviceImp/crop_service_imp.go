package serviceImp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"agrisense/entities"
	"agrisense/pkg/apperr"
	catalogRepo "agrisense/pkg/catalog/repository"
	"agrisense/pkg/crop/repository"
	"agrisense/pkg/crop/service"
	fieldRepo "agrisense/pkg/field/repository"
)

type cropSvc struct {
	r       repository.CropRepository
	fields  fieldRepo.FieldRepository
	catalog catalogRepo.CatalogRepository
	clock   clockwork.Clock
}

func NewCropService(r repository.CropRepository, fields fieldRepo.FieldRepository, catalog catalogRepo.CatalogRepository, clock clockwork.Clock) service.CropService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &cropSvc{r: r, fields: fields, catalog: catalog, clock: clock}
}

// Referenced records that do not exist are a bad request, not a missing crop.
func (s *cropSvc) requireField(ctx context.Context, id uuid.UUID) error {
	if _, err := s.fields.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validationf("field %s does not exist", id)
		}
		return err
	}
	return nil
}

func (s *cropSvc) requireVariety(ctx context.Context, id uuid.UUID) error {
	if _, err := s.catalog.FindVariety(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validationf("variety %s does not exist", id)
		}
		return err
	}
	return nil
}

// stageOf loads the stage and checks it belongs to varietyID.
func (s *cropSvc) stageOf(ctx context.Context, stageID, varietyID uuid.UUID) (*entities.BloomStage, error) {
	st, err := s.catalog.FindStage(ctx, stageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validationf("bloom stage %s does not exist", stageID)
		}
		return nil, err
	}
	if st.VarietyID != varietyID {
		return nil, apperr.Validationf("bloom stage %q belongs to another variety", st.Name)
	}
	return st, nil
}

func (s *cropSvc) transition(cropID uuid.UUID, from *uuid.UUID, to uuid.UUID) *entities.StageTransition {
	return &entities.StageTransition{ID: uuid.New(), CropID: cropID, FromStageID: from, ToStageID: to, ChangedAt: s.clock.Now().UTC()}
}

func (s *cropSvc) Plant(ctx context.Context, in service.PlantCrop) (*entities.Crop, error) {
	if in.FieldID == uuid.Nil || in.VarietyID == uuid.Nil {
		return nil, apperr.Validationf("field_id and variety_id are required")
	}
	if err := s.requireField(ctx, in.FieldID); err != nil {
		return nil, err
	}
	if err := s.requireVariety(ctx, in.VarietyID); err != nil {
		return nil, err
	}

	c := &entities.Crop{ID: uuid.New(), FieldID: in.FieldID, VarietyID: in.VarietyID, PlantedAt: s.clock.Now().UTC()}
	if in.PlantedAt != nil {
		c.PlantedAt = in.PlantedAt.UTC()
	}
	var tr *entities.StageTransition
	if in.CurrentBloomStageID != nil {
		if _, err := s.stageOf(ctx, *in.CurrentBloomStageID, in.VarietyID); err != nil {
			return nil, err
		}
		c.CurrentBloomStageID = in.CurrentBloomStageID
		tr = s.transition(c.ID, nil, *in.CurrentBloomStageID)
	}

	if err := s.r.Create(ctx, c, tr); err != nil {
		return nil, apperr.FromGorm(err, "crop")
	}
	return s.Get(ctx, c.ID)
}

func (s *cropSvc) Get(ctx context.Context, id uuid.UUID) (*entities.Crop, error) {
	c, err := s.r.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromGorm(err, "crop")
	}
	return c, nil
}

func (s *cropSvc) List(ctx context.Context) ([]entities.Crop, error) {
	return s.r.List(ctx)
}

func (s *cropSvc) ListByField(ctx context.Context, fieldID uuid.UUID) ([]entities.Crop, error) {
	if _, err := s.fields.FindByID(ctx, fieldID); err != nil {
		return nil, apperr.FromGorm(err, "field")
	}
	return s.r.ListByField(ctx, fieldID)
}

func (s *cropSvc) Update(ctx context.Context, id uuid.UUID, p service.CropPatch) (*entities.Crop, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.FieldID != nil && *p.FieldID != cur.FieldID {
		if err := s.requireField(ctx, *p.FieldID); err != nil {
			return nil, err
		}
		cur.FieldID = *p.FieldID
	}
	if p.VarietyID != nil && *p.VarietyID != cur.VarietyID {
		if err := s.requireVariety(ctx, *p.VarietyID); err != nil {
			return nil, err
		}
		cur.VarietyID = *p.VarietyID
	}
	if p.PlantedAt != nil {
		cur.PlantedAt = p.PlantedAt.UTC()
	}

	prev := cur.CurrentBloomStageID
	if p.CurrentBloomStageID != nil {
		if *p.CurrentBloomStageID == "" {
			cur.CurrentBloomStageID = nil
		} else {
			sid, err := uuid.Parse(*p.CurrentBloomStageID)
			if err != nil {
				return nil, apperr.Validationf("invalid current_bloom_stage_id")
			}
			cur.CurrentBloomStageID = &sid
		}
	}
	// Re-check on the merged state so a variety change cannot strand the stage.
	if cur.CurrentBloomStageID != nil {
		if _, err := s.stageOf(ctx, *cur.CurrentBloomStageID, cur.VarietyID); err != nil {
			return nil, err
		}
	}
	// Clearing the stage is not a transition; history only records stages entered.
	var tr *entities.StageTransition
	if next := cur.CurrentBloomStageID; next != nil && (prev == nil || *prev != *next) {
		tr = s.transition(cur.ID, prev, *next)
	}

	cur.Field, cur.Variety, cur.CurrentBloomStage = nil, nil, nil
	if err := s.r.Update(ctx, cur, tr); err != nil {
		return nil, apperr.FromGorm(err, "crop")
	}
	return s.Get(ctx, id)
}

func (s *cropSvc) Delete(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	if err := s.r.Delete(ctx, id); err != nil {
		return uuid.Nil, apperr.FromGorm(err, "crop")
	}
	return id, nil
}

func (s *cropSvc) AdvanceStage(ctx context.Context, id uuid.UUID, stageID *uuid.UUID) (*entities.Crop, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var next *entities.BloomStage
	if stageID != nil {
		if next, err = s.stageOf(ctx, *stageID, cur.VarietyID); err != nil {
			return nil, err
		}
	} else {
		after := 0
		if cur.CurrentBloomStage != nil {
			after = cur.CurrentBloomStage.Number
		}
		next, err = s.catalog.NextStage(ctx, cur.VarietyID, after)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if cur.CurrentBloomStageID == nil {
				return nil, apperr.Validationf("variety has no bloom stages")
			}
			return nil, apperr.Validationf("crop is already at the last bloom stage")
		}
		if err != nil {
			return nil, err
		}
	}
	if cur.CurrentBloomStageID != nil && *cur.CurrentBloomStageID == next.ID {
		return nil, apperr.Validationf("crop is already at stage %q", next.Name)
	}

	tr := s.transition(cur.ID, cur.CurrentBloomStageID, next.ID)
	cur.CurrentBloomStageID = &next.ID
	cur.Field, cur.Variety, cur.CurrentBloomStage = nil, nil, nil
	if err := s.r.Update(ctx, cur, tr); err != nil {
		return nil, apperr.FromGorm(err, "crop")
	}
	return s.Get(ctx, id)
}

func (s *cropSvc) History(ctx context.Context, id uuid.UUID) ([]entities.StageTransition, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.r.Transitions(ctx, id)
}
