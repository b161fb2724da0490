package serviceImp

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"agrisense/entities"
	"agrisense/pkg/apperr"
	"agrisense/pkg/catalog/repository"
	"agrisense/pkg/catalog/service"
)

type catalogSvc struct{ r repository.CatalogRepository }

func NewCatalogService(r repository.CatalogRepository) service.CatalogService { return &catalogSvc{r} }

// validateStages checks names, positive numbers and that numbers are unique
// within the batch and against taken.
func validateStages(in []service.StageInput, taken map[int]bool) error {
	seen := map[int]bool{}
	for _, st := range in {
		if strings.TrimSpace(st.Name) == "" {
			return apperr.Validationf("stage name is required")
		}
		if st.Number < 1 {
			return apperr.Validationf("stage %q: number must be >= 1", st.Name)
		}
		if seen[st.Number] || taken[st.Number] {
			return apperr.Conflictf("stage number %d already used in this variety", st.Number)
		}
		seen[st.Number] = true
	}
	return nil
}

func toStages(varietyID uuid.UUID, in []service.StageInput) []entities.BloomStage {
	out := make([]entities.BloomStage, 0, len(in))
	for _, st := range in {
		out = append(out, entities.BloomStage{
			ID:         uuid.New(),
			VarietyID:  varietyID,
			Number:     st.Number,
			Name:       strings.TrimSpace(st.Name),
			CritTemp10: st.CritTemp10,
			CritTemp90: st.CritTemp90,
		})
	}
	return out
}

func buildVariety(speciesID uuid.UUID, in service.VarietyInput) (entities.Variety, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entities.Variety{}, apperr.Validationf("variety name is required")
	}
	if err := validateStages(in.Stages, nil); err != nil {
		return entities.Variety{}, err
	}
	v := entities.Variety{ID: uuid.New(), SpeciesID: speciesID, Name: name}
	v.BloomStages = toStages(v.ID, in.Stages)
	return v, nil
}

func (s *catalogSvc) CreateSpecies(ctx context.Context, in service.SpeciesInput) (*entities.Species, error) {
	name := strings.TrimSpace(in.CommonName)
	if name == "" {
		return nil, apperr.Validationf("common_name is required")
	}
	sp := &entities.Species{ID: uuid.New(), CommonName: name, ScientificName: strings.TrimSpace(in.ScientificName)}
	for _, vin := range in.Varieties {
		v, err := buildVariety(sp.ID, vin)
		if err != nil {
			return nil, err
		}
		sp.Varieties = append(sp.Varieties, v)
	}
	if err := s.r.CreateSpecies(ctx, sp); err != nil {
		return nil, apperr.FromGorm(err, "species")
	}
	return s.GetSpecies(ctx, sp.ID)
}

func (s *catalogSvc) ListSpecies(ctx context.Context) ([]entities.Species, error) {
	return s.r.ListSpecies(ctx)
}

func (s *catalogSvc) GetSpecies(ctx context.Context, id uuid.UUID) (*entities.Species, error) {
	sp, err := s.r.FindSpecies(ctx, id)
	if err != nil {
		return nil, apperr.FromGorm(err, "species")
	}
	return sp, nil
}

// DeleteSpecies cascades to varieties and stages but refuses while crops use any of them.
func (s *catalogSvc) DeleteSpecies(ctx context.Context, id uuid.UUID) error {
	sp, err := s.GetSpecies(ctx, id)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(sp.Varieties))
	for _, v := range sp.Varieties {
		ids = append(ids, v.ID)
	}
	if err := s.refuseIfPlanted(ctx, ids...); err != nil {
		return err
	}
	return apperr.FromGorm(s.r.DeleteSpecies(ctx, id), "species")
}

func (s *catalogSvc) refuseIfPlanted(ctx context.Context, varietyIDs ...uuid.UUID) error {
	n, err := s.r.CountCrops(ctx, varietyIDs...)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflictf("%d crop(s) still planted with this variety", n)
	}
	return nil
}

func (s *catalogSvc) AddVariety(ctx context.Context, speciesID uuid.UUID, in service.VarietyInput) (*entities.Variety, error) {
	v, err := buildVariety(speciesID, in)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetSpecies(ctx, speciesID); err != nil {
		return nil, err
	}
	if err := s.r.CreateVariety(ctx, &v); err != nil {
		return nil, apperr.FromGorm(err, "variety")
	}
	return s.GetVariety(ctx, v.ID)
}

func (s *catalogSvc) GetVariety(ctx context.Context, id uuid.UUID) (*entities.Variety, error) {
	v, err := s.r.FindVariety(ctx, id)
	if err != nil {
		return nil, apperr.FromGorm(err, "variety")
	}
	return v, nil
}

func (s *catalogSvc) DeleteVariety(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetVariety(ctx, id); err != nil {
		return err
	}
	if err := s.refuseIfPlanted(ctx, id); err != nil {
		return err
	}
	return apperr.FromGorm(s.r.DeleteVariety(ctx, id), "variety")
}

func (s *catalogSvc) AddStages(ctx context.Context, varietyID uuid.UUID, in []service.StageInput) ([]entities.BloomStage, error) {
	if len(in) == 0 {
		return nil, apperr.Validationf("at least one stage is required")
	}
	if err := validateStages(in, nil); err != nil {
		return nil, err
	}
	existing, err := s.ListStages(ctx, varietyID)
	if err != nil {
		return nil, err
	}
	taken := make(map[int]bool, len(existing))
	for _, b := range existing {
		taken[b.Number] = true
	}
	if err := validateStages(in, taken); err != nil {
		return nil, err
	}
	if err := s.r.CreateStages(ctx, toStages(varietyID, in)); err != nil {
		return nil, apperr.FromGorm(err, "bloom stage")
	}
	return s.r.ListStages(ctx, varietyID)
}

// ListStages returns the variety's stages in ascending stage number.
func (s *catalogSvc) ListStages(ctx context.Context, varietyID uuid.UUID) ([]entities.BloomStage, error) {
	if _, err := s.r.FindVariety(ctx, varietyID); err != nil {
		return nil, apperr.FromGorm(err, "variety")
	}
	return s.r.ListStages(ctx, varietyID)
}
