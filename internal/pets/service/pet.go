package service

import (
	"context"
	"errors"
	petserrors "pawcare/internal/pets/errors"
	"pawcare/internal/pets/repository"
	"pawcare/internal/pets/validator"
	"pawcare/pkg/config"
	apperrors "pawcare/pkg/errors"
	"pawcare/pkg/model"
	"pawcare/pkg/sanitizer"
	"sync"
)

type PetService interface {
	Create(ctx context.Context, ownerID string, pet *model.Pet) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Pet, error)
	List(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Pet, int64, error)
	Update(ctx context.Context, ownerID, id string, updates *model.PetUpdate) (*model.Pet, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type petService struct {
	repo      repository.PetRepository
	validator *validator.PetValidator
	cfg       *config.Config
}

func NewPetService(
	repo repository.PetRepository,
	validator *validator.PetValidator,
	cfg *config.Config,
) PetService {
	return &petService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *petService) Create(ctx context.Context, ownerID string, pet *model.Pet) error {
	if pet == nil {
		return apperrors.InvalidInput("Request body cannot be empty")
	}
	pet.ID = ""
	pet.OwnerID = ownerID
	s.sanitize(pet)

	if err := s.validator.Validate(pet); err != nil {
		s.cfg.Log.Warn("Pet validation failed",
			"owner_id", ownerID,
			"name", pet.Name,
			"error", err,
		)
		return validationError(err)
	}

	if err := s.repo.Create(ctx, pet); err != nil {
		s.cfg.Log.Error("Failed to create pet", "owner_id", ownerID, "error", err)
		return apperrors.Internal("Failed to create pet", err)
	}

	s.cfg.Log.Info("Pet created",
		"id", pet.ID,
		"owner_id", pet.OwnerID,
		"species", pet.Species,
	)
	return nil
}

func (s *petService) GetByID(ctx context.Context, ownerID, id string) (*model.Pet, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Pet ID cannot be empty")
	}

	pet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve pet")
	}
	if pet.OwnerID != ownerID {
		return nil, apperrors.NotFoundWithID("Pet", id)
	}
	return pet, nil
}

func (s *petService) List(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Pet, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var pets []*model.Pet
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByOwner(ctx, ownerID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count pets", "owner_id", ownerID, "error", errCount)
			errCount = apperrors.Internal("Failed to count pets", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		pets, errFind = s.repo.FindByOwner(ctx, ownerID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list pets",
				"owner_id", ownerID,
				"limit", limit,
				"offset", offset,
				"error", errFind,
			)
			errFind = apperrors.Internal("Failed to retrieve pets", errFind)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if pets == nil {
		pets = []*model.Pet{}
	}

	return pets, count, nil
}

func (s *petService) Update(ctx context.Context, ownerID, id string, updates *model.PetUpdate) (*model.Pet, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Pet ID cannot be empty")
	}
	if updates == nil || isEmptyUpdate(updates) {
		return nil, apperrors.InvalidInput("No fields to update")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, validationError(err)
	}

	pet, err := s.repo.Update(ctx, id, ownerID, updates)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to update pet")
	}

	s.cfg.Log.Info("Pet updated", "id", id, "owner_id", ownerID)
	return pet, nil
}

func (s *petService) Delete(ctx context.Context, ownerID, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Pet ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return s.mapError(err, id, "Failed to delete pet")
	}

	s.cfg.Log.Info("Pet deleted", "id", id, "owner_id", ownerID)
	return nil
}

func (s *petService) mapError(err error, id, message string) error {
	if errors.Is(err, petserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Pet", id)
	}
	if errors.Is(err, petserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid pet ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *petService) sanitize(pet *model.Pet) {
	pet.Name = sanitizer.NormalizeName(pet.Name)
	pet.Species = sanitizer.NormalizeLabel(pet.Species)
	pet.Breed = sanitizer.NormalizeLabel(pet.Breed)
	pet.Notes = sanitizer.SanitizeNotes(pet.Notes)
}

func (s *petService) sanitizeUpdate(updates *model.PetUpdate) {
	updates.Name = sanitizer.NormalizeName(updates.Name)
	updates.Species = sanitizer.NormalizeLabel(updates.Species)
	updates.Breed = sanitizer.NormalizeLabel(updates.Breed)
	updates.Notes = sanitizer.SanitizeOptionalNotes(updates.Notes)
}

func isEmptyUpdate(u *model.PetUpdate) bool {
	return u.Name == "" && u.Species == "" && u.Breed == "" &&
		u.BirthDate == nil && u.WeightKg == nil && u.Notes == nil
}

func validationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apperrors.Validation("Pet validation failed", validationErrs.Details())
	}
	return apperrors.Validation(err.Error(), nil)
}
