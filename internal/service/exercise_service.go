package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("an exercise with this name already exists")
)

const searchLimit = 10

// ExerciseInput is the editable part of a library exercise.
type ExerciseInput struct {
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	Subcategory         string   `json:"subcategory"`
	ModalitySuitability []string `json:"modalitySuitability"`
	Equipment           []string `json:"equipment"`
	Aliases             []string `json:"aliases"`
	Description         string   `json:"description"`
	VideoURL            string   `json:"videoUrl"`
}

type ExerciseService interface {
	// Search matches a substring of the name or any alias, at most 10 results.
	Search(ctx context.Context, query string) ([]domain.Exercise, error)
	List(ctx context.Context, category string) ([]domain.Exercise, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	Create(ctx context.Context, in ExerciseInput) (*domain.Exercise, error)
	Update(ctx context.Context, id primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Ensure finds the exercise by name, then by alias, creating it when
	// missing. New aliases are merged into the stored ones.
	Ensure(ctx context.Context, in ExerciseInput) (ex *domain.Exercise, created bool, err error)
	// Resolve matches a name or alias exactly, ignoring case.
	Resolve(ctx context.Context, name string) (*domain.Exercise, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

func (s *exerciseService) Search(ctx context.Context, query string) ([]domain.Exercise, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Exercise{}, nil
	}
	return s.exerciseRepo.Search(ctx, query, searchLimit)
}

func (s *exerciseService) List(ctx context.Context, category string) ([]domain.Exercise, error) {
	return s.exerciseRepo.List(ctx, category)
}

func (s *exerciseService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	return notFoundAs(s.exerciseRepo.GetByID(ctx, id))
}

func notFoundAs(e *domain.Exercise, err error) (*domain.Exercise, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return e, nil
}

func (in ExerciseInput) apply(e *domain.Exercise) {
	e.Name = strings.TrimSpace(in.Name)
	e.Category = strings.TrimSpace(in.Category)
	e.Subcategory = strings.TrimSpace(in.Subcategory)
	e.ModalitySuitability = cleanList(in.ModalitySuitability)
	e.Equipment = cleanList(in.Equipment)
	e.Aliases = mergeAliases(nil, e.Name, in.Aliases)
	e.Description = in.Description
	e.VideoURL = strings.TrimSpace(in.VideoURL)
}

func (s *exerciseService) Create(ctx context.Context, in ExerciseInput) (*domain.Exercise, error) {
	if blank(in.Name) || blank(in.Category) {
		return nil, invalid("exercise name and category are required")
	}
	e := &domain.Exercise{}
	in.apply(e)
	if _, err := s.exerciseRepo.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseExists
		}
		return nil, err
	}
	return e, nil
}

func (s *exerciseService) Update(ctx context.Context, id primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if blank(in.Name) || blank(in.Category) {
		return nil, invalid("exercise name and category are required")
	}
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(e)
	if err = s.exerciseRepo.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseExists
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *exerciseService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

func (s *exerciseService) lookup(ctx context.Context, name string) (*domain.Exercise, error) {
	e, err := s.exerciseRepo.GetByName(ctx, name)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return s.exerciseRepo.GetByAlias(ctx, name)
}

func (s *exerciseService) Ensure(ctx context.Context, in ExerciseInput) (*domain.Exercise, bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, invalid("exercise name is required")
	}

	e, err := s.lookup(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		if blank(in.Category) {
			in.Category = domain.CategoryFunctionalBodybuilding
		}
		e, err = s.Create(ctx, in)
		return e, err == nil, err
	}
	if err != nil {
		return nil, false, err
	}

	merged := mergeAliases(e.Aliases, e.Name, in.Aliases)
	if slices.Equal(merged, e.Aliases) {
		return e, false, nil
	}
	e.Aliases = merged
	if err = s.exerciseRepo.Update(ctx, e); err != nil {
		return nil, false, err
	}
	return e, false, nil
}

func (s *exerciseService) Resolve(ctx context.Context, name string) (*domain.Exercise, error) {
	if blank(name) {
		return nil, ErrExerciseNotFound
	}
	return notFoundAs(s.lookup(ctx, strings.TrimSpace(name)))
}

// mergeAliases appends the new aliases missing from existing (case-insensitive),
// keeping order and skipping the exercise's own name.
func mergeAliases(existing []string, name string, add []string) []string {
	seen := map[string]bool{domain.NormalizeName(name): true}
	out := make([]string, 0, len(existing)+len(add))
	for _, list := range [][]string{existing, add} {
		for _, a := range list {
			a = strings.TrimSpace(a)
			key := domain.NormalizeName(a)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, a)
		}
	}
	return out
}
