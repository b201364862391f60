package service

import (
	"context"
	"errors"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"
)

// Missing-field labels, as shown to coaches.
const (
	FieldExerciseName     = "Nombre del Ejercicio"
	FieldLibraryExercise  = "Ejercicio Válido (Seleccionar de lista)"
	FieldSets             = "Series"
	FieldReps             = "Repeticiones"
	FieldIntensity        = "Intensidad (Peso, %, RPE o RIR)"
	FieldRest             = "Descanso"
	FieldContent          = "Contenido"
	FieldFormat           = "Metodología (Formato)"
	FieldMovement         = "Al menos 1 movimiento"
	FieldMovementNames    = "Movimientos válidos (nombres no vacíos)"
	FieldLibraryMovements = "Todos los ejercicios deben ser de la biblioteca"
	FieldTimeCap          = "Time Cap (Minutos)"
)

// BlockValidation is the completeness verdict for one block.
type BlockValidation struct {
	Valid         bool     `json:"valid"`
	MissingFields []string `json:"missingFields"`
}

// BlockIssue locates an incomplete block inside a program.
type BlockIssue struct {
	WeekNumber    int      `json:"weekNumber"`
	DayNumber     int      `json:"dayNumber"`
	BlockName     string   `json:"blockName"`
	OrderIndex    int      `json:"orderIndex"`
	MissingFields []string `json:"missingFields"`
}

// BlockValidator checks that a block carries everything needed to be coached.
type BlockValidator struct {
	exercises repository.ExerciseRepository
}

func NewBlockValidator(exercises repository.ExerciseRepository) *BlockValidator {
	return &BlockValidator{exercises: exercises}
}

func (v *BlockValidator) inLibrary(ctx context.Context, name string) (bool, error) {
	_, err := v.exercises.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		_, err = v.exercises.GetByAlias(ctx, name)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (v *BlockValidator) ValidateBlock(ctx context.Context, b *domain.WorkoutBlock) (BlockValidation, error) {
	if b == nil {
		return BlockValidation{MissingFields: []string{"Bloque no encontrado"}}, nil
	}
	cfg := b.Config
	missing := []string{}

	switch {
	case b.Type == domain.BlockStrengthLinear:
		if blank(b.Name) {
			missing = append(missing, FieldExerciseName)
		} else {
			ok, err := v.inLibrary(ctx, b.Name)
			if err != nil {
				return BlockValidation{}, err
			}
			if !ok {
				missing = append(missing, FieldLibraryExercise)
			}
		}
		if sets, ok := cfg.Float("sets"); !ok || sets <= 0 {
			missing = append(missing, FieldSets)
		}
		if !cfg.Has("reps") {
			missing = append(missing, FieldReps)
		}
		if !hasIntensity(cfg) {
			missing = append(missing, FieldIntensity)
		}
		if !cfg.Has("rest") {
			missing = append(missing, FieldRest)
		}

	case b.Type == domain.BlockFreeText:
		if !cfg.Has("content") {
			missing = append(missing, FieldContent)
		}

	case b.Type.Structured():
		if blank(b.Format) {
			missing = append(missing, FieldFormat)
		}
		movements := cfg.Movements()
		switch {
		case len(movements) == 0:
			missing = append(missing, FieldMovement)
		case hasBlank(movements):
			missing = append(missing, FieldMovementNames)
		case b.Type == domain.BlockWarmup || b.Type == domain.BlockAccessory:
			for _, m := range movements {
				ok, err := v.inLibrary(ctx, m)
				if err != nil {
					return BlockValidation{}, err
				}
				if !ok {
					missing = append(missing, FieldLibraryMovements)
					break
				}
			}
		}
		if b.Format == domain.FormatAMRAP {
			if minutes, ok := cfg.Float("minutes"); !ok || minutes <= 0 {
				missing = append(missing, FieldTimeCap)
			}
		}
	}

	return BlockValidation{Valid: len(missing) == 0, MissingFields: missing}, nil
}

// hasIntensity accepts weight, a positive percentage or RPE, or any RIR.
func hasIntensity(cfg domain.BlockConfig) bool {
	if cfg.Has("weight") {
		return true
	}
	if pct, ok := cfg.Float("percentage"); ok && pct > 0 {
		return true
	}
	if rpe, ok := cfg.Float("rpe"); ok && rpe > 0 {
		return true
	}
	return cfg.Has("rir")
}

func hasBlank(items []string) bool {
	for _, it := range items {
		if it == "" {
			return true
		}
	}
	return false
}
