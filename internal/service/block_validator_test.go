package service

import (
	"context"
	"testing"

	"cvos/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBlock(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	for _, name := range []string{"Back Squat", "Air Squat", "Pull-up"} {
		_, _, err := e.library.Ensure(ctx, ExerciseInput{Name: name, Category: domain.CategoryWeightlifting})
		require.NoError(t, err)
	}
	v := NewBlockValidator(e.store.Exercises())

	tests := []struct {
		name    string
		block   *domain.WorkoutBlock
		missing []string
	}{
		{
			name:    "nil block",
			block:   nil,
			missing: []string{"Bloque no encontrado"},
		},
		{
			name: "complete strength",
			block: &domain.WorkoutBlock{Type: domain.BlockStrengthLinear, Name: "back squat",
				Config: domain.BlockConfig{"sets": 4, "reps": "6", "rpe": 8, "rest": "2 min"}},
		},
		{
			name: "strength with rir zero counts as intensity",
			block: &domain.WorkoutBlock{Type: domain.BlockStrengthLinear, Name: "Back Squat",
				Config: domain.BlockConfig{"sets": "3", "reps": 8, "rir": 0, "rest": "90s"}},
		},
		{
			name:    "empty strength",
			block:   &domain.WorkoutBlock{Type: domain.BlockStrengthLinear, Config: domain.BlockConfig{}},
			missing: []string{FieldExerciseName, FieldSets, FieldReps, FieldIntensity, FieldRest},
		},
		{
			name: "strength outside the library",
			block: &domain.WorkoutBlock{Type: domain.BlockStrengthLinear, Name: "Zercher Squat",
				Config: domain.BlockConfig{"sets": 0, "reps": "5", "weight": "60kg", "rest": "2'"}},
			missing: []string{FieldLibraryExercise, FieldSets},
		},
		{
			name:    "free text needs content",
			block:   &domain.WorkoutBlock{Type: domain.BlockFreeText, Config: domain.BlockConfig{"content": "  "}},
			missing: []string{FieldContent},
		},
		{
			name:    "metcon without format or movements",
			block:   &domain.WorkoutBlock{Type: domain.BlockMetconStructured, Config: domain.BlockConfig{}},
			missing: []string{FieldFormat, FieldMovement},
		},
		{
			name: "metcon with a blank movement",
			block: &domain.WorkoutBlock{Type: domain.BlockMetconStructured, Format: "RFT",
				Config: domain.BlockConfig{"movements": []any{"10 Thrusters", map[string]any{"reps": 5}}}},
			missing: []string{FieldMovementNames},
		},
		{
			name: "metcon accepts custom movements",
			block: &domain.WorkoutBlock{Type: domain.BlockMetconStructured, Format: "RFT",
				Config: domain.BlockConfig{"movements": []any{"21-15-9 Thrusters"}}},
		},
		{
			name: "amrap needs minutes",
			block: &domain.WorkoutBlock{Type: domain.BlockMetconStructured, Format: "AMRAP",
				Config: domain.BlockConfig{"movements": []any{"Burpees"}}},
			missing: []string{FieldTimeCap},
		},
		{
			name: "warmup movements must be in the library",
			block: &domain.WorkoutBlock{Type: domain.BlockWarmup, Format: "NOT_FOR_TIME",
				Config: domain.BlockConfig{"movements": []any{"Air Squat", "Made-up Drill", "Another One"}}},
			missing: []string{FieldLibraryMovements},
		},
		{
			name: "accessory with library objects",
			block: &domain.WorkoutBlock{Type: domain.BlockAccessory, Format: "STANDARD",
				Config: domain.BlockConfig{"movements": []any{map[string]any{"name": "pull-up"}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateBlock(ctx, tt.block)
			require.NoError(t, err)
			if tt.missing == nil {
				assert.True(t, res.Valid, "missing: %v", res.MissingFields)
				assert.Empty(t, res.MissingFields)
				return
			}
			assert.False(t, res.Valid)
			assert.Equal(t, tt.missing, res.MissingFields)
		})
	}
}
