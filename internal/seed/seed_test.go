package seed

import (
	"context"
	"testing"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/methodology"
	"cvos/coach-app/internal/repository/memory"
	"cvos/coach-app/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newServices() (service.ExerciseService, service.ProgramService) {
	store := memory.NewStore()
	programs := service.NewProgramService(service.ProgramRepositories{
		Programs:   store.Programs(),
		Mesocycles: store.Mesocycles(),
		Days:       store.Days(),
		Blocks:     store.WorkoutBlocks(),
		Clients:    store.Clients(),
		Profiles:   store.Profiles(),
		Exercises:  store.Exercises(),
	}, methodology.Default())
	return service.NewExerciseService(store.Exercises()), programs
}

func TestLoadExercises(t *testing.T) {
	items, err := LoadExercises([]byte("- name: Thruster\n  category: Weightlifting\n  aliases: [Thrusters]\n"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"Thrusters"}, items[0].Aliases)

	_, err = LoadExercises([]byte("- category: Gymnastics\n"))
	assert.Error(t, err)

	_, err = LoadExercises([]byte("{not a list"))
	assert.Error(t, err)
}

func TestDefaultExercises(t *testing.T) {
	items, err := DefaultExercises()
	require.NoError(t, err)
	assert.Len(t, items, 41)
	assert.Equal(t, "Hip Thrust", items[0].Name)
}

func TestSeedExercisesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	library, _ := newServices()
	items, err := DefaultExercises()
	require.NoError(t, err)

	first, err := SeedExercises(ctx, library, items, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ExerciseReport{Created: 41}, first)

	second, err := SeedExercises(ctx, library, items, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ExerciseReport{Existing: 41}, second)

	ex, err := library.Resolve(ctx, "Sentadilla Trasera")
	require.NoError(t, err)
	assert.Equal(t, "Back Squat", ex.Name)
}

func TestSeedAntopanti(t *testing.T) {
	ctx := context.Background()
	library, programs := newServices()
	items, err := DefaultExercises()
	require.NoError(t, err)
	_, err = SeedExercises(ctx, library, items, zap.NewNop())
	require.NoError(t, err)

	opts := AntopantiOptions{CoachID: primitive.NewObjectID(), StartDate: "2026-01-05"}
	tree, err := SeedAntopanti(ctx, programs, opts, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, AntopantiName, tree.Name)
	assert.Equal(t, domain.ProgramActive, tree.Status)
	require.Len(t, tree.Mesocycles, 4)
	assert.Equal(t, domain.LabelDeload, tree.Mesocycles[3].Focus)

	week1 := tree.Mesocycles[0]
	require.Len(t, week1.Days, 7)
	assert.Equal(t, "Glúteo & Pierna (Fuerza)", week1.Days[0].Notes)
	assert.False(t, week1.Days[0].IsRestDay)
	assert.True(t, week1.Days[4].IsRestDay)
	assert.Empty(t, week1.Days[6].Blocks)

	hip := week1.Days[0].Blocks[1]
	assert.Equal(t, "Hip Thrust", hip.Name)
	assert.Equal(t, "75 kg", hip.Config.String("weight"))
	hip4 := tree.Mesocycles[3].Days[0].Blocks[1]
	assert.Equal(t, "90 kg", hip4.Config.String("weight"))

	pull4 := tree.Mesocycles[3].Days[1].Blocks[1]
	assert.Equal(t, "Pull-Up", pull4.Name)
	assert.Equal(t, "1 (intento)", pull4.Config.String("reps"))

	check, err := programs.ValidateProgram(ctx, tree.ID)
	require.NoError(t, err)
	assert.True(t, check.Valid, "issues: %+v", check.Issues)
}

func TestSeedAntopantiReplacesPreviousCopy(t *testing.T) {
	ctx := context.Background()
	library, programs := newServices()
	items, err := DefaultExercises()
	require.NoError(t, err)
	_, err = SeedExercises(ctx, library, items, zap.NewNop())
	require.NoError(t, err)

	opts := AntopantiOptions{CoachID: primitive.NewObjectID()}
	first, err := SeedAntopanti(ctx, programs, opts, zap.NewNop())
	require.NoError(t, err)
	second, err := SeedAntopanti(ctx, programs, opts, zap.NewNop())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	all, err := programs.List(ctx, service.ProgramListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, second.ID, all[0].ID)

	_, err = programs.GetTree(ctx, first.ID)
	assert.ErrorIs(t, err, service.ErrProgramNotFound)
}
