package memory

import (
	"context"
	"testing"
	"time"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Profiles()

	_, err := repo.Create(ctx, &domain.Profile{Email: " Ana@Example.com ", FullName: "Ana", PasswordHash: "x", Role: domain.RoleCoach})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Profile{Email: "ana@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = repo.Create(ctx, &domain.Profile{Email: "bruno@example.com", FullName: "Bruno", PasswordHash: "x", Role: domain.RoleAthlete})
	require.NoError(t, err)

	got, err := repo.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FullName)

	list, err := repo.List(ctx, repository.ProfileFilter{Search: "BRU"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bruno", list[0].FullName)

	list, err = repo.List(ctx, repository.ProfileFilter{Roles: []domain.Role{domain.RoleCoach, domain.RoleAdmin}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].FullName)

	_, err = repo.GetByResetToken(ctx, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClientsAndPrograms(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	clients, programs := store.Clients(), store.Programs()

	zoe := &domain.Client{Type: domain.ClientAthlete, Name: "Zoe"}
	_, err := clients.Create(ctx, zoe)
	require.NoError(t, err)
	_, err = clients.Create(ctx, &domain.Client{Type: domain.ClientAthlete, Name: "Adam"})
	require.NoError(t, err)
	_, err = clients.Create(ctx, &domain.Client{Type: domain.ClientGym, Name: "Box"})
	require.NoError(t, err)

	athletes, err := clients.List(ctx, repository.ClientFilter{Type: domain.ClientAthlete})
	require.NoError(t, err)
	require.Len(t, athletes, 2)
	assert.Equal(t, "Adam", athletes[0].Name)

	n, err := clients.Count(ctx, repository.ClientFilter{Type: domain.ClientGym})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	coach := primitive.NewObjectID()
	past := time.Now().Add(-48 * time.Hour)
	p := &domain.Program{CoachID: coach, ClientID: &zoe.ID, Name: "Block", Status: domain.ProgramActive,
		Attributes: domain.ProgramAttributes{EndDate: &past}}
	_, err = programs.Create(ctx, p)
	require.NoError(t, err)

	cutoff := time.Now()
	expired, err := programs.List(ctx, repository.ProgramFilter{Status: domain.ProgramActive, EndsBefore: &cutoff})
	require.NoError(t, err)
	assert.Len(t, expired, 1)

	require.NoError(t, programs.DetachClient(ctx, zoe.ID))
	got, err := programs.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ClientID)

	assert.ErrorIs(t, programs.Delete(ctx, primitive.NewObjectID()), repository.ErrNotFound)
}

func TestExercises(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Exercises()

	_, err := repo.Create(ctx, &domain.Exercise{Name: "Back Squat", Aliases: []string{"Sentadilla"}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Exercise{Name: "back squat"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	_, err = repo.Create(ctx, &domain.Exercise{Name: "Front Squat"})
	require.NoError(t, err)

	e, err := repo.GetByAlias(ctx, "SENTADILLA")
	require.NoError(t, err)
	assert.Equal(t, "Back Squat", e.Name)

	hits, err := repo.Search(ctx, "squat", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Back Squat", hits[0].Name)

	hits, err = repo.Search(ctx, "tadil", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestBlocksOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().WorkoutBlocks()
	day := primitive.NewObjectID()

	require.NoError(t, repo.CreateMany(ctx, []*domain.WorkoutBlock{
		{DayID: day, OrderIndex: 2, Type: domain.BlockFreeText},
		{DayID: day, OrderIndex: 0, Type: domain.BlockWarmup},
		{DayID: day, OrderIndex: 1, Type: domain.BlockStrengthLinear},
	}))

	blocks, err := repo.ListByDays(ctx, []primitive.ObjectID{day})
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, domain.BlockWarmup, blocks[0].Type)
	assert.Equal(t, domain.BlockFreeText, blocks[2].Type)

	require.NoError(t, repo.DeleteByDays(ctx, []primitive.ObjectID{day}))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
