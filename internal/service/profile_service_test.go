package service

import (
	"context"
	"testing"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMe(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.profile(t, "athlete@example.com", domain.RoleAthlete)

	updated, err := e.profiles.UpdateMe(ctx, p.ID, ProfileUpdate{
		FullName:      ptr(" Lucía "),
		Height:        ptr(165),
		TrainingPlace: ptr("home"),
		EquipmentList: ptr([]string{"Dumbbells"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lucía", updated.FullName)
	assert.Equal(t, 165, updated.Height)
	assert.Equal(t, []string{"Dumbbells"}, updated.EquipmentList)

	updated, err = e.profiles.UpdateMe(ctx, p.ID, ProfileUpdate{TrainingPlace: ptr("gym")})
	require.NoError(t, err)
	assert.Empty(t, updated.EquipmentList)

	_, err = e.profiles.UpdateMe(ctx, p.ID, ProfileUpdate{MainGoal: ptr("bulk")})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = e.profiles.UpdateMe(ctx, p.ID, ProfileUpdate{Weight: ptr(70.2)})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestAvatarURL(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.profiles.AvatarURL(ctx, &domain.Profile{})
	require.NoError(t, err)
	assert.Empty(t, u)

	u, err = e.profiles.AvatarURL(ctx, &domain.Profile{AvatarKey: "avatars/1/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/get/avatars/1/a.png", u)
}

func TestAvatarURLWithoutStorage(t *testing.T) {
	e := newEnv(t)
	profiles := NewProfileService(e.store.Profiles(), e.roles, storage.Disabled{})

	u, err := profiles.AvatarURL(context.Background(), &domain.Profile{AvatarKey: "avatars/1/a.png"})
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestUpdateMeAvatar(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.profile(t, "athlete@example.com", domain.RoleAthlete)

	_, err := e.profiles.UpdateMe(ctx, p.ID, ProfileUpdate{AvatarKey: ptr("avatars/someone-else/x.png")})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = e.profiles.UpdateMe(ctx, p.ID, ProfileUpdate{AvatarKey: ptr("avatars/" + p.ID.Hex() + "/missing.png")})
	assert.ErrorIs(t, err, ErrValidationFailed)

	first, err := e.onboard.AvatarUploadURL(ctx, p.ID, "image/png", "one.png")
	require.NoError(t, err)
	updated, err := e.profiles.UpdateMe(ctx, p.ID, ProfileUpdate{AvatarKey: ptr(first.ObjectKey)})
	require.NoError(t, err)
	assert.Equal(t, first.ObjectKey, updated.AvatarKey)
	assert.Empty(t, e.files.deleted)

	second, err := e.onboard.AvatarUploadURL(ctx, p.ID, "image/jpeg", "two.jpg")
	require.NoError(t, err)
	updated, err = e.profiles.UpdateMe(ctx, p.ID, ProfileUpdate{AvatarKey: ptr(second.ObjectKey)})
	require.NoError(t, err)
	assert.Equal(t, second.ObjectKey, updated.AvatarKey)
	assert.Equal(t, []string{first.ObjectKey}, e.files.deleted)

	updated, err = e.profiles.UpdateMe(ctx, p.ID, ProfileUpdate{AvatarKey: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, updated.AvatarKey)
	assert.Equal(t, []string{first.ObjectKey, second.ObjectKey}, e.files.deleted)

	stored, err := e.store.Profiles().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.AvatarKey)
}

func TestUpdateRoleInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.profile(t, "user@example.com", domain.RoleCoach)

	role, err := e.roles.Role(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleCoach, role)

	_, err = e.profiles.UpdateRole(ctx, p.ID, domain.RoleAthlete)
	require.NoError(t, err)

	role, err = e.roles.Role(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAthlete, role)

	_, err = e.profiles.UpdateRole(ctx, p.ID, domain.Role("owner"))
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUpdateRoleCompletesOnboarding(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.profile(t, "new@example.com", domain.RoleNone)

	updated, err := e.profiles.UpdateRole(ctx, p.ID, domain.RoleCoach)
	require.NoError(t, err)
	assert.True(t, updated.OnboardingCompleted)
}

func TestListProfilesAndCoaches(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	zoe := e.profile(t, "zoe@example.com", domain.RoleCoach)
	zoe.FullName = "Zoe"
	require.NoError(t, e.store.Profiles().Update(ctx, zoe))
	e.profile(t, "boss@example.com", domain.RoleAdmin)
	e.profile(t, "athlete@example.com", domain.RoleAthlete)

	found, err := e.profiles.ListProfiles(ctx, "ZOE")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, zoe.ID, found[0].ID)

	coaches, err := e.profiles.ListCoaches(ctx)
	require.NoError(t, err)
	require.Len(t, coaches, 2)
	assert.Equal(t, "boss@example.com", coaches[0].FullName)
	assert.Equal(t, "Admin / Entrenador", coaches[0].BusinessName)
	assert.Equal(t, "Zoe", coaches[1].FullName)
	assert.Empty(t, coaches[1].BusinessName)
}
