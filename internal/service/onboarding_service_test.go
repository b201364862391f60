package service

import (
	"context"
	"testing"

	"cvos/coach-app/internal/access"
	"cvos/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectRole(t *testing.T) {
	ctx := context.Background()

	t.Run("coach finishes immediately", func(t *testing.T) {
		e := newEnv(t)
		p := e.profile(t, "coach@example.com", domain.RoleNone)

		res, err := e.onboard.SelectRole(ctx, p.ID, domain.RoleCoach)
		require.NoError(t, err)
		assert.True(t, res.Completed)
		assert.Equal(t, access.PathHome, res.Redirect)

		role, err := e.roles.Role(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCoach, role)

		_, err = e.onboard.SelectRole(ctx, p.ID, domain.RoleAthlete)
		assert.ErrorIs(t, err, ErrRoleAlreadySelected)
	})

	t.Run("athlete starts the questionnaire", func(t *testing.T) {
		e := newEnv(t)
		p := e.profile(t, "athlete@example.com", domain.RoleNone)

		res, err := e.onboard.SelectRole(ctx, p.ID, domain.RoleAthlete)
		require.NoError(t, err)
		assert.False(t, res.Completed)
		assert.Equal(t, domain.StepBirthDate, res.Step)

		state, err := e.onboard.State(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAthlete, state.Role)
		assert.Zero(t, state.Progress)
		assert.Equal(t, 170, state.Defaults.Height)
	})

	t.Run("admin cannot be self-selected", func(t *testing.T) {
		e := newEnv(t)
		p := e.profile(t, "x@example.com", domain.RoleNone)
		_, err := e.onboard.SelectRole(ctx, p.ID, domain.RoleAdmin)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestAthleteWizard(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.profile(t, "athlete@example.com", domain.RoleNone)
	_, err := e.onboard.SelectRole(ctx, p.ID, domain.RoleAthlete)
	require.NoError(t, err)

	submit := func(step int, in OnboardingInput) *StepResult {
		t.Helper()
		res, err := e.onboard.SubmitStep(ctx, p.ID, step, in)
		require.NoError(t, err, "step %d", step)
		return res
	}

	_, err = e.onboard.SubmitStep(ctx, p.ID, domain.StepHeight, OnboardingInput{Height: ptr(180)})
	assert.ErrorIs(t, err, ErrOnboardingStepMismatch)

	_, err = e.onboard.SubmitStep(ctx, p.ID, domain.StepBirthDate, OnboardingInput{BirthDate: "2990-01-01"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	assert.Equal(t, domain.StepHeight, submit(domain.StepBirthDate, OnboardingInput{BirthDate: "1992-04-17"}).Step)

	_, err = e.onboard.SubmitStep(ctx, p.ID, domain.StepHeight, OnboardingInput{Height: ptr(250)})
	assert.ErrorIs(t, err, ErrValidationFailed)
	submit(domain.StepHeight, OnboardingInput{Height: ptr(181)})

	_, err = e.onboard.SubmitStep(ctx, p.ID, domain.StepWeight, OnboardingInput{Weight: ptr(80.3)})
	assert.ErrorIs(t, err, ErrValidationFailed)
	submit(domain.StepWeight, OnboardingInput{Weight: ptr(80.5)})

	submit(domain.StepGoal, OnboardingInput{MainGoal: "performance"})

	// Not training at home: the equipment step is skipped.
	res := submit(domain.StepPlace, OnboardingInput{TrainingPlace: "crossfit"})
	assert.Equal(t, domain.StepAvailability, res.Step)

	back, err := e.onboard.Back(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPlace, back.Step)

	res = submit(domain.StepPlace, OnboardingInput{TrainingPlace: "home"})
	assert.Equal(t, domain.StepEquipment, res.Step)
	submit(domain.StepEquipment, OnboardingInput{EquipmentList: []string{" Kettlebell ", "", "Bands"}})

	_, err = e.onboard.SubmitStep(ctx, p.ID, domain.StepAvailability, OnboardingInput{DaysPerWeek: ptr(4), MinutesPerSession: ptr(50)})
	assert.ErrorIs(t, err, ErrValidationFailed)
	submit(domain.StepAvailability, OnboardingInput{DaysPerWeek: ptr(4), MinutesPerSession: ptr(60)})
	submit(domain.StepExperience, OnboardingInput{ExperienceLevel: "intermediate"})
	submit(domain.StepDetails, OnboardingInput{Injuries: " rodilla ", TrainingPreferences: "mañanas"})

	state, err := e.onboard.State(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepWhatsApp, state.Step)
	assert.InDelta(t, 0.9, state.Progress, 1e-9)

	_, err = e.onboard.SubmitStep(ctx, p.ID, domain.StepWhatsApp, OnboardingInput{WhatsAppNumber: "call me"})
	assert.ErrorIs(t, err, ErrValidationFailed)
	submit(domain.StepWhatsApp, OnboardingInput{WhatsAppNumber: "+54 9 11 5555-1234"})

	_, err = e.onboard.SubmitStep(ctx, p.ID, domain.StepAvatar, OnboardingInput{AvatarKey: "avatars/someone-else/x.png"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = e.onboard.SubmitStep(ctx, p.ID, domain.StepAvatar, OnboardingInput{AvatarKey: "avatars/" + p.ID.Hex() + "/never-uploaded.png"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	ticket, err := e.onboard.AvatarUploadURL(ctx, p.ID, "image/png", "me.PNG")
	require.NoError(t, err)
	assert.Contains(t, ticket.UploadURL, ticket.ObjectKey)

	res = submit(domain.StepAvatar, OnboardingInput{AvatarKey: ticket.ObjectKey})
	assert.True(t, res.Completed)
	assert.Equal(t, access.PathAthleteDashboard, res.Redirect)

	stored, err := e.store.Profiles().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.OnboardingCompleted)
	assert.Equal(t, 181, stored.Height)
	assert.Equal(t, 80.5, stored.Weight)
	assert.Equal(t, []string{"Kettlebell", "Bands"}, stored.EquipmentList)
	assert.Equal(t, "rodilla", stored.Injuries)
	assert.Equal(t, ticket.ObjectKey, stored.AvatarKey)

	_, err = e.onboard.SubmitStep(ctx, p.ID, domain.StepAvatar, OnboardingInput{})
	assert.ErrorIs(t, err, ErrOnboardingCompleted)
}

func TestBackNeverBelowFirstStep(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.profile(t, "athlete@example.com", domain.RoleNone)
	_, err := e.onboard.SelectRole(ctx, p.ID, domain.RoleAthlete)
	require.NoError(t, err)

	res, err := e.onboard.Back(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepBirthDate, res.Step)
}

func TestStepNavigation(t *testing.T) {
	assert.Equal(t, domain.StepEquipment, nextStep(domain.StepPlace, "home"))
	assert.Equal(t, domain.StepAvailability, nextStep(domain.StepPlace, "gym"))
	assert.Equal(t, domain.StepEquipment, prevStep(domain.StepAvailability, "home"))
	assert.Equal(t, domain.StepPlace, prevStep(domain.StepAvailability, "gym"))
	assert.Equal(t, domain.StepBirthDate, prevStep(domain.StepBirthDate, "gym"))
}

func TestAvatarUploadRequiresImage(t *testing.T) {
	e := newEnv(t)
	p := e.profile(t, "athlete@example.com", domain.RoleAthlete)
	_, err := e.onboard.AvatarUploadURL(context.Background(), p.ID, "application/pdf", "cv.pdf")
	assert.ErrorIs(t, err, ErrValidationFailed)
}
