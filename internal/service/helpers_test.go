package service

import (
	"context"
	"testing"
	"time"

	"cvos/coach-app/internal/access"
	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/methodology"
	"cvos/coach-app/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, name, link string
}

type fakeNotifier struct {
	sent []sentMail
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, to, name, link string) error {
	n.sent = append(n.sent, sentMail{to, name, link})
	return nil
}

// fakeStorage treats every key it presigned an upload for as uploaded.
type fakeStorage struct {
	uploaded map[string]bool
	deleted  []string
}

func (f *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	if f.uploaded == nil {
		f.uploaded = map[string]bool{}
	}
	f.uploaded[key] = true
	return "https://files.test/put/" + key, nil
}

func (f *fakeStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	return f.uploaded[key], nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/get/" + key, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type env struct {
	store    *memory.Store
	roles    *access.RoleResolver
	files    *fakeStorage
	mail     *fakeNotifier
	auth     AuthService
	onboard  OnboardingService
	profiles ProfileService
	clients  ClientService
	programs ProgramService
	library  ExerciseService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	e := &env{
		store: store,
		roles: access.NewRoleResolver(access.NewRoleCache(time.Minute), store.Profiles()),
		files: &fakeStorage{},
		mail:  &fakeNotifier{},
	}
	e.auth = NewAuthService(store.Profiles(), e.mail, "test-secret", time.Hour, "https://app.test/")
	e.onboard = NewOnboardingService(store.Profiles(), e.roles, e.files)
	e.profiles = NewProfileService(store.Profiles(), e.roles, e.files)
	e.clients = NewClientService(store.Clients(), store.Profiles(), store.Programs())
	e.programs = NewProgramService(ProgramRepositories{
		Programs:   store.Programs(),
		Mesocycles: store.Mesocycles(),
		Days:       store.Days(),
		Blocks:     store.WorkoutBlocks(),
		Clients:    store.Clients(),
		Profiles:   store.Profiles(),
		Exercises:  store.Exercises(),
	}, methodology.Default())
	e.library = NewExerciseService(store.Exercises())
	return e
}

// profile inserts an account with the given role straight into the store.
func (e *env) profile(t *testing.T, email string, role domain.Role) *domain.Profile {
	t.Helper()
	p := &domain.Profile{Email: email, FullName: "", Role: role, OnboardingCompleted: role != domain.RoleNone}
	_, err := e.store.Profiles().Create(context.Background(), p)
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T {
	return &v
}
