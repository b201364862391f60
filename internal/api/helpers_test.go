package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"cvos/coach-app/internal/access"
	"cvos/coach-app/internal/assist"
	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/methodology"
	"cvos/coach-app/internal/notify"
	"cvos/coach-app/internal/repository/memory"
	"cvos/coach-app/internal/service"
	"cvos/coach-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "api-test-secret"

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	svc    Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	store := memory.NewStore()
	roles := access.NewRoleResolver(access.NewRoleCache(time.Minute), store.Profiles())
	files := storage.Disabled{}

	svc := Services{
		Auth:       service.NewAuthService(store.Profiles(), notify.NewLogNotifier(log), testSecret, time.Hour, "https://app.test"),
		Profiles:   service.NewProfileService(store.Profiles(), roles, files),
		Onboarding: service.NewOnboardingService(store.Profiles(), roles, files),
		Clients:    service.NewClientService(store.Clients(), store.Profiles(), store.Programs()),
		Exercises:  service.NewExerciseService(store.Exercises()),
		Programs: service.NewProgramService(service.ProgramRepositories{
			Programs:   store.Programs(),
			Mesocycles: store.Mesocycles(),
			Days:       store.Days(),
			Blocks:     store.WorkoutBlocks(),
			Clients:    store.Clients(),
			Profiles:   store.Profiles(),
			Exercises:  store.Exercises(),
		}, methodology.Default()),
		Assistant: assist.Disabled{},
		Catalog:   methodology.Default(),
		Roles:     roles,
		JWTSecret: testSecret,
	}

	router := gin.New()
	SetupRoutes(router, svc, log)
	return &testServer{router: router, store: store, svc: svc}
}

// withAssistant rebuilds the router around a different exercise assistant.
func (s *testServer) withAssistant(a assist.Assistant) {
	s.svc.Assistant = a
	s.router = gin.New()
	SetupRoutes(s.router, s.svc, zap.NewNop())
}

// user inserts a profile with the given role and returns it with a signed token.
func (s *testServer) user(t *testing.T, email string, role domain.Role) (*domain.Profile, string) {
	t.Helper()
	p := &domain.Profile{Email: email, FullName: email, Role: role, OnboardingCompleted: role != domain.RoleNone}
	_, err := s.store.Profiles().Create(context.Background(), p)
	require.NoError(t, err)
	return p, signToken(t, p.ID.Hex(), role, time.Hour)
}

func signToken(t *testing.T, userID string, role domain.Role, ttl time.Duration) string {
	t.Helper()
	claims := service.TokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, w.Code, w.Body.String())
}
