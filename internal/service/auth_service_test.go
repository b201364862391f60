package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"cvos/coach-app/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.auth.Register(ctx, " Ana ", "Ana@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.FullName)
	assert.Equal(t, domain.RoleNone, p.Role)
	assert.Empty(t, p.PasswordHash)

	_, err = e.auth.Register(ctx, "Other", "ana@example.com", "password123")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = e.auth.Register(ctx, "Short", "short@example.com", "abc")
	assert.ErrorIs(t, err, ErrValidationFailed)

	token, logged, err := e.auth.Login(ctx, "ana@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, p.ID, logged.ID)
	assert.True(t, logged.NeedsOnboarding())

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(e.auth.GetJWTSecret()), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, p.ID.Hex(), claims.UserID)

	_, _, err = e.auth.Login(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = e.auth.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestPasswordReset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.auth.Register(ctx, "Ana", "ana@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, e.auth.RequestPasswordReset(ctx, p.ID))
	require.Len(t, e.mail.sent, 1)
	mail := e.mail.sent[0]
	assert.Equal(t, "ana@example.com", mail.to)

	link, err := url.Parse(mail.link)
	require.NoError(t, err)
	assert.Equal(t, "app.test", link.Host)
	assert.Equal(t, "/auth/reset-password", link.Path)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	assert.ErrorIs(t, e.auth.ConfirmPasswordReset(ctx, "bogus", "newpassword1"), ErrInvalidResetToken)
	require.NoError(t, e.auth.ConfirmPasswordReset(ctx, token, "newpassword1"))

	_, _, err = e.auth.Login(ctx, "ana@example.com", "newpassword1")
	assert.NoError(t, err)
	// Tokens are single use.
	assert.ErrorIs(t, e.auth.ConfirmPasswordReset(ctx, token, "another-pass"), ErrInvalidResetToken)
}

func TestPasswordResetExpires(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.auth.(*authService)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	p, err := e.auth.Register(ctx, "Ana", "ana@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, e.auth.RequestPasswordReset(ctx, p.ID))
	link, _ := url.Parse(e.mail.sent[0].link)

	clock = clock.Add(2 * time.Hour)
	assert.ErrorIs(t, e.auth.ConfirmPasswordReset(ctx, link.Query().Get("token"), "newpassword1"), ErrInvalidResetToken)
}
