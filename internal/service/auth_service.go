package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/notify"
	"cvos/coach-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidResetToken    = errors.New("reset token is invalid or expired")
	ErrProfileNotFound      = errors.New("profile not found")
)

const (
	minPasswordLength = 8
	resetTokenTTL     = time.Hour
	tokenIssuer       = "cvos"
)

// TokenClaims is the JWT payload. Role is informational: gating resolves the
// current role on each request because it changes during onboarding.
type TokenClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (token string, profile *domain.Profile, err error)
	// RequestPasswordReset issues a one-hour reset token and mails the link.
	RequestPasswordReset(ctx context.Context, profileID primitive.ObjectID) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	profileRepo   repository.ProfileRepository
	notifier      notify.Notifier
	jwtSecret     string
	jwtExpiration time.Duration
	appURL        string
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(profileRepo repository.ProfileRepository, notifier notify.Notifier, jwtSecret string, jwtExpiration time.Duration, appURL string) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		profileRepo:   profileRepo,
		notifier:      notifier,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		appURL:        strings.TrimRight(appURL, "/"),
		now:           time.Now,
	}
}

// Register creates an account without a role; the user picks it during onboarding.
func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.Profile, error) {
	if blank(email) || password == "" {
		return nil, invalid("email and password are required")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password must be at least %d characters", minPasswordLength)
	}

	_, err := s.profileRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	profile := &domain.Profile{
		FullName:     strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         domain.RoleNone,
	}
	if _, err = s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	profile.PasswordHash = ""
	return profile, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Profile, error) {
	if blank(email) || password == "" {
		return "", nil, invalid("email and password cannot be empty")
	}

	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(profile)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	profile.PasswordHash = ""
	return token, profile, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, profileID primitive.ObjectID) error {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}

	expires := s.now().Add(resetTokenTTL).UTC()
	profile.ResetToken = uuid.NewString()
	profile.ResetExpiresAt = &expires
	if err = s.profileRepo.Update(ctx, profile); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/auth/reset-password?token=%s", s.appURL, url.QueryEscape(profile.ResetToken))
	return s.notifier.SendPasswordReset(ctx, profile.Email, profile.DisplayName(), link)
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return invalid("password must be at least %d characters", minPasswordLength)
	}

	profile, err := s.profileRepo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if profile.ResetExpiresAt == nil || !s.now().Before(*profile.ResetExpiresAt) {
		return ErrInvalidResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	profile.PasswordHash = string(hashed)
	profile.ResetToken = ""
	profile.ResetExpiresAt = nil
	return s.profileRepo.Update(ctx, profile)
}

// generateJWT creates a new JWT token for the given profile.
func (s *authService) generateJWT(profile *domain.Profile) (string, error) {
	now := s.now()
	claims := &TokenClaims{
		UserID: profile.ID.Hex(),
		Role:   profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
