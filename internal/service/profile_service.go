package service

import (
	"context"
	"errors"
	"math"
	"slices"
	"sort"
	"strings"

	"cvos/coach-app/internal/access"
	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"
	"cvos/coach-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const adminBusinessName = "Admin / Entrenador"

// CoachSummary is a row of the coach picker.
type CoachSummary struct {
	ID           primitive.ObjectID `json:"id"`
	FullName     string             `json:"fullName"`
	Email        string             `json:"email,omitempty"`
	Role         domain.Role        `json:"role"`
	BusinessName string             `json:"businessName,omitempty"`
}

// ProfileUpdate holds the self-editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	FullName            *string   `json:"fullName"`
	WhatsAppNumber      *string   `json:"whatsappNumber"`
	Height              *int      `json:"height"`
	Weight              *float64  `json:"weight"`
	MainGoal            *string   `json:"mainGoal"`
	TrainingPlace       *string   `json:"trainingPlace"`
	EquipmentList       *[]string `json:"equipmentList"`
	DaysPerWeek         *int      `json:"daysPerWeek"`
	MinutesPerSession   *int      `json:"minutesPerSession"`
	ExperienceLevel     *string   `json:"experienceLevel"`
	Injuries            *string   `json:"injuries"`
	TrainingPreferences *string   `json:"trainingPreferences"`
	// AvatarKey must point at an uploaded object under the caller's prefix.
	// An empty string removes the avatar.
	AvatarKey           *string   `json:"avatarKey"`
}

type ProfileService interface {
	Me(ctx context.Context, profileID primitive.ObjectID) (*domain.Profile, error)
	UpdateMe(ctx context.Context, profileID primitive.ObjectID, upd ProfileUpdate) (*domain.Profile, error)
	// AvatarURL presigns a download link; empty when the profile has no avatar
	// or no bucket is configured.
	AvatarURL(ctx context.Context, profile *domain.Profile) (string, error)

	ListProfiles(ctx context.Context, search string) ([]domain.Profile, error)
	UpdateRole(ctx context.Context, profileID primitive.ObjectID, role domain.Role) (*domain.Profile, error)
	ListCoaches(ctx context.Context) ([]CoachSummary, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	roles       *access.RoleResolver
	files       storage.FileStorage
}

func NewProfileService(profileRepo repository.ProfileRepository, roles *access.RoleResolver, files storage.FileStorage) ProfileService {
	return &profileService{profileRepo: profileRepo, roles: roles, files: files}
}

func (s *profileService) get(ctx context.Context, id primitive.ObjectID) (*domain.Profile, error) {
	p, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *profileService) Me(ctx context.Context, profileID primitive.ObjectID) (*domain.Profile, error) {
	return s.get(ctx, profileID)
}

func (s *profileService) UpdateMe(ctx context.Context, profileID primitive.ObjectID, upd ProfileUpdate) (*domain.Profile, error) {
	p, err := s.get(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if upd.FullName != nil {
		p.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.WhatsAppNumber != nil {
		n := strings.TrimSpace(*upd.WhatsAppNumber)
		if n != "" && !whatsappPattern.MatchString(n) {
			return nil, invalid("whatsappNumber is not a valid phone number")
		}
		p.WhatsAppNumber = n
	}
	if upd.Height != nil {
		if *upd.Height < domain.MinHeightCm || *upd.Height > domain.MaxHeightCm {
			return nil, invalid("height must be between %d and %d cm", domain.MinHeightCm, domain.MaxHeightCm)
		}
		p.Height = *upd.Height
	}
	if upd.Weight != nil {
		if *upd.Weight <= 0 || *upd.Weight > 400 || math.Mod(*upd.Weight*2, 1) != 0 {
			return nil, invalid("weight must be positive, in 0.5 kg increments")
		}
		p.Weight = *upd.Weight
	}
	if upd.MainGoal != nil {
		if !slices.Contains(domain.MainGoals, *upd.MainGoal) {
			return nil, invalid("unknown mainGoal %q", *upd.MainGoal)
		}
		p.MainGoal = *upd.MainGoal
	}
	if upd.TrainingPlace != nil {
		if !slices.Contains(domain.TrainingPlaces, *upd.TrainingPlace) {
			return nil, invalid("unknown trainingPlace %q", *upd.TrainingPlace)
		}
		p.TrainingPlace = *upd.TrainingPlace
		if p.TrainingPlace != domain.PlaceHome {
			p.EquipmentList = nil
		}
	}
	if upd.EquipmentList != nil && p.TrainingPlace == domain.PlaceHome {
		p.EquipmentList = cleanList(*upd.EquipmentList)
	}
	if upd.DaysPerWeek != nil {
		if *upd.DaysPerWeek < 1 || *upd.DaysPerWeek > 7 {
			return nil, invalid("daysPerWeek must be between 1 and 7")
		}
		p.DaysPerWeek = *upd.DaysPerWeek
	}
	if upd.MinutesPerSession != nil {
		if !slices.Contains(domain.SessionMinutes, *upd.MinutesPerSession) {
			return nil, invalid("minutesPerSession must be one of 30, 45, 60, 90, 120")
		}
		p.MinutesPerSession = *upd.MinutesPerSession
	}
	if upd.ExperienceLevel != nil {
		if !slices.Contains(domain.ExperienceLevels, *upd.ExperienceLevel) {
			return nil, invalid("unknown experienceLevel %q", *upd.ExperienceLevel)
		}
		p.ExperienceLevel = *upd.ExperienceLevel
	}
	if upd.Injuries != nil {
		p.Injuries = strings.TrimSpace(*upd.Injuries)
	}
	if upd.TrainingPreferences != nil {
		p.TrainingPreferences = strings.TrimSpace(*upd.TrainingPreferences)
	}
	previousAvatar := p.AvatarKey
	if upd.AvatarKey != nil {
		key := strings.TrimSpace(*upd.AvatarKey)
		if key != "" && key != previousAvatar {
			if err = checkAvatarKey(ctx, s.files, p.ID, key); err != nil {
				return nil, err
			}
		}
		p.AvatarKey = key
	}

	if err = s.profileRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	if previousAvatar != "" && previousAvatar != p.AvatarKey {
		// Best effort; the new key is already saved.
		_ = s.files.DeleteObject(ctx, previousAvatar)
	}
	return p, nil
}

func (s *profileService) AvatarURL(ctx context.Context, profile *domain.Profile) (string, error) {
	if profile.AvatarKey == "" {
		return "", nil
	}
	u, err := s.files.GeneratePresignedDownloadURL(ctx, profile.AvatarKey, storage.DefaultPresignedURLExpiry)
	if errors.Is(err, storage.ErrNotConfigured) {
		return "", nil
	}
	return u, err
}

// ListProfiles backs the admin user table; search matches name or email.
func (s *profileService) ListProfiles(ctx context.Context, search string) ([]domain.Profile, error) {
	return s.profileRepo.List(ctx, repository.ProfileFilter{Search: search})
}

// UpdateRole is the admin override. A profile that never picked a role is
// considered onboarded once an admin assigns one.
func (s *profileService) UpdateRole(ctx context.Context, profileID primitive.ObjectID, role domain.Role) (*domain.Profile, error) {
	if !role.Valid() {
		return nil, invalid("role must be admin, coach or athlete")
	}
	p, err := s.get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.Role == domain.RoleNone {
		p.OnboardingCompleted = true
	}
	p.Role = role
	if err = s.profileRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.roles.Invalidate(profileID)
	return p, nil
}

// ListCoaches returns coaches and admins for assignment pickers, by display name.
func (s *profileService) ListCoaches(ctx context.Context) ([]CoachSummary, error) {
	profiles, err := s.profileRepo.List(ctx, repository.ProfileFilter{Roles: []domain.Role{domain.RoleCoach, domain.RoleAdmin}})
	if err != nil {
		return nil, err
	}
	out := make([]CoachSummary, 0, len(profiles))
	for _, p := range profiles {
		c := CoachSummary{
			ID:       p.ID,
			FullName: p.DisplayName(),
			Email:    p.Email,
			Role:     p.Role,
		}
		if p.IsAdmin() {
			c.BusinessName = adminBusinessName
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].FullName) < strings.ToLower(out[j].FullName)
	})
	return out, nil
}
