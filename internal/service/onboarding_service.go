package service

import (
	"context"
	"errors"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"cvos/coach-app/internal/access"
	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"
	"cvos/coach-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrRoleAlreadySelected    = errors.New("role already selected")
	ErrRoleNotSelected        = errors.New("select a role before continuing")
	ErrOnboardingNotAthlete   = errors.New("only athletes fill the onboarding questionnaire")
	ErrOnboardingCompleted    = errors.New("onboarding already completed")
	ErrOnboardingStepMismatch = errors.New("submitted step does not match the current step")
)

const avatarUploadExpiry = 10 * time.Minute

var whatsappPattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,19}$`)

// OnboardingInput carries the answers of one step. Only the fields of the
// submitted step are read.
type OnboardingInput struct {
	BirthDate           string   `json:"birthDate,omitempty"` // YYYY-MM-DD
	Height              *int     `json:"height,omitempty"`
	Weight              *float64 `json:"weight,omitempty"`
	MainGoal            string   `json:"mainGoal,omitempty"`
	TrainingPlace       string   `json:"trainingPlace,omitempty"`
	EquipmentList       []string `json:"equipmentList,omitempty"`
	DaysPerWeek         *int     `json:"daysPerWeek,omitempty"`
	MinutesPerSession   *int     `json:"minutesPerSession,omitempty"`
	ExperienceLevel     string   `json:"experienceLevel,omitempty"`
	Injuries            string   `json:"injuries,omitempty"`
	TrainingPreferences string   `json:"trainingPreferences,omitempty"`
	WhatsAppNumber      string   `json:"whatsappNumber,omitempty"`
	AvatarKey           string   `json:"avatarKey,omitempty"`
}

// OnboardingState is what the wizard needs to render the current step.
type OnboardingState struct {
	Step       int                       `json:"step"`
	TotalSteps int                       `json:"totalSteps"`
	Role       domain.Role               `json:"role"`
	Completed  bool                      `json:"completed"`
	Progress   float64                   `json:"progress"` // 0..1
	Profile    *domain.Profile           `json:"profile"`
	Defaults   domain.OnboardingDefaults `json:"defaults"`
}

// StepResult tells the client where to go after a transition.
type StepResult struct {
	Step      int    `json:"step"`
	Completed bool   `json:"completed"`
	Redirect  string `json:"redirect,omitempty"`
}

type OnboardingService interface {
	State(ctx context.Context, profileID primitive.ObjectID) (*OnboardingState, error)
	SelectRole(ctx context.Context, profileID primitive.ObjectID, role domain.Role) (*StepResult, error)
	SubmitStep(ctx context.Context, profileID primitive.ObjectID, step int, in OnboardingInput) (*StepResult, error)
	Back(ctx context.Context, profileID primitive.ObjectID) (*StepResult, error)
	AvatarUploadURL(ctx context.Context, profileID primitive.ObjectID, contentType, fileName string) (*domain.UploadTicket, error)
}

type onboardingService struct {
	profileRepo repository.ProfileRepository
	roles       *access.RoleResolver
	files       storage.FileStorage
	now         func() time.Time
}

func NewOnboardingService(profileRepo repository.ProfileRepository, roles *access.RoleResolver, files storage.FileStorage) OnboardingService {
	return &onboardingService{
		profileRepo: profileRepo,
		roles:       roles,
		files:       files,
		now:         time.Now,
	}
}

// progress maps steps 1..11 onto 0..1.
func progress(step int) float64 {
	if step <= 1 {
		return 0
	}
	p := float64(step-1) / float64(domain.LastOnboardingStep-1)
	return math.Min(p, 1)
}

func (s *onboardingService) load(ctx context.Context, id primitive.ObjectID) (*domain.Profile, error) {
	p, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *onboardingService) State(ctx context.Context, profileID primitive.ObjectID) (*OnboardingState, error) {
	p, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	p.PasswordHash = ""
	return &OnboardingState{
		Step:       p.OnboardingStep,
		TotalSteps: domain.LastOnboardingStep,
		Role:       p.Role,
		Completed:  p.OnboardingCompleted,
		Progress:   progress(p.OnboardingStep),
		Profile:    p,
		Defaults:   domain.DefaultOnboarding,
	}, nil
}

// SelectRole is step 0. Coaches are done right away; athletes continue at step 1.
func (s *onboardingService) SelectRole(ctx context.Context, profileID primitive.ObjectID, role domain.Role) (*StepResult, error) {
	if role != domain.RoleCoach && role != domain.RoleAthlete {
		return nil, invalid("role must be coach or athlete")
	}
	p, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.Role != domain.RoleNone {
		return nil, ErrRoleAlreadySelected
	}

	p.Role = role
	res := &StepResult{}
	if role == domain.RoleCoach {
		p.OnboardingStep = domain.StepRole
		p.OnboardingCompleted = true
		res.Completed = true
		res.Redirect = access.HomeFor(role)
	} else {
		p.OnboardingStep = domain.StepBirthDate
	}
	res.Step = p.OnboardingStep

	if err = s.profileRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.roles.Invalidate(profileID)
	return res, nil
}

func (s *onboardingService) athleteInProgress(p *domain.Profile) error {
	switch {
	case p.Role == domain.RoleNone:
		return ErrRoleNotSelected
	case p.Role != domain.RoleAthlete:
		return ErrOnboardingNotAthlete
	case p.OnboardingCompleted:
		return ErrOnboardingCompleted
	}
	return nil
}

// SubmitStep validates and stores the answers of the current step, then advances.
func (s *onboardingService) SubmitStep(ctx context.Context, profileID primitive.ObjectID, step int, in OnboardingInput) (*StepResult, error) {
	p, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if err = s.athleteInProgress(p); err != nil {
		return nil, err
	}
	if step != p.OnboardingStep {
		return nil, ErrOnboardingStepMismatch
	}
	if err = s.apply(ctx, p, step, in); err != nil {
		return nil, err
	}

	res := &StepResult{}
	if step == domain.LastOnboardingStep {
		p.OnboardingCompleted = true
		res.Completed = true
		res.Redirect = access.HomeFor(p.Role)
	} else {
		p.OnboardingStep = nextStep(step, p.TrainingPlace)
	}
	res.Step = p.OnboardingStep

	if err = s.profileRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return res, nil
}

// Back returns to the previous step, never below step 1.
func (s *onboardingService) Back(ctx context.Context, profileID primitive.ObjectID) (*StepResult, error) {
	p, err := s.load(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if err = s.athleteInProgress(p); err != nil {
		return nil, err
	}
	p.OnboardingStep = prevStep(p.OnboardingStep, p.TrainingPlace)
	if err = s.profileRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return &StepResult{Step: p.OnboardingStep}, nil
}

// The equipment step only applies to people training at home.
func nextStep(step int, place string) int {
	next := step + 1
	if next == domain.StepEquipment && place != domain.PlaceHome {
		next++
	}
	return next
}

func prevStep(step int, place string) int {
	prev := step - 1
	if prev == domain.StepEquipment && place != domain.PlaceHome {
		prev--
	}
	if prev < domain.StepBirthDate {
		prev = domain.StepBirthDate
	}
	return prev
}

func (s *onboardingService) apply(ctx context.Context, p *domain.Profile, step int, in OnboardingInput) error {
	switch step {
	case domain.StepBirthDate:
		d, err := time.Parse(time.DateOnly, strings.TrimSpace(in.BirthDate))
		if err != nil {
			return invalid("birthDate must be YYYY-MM-DD")
		}
		if !d.Before(s.now()) || d.Year() < 1900 {
			return invalid("birthDate must be in the past")
		}
		p.BirthDate = &d
	case domain.StepHeight:
		if in.Height == nil || *in.Height < domain.MinHeightCm || *in.Height > domain.MaxHeightCm {
			return invalid("height must be between %d and %d cm", domain.MinHeightCm, domain.MaxHeightCm)
		}
		p.Height = *in.Height
	case domain.StepWeight:
		if in.Weight == nil || *in.Weight <= 0 || *in.Weight > 400 {
			return invalid("weight must be a positive number of kg")
		}
		if math.Mod(*in.Weight*2, 1) != 0 {
			return invalid("weight must be in 0.5 kg increments")
		}
		p.Weight = *in.Weight
	case domain.StepGoal:
		if !slices.Contains(domain.MainGoals, in.MainGoal) {
			return invalid("mainGoal must be one of %s", strings.Join(domain.MainGoals, ", "))
		}
		p.MainGoal = in.MainGoal
	case domain.StepPlace:
		if !slices.Contains(domain.TrainingPlaces, in.TrainingPlace) {
			return invalid("trainingPlace must be one of %s", strings.Join(domain.TrainingPlaces, ", "))
		}
		p.TrainingPlace = in.TrainingPlace
		if p.TrainingPlace != domain.PlaceHome {
			p.EquipmentList = nil
		}
	case domain.StepEquipment:
		p.EquipmentList = cleanList(in.EquipmentList)
	case domain.StepAvailability:
		if in.DaysPerWeek == nil || *in.DaysPerWeek < 1 || *in.DaysPerWeek > 7 {
			return invalid("daysPerWeek must be between 1 and 7")
		}
		if in.MinutesPerSession == nil || !slices.Contains(domain.SessionMinutes, *in.MinutesPerSession) {
			return invalid("minutesPerSession must be one of 30, 45, 60, 90, 120")
		}
		p.DaysPerWeek = *in.DaysPerWeek
		p.MinutesPerSession = *in.MinutesPerSession
	case domain.StepExperience:
		if !slices.Contains(domain.ExperienceLevels, in.ExperienceLevel) {
			return invalid("experienceLevel must be one of %s", strings.Join(domain.ExperienceLevels, ", "))
		}
		p.ExperienceLevel = in.ExperienceLevel
	case domain.StepDetails:
		p.Injuries = strings.TrimSpace(in.Injuries)
		p.TrainingPreferences = strings.TrimSpace(in.TrainingPreferences)
	case domain.StepWhatsApp:
		n := strings.TrimSpace(in.WhatsAppNumber)
		if n != "" && !whatsappPattern.MatchString(n) {
			return invalid("whatsappNumber is not a valid phone number")
		}
		p.WhatsAppNumber = n
	case domain.StepAvatar:
		key := strings.TrimSpace(in.AvatarKey)
		if key == "" {
			break
		}
		if err := checkAvatarKey(ctx, s.files, p.ID, key); err != nil {
			return err
		}
		p.AvatarKey = key
	default:
		return invalid("unknown onboarding step %d", step)
	}
	return nil
}

// cleanList trims entries and drops empty ones.
func cleanList(items []string) []string {
	out := []string{}
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// checkAvatarKey accepts a key only when it sits under the profile's avatar
// prefix and the upload actually reached the bucket.
func checkAvatarKey(ctx context.Context, files storage.FileStorage, profileID primitive.ObjectID, key string) error {
	if !storage.IsAvatarKeyOf(key, profileID.Hex()) {
		return invalid("avatarKey does not belong to this profile")
	}
	exists, err := files.ObjectExists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return invalid("avatarKey %q has not been uploaded", key)
	}
	return nil
}

// AvatarUploadURL presigns a PUT for a new avatar image.
func (s *onboardingService) AvatarUploadURL(ctx context.Context, profileID primitive.ObjectID, contentType, fileName string) (*domain.UploadTicket, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, invalid("avatar must be an image")
	}
	key := storage.AvatarKey(profileID.Hex(), fileName)
	uploadURL, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, avatarUploadExpiry)
	if err != nil {
		return nil, err
	}
	return &domain.UploadTicket{
		ObjectKey:   key,
		UploadURL:   uploadURL,
		ContentType: contentType,
		ExpiresAt:   s.now().Add(avatarUploadExpiry).UTC(),
	}, nil
}
