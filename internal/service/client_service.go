package service

import (
	"context"
	"errors"
	"maps"
	"strings"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound = errors.New("client not found")
	ErrCoachNotFound  = errors.New("coach not found")
	// ErrNoClientRecord means the signed-in athlete is not linked to any client yet.
	ErrNoClientRecord = errors.New("no client record linked to this profile")
)

// ClientInput is the editable part of a client.
type ClientInput struct {
	Type    domain.ClientType   `json:"type"`
	Name    string              `json:"name"`
	LogoURL string              `json:"logoUrl"`
	Email   string              `json:"email"`
	Phone   string              `json:"phone"`
	UserID  *primitive.ObjectID `json:"userId"`
	CoachID *primitive.ObjectID `json:"coachId"`
	Details map[string]any      `json:"details"`
}

// Benchmarks are the athlete's tracked marks. Nil fields keep the stored value.
type Benchmarks struct {
	OneRmStats map[string]float64 `json:"oneRmStats"`
	FranTime   *string            `json:"franTime"`
	Run1km     *string            `json:"run1km"`
	Run5km     *string            `json:"run5km"`
}

type ClientService interface {
	List(ctx context.Context, clientType domain.ClientType) ([]domain.Client, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	// Create assigns the client to coachID unless the input names another coach.
	Create(ctx context.Context, coachID primitive.ObjectID, in ClientInput) (*domain.Client, error)
	Update(ctx context.Context, id primitive.ObjectID, in ClientInput) (*domain.Client, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AssignCoach(ctx context.Context, clientID, coachID primitive.ObjectID) (*domain.Client, error)
	UpdateBenchmarks(ctx context.Context, clientID primitive.ObjectID, b Benchmarks) (*domain.Client, error)

	// Athlete self-service
	MyClient(ctx context.Context, profileID primitive.ObjectID) (*domain.Client, error)
	MyCoach(ctx context.Context, profileID primitive.ObjectID) (*CoachSummary, error)
	MyGym(ctx context.Context, profileID primitive.ObjectID) (*domain.Client, error)
	MyPrograms(ctx context.Context, profileID primitive.ObjectID) ([]domain.Program, error)
}

// clientService implements the ClientService interface.
type clientService struct {
	clientRepo  repository.ClientRepository
	profileRepo repository.ProfileRepository
	programRepo repository.ProgramRepository
}

func NewClientService(
	clientRepo repository.ClientRepository,
	profileRepo repository.ProfileRepository,
	programRepo repository.ProgramRepository,
) ClientService {
	return &clientService{
		clientRepo:  clientRepo,
		profileRepo: profileRepo,
		programRepo: programRepo,
	}
}

func (s *clientService) List(ctx context.Context, clientType domain.ClientType) ([]domain.Client, error) {
	if clientType != "" && !clientType.Valid() {
		return nil, invalid("unknown client type %q", clientType)
	}
	return s.clientRepo.List(ctx, repository.ClientFilter{Type: clientType})
}

func (s *clientService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	c, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return c, nil
}

func validateClient(in ClientInput) error {
	if !in.Type.Valid() {
		return invalid("type must be athlete or gym")
	}
	if blank(in.Name) {
		return invalid("name is required")
	}
	return nil
}

// coach checks that id belongs to a coach or admin.
func (s *clientService) coach(ctx context.Context, id primitive.ObjectID) (*domain.Profile, error) {
	p, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	if p.Role != domain.RoleCoach && p.Role != domain.RoleAdmin {
		return nil, ErrCoachNotFound
	}
	return p, nil
}

func (s *clientService) Create(ctx context.Context, coachID primitive.ObjectID, in ClientInput) (*domain.Client, error) {
	if err := validateClient(in); err != nil {
		return nil, err
	}
	if in.CoachID == nil {
		in.CoachID = &coachID
	} else if _, err := s.coach(ctx, *in.CoachID); err != nil {
		return nil, err
	}

	c := &domain.Client{
		CoachID: in.CoachID,
		UserID:  in.UserID,
		Type:    in.Type,
		Name:    strings.TrimSpace(in.Name),
		LogoURL: in.LogoURL,
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Details: maps.Clone(in.Details),
	}
	if _, err := s.clientRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the editable fields. Details are merged key by key.
func (s *clientService) Update(ctx context.Context, id primitive.ObjectID, in ClientInput) (*domain.Client, error) {
	if err := validateClient(in); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CoachID != nil {
		if _, err = s.coach(ctx, *in.CoachID); err != nil {
			return nil, err
		}
		c.CoachID = in.CoachID
	}
	if in.UserID != nil {
		c.UserID = in.UserID
	}
	c.Type = in.Type
	c.Name = strings.TrimSpace(in.Name)
	c.LogoURL = in.LogoURL
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	if len(in.Details) > 0 {
		if c.Details == nil {
			c.Details = map[string]any{}
		}
		maps.Copy(c.Details, in.Details)
	}

	if err = s.clientRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the client for good. Its programs stay, without a client.
func (s *clientService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	return s.programRepo.DetachClient(ctx, id)
}

func (s *clientService) AssignCoach(ctx context.Context, clientID, coachID primitive.ObjectID) (*domain.Client, error) {
	if _, err := s.coach(ctx, coachID); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	c.CoachID = &coachID
	if err = s.clientRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *clientService) UpdateBenchmarks(ctx context.Context, clientID primitive.ObjectID, b Benchmarks) (*domain.Client, error) {
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if c.Details == nil {
		c.Details = map[string]any{}
	}

	if b.OneRmStats != nil {
		stats := map[string]any{}
		for k, v := range c.OneRmStats() {
			stats[k] = v
		}
		for k, v := range b.OneRmStats {
			if v < 0 {
				return nil, invalid("1RM for %s cannot be negative", k)
			}
			if v == 0 {
				delete(stats, k)
				continue
			}
			stats[k] = v
		}
		c.Details[domain.DetailOneRmStats] = stats
	}
	setDetail(c.Details, domain.DetailFranTime, b.FranTime)
	setDetail(c.Details, domain.DetailRun1km, b.Run1km)
	setDetail(c.Details, domain.DetailRun5km, b.Run5km)

	if err = s.clientRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func setDetail(details map[string]any, key string, v *string) {
	if v == nil {
		return
	}
	if t := strings.TrimSpace(*v); t != "" {
		details[key] = t
		return
	}
	delete(details, key)
}

func (s *clientService) MyClient(ctx context.Context, profileID primitive.ObjectID) (*domain.Client, error) {
	c, err := s.clientRepo.GetByUserID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoClientRecord
		}
		return nil, err
	}
	return c, nil
}

func (s *clientService) MyCoach(ctx context.Context, profileID primitive.ObjectID) (*CoachSummary, error) {
	c, err := s.MyClient(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if c.CoachID == nil {
		return nil, ErrCoachNotFound
	}
	p, err := s.coach(ctx, *c.CoachID)
	if err != nil {
		return nil, err
	}
	summary := &CoachSummary{ID: p.ID, FullName: p.DisplayName(), Email: p.Email, Role: p.Role}
	if p.IsAdmin() {
		summary.BusinessName = adminBusinessName
	}
	return summary, nil
}

func (s *clientService) MyGym(ctx context.Context, profileID primitive.ObjectID) (*domain.Client, error) {
	c, err := s.MyClient(ctx, profileID)
	if err != nil {
		return nil, err
	}
	gymID, ok := c.GymID()
	if !ok {
		return nil, ErrClientNotFound
	}
	gym, err := s.Get(ctx, gymID)
	if err != nil {
		return nil, err
	}
	if gym.Type != domain.ClientGym {
		return nil, ErrClientNotFound
	}
	return gym, nil
}

// MyPrograms lists the non-template programs assigned to the athlete.
func (s *clientService) MyPrograms(ctx context.Context, profileID primitive.ObjectID) ([]domain.Program, error) {
	c, err := s.MyClient(ctx, profileID)
	if err != nil {
		return nil, err
	}
	notTemplate := false
	return s.programRepo.List(ctx, repository.ProgramFilter{ClientID: &c.ID, IsTemplate: &notTemplate})
}
