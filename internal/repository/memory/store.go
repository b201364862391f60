// Package memory keeps every collection in process memory. It backs the
// "memory" database driver for local runs and serves as the test double for
// the service and API layers.
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds all collections behind one lock.
type Store struct {
	mu         sync.RWMutex
	profiles   map[primitive.ObjectID]domain.Profile
	clients    map[primitive.ObjectID]domain.Client
	programs   map[primitive.ObjectID]domain.Program
	mesocycles map[primitive.ObjectID]domain.Mesocycle
	days       map[primitive.ObjectID]domain.Day
	blocks     map[primitive.ObjectID]domain.WorkoutBlock
	exercises  map[primitive.ObjectID]domain.Exercise
}

func NewStore() *Store {
	return &Store{
		profiles:   map[primitive.ObjectID]domain.Profile{},
		clients:    map[primitive.ObjectID]domain.Client{},
		programs:   map[primitive.ObjectID]domain.Program{},
		mesocycles: map[primitive.ObjectID]domain.Mesocycle{},
		days:       map[primitive.ObjectID]domain.Day{},
		blocks:     map[primitive.ObjectID]domain.WorkoutBlock{},
		exercises:  map[primitive.ObjectID]domain.Exercise{},
	}
}

func (s *Store) Profiles() repository.ProfileRepository           { return &profileRepo{s} }
func (s *Store) Clients() repository.ClientRepository             { return &clientRepo{s} }
func (s *Store) Programs() repository.ProgramRepository           { return &programRepo{s} }
func (s *Store) Mesocycles() repository.MesocycleRepository       { return &mesocycleRepo{s} }
func (s *Store) Days() repository.DayRepository                   { return &dayRepo{s} }
func (s *Store) WorkoutBlocks() repository.WorkoutBlockRepository { return &blockRepo{s} }
func (s *Store) Exercises() repository.ExerciseRepository         { return &exerciseRepo{s} }

func now() time.Time {
	return time.Now().UTC()
}

// --- Profiles ---

type profileRepo struct{ s *Store }

func normEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *profileRepo) Create(_ context.Context, p *domain.Profile) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p.Email = normEmail(p.Email)
	for _, existing := range r.s.profiles {
		if existing.Email == p.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	r.s.profiles[p.ID] = cloneProfile(*p)
	return p.ID, nil
}

func (r *profileRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = cloneProfile(p)
	return &p, nil
}

func (r *profileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	return r.first(func(p domain.Profile) bool { return p.Email == normEmail(email) })
}

func (r *profileRepo) GetByResetToken(_ context.Context, token string) (*domain.Profile, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	return r.first(func(p domain.Profile) bool { return p.ResetToken == token })
}

func (r *profileRepo) first(match func(domain.Profile) bool) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.profiles {
		if match(p) {
			p = cloneProfile(p)
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *profileRepo) List(_ context.Context, filter repository.ProfileFilter) ([]domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := []domain.Profile{}
	for _, p := range r.s.profiles {
		if search != "" && !strings.Contains(strings.ToLower(p.FullName), search) && !strings.Contains(p.Email, search) {
			continue
		}
		if len(filter.Roles) > 0 && !slices.Contains(filter.Roles, p.Role) {
			continue
		}
		out = append(out, cloneProfile(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func (r *profileRepo) Update(_ context.Context, p *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.Email = normEmail(p.Email)
	for id, existing := range r.s.profiles {
		if id != p.ID && existing.Email == p.Email {
			return repository.ErrDuplicate
		}
	}
	p.UpdatedAt = now()
	r.s.profiles[p.ID] = cloneProfile(*p)
	return nil
}

func cloneProfile(p domain.Profile) domain.Profile {
	p.EquipmentList = slices.Clone(p.EquipmentList)
	return p
}

// --- Clients ---

type clientRepo struct{ s *Store }

func (r *clientRepo) Create(_ context.Context, c *domain.Client) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	r.s.clients[c.ID] = cloneClient(*c)
	return c.ID, nil
}

func (r *clientRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c = cloneClient(c)
	return &c, nil
}

func (r *clientRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.clients {
		if c.UserID != nil && *c.UserID == userID {
			c = cloneClient(c)
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func clientMatches(c domain.Client, f repository.ClientFilter) bool {
	if f.Type != "" && c.Type != f.Type {
		return false
	}
	if f.CoachID != nil && (c.CoachID == nil || *c.CoachID != *f.CoachID) {
		return false
	}
	return true
}

func (r *clientRepo) List(_ context.Context, filter repository.ClientFilter) ([]domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Client{}
	for _, c := range r.s.clients {
		if clientMatches(c, filter) {
			out = append(out, cloneClient(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *clientRepo) Count(_ context.Context, filter repository.ClientFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, c := range r.s.clients {
		if clientMatches(c, filter) {
			n++
		}
	}
	return n, nil
}

func (r *clientRepo) Update(_ context.Context, c *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.clients[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = now()
	r.s.clients[c.ID] = cloneClient(*c)
	return nil
}

func (r *clientRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.clients, id)
	return nil
}

func cloneClient(c domain.Client) domain.Client {
	c.Details = maps.Clone(c.Details)
	return c
}
