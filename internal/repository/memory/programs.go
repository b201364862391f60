package memory

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"sort"
	"strings"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Programs ---

type programRepo struct{ s *Store }

func (r *programRepo) Create(_ context.Context, p *domain.Program) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	r.s.programs[p.ID] = cloneProgram(*p)
	return p.ID, nil
}

func (r *programRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Program, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = cloneProgram(p)
	return &p, nil
}

func programMatches(p domain.Program, f repository.ProgramFilter) bool {
	if f.CoachID != nil && p.CoachID != *f.CoachID {
		return false
	}
	if f.ClientID != nil && (p.ClientID == nil || *p.ClientID != *f.ClientID) {
		return false
	}
	if f.IsTemplate != nil && p.IsTemplate != *f.IsTemplate {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Name != "" && p.Name != f.Name {
		return false
	}
	if f.EndsBefore != nil && (p.Attributes.EndDate == nil || !p.Attributes.EndDate.Before(*f.EndsBefore)) {
		return false
	}
	return true
}

func (r *programRepo) List(_ context.Context, filter repository.ProgramFilter) ([]domain.Program, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Program{}
	for _, p := range r.s.programs {
		if programMatches(p, filter) {
			out = append(out, cloneProgram(p))
		}
	}
	// Newest update first; ObjectIDs break ties in creation order.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out, nil
}

func (r *programRepo) Count(_ context.Context, filter repository.ProgramFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, p := range r.s.programs {
		if programMatches(p, filter) {
			n++
		}
	}
	return n, nil
}

func (r *programRepo) Update(_ context.Context, p *domain.Program) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.programs[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.CoachID = existing.CoachID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = now()
	r.s.programs[p.ID] = cloneProgram(*p)
	return nil
}

func (r *programRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.programs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.programs, id)
	return nil
}

func (r *programRepo) DetachClient(_ context.Context, clientID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.programs {
		if p.ClientID != nil && *p.ClientID == clientID {
			p.ClientID = nil
			p.UpdatedAt = now()
			r.s.programs[id] = p
		}
	}
	return nil
}

func cloneProgram(p domain.Program) domain.Program {
	p.Attributes.Methodology = slices.Clone(p.Attributes.Methodology)
	p.Attributes.KeyConcepts = slices.Clone(p.Attributes.KeyConcepts)
	return p
}

// --- Mesocycles ---

type mesocycleRepo struct{ s *Store }

func (r *mesocycleRepo) Create(_ context.Context, m *domain.Mesocycle) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = primitive.NewObjectID()
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt
	r.s.mesocycles[m.ID] = *m
	return m.ID, nil
}

func (r *mesocycleRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Mesocycle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.mesocycles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *mesocycleRepo) ListByProgram(_ context.Context, programID primitive.ObjectID) ([]domain.Mesocycle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Mesocycle{}
	for _, m := range r.s.mesocycles {
		if m.ProgramID == programID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WeekNumber < out[j].WeekNumber })
	return out, nil
}

func (r *mesocycleRepo) Update(_ context.Context, m *domain.Mesocycle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.mesocycles[m.ID]
	if !ok {
		return repository.ErrNotFound
	}
	m.ProgramID = existing.ProgramID
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = now()
	r.s.mesocycles[m.ID] = *m
	return nil
}

func (r *mesocycleRepo) DeleteByProgram(_ context.Context, programID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.mesocycles {
		if m.ProgramID == programID {
			delete(r.s.mesocycles, id)
		}
	}
	return nil
}

// --- Days ---

type dayRepo struct{ s *Store }

func (r *dayRepo) Create(_ context.Context, d *domain.Day) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = primitive.NewObjectID()
	d.CreatedAt = now()
	d.UpdatedAt = d.CreatedAt
	r.s.days[d.ID] = *d
	return d.ID, nil
}

func (r *dayRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Day, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.days[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *dayRepo) ListByMesocycles(_ context.Context, mesocycleIDs []primitive.ObjectID) ([]domain.Day, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Day{}
	for _, d := range r.s.days {
		if slices.Contains(mesocycleIDs, d.MesocycleID) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out, nil
}

func (r *dayRepo) Update(_ context.Context, d *domain.Day) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.days[d.ID]
	if !ok {
		return repository.ErrNotFound
	}
	d.MesocycleID = existing.MesocycleID
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = now()
	r.s.days[d.ID] = *d
	return nil
}

func (r *dayRepo) DeleteByMesocycles(_ context.Context, mesocycleIDs []primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, d := range r.s.days {
		if slices.Contains(mesocycleIDs, d.MesocycleID) {
			delete(r.s.days, id)
		}
	}
	return nil
}

// --- Workout blocks ---

type blockRepo struct{ s *Store }

func (r *blockRepo) CreateMany(_ context.Context, blocks []*domain.WorkoutBlock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ts := now()
	for _, b := range blocks {
		b.ID = primitive.NewObjectID()
		b.CreatedAt = ts
		b.UpdatedAt = ts
		c := *b
		c.Config = maps.Clone(b.Config)
		r.s.blocks[b.ID] = c
	}
	return nil
}

func (r *blockRepo) ListByDays(_ context.Context, dayIDs []primitive.ObjectID) ([]domain.WorkoutBlock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.WorkoutBlock{}
	for _, b := range r.s.blocks {
		if slices.Contains(dayIDs, b.DayID) {
			b.Config = maps.Clone(b.Config)
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *blockRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.blocks)), nil
}

func (r *blockRepo) DeleteByDays(_ context.Context, dayIDs []primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, b := range r.s.blocks {
		if slices.Contains(dayIDs, b.DayID) {
			delete(r.s.blocks, id)
		}
	}
	return nil
}

// --- Exercises ---

type exerciseRepo struct{ s *Store }

func (r *exerciseRepo) nameTaken(name string, except primitive.ObjectID) bool {
	for id, e := range r.s.exercises {
		if id != except && strings.EqualFold(e.Name, name) {
			return true
		}
	}
	return false
}

func (r *exerciseRepo) Create(_ context.Context, e *domain.Exercise) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(e.Name, primitive.NilObjectID) {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	e.ID = primitive.NewObjectID()
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt
	r.s.exercises[e.ID] = cloneExercise(*e)
	return e.ID, nil
}

func (r *exerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = cloneExercise(e)
	return &e, nil
}

func (r *exerciseRepo) GetByName(_ context.Context, name string) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	return r.first(func(e domain.Exercise) bool { return strings.EqualFold(e.Name, name) })
}

func (r *exerciseRepo) GetByAlias(_ context.Context, alias string) (*domain.Exercise, error) {
	alias = strings.TrimSpace(alias)
	return r.first(func(e domain.Exercise) bool {
		return slices.ContainsFunc(e.Aliases, func(a string) bool { return strings.EqualFold(a, alias) })
	})
}

func (r *exerciseRepo) first(match func(domain.Exercise) bool) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.sorted() {
		if match(e) {
			e = cloneExercise(e)
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *exerciseRepo) sorted() []domain.Exercise {
	out := make([]domain.Exercise, 0, len(r.s.exercises))
	for _, e := range r.s.exercises {
		out = append(out, cloneExercise(e))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *exerciseRepo) Search(_ context.Context, query string, limit int) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(query)
	out := []domain.Exercise{}
	for _, e := range r.sorted() {
		hit := strings.Contains(strings.ToLower(e.Name), q) ||
			slices.ContainsFunc(e.Aliases, func(a string) bool { return strings.Contains(strings.ToLower(a), q) })
		if !hit {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *exerciseRepo) List(_ context.Context, category string) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Exercise{}
	for _, e := range r.sorted() {
		if category == "" || e.Category == category {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *exerciseRepo) Update(_ context.Context, e *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.exercises[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(e.Name, e.ID) {
		return repository.ErrDuplicate
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = now()
	r.s.exercises[e.ID] = cloneExercise(*e)
	return nil
}

func (r *exerciseRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.exercises, id)
	return nil
}

func cloneExercise(e domain.Exercise) domain.Exercise {
	e.Aliases = slices.Clone(e.Aliases)
	e.Equipment = slices.Clone(e.Equipment)
	e.ModalitySuitability = slices.Clone(e.ModalitySuitability)
	return e
}
