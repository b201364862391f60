package repository

import (
	"context"
	"time"

	"cvos/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ProfileFilter narrows profile listings. Search matches full name or email,
// case-insensitively.
type ProfileFilter struct {
	Search string
	Roles  []domain.Role
}

// ProfileRepository stores user accounts.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetByResetToken(ctx context.Context, token string) (*domain.Profile, error)
	List(ctx context.Context, filter ProfileFilter) ([]domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
}

// ClientFilter narrows client listings. Zero values match everything.
type ClientFilter struct {
	Type    domain.ClientType
	CoachID *primitive.ObjectID
}

// ClientRepository stores athletes and gyms.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]domain.Client, error) // sorted by name
	Count(ctx context.Context, filter ClientFilter) (int64, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProgramFilter narrows program listings. Zero values match everything.
type ProgramFilter struct {
	CoachID    *primitive.ObjectID
	ClientID   *primitive.ObjectID
	IsTemplate *bool
	Status     domain.ProgramStatus
	Name       string     // exact match
	EndsBefore *time.Time // attributes.endDate < EndsBefore
}

// ProgramRepository stores program roots.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	List(ctx context.Context, filter ProgramFilter) ([]domain.Program, error) // newest update first
	Count(ctx context.Context, filter ProgramFilter) (int64, error)
	Update(ctx context.Context, program *domain.Program) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DetachClient clears clientId on every program of the client.
	DetachClient(ctx context.Context, clientID primitive.ObjectID) error
}

// MesocycleRepository stores program weeks.
type MesocycleRepository interface {
	Create(ctx context.Context, mesocycle *domain.Mesocycle) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Mesocycle, error)
	ListByProgram(ctx context.Context, programID primitive.ObjectID) ([]domain.Mesocycle, error) // sorted by week
	Update(ctx context.Context, mesocycle *domain.Mesocycle) error
	DeleteByProgram(ctx context.Context, programID primitive.ObjectID) error
}

// DayRepository stores the days of each week.
type DayRepository interface {
	Create(ctx context.Context, day *domain.Day) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Day, error)
	ListByMesocycles(ctx context.Context, mesocycleIDs []primitive.ObjectID) ([]domain.Day, error) // sorted by day number
	Update(ctx context.Context, day *domain.Day) error
	DeleteByMesocycles(ctx context.Context, mesocycleIDs []primitive.ObjectID) error
}

// WorkoutBlockRepository stores the blocks of each day.
type WorkoutBlockRepository interface {
	CreateMany(ctx context.Context, blocks []*domain.WorkoutBlock) error
	ListByDays(ctx context.Context, dayIDs []primitive.ObjectID) ([]domain.WorkoutBlock, error) // sorted by order index
	Count(ctx context.Context) (int64, error)
	DeleteByDays(ctx context.Context, dayIDs []primitive.ObjectID) error
}

// ExerciseRepository stores the shared exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// GetByName and GetByAlias match exactly, ignoring case.
	GetByName(ctx context.Context, name string) (*domain.Exercise, error)
	GetByAlias(ctx context.Context, alias string) (*domain.Exercise, error)
	// Search matches a substring of the name or any alias, ignoring case.
	Search(ctx context.Context, query string, limit int) ([]domain.Exercise, error)
	List(ctx context.Context, category string) ([]domain.Exercise, error) // sorted by name
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
