// Package app wires configuration into repositories and services for the
// server and the seed command.
package app

import (
	"context"
	"fmt"
	"time"

	"cvos/coach-app/internal/access"
	"cvos/coach-app/internal/api"
	"cvos/coach-app/internal/assist"
	"cvos/coach-app/internal/config"
	"cvos/coach-app/internal/methodology"
	"cvos/coach-app/internal/notify"
	"cvos/coach-app/internal/repository"
	"cvos/coach-app/internal/repository/memory"
	"cvos/coach-app/internal/repository/mongo"
	"cvos/coach-app/internal/service"
	"cvos/coach-app/internal/storage"

	"go.uber.org/zap"
)

const indexTimeout = time.Minute

// Repositories is one backend's set of stores.
type Repositories struct {
	Profiles      repository.ProfileRepository
	Clients       repository.ClientRepository
	Programs      repository.ProgramRepository
	Mesocycles    repository.MesocycleRepository
	Days          repository.DayRepository
	WorkoutBlocks repository.WorkoutBlockRepository
	Exercises     repository.ExerciseRepository
}

// OpenRepositories connects the configured backend. The returned func
// releases it.
func OpenRepositories(cfg config.DatabaseConfig, log *zap.Logger) (*Repositories, func(), error) {
	switch cfg.Driver {
	case "memory":
		log.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &Repositories{
			Profiles:      store.Profiles(),
			Clients:       store.Clients(),
			Programs:      store.Programs(),
			Mesocycles:    store.Mesocycles(),
			Days:          store.Days(),
			WorkoutBlocks: store.WorkoutBlocks(),
			Exercises:     store.Exercises(),
		}, func() {}, nil

	case "mongo", "":
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		db := client.Database(cfg.Name)
		log.Info("database connection established", zap.String("database", cfg.Name))

		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		mongo.EnsureIndexes(ctx, db, log)
		cancel()

		closeFn := func() {
			if err := mongo.DisconnectDB(client); err != nil {
				log.Error("failed to disconnect mongodb", zap.Error(err))
			}
		}
		return &Repositories{
			Profiles:      mongo.NewMongoProfileRepository(db),
			Clients:       mongo.NewMongoClientRepository(db),
			Programs:      mongo.NewMongoProgramRepository(db),
			Mesocycles:    mongo.NewMongoMesocycleRepository(db),
			Days:          mongo.NewMongoDayRepository(db),
			WorkoutBlocks: mongo.NewMongoWorkoutBlockRepository(db),
			Exercises:     mongo.NewMongoExerciseRepository(db),
		}, closeFn, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// NewFileStorage returns S3 storage when credentials and a bucket are set,
// otherwise storage that rejects every call.
func NewFileStorage(ctx context.Context, cfg config.S3Config, log *zap.Logger) (storage.FileStorage, error) {
	if cfg.AccessKeyID == "" || cfg.BucketName == "" {
		log.Warn("S3 not configured, avatar uploads are disabled")
		return storage.Disabled{}, nil
	}
	return storage.NewS3Storage(ctx, cfg, log)
}

// NewNotifier sends mail through Resend when an API key is set.
func NewNotifier(cfg config.EmailConfig, log *zap.Logger) notify.Notifier {
	if cfg.APIKey == "" {
		log.Warn("email API key not set, mails are only logged")
		return notify.NewLogNotifier(log)
	}
	return notify.NewResendNotifier(cfg.APIKey, cfg.From, log)
}

// NewAssistant returns the Gemini assistant when an API key is set.
func NewAssistant(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (assist.Assistant, error) {
	if cfg.APIKey == "" {
		log.Warn("AI API key not set, exercise detail suggestions are disabled")
		return assist.Disabled{}, nil
	}
	return assist.NewGeminiAssistant(ctx, cfg.APIKey, cfg.Model, log)
}

// NewServices builds every service on top of repos.
func NewServices(cfg config.Config, repos *Repositories, files storage.FileStorage, mail notify.Notifier) api.Services {
	catalog := methodology.Default()
	roles := access.NewRoleResolver(access.NewRoleCache(cfg.Access.RoleCacheTTL), repos.Profiles)

	return api.Services{
		Auth:       service.NewAuthService(repos.Profiles, mail, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.Email.AppURL),
		Profiles:   service.NewProfileService(repos.Profiles, roles, files),
		Onboarding: service.NewOnboardingService(repos.Profiles, roles, files),
		Clients:    service.NewClientService(repos.Clients, repos.Profiles, repos.Programs),
		Exercises:  service.NewExerciseService(repos.Exercises),
		Programs: service.NewProgramService(service.ProgramRepositories{
			Programs:   repos.Programs,
			Mesocycles: repos.Mesocycles,
			Days:       repos.Days,
			Blocks:     repos.WorkoutBlocks,
			Clients:    repos.Clients,
			Profiles:   repos.Profiles,
			Exercises:  repos.Exercises,
		}, catalog),
		Assistant: assist.Disabled{},
		Catalog:   catalog,
		Roles:     roles,
		JWTSecret: cfg.JWT.Secret,
	}
}
