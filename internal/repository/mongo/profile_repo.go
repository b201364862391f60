package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const profileCollectionName = "profiles"

// mongoProfileRepository implements repository.ProfileRepository using MongoDB.
type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new instance of mongoProfileRepository.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(profileCollectionName),
	}
}

// Create inserts a new profile. The role may be empty: the user picks it during onboarding.
func (r *mongoProfileRepository) Create(ctx context.Context, profile *domain.Profile) (primitive.ObjectID, error) {
	if profile.Email == "" || profile.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("profile email and password hash are required")
	}

	profile.ID = primitive.NewObjectID()
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return primitive.NilObjectID, mapInsertErr(err)
	}
	return insertedID(result)
}

func (r *mongoProfileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a profile by email address; emails are stored lowercased.
func (r *mongoProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *mongoProfileRepository) GetByResetToken(ctx context.Context, token string) (*domain.Profile, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"resetToken": token})
}

func (r *mongoProfileRepository) findOne(ctx context.Context, filter bson.M) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.collection.FindOne(ctx, filter).Decode(&profile); err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// List returns profiles matching the filter, sorted by full name.
func (r *mongoProfileRepository) List(ctx context.Context, filter repository.ProfileFilter) ([]domain.Profile, error) {
	query := bson.M{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query["$or"] = bson.A{
			bson.M{"fullName": containsFold(s)},
			bson.M{"email": containsFold(s)},
		}
	}
	if len(filter.Roles) > 0 {
		query["role"] = bson.M{"$in": filter.Roles}
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}, {Key: "email", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []domain.Profile{}
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Update replaces every mutable field of the profile.
func (r *mongoProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	if profile.ID == primitive.NilObjectID {
		return errors.New("profile ID is required for update")
	}
	profile.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": profile.ID}, profile)
	if err != nil {
		return mapInsertErr(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func profileIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "resetToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
}
