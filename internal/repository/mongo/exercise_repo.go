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

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise. Names are unique across the library.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if strings.TrimSpace(exercise.Name) == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, mapInsertErr(err)
	}
	return insertedID(result)
}

func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoExerciseRepository) GetByName(ctx context.Context, name string) (*domain.Exercise, error) {
	return r.findOne(ctx, bson.M{"name": exactFold(strings.TrimSpace(name))})
}

func (r *mongoExerciseRepository) GetByAlias(ctx context.Context, alias string) (*domain.Exercise, error) {
	return r.findOne(ctx, bson.M{"aliases": exactFold(strings.TrimSpace(alias))})
}

func (r *mongoExerciseRepository) findOne(ctx context.Context, filter bson.M) (*domain.Exercise, error) {
	var exercise domain.Exercise
	if err := r.collection.FindOne(ctx, filter).Decode(&exercise); err != nil {
		return nil, notFound(err)
	}
	return &exercise, nil
}

func (r *mongoExerciseRepository) Search(ctx context.Context, query string, limit int) ([]domain.Exercise, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"name": containsFold(query)},
		bson.M{"aliases": containsFold(query)},
	}}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, findOptions)
}

func (r *mongoExerciseRepository) List(ctx context.Context, category string) ([]domain.Exercise, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *mongoExerciseRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Exercise, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Update modifies an existing exercise and bumps UpdatedAt.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	if strings.TrimSpace(exercise.Name) == "" {
		return errors.New("exercise name cannot be empty")
	}
	exercise.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"name":                exercise.Name,
			"category":            exercise.Category,
			"subcategory":         exercise.Subcategory,
			"modalitySuitability": exercise.ModalitySuitability,
			"equipment":           exercise.Equipment,
			"aliases":             exercise.Aliases,
			"description":         exercise.Description,
			"videoUrl":            exercise.VideoURL,
			"updatedAt":           exercise.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update)
	if err != nil {
		return mapInsertErr(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func exerciseIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// Unique regardless of case.
			Keys: bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetCollation(&options.Collation{Locale: "en", Strength: 2}),
		},
		{Keys: bson.D{{Key: "aliases", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}
}
