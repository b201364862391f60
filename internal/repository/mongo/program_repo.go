package mongo

import (
	"context"
	"errors"
	"time"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const programCollectionName = "programs"

// mongoProgramRepository implements repository.ProgramRepository
type mongoProgramRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramRepository creates a new Program repository backed by MongoDB.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		collection: db.Collection(programCollectionName),
	}
}

func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.Name == "" || program.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("program name and coach ID are required")
	}

	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, program)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

func (r *mongoProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	var program domain.Program
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&program); err != nil {
		return nil, notFound(err)
	}
	return &program, nil
}

func programQuery(filter repository.ProgramFilter) bson.M {
	query := bson.M{}
	if filter.CoachID != nil {
		query["coachId"] = *filter.CoachID
	}
	if filter.ClientID != nil {
		query["clientId"] = *filter.ClientID
	}
	if filter.IsTemplate != nil {
		query["isTemplate"] = *filter.IsTemplate
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Name != "" {
		query["name"] = filter.Name
	}
	if filter.EndsBefore != nil {
		query["attributes.endDate"] = bson.M{"$lt": *filter.EndsBefore}
	}
	return query
}

func (r *mongoProgramRepository) List(ctx context.Context, filter repository.ProgramFilter) ([]domain.Program, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, programQuery(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	programs := []domain.Program{}
	if err = cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *mongoProgramRepository) Count(ctx context.Context, filter repository.ProgramFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, programQuery(filter))
}

// Update rewrites the program document; the owner never changes here.
func (r *mongoProgramRepository) Update(ctx context.Context, program *domain.Program) error {
	if program.ID == primitive.NilObjectID {
		return errors.New("program ID is required for update")
	}
	program.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"clientId":    program.ClientID,
			"name":        program.Name,
			"description": program.Description,
			"status":      program.Status,
			"isTemplate":  program.IsTemplate,
			"attributes":  program.Attributes,
			"updatedAt":   program.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": program.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProgramRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProgramRepository) DetachClient(ctx context.Context, clientID primitive.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"clientId": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"clientId": clientID}, update)
	return err
}

func programIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "coachId", Value: 1}, {Key: "updatedAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "attributes.endDate", Value: 1}}},
	}
}
