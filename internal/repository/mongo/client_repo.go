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

const clientCollectionName = "clients"

// mongoClientRepository implements repository.ClientRepository
type mongoClientRepository struct {
	collection *mongo.Collection
}

func NewMongoClientRepository(db *mongo.Database) repository.ClientRepository {
	return &mongoClientRepository{
		collection: db.Collection(clientCollectionName),
	}
}

func (r *mongoClientRepository) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	if client.Name == "" || !client.Type.Valid() {
		return primitive.NilObjectID, errors.New("client name and a valid type are required")
	}

	client.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, client)
	if err != nil {
		return primitive.NilObjectID, mapInsertErr(err)
	}
	return insertedID(result)
}

func (r *mongoClientRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	var client domain.Client
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&client); err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

// GetByUserID finds the client record linked to a signed-in athlete.
func (r *mongoClientRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Client, error) {
	var client domain.Client
	if err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&client); err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

func clientQuery(filter repository.ClientFilter) bson.M {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.CoachID != nil {
		query["coachId"] = *filter.CoachID
	}
	return query
}

func (r *mongoClientRepository) List(ctx context.Context, filter repository.ClientFilter) ([]domain.Client, error) {
	cursor, err := r.collection.Find(ctx, clientQuery(filter), options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	clients := []domain.Client{}
	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *mongoClientRepository) Count(ctx context.Context, filter repository.ClientFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, clientQuery(filter))
}

func (r *mongoClientRepository) Update(ctx context.Context, client *domain.Client) error {
	if client.ID == primitive.NilObjectID {
		return errors.New("client ID is required for update")
	}
	client.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"coachId":   client.CoachID,
			"userId":    client.UserID,
			"type":      client.Type,
			"name":      client.Name,
			"logoUrl":   client.LogoURL,
			"email":     client.Email,
			"phone":     client.Phone,
			"details":   client.Details,
			"updatedAt": client.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": client.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoClientRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func clientIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "name", Value: 1}}},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
}
