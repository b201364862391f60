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

const (
	mesocycleCollectionName = "mesocycles"
	dayCollectionName       = "days"
	blockCollectionName     = "workout_blocks"
)

// --- Mesocycles ---

type mongoMesocycleRepository struct {
	collection *mongo.Collection
}

func NewMongoMesocycleRepository(db *mongo.Database) repository.MesocycleRepository {
	return &mongoMesocycleRepository{collection: db.Collection(mesocycleCollectionName)}
}

func (r *mongoMesocycleRepository) Create(ctx context.Context, m *domain.Mesocycle) (primitive.ObjectID, error) {
	if m.ProgramID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("mesocycle program ID is required")
	}
	m.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

func (r *mongoMesocycleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Mesocycle, error) {
	var m domain.Mesocycle
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *mongoMesocycleRepository) ListByProgram(ctx context.Context, programID primitive.ObjectID) ([]domain.Mesocycle, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"programId": programID}, options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	mesocycles := []domain.Mesocycle{}
	if err = cursor.All(ctx, &mesocycles); err != nil {
		return nil, err
	}
	return mesocycles, nil
}

func (r *mongoMesocycleRepository) Update(ctx context.Context, m *domain.Mesocycle) error {
	m.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"weekNumber": m.WeekNumber,
		"focus":      m.Focus,
		"attributes": m.Attributes,
		"updatedAt":  m.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": m.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoMesocycleRepository) DeleteByProgram(ctx context.Context, programID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"programId": programID})
	return err
}

func mesocycleIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "programId", Value: 1}, {Key: "weekNumber", Value: 1}}},
	}
}

// --- Days ---

type mongoDayRepository struct {
	collection *mongo.Collection
}

func NewMongoDayRepository(db *mongo.Database) repository.DayRepository {
	return &mongoDayRepository{collection: db.Collection(dayCollectionName)}
}

func (r *mongoDayRepository) Create(ctx context.Context, d *domain.Day) (primitive.ObjectID, error) {
	if d.MesocycleID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("day mesocycle ID is required")
	}
	d.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, d)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedID(result)
}

func (r *mongoDayRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Day, error) {
	var d domain.Day
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *mongoDayRepository) ListByMesocycles(ctx context.Context, mesocycleIDs []primitive.ObjectID) ([]domain.Day, error) {
	days := []domain.Day{}
	if len(mesocycleIDs) == 0 {
		return days, nil
	}
	cursor, err := r.collection.Find(ctx,
		bson.M{"mesocycleId": bson.M{"$in": mesocycleIDs}},
		options.Find().SetSort(bson.D{{Key: "dayNumber", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func (r *mongoDayRepository) Update(ctx context.Context, d *domain.Day) error {
	d.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"dayNumber": d.DayNumber,
		"name":      d.Name,
		"date":      d.Date,
		"isRestDay": d.IsRestDay,
		"notes":     d.Notes,
		"updatedAt": d.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": d.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoDayRepository) DeleteByMesocycles(ctx context.Context, mesocycleIDs []primitive.ObjectID) error {
	if len(mesocycleIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"mesocycleId": bson.M{"$in": mesocycleIDs}})
	return err
}

func dayIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "mesocycleId", Value: 1}, {Key: "dayNumber", Value: 1}}},
	}
}

// --- Workout blocks ---

type mongoWorkoutBlockRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutBlockRepository(db *mongo.Database) repository.WorkoutBlockRepository {
	return &mongoWorkoutBlockRepository{collection: db.Collection(blockCollectionName)}
}

// CreateMany assigns IDs and timestamps, then inserts all blocks in one round trip.
func (r *mongoWorkoutBlockRepository) CreateMany(ctx context.Context, blocks []*domain.WorkoutBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(blocks))
	for _, b := range blocks {
		if b.DayID == primitive.NilObjectID {
			return errors.New("workout block day ID is required")
		}
		b.ID = primitive.NewObjectID()
		b.CreatedAt = now
		b.UpdatedAt = now
		docs = append(docs, b)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *mongoWorkoutBlockRepository) ListByDays(ctx context.Context, dayIDs []primitive.ObjectID) ([]domain.WorkoutBlock, error) {
	blocks := []domain.WorkoutBlock{}
	if len(dayIDs) == 0 {
		return blocks, nil
	}
	cursor, err := r.collection.Find(ctx,
		bson.M{"dayId": bson.M{"$in": dayIDs}},
		options.Find().SetSort(bson.D{{Key: "orderIndex", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *mongoWorkoutBlockRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.EstimatedDocumentCount(ctx)
}

func (r *mongoWorkoutBlockRepository) DeleteByDays(ctx context.Context, dayIDs []primitive.ObjectID) error {
	if len(dayIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"dayId": bson.M{"$in": dayIDs}})
	return err
}

func blockIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "dayId", Value: 1}, {Key: "orderIndex", Value: 1}}},
	}
}
