package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"flowstate-server/models"
	"flowstate-server/utils/errors"
)

type MongoSpotStore struct {
	collection *mongo.Collection
	timeout    time.Duration
	logger     *zap.Logger
}

func NewMongoSpotStore(db *mongo.Database, timeout time.Duration, logger *zap.Logger) *MongoSpotStore {
	return &MongoSpotStore{
		collection: db.Collection("studyspots"),
		timeout:    timeout,
		logger:     logger,
	}
}

func (s *MongoSpotStore) ListSpots(ctx context.Context) ([]models.StudySpot, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr(err)
	}
	defer cursor.Close(ctx)

	spots := []models.StudySpot{}
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, storeErr(err)
	}
	return spots, nil
}

func (s *MongoSpotStore) GetSpot(ctx context.Context, spotID string) (models.StudySpot, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var spot models.StudySpot
	err := s.collection.FindOne(ctx, bson.M{"_id": spotID}).Decode(&spot)
	if err != nil {
		return models.StudySpot{}, storeErr(err)
	}
	return spot, nil
}

func (s *MongoSpotStore) InsertSpot(ctx context.Context, spot models.StudySpot) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.collection.InsertOne(ctx, spot)
	return storeErr(err)
}

func (s *MongoSpotStore) DeleteSpot(ctx context.Context, spotID string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": spotID})
	if err != nil {
		return storeErr(err)
	}
	if result.DeletedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// AppendReview pushes onto the embedded collection with $push so two
// concurrent reviews on the same spot are both preserved.
func (s *MongoSpotStore) AppendReview(ctx context.Context, spotID string, review models.Review) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	update := bson.M{"$push": bson.M{"reviews": review}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": spotID}, update)
	if err != nil {
		return storeErr(err)
	}
	if result.MatchedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (s *MongoSpotStore) RemoveReview(ctx context.Context, spotID, reviewID string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	update := bson.M{"$pull": bson.M{"reviews": bson.M{"id": reviewID}}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": spotID}, update)
	if err != nil {
		return storeErr(err)
	}
	if result.MatchedCount == 0 || result.ModifiedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// EnsureSeedSpots inserts the two default campus spots when the collection
// is empty, so a fresh deployment is never blank. Seeded spots have no
// creator and stay deletable under the normal creator-or-admin rule unless
// their ids are listed as protected in configuration.
func (s *MongoSpotStore) EnsureSeedSpots(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, storeErr(err)
	}
	if count > 0 {
		return nil, nil
	}

	seeds := []models.StudySpot{
		{
			ID:       uuid.New().String(),
			Name:     "Hayden Library",
			Location: "Building 14",
			Lat:      42.3592,
			Lng:      -71.0895,
			Tags:     []string{"quiet", "outlets"},
			Image:    "/stud.jpg",
			Reviews:  []models.Review{},
		},
		{
			ID:       uuid.New().String(),
			Name:     "Student Center Lounge",
			Location: "Building W20",
			Lat:      42.3590,
			Lng:      -71.0950,
			Tags:     []string{"social", "late-night"},
			Image:    "/stud.jpg",
			Reviews:  []models.Review{},
		},
	}

	docs := make([]any, 0, len(seeds))
	ids := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		docs = append(docs, seed)
		ids = append(ids, seed.ID)
	}
	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return nil, storeErr(err)
	}
	s.logger.Info("seeded default study spots", zap.Int("count", len(seeds)))
	return ids, nil
}
