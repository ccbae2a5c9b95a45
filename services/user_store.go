package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"flowstate-server/models"
	"flowstate-server/utils/errors"
)

type MongoUserStore struct {
	collection *mongo.Collection
	timeout    time.Duration
	logger     *zap.Logger
}

func NewMongoUserStore(db *mongo.Database, timeout time.Duration, logger *zap.Logger) *MongoUserStore {
	collection := db.Collection("users")

	// Ensure unique index on the identity-provider subject, the upsert key
	// for first-login account creation.
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "provider_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(context.Background(), indexModel); err != nil {
		logger.Warn("failed to create unique index on users", zap.Error(err))
	}

	return &MongoUserStore{
		collection: collection,
		timeout:    timeout,
		logger:     logger,
	}
}

func (s *MongoUserStore) GetUser(ctx context.Context, userID string) (models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return models.User{}, storeErr(err)
	}
	return user, nil
}

func (s *MongoUserStore) GetUserByProvider(ctx context.Context, providerID string) (models.User, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"provider_id": providerID}).Decode(&user)
	if err != nil {
		return models.User{}, storeErr(err)
	}
	return user, nil
}

func (s *MongoUserStore) InsertUser(ctx context.Context, user models.User) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.collection.InsertOne(ctx, user)
	return storeErr(err)
}

func (s *MongoUserStore) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.ShowEmail != nil {
		set["show_email"] = *update.ShowEmail
	}
	if update.Picture != nil {
		set["picture"] = *update.Picture
	}
	if len(set) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		return storeErr(err)
	}
	if result.MatchedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// AddBookmark relies on $addToSet so repeated adds can never produce a
// duplicate entry.
func (s *MongoUserStore) AddBookmark(ctx context.Context, userID, spotID string) error {
	return s.updateSet(ctx, userID, bson.M{"$addToSet": bson.M{"bookmarked_spots": spotID}})
}

func (s *MongoUserStore) RemoveBookmark(ctx context.Context, userID, spotID string) error {
	return s.updateSet(ctx, userID, bson.M{"$pull": bson.M{"bookmarked_spots": spotID}})
}

// AdjustReviewCount bumps the display-only counter. Decrements are guarded
// so the counter never goes below zero even after a divergence.
func (s *MongoUserStore) AdjustReviewCount(ctx context.Context, userID string, delta int) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	filter := bson.M{"_id": userID}
	if delta < 0 {
		filter["review_count"] = bson.M{"$gte": -delta}
	}
	_, err := s.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"review_count": delta}})
	return storeErr(err)
}

// Follow applies the symmetric pair update: the target joins the actor's
// following set and the actor joins the target's followers set.
func (s *MongoUserStore) Follow(ctx context.Context, followerID, targetID string) error {
	if err := s.updateSet(ctx, followerID, bson.M{"$addToSet": bson.M{"following": targetID}}); err != nil {
		return err
	}
	return s.updateSet(ctx, targetID, bson.M{"$addToSet": bson.M{"followers": followerID}})
}

func (s *MongoUserStore) Unfollow(ctx context.Context, followerID, targetID string) error {
	if err := s.updateSet(ctx, followerID, bson.M{"$pull": bson.M{"following": targetID}}); err != nil {
		return err
	}
	return s.updateSet(ctx, targetID, bson.M{"$pull": bson.M{"followers": followerID}})
}

func (s *MongoUserStore) ReplaceTasks(ctx context.Context, userID string, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"tasks": tasks}})
	if err != nil {
		return storeErr(err)
	}
	if result.MatchedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) updateSet(ctx context.Context, userID string, update bson.M) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return storeErr(err)
	}
	if result.MatchedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}
