package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowstate-server/models"
	"flowstate-server/utils/errors"
)

type SpotService struct {
	spots  SpotStore
	users  UserStore
	guard  *Guard
	logger *zap.Logger
}

func NewSpotService(spots SpotStore, users UserStore, guard *Guard, logger *zap.Logger) *SpotService {
	return &SpotService{
		spots:  spots,
		users:  users,
		guard:  guard,
		logger: logger,
	}
}

type CreateSpotInput struct {
	Name     string
	Location string
	Lat      float64
	Lng      float64
	Tags     []string
	Image    string
}

type AddReviewInput struct {
	Content string
	Rating  int
}

// ReviewResult bundles the spot and the acting user after an add-review, so
// the client can refresh both views without a second round trip.
type ReviewResult struct {
	Spot models.StudySpot `json:"spot"`
	User models.User      `json:"user"`
}

func (s *SpotService) ListSpots(ctx context.Context) ([]models.StudySpot, error) {
	return s.spots.ListSpots(ctx)
}

func (s *SpotService) GetSpot(ctx context.Context, spotID string) (models.StudySpot, error) {
	return s.spots.GetSpot(ctx, spotID)
}

func (s *SpotService) CreateSpot(ctx context.Context, actorID string, in CreateSpotInput) (models.StudySpot, error) {
	if actorID == "" {
		return models.StudySpot{}, errors.ErrUnauthorized
	}
	if strings.TrimSpace(in.Name) == "" {
		return models.StudySpot{}, errors.NewAPIError("INVALID_INPUT", "Spot name is required", errors.ErrInvalidInput.Status)
	}
	if in.Image == "" {
		return models.StudySpot{}, errors.NewAPIError("INVALID_INPUT", "Spot image is required", errors.ErrInvalidInput.Status)
	}
	if _, err := s.users.GetUser(ctx, actorID); err != nil {
		if err == errors.ErrNotFound {
			return models.StudySpot{}, errors.ErrUnauthorized
		}
		return models.StudySpot{}, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	spot := models.StudySpot{
		ID:        uuid.New().String(),
		CreatorID: actorID,
		Name:      in.Name,
		Location:  in.Location,
		Lat:       in.Lat,
		Lng:       in.Lng,
		Tags:      tags,
		Image:     in.Image,
		Reviews:   []models.Review{},
	}
	if err := s.spots.InsertSpot(ctx, spot); err != nil {
		return models.StudySpot{}, err
	}
	s.logger.Info("spot created", zap.String("spot_id", spot.ID), zap.String("creator_id", actorID))
	return spot, nil
}

func (s *SpotService) DeleteSpot(ctx context.Context, actorID, spotID string) error {
	if actorID == "" {
		return errors.ErrUnauthorized
	}
	spot, err := s.spots.GetSpot(ctx, spotID)
	if err != nil {
		return err
	}
	if !s.guard.CanDeleteSpot(actorID, spot) {
		return errors.ErrForbidden
	}
	if err := s.spots.DeleteSpot(ctx, spotID); err != nil {
		return err
	}
	s.logger.Info("spot deleted", zap.String("spot_id", spotID), zap.String("actor_id", actorID))
	return nil
}

// AddReview runs the two-step protocol: validate everything up front, then
// append atomically. The author's display counter is bumped only after the
// append persisted; a failed bump is logged and tolerated since the
// counter is a cache, never the source of truth.
func (s *SpotService) AddReview(ctx context.Context, actorID, spotID string, in AddReviewInput) (ReviewResult, error) {
	if actorID == "" {
		return ReviewResult{}, errors.ErrUnauthorized
	}
	if in.Rating < 1 || in.Rating > 5 {
		return ReviewResult{}, errors.NewAPIError("INVALID_INPUT", "Rating must be between 1 and 5", errors.ErrInvalidInput.Status)
	}
	if strings.TrimSpace(in.Content) == "" {
		return ReviewResult{}, errors.NewAPIError("INVALID_INPUT", "Review content is required", errors.ErrInvalidInput.Status)
	}

	user, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		if err == errors.ErrNotFound {
			return ReviewResult{}, errors.ErrUnauthorized
		}
		return ReviewResult{}, err
	}
	if _, err := s.spots.GetSpot(ctx, spotID); err != nil {
		return ReviewResult{}, err
	}

	review := models.Review{
		ID:             uuid.New().String(),
		CreatorID:      user.ID,
		CreatorName:    user.Name,
		CreatorPicture: user.Picture,
		Content:        in.Content,
		Rating:         in.Rating,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.spots.AppendReview(ctx, spotID, review); err != nil {
		return ReviewResult{}, err
	}

	if err := s.users.AdjustReviewCount(ctx, actorID, 1); err != nil {
		s.logger.Warn("review counter increment failed",
			zap.String("user_id", actorID), zap.Error(err))
	}

	spot, err := s.spots.GetSpot(ctx, spotID)
	if err != nil {
		return ReviewResult{}, err
	}
	user, err = s.users.GetUser(ctx, actorID)
	if err != nil {
		return ReviewResult{}, err
	}
	return ReviewResult{Spot: spot, User: user}, nil
}

func (s *SpotService) DeleteReview(ctx context.Context, actorID, spotID, reviewID string) (models.StudySpot, error) {
	if actorID == "" {
		return models.StudySpot{}, errors.ErrUnauthorized
	}
	spot, err := s.spots.GetSpot(ctx, spotID)
	if err != nil {
		return models.StudySpot{}, err
	}

	var review *models.Review
	for i := range spot.Reviews {
		if spot.Reviews[i].ID == reviewID {
			review = &spot.Reviews[i]
			break
		}
	}
	if review == nil {
		return models.StudySpot{}, errors.ErrNotFound
	}
	if !s.guard.CanDeleteReview(actorID, *review) {
		return models.StudySpot{}, errors.ErrForbidden
	}

	if err := s.spots.RemoveReview(ctx, spotID, reviewID); err != nil {
		return models.StudySpot{}, err
	}
	if err := s.users.AdjustReviewCount(ctx, review.CreatorID, -1); err != nil {
		s.logger.Warn("review counter decrement failed",
			zap.String("user_id", review.CreatorID), zap.Error(err))
	}

	return s.spots.GetSpot(ctx, spotID)
}

// Leaderboard recomputes the reviewer ranking from the live spot documents
// on every call.
func (s *SpotService) Leaderboard(ctx context.Context) ([]ReviewerRank, error) {
	spots, err := s.spots.ListSpots(ctx)
	if err != nil {
		return nil, err
	}
	return RankReviewers(spots), nil
}
