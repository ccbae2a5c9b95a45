package services

import (
	"context"

	"go.uber.org/zap"

	"flowstate-server/models"
	"flowstate-server/utils/errors"
)

type UserService struct {
	users  UserStore
	spots  SpotStore
	logger *zap.Logger
}

func NewUserService(users UserStore, spots SpotStore, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		spots:  spots,
		logger: logger,
	}
}

// Profile is the aggregate view of one user: the document itself, the
// reviews they have written across all spots, and the scan-derived review
// total, which is authoritative over the cached counter on the document.
type Profile struct {
	User        models.User      `json:"user"`
	Reviews     []AuthoredReview `json:"reviews"`
	ReviewTotal int              `json:"review_total"`
}

// GetProfile returns userID's profile as seen by viewerID. Email is
// redacted unless the owner is viewing or show_email is set.
func (s *UserService) GetProfile(ctx context.Context, viewerID, userID string) (Profile, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if !user.ShowEmail && viewerID != userID {
		user.Email = ""
	}

	spots, err := s.spots.ListSpots(ctx)
	if err != nil {
		return Profile{}, err
	}
	authored := ReviewsByAuthor(spots, userID)
	return Profile{
		User:        user,
		Reviews:     authored,
		ReviewTotal: len(authored),
	}, nil
}

// ToggleBookmark flips spotID's membership in the actor's bookmark set:
// present removes, absent adds, exactly one membership change per call.
// Returns the full updated user so the caller can refresh derived views.
func (s *UserService) ToggleBookmark(ctx context.Context, actorID, spotID string) (models.User, error) {
	if actorID == "" {
		return models.User{}, errors.ErrUnauthorized
	}
	user, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		return models.User{}, err
	}
	if _, err := s.spots.GetSpot(ctx, spotID); err != nil {
		return models.User{}, err
	}

	bookmarked := false
	for _, id := range user.BookmarkedSpots {
		if id == spotID {
			bookmarked = true
			break
		}
	}
	if bookmarked {
		err = s.users.RemoveBookmark(ctx, actorID, spotID)
	} else {
		err = s.users.AddBookmark(ctx, actorID, spotID)
	}
	if err != nil {
		return models.User{}, err
	}
	return s.users.GetUser(ctx, actorID)
}

func (s *UserService) UpdateProfile(ctx context.Context, actorID string, update ProfileUpdate) (models.User, error) {
	if actorID == "" {
		return models.User{}, errors.ErrUnauthorized
	}
	if err := s.users.UpdateProfile(ctx, actorID, update); err != nil {
		return models.User{}, err
	}
	return s.users.GetUser(ctx, actorID)
}

func (s *UserService) ReplaceTasks(ctx context.Context, actorID string, tasks []models.Task) (models.User, error) {
	if actorID == "" {
		return models.User{}, errors.ErrUnauthorized
	}
	if err := s.users.ReplaceTasks(ctx, actorID, tasks); err != nil {
		return models.User{}, err
	}
	return s.users.GetUser(ctx, actorID)
}

// Follow adds the symmetric pair: target into the actor's following set,
// actor into the target's followers set. Both sides verified to exist
// before either document is touched.
func (s *UserService) Follow(ctx context.Context, actorID, targetID string) (models.User, error) {
	if err := s.checkFollowPair(ctx, actorID, targetID); err != nil {
		return models.User{}, err
	}
	if err := s.users.Follow(ctx, actorID, targetID); err != nil {
		return models.User{}, err
	}
	s.logger.Info("follow", zap.String("follower_id", actorID), zap.String("target_id", targetID))
	return s.users.GetUser(ctx, actorID)
}

func (s *UserService) Unfollow(ctx context.Context, actorID, targetID string) (models.User, error) {
	if err := s.checkFollowPair(ctx, actorID, targetID); err != nil {
		return models.User{}, err
	}
	if err := s.users.Unfollow(ctx, actorID, targetID); err != nil {
		return models.User{}, err
	}
	return s.users.GetUser(ctx, actorID)
}

func (s *UserService) checkFollowPair(ctx context.Context, actorID, targetID string) error {
	if actorID == "" {
		return errors.ErrUnauthorized
	}
	if targetID == "" || targetID == actorID {
		return errors.NewAPIError("INVALID_INPUT", "Cannot follow yourself", errors.ErrInvalidInput.Status)
	}
	if _, err := s.users.GetUser(ctx, actorID); err != nil {
		if err == errors.ErrNotFound {
			return errors.ErrUnauthorized
		}
		return err
	}
	if _, err := s.users.GetUser(ctx, targetID); err != nil {
		return err
	}
	return nil
}
