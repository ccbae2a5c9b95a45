package services

import (
	"context"

	"flowstate-server/models"
)

// ProfileUpdate carries the owner-editable profile fields; nil means leave
// the field alone.
type ProfileUpdate struct {
	Name      *string
	Bio       *string
	ShowEmail *bool
	Picture   *string
}

// SpotStore persists study spots and their embedded review collections.
// Review mutations must be applied atomically inside the owning spot
// document so concurrent writers never lose each other's reviews.
type SpotStore interface {
	ListSpots(ctx context.Context) ([]models.StudySpot, error)
	GetSpot(ctx context.Context, spotID string) (models.StudySpot, error)
	InsertSpot(ctx context.Context, spot models.StudySpot) error
	DeleteSpot(ctx context.Context, spotID string) error
	AppendReview(ctx context.Context, spotID string, review models.Review) error
	RemoveReview(ctx context.Context, spotID, reviewID string) error
}

// UserStore persists user documents. Bookmark and follow mutations use
// set-membership updates, never whole-document rewrites.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetUserByProvider(ctx context.Context, providerID string) (models.User, error)
	InsertUser(ctx context.Context, user models.User) error
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error
	AddBookmark(ctx context.Context, userID, spotID string) error
	RemoveBookmark(ctx context.Context, userID, spotID string) error
	AdjustReviewCount(ctx context.Context, userID string, delta int) error
	Follow(ctx context.Context, followerID, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
	ReplaceTasks(ctx context.Context, userID string, tasks []models.Task) error
}
