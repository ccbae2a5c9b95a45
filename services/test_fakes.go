package services

import (
	"context"
	"strconv"
	"sync"

	"flowstate-server/models"
	"flowstate-server/utils/errors"
)

// In-memory store fakes used by the test suites. They mirror the Mongo
// stores' semantics: set-membership updates are idempotent, review
// mutations touch only the owning spot, and missing documents surface as
// NotFound.

type FakeSpotStore struct {
	mu    sync.Mutex
	spots map[string]models.StudySpot
	order []string

	// AppendErr, when set, makes AppendReview fail without mutating state.
	AppendErr error
}

func NewFakeSpotStore() *FakeSpotStore {
	return &FakeSpotStore{spots: make(map[string]models.StudySpot)}
}

func copySpot(spot models.StudySpot) models.StudySpot {
	out := spot
	out.Tags = append([]string(nil), spot.Tags...)
	out.Reviews = append([]models.Review(nil), spot.Reviews...)
	return out
}

func (f *FakeSpotStore) ListSpots(ctx context.Context) ([]models.StudySpot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.StudySpot, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, copySpot(f.spots[id]))
	}
	return out, nil
}

func (f *FakeSpotStore) GetSpot(ctx context.Context, spotID string) (models.StudySpot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	spot, ok := f.spots[spotID]
	if !ok {
		return models.StudySpot{}, errors.ErrNotFound
	}
	return copySpot(spot), nil
}

func (f *FakeSpotStore) InsertSpot(ctx context.Context, spot models.StudySpot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.spots[spot.ID]; !ok {
		f.order = append(f.order, spot.ID)
	}
	f.spots[spot.ID] = copySpot(spot)
	return nil
}

func (f *FakeSpotStore) DeleteSpot(ctx context.Context, spotID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.spots[spotID]; !ok {
		return errors.ErrNotFound
	}
	delete(f.spots, spotID)
	for i, id := range f.order {
		if id == spotID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *FakeSpotStore) AppendReview(ctx context.Context, spotID string, review models.Review) error {
	if f.AppendErr != nil {
		return f.AppendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	spot, ok := f.spots[spotID]
	if !ok {
		return errors.ErrNotFound
	}
	spot.Reviews = append(spot.Reviews, review)
	f.spots[spotID] = spot
	return nil
}

func (f *FakeSpotStore) RemoveReview(ctx context.Context, spotID, reviewID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	spot, ok := f.spots[spotID]
	if !ok {
		return errors.ErrNotFound
	}
	for i, review := range spot.Reviews {
		if review.ID == reviewID {
			spot.Reviews = append(spot.Reviews[:i], spot.Reviews[i+1:]...)
			f.spots[spotID] = spot
			return nil
		}
	}
	return errors.ErrNotFound
}

type FakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User

	// AdjustErr, when set, makes AdjustReviewCount fail; the counter is
	// best-effort so callers must tolerate this.
	AdjustErr error
}

func NewFakeUserStore() *FakeUserStore {
	return &FakeUserStore{users: make(map[string]models.User)}
}

func copyUser(user models.User) models.User {
	out := user
	out.BookmarkedSpots = append([]string(nil), user.BookmarkedSpots...)
	out.Following = append([]string(nil), user.Following...)
	out.Followers = append([]string(nil), user.Followers...)
	out.Tasks = append([]models.Task(nil), user.Tasks...)
	return out
}

func (f *FakeUserStore) GetUser(ctx context.Context, userID string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return models.User{}, errors.ErrNotFound
	}
	return copyUser(user), nil
}

func (f *FakeUserStore) GetUserByProvider(ctx context.Context, providerID string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.ProviderID == providerID {
			return copyUser(user), nil
		}
	}
	return models.User{}, errors.ErrNotFound
}

func (f *FakeUserStore) InsertUser(ctx context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = copyUser(user)
	return nil
}

func (f *FakeUserStore) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return errors.ErrNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.ShowEmail != nil {
		user.ShowEmail = *update.ShowEmail
	}
	if update.Picture != nil {
		user.Picture = *update.Picture
	}
	f.users[userID] = user
	return nil
}

func (f *FakeUserStore) AddBookmark(ctx context.Context, userID, spotID string) error {
	return f.mutate(userID, func(user *models.User) {
		for _, id := range user.BookmarkedSpots {
			if id == spotID {
				return
			}
		}
		user.BookmarkedSpots = append(user.BookmarkedSpots, spotID)
	})
}

func (f *FakeUserStore) RemoveBookmark(ctx context.Context, userID, spotID string) error {
	return f.mutate(userID, func(user *models.User) {
		for i, id := range user.BookmarkedSpots {
			if id == spotID {
				user.BookmarkedSpots = append(user.BookmarkedSpots[:i], user.BookmarkedSpots[i+1:]...)
				return
			}
		}
	})
}

func (f *FakeUserStore) AdjustReviewCount(ctx context.Context, userID string, delta int) error {
	if f.AdjustErr != nil {
		return f.AdjustErr
	}
	return f.mutate(userID, func(user *models.User) {
		if delta < 0 && user.ReviewCount < -delta {
			return
		}
		user.ReviewCount += delta
	})
}

func (f *FakeUserStore) Follow(ctx context.Context, followerID, targetID string) error {
	if err := f.mutate(followerID, func(user *models.User) {
		user.Following = addToSet(user.Following, targetID)
	}); err != nil {
		return err
	}
	return f.mutate(targetID, func(user *models.User) {
		user.Followers = addToSet(user.Followers, followerID)
	})
}

func (f *FakeUserStore) Unfollow(ctx context.Context, followerID, targetID string) error {
	if err := f.mutate(followerID, func(user *models.User) {
		user.Following = removeFromSet(user.Following, targetID)
	}); err != nil {
		return err
	}
	return f.mutate(targetID, func(user *models.User) {
		user.Followers = removeFromSet(user.Followers, followerID)
	})
}

func (f *FakeUserStore) ReplaceTasks(ctx context.Context, userID string, tasks []models.Task) error {
	return f.mutate(userID, func(user *models.User) {
		user.Tasks = append([]models.Task(nil), tasks...)
	})
}

func (f *FakeUserStore) mutate(userID string, apply func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return errors.ErrNotFound
	}
	apply(&user)
	f.users[userID] = user
	return nil
}

func addToSet(set []string, value string) []string {
	for _, v := range set {
		if v == value {
			return set
		}
	}
	return append(set, value)
}

func removeFromSet(set []string, value string) []string {
	for i, v := range set {
		if v == value {
			return append(set[:i], set[i+1:]...)
		}
	}
	return set
}

type FakeSessions struct {
	mu       sync.Mutex
	sessions map[string]string
	next     int
}

func NewFakeSessions() *FakeSessions {
	return &FakeSessions{sessions: make(map[string]string)}
}

func (f *FakeSessions) Create(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	token := "session-" + userID + "-" + strconv.Itoa(f.next)
	f.sessions[token] = userID
	return token, nil
}

func (f *FakeSessions) Resolve(ctx context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, ok := f.sessions[token]
	if !ok {
		return "", errors.ErrUnauthorized
	}
	return userID, nil
}

func (f *FakeSessions) Destroy(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}
