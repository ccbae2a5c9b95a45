package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowstate-server/models"
	"flowstate-server/utils/errors"
)

func newUserFixture(t *testing.T) (*UserService, *FakeSpotStore, *FakeUserStore) {
	t.Helper()
	spots := NewFakeSpotStore()
	users := NewFakeUserStore()
	return NewUserService(users, spots, zap.NewNop()), spots, users
}

func TestToggleBookmark(t *testing.T) {
	ctx := context.Background()

	t.Run("requires an authenticated actor", func(t *testing.T) {
		service, _, _ := newUserFixture(t)
		_, err := service.ToggleBookmark(ctx, "", "spot-1")
		assert.Equal(t, errors.ErrUnauthorized, err)
	})

	t.Run("unknown spot is NotFound", func(t *testing.T) {
		service, _, users := newUserFixture(t)
		seedUser(t, users, "u1", "Alice")
		_, err := service.ToggleBookmark(ctx, "u1", "missing")
		assert.Equal(t, errors.ErrNotFound, err)
	})

	t.Run("double toggle round-trips to the original set", func(t *testing.T) {
		service, spots, users := newUserFixture(t)
		seedUser(t, users, "u1", "Alice")
		require.NoError(t, spots.InsertSpot(ctx, models.StudySpot{ID: "spot-1", Name: "Spot"}))

		user, err := service.ToggleBookmark(ctx, "u1", "spot-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"spot-1"}, user.BookmarkedSpots)

		user, err = service.ToggleBookmark(ctx, "u1", "spot-1")
		require.NoError(t, err)
		assert.Empty(t, user.BookmarkedSpots)
	})

	t.Run("never produces duplicate entries", func(t *testing.T) {
		service, spots, users := newUserFixture(t)
		seedUser(t, users, "u1", "Alice")
		require.NoError(t, spots.InsertSpot(ctx, models.StudySpot{ID: "spot-1", Name: "Spot"}))

		for i := 0; i < 7; i++ {
			_, err := service.ToggleBookmark(ctx, "u1", "spot-1")
			require.NoError(t, err)
		}
		user, err := users.GetUser(ctx, "u1")
		require.NoError(t, err)
		// odd number of toggles ends bookmarked, exactly once
		assert.Equal(t, []string{"spot-1"}, user.BookmarkedSpots)
	})

	t.Run("toggling one spot leaves others alone", func(t *testing.T) {
		service, spots, users := newUserFixture(t)
		seedUser(t, users, "u1", "Alice")
		require.NoError(t, spots.InsertSpot(ctx, models.StudySpot{ID: "spot-1"}))
		require.NoError(t, spots.InsertSpot(ctx, models.StudySpot{ID: "spot-2"}))

		_, err := service.ToggleBookmark(ctx, "u1", "spot-1")
		require.NoError(t, err)
		user, err := service.ToggleBookmark(ctx, "u1", "spot-2")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"spot-1", "spot-2"}, user.BookmarkedSpots)
	})
}

func TestFollowSymmetry(t *testing.T) {
	ctx := context.Background()
	service, _, users := newUserFixture(t)
	seedUser(t, users, "u1", "Alice")
	seedUser(t, users, "u2", "Bob")

	actor, err := service.Follow(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Contains(t, actor.Following, "u2")

	target, err := users.GetUser(ctx, "u2")
	require.NoError(t, err)
	assert.Contains(t, target.Followers, "u1")

	// repeat follow is idempotent on both sides
	actor, err = service.Follow(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, actor.Following)
	target, err = users.GetUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, target.Followers)

	actor, err = service.Unfollow(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Empty(t, actor.Following)
	target, err = users.GetUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, target.Followers)
}

func TestFollowValidation(t *testing.T) {
	ctx := context.Background()
	service, _, users := newUserFixture(t)
	seedUser(t, users, "u1", "Alice")

	_, err := service.Follow(ctx, "", "u1")
	assert.Equal(t, errors.ErrUnauthorized, err)

	_, err = service.Follow(ctx, "u1", "u1")
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_INPUT", apiErr.Code)

	_, err = service.Follow(ctx, "u1", "missing")
	assert.Equal(t, errors.ErrNotFound, err)
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("redacts email for other viewers when show_email is off", func(t *testing.T) {
		service, _, users := newUserFixture(t)
		require.NoError(t, users.InsertUser(ctx, models.User{
			ID:        "u1",
			Name:      "Alice",
			Email:     "alice@example.com",
			ShowEmail: false,
		}))

		viewed, err := service.GetProfile(ctx, "someone-else", "u1")
		require.NoError(t, err)
		assert.Empty(t, viewed.User.Email)

		own, err := service.GetProfile(ctx, "u1", "u1")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", own.User.Email)

		anon, err := service.GetProfile(ctx, "", "u1")
		require.NoError(t, err)
		assert.Empty(t, anon.User.Email)
	})

	t.Run("scan-derived review total wins over the cached counter", func(t *testing.T) {
		service, spots, users := newUserFixture(t)
		require.NoError(t, users.InsertUser(ctx, models.User{
			ID: "u1", Name: "Alice", ShowEmail: true,
			// stale cache, diverged from reality
			ReviewCount: 9,
		}))
		require.NoError(t, spots.InsertSpot(ctx, models.StudySpot{
			ID:   "spot-1",
			Name: "Spot",
			Reviews: []models.Review{
				{ID: "r1", CreatorID: "u1", Content: "one", Rating: 4},
				{ID: "r2", CreatorID: "other", Content: "two", Rating: 2},
			},
		}))

		profile, err := service.GetProfile(ctx, "u1", "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, profile.ReviewTotal)
		require.Len(t, profile.Reviews, 1)
		assert.Equal(t, "r1", profile.Reviews[0].ID)
		assert.Equal(t, "spot-1", profile.Reviews[0].SpotID)
	})

	t.Run("unknown user is NotFound", func(t *testing.T) {
		service, _, _ := newUserFixture(t)
		_, err := service.GetProfile(ctx, "", "missing")
		assert.Equal(t, errors.ErrNotFound, err)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	service, _, users := newUserFixture(t)
	require.NoError(t, users.InsertUser(ctx, models.User{
		ID: "u1", Name: "Alice", Email: "alice@example.com", ShowEmail: true,
	}))

	name := "Alice B."
	bio := "studies in libraries"
	hide := false
	user, err := service.UpdateProfile(ctx, "u1", ProfileUpdate{Name: &name, Bio: &bio, ShowEmail: &hide})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", user.Name)
	assert.Equal(t, "studies in libraries", user.Bio)
	assert.False(t, user.ShowEmail)
	// untouched fields stay put
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = service.UpdateProfile(ctx, "", ProfileUpdate{Name: &name})
	assert.Equal(t, errors.ErrUnauthorized, err)
}

func TestReplaceTasks(t *testing.T) {
	ctx := context.Background()
	service, _, users := newUserFixture(t)
	seedUser(t, users, "u1", "Alice")

	tasks := []models.Task{
		{ID: "t1", Text: "read chapter 4", Estimate: 2},
		{ID: "t2", Text: "problem set", Completed: true, Estimate: 3},
	}
	user, err := service.ReplaceTasks(ctx, "u1", tasks)
	require.NoError(t, err)
	assert.Equal(t, tasks, user.Tasks)

	user, err = service.ReplaceTasks(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, user.Tasks)
}
