package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowstate-server/middleware"
	"flowstate-server/models"
	"flowstate-server/services"
)

type fixture struct {
	router   *mux.Router
	spots    *services.FakeSpotStore
	users    *services.FakeUserStore
	sessions *services.FakeSessions
}

// newFixture wires the handlers onto a router the same way main does, on
// top of in-memory stores.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	spots := services.NewFakeSpotStore()
	users := services.NewFakeUserStore()
	sessions := services.NewFakeSessions()
	guard := services.NewGuard([]string{"mod"}, nil)

	spotService := services.NewSpotService(spots, users, guard, logger)
	userService := services.NewUserService(users, spots, logger)

	spotHandler := NewSpotHandler(spotService)
	userHandler := NewUserHandler(userService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/spots", spotHandler.ListSpots).Methods("GET")
	api.HandleFunc("/leaderboard", spotHandler.GetLeaderboard).Methods("GET")

	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.SessionMiddleware(sessions))
	authed.HandleFunc("/spots", spotHandler.CreateSpot).Methods("POST")
	authed.HandleFunc("/spots/{spotID}", spotHandler.DeleteSpot).Methods("DELETE")
	authed.HandleFunc("/spots/{spotID}/reviews", spotHandler.AddReview).Methods("POST")
	authed.HandleFunc("/spots/{spotID}/reviews/{reviewID}", spotHandler.DeleteReview).Methods("DELETE")
	authed.HandleFunc("/spots/{spotID}/bookmark", userHandler.ToggleBookmark).Methods("POST")

	return &fixture{router: r, spots: spots, users: users, sessions: sessions}
}

func (f *fixture) login(t *testing.T, userID, name string) string {
	t.Helper()
	err := f.users.InsertUser(context.Background(), models.User{
		ID: userID, Name: name, ShowEmail: true, BookmarkedSpots: []string{},
	})
	require.NoError(t, err)
	token, err := f.sessions.Create(context.Background(), userID)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateSpotRequiresSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "POST", "/api/spots", "", map[string]any{"name": "Spot", "image": "/a.jpg"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSpotReviewFlowOverHTTP(t *testing.T) {
	f := newFixture(t)
	creator := f.login(t, "u1", "Creator")
	reviewer := f.login(t, "u2", "Reviewer")

	rec := f.do(t, "POST", "/api/spots", creator, map[string]any{
		"name": "Barker Reading Room", "location": "Building 10",
		"lat": 42.359, "lng": -71.092, "image": "/barker.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var spot models.StudySpot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spot))

	// out-of-range rating rejected by the handler's validator
	rec = f.do(t, "POST", "/api/spots/"+spot.ID+"/reviews", reviewer, map[string]any{
		"content": "bad rating", "rating": 6,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, "POST", "/api/spots/"+spot.ID+"/reviews", reviewer, map[string]any{
		"content": "bright and quiet", "rating": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var result services.ReviewResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Spot.Reviews, 1)
	reviewID := result.Spot.Reviews[0].ID

	// creator of the spot may not delete someone else's review
	rec = f.do(t, "DELETE", "/api/spots/"+spot.ID+"/reviews/"+reviewID, creator, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, "DELETE", "/api/spots/"+spot.ID+"/reviews/"+reviewID, reviewer, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, "DELETE", "/api/spots/"+spot.ID, creator, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, "GET", "/api/spots", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.StudySpot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed)
}

func TestBookmarkToggleOverHTTP(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "u1", "Alice")
	require.NoError(t, f.spots.InsertSpot(context.Background(), models.StudySpot{ID: "spot-1", Name: "Spot"}))

	rec := f.do(t, "POST", "/api/spots/spot-1/bookmark", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, []string{"spot-1"}, user.BookmarkedSpots)

	rec = f.do(t, "POST", "/api/spots/spot-1/bookmark", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Empty(t, user.BookmarkedSpots)
}

func TestLeaderboardOverHTTP(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.spots.InsertSpot(context.Background(), models.StudySpot{
		ID: "spot-1",
		Reviews: []models.Review{
			{ID: "r1", CreatorID: "a", CreatorName: "Alice", Rating: 5},
			{ID: "r2", CreatorID: "a", CreatorName: "Alice", Rating: 4},
			{ID: "r3", CreatorID: "b", CreatorName: "Bob", Rating: 3},
		},
	}))

	rec := f.do(t, "GET", "/api/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Leaderboard []services.ReviewerRank `json:"leaderboard"`
		Count       int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "a", body.Leaderboard[0].UserID)
	assert.Equal(t, 2, body.Leaderboard[0].Count)
}
