package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"flowstate-server/middleware"
	"flowstate-server/services"
	"flowstate-server/utils/errors"
)

type SpotHandler struct {
	spotService *services.SpotService
	validate    *validator.Validate
}

func NewSpotHandler(spotService *services.SpotService) *SpotHandler {
	return &SpotHandler{
		spotService: spotService,
		validate:    validator.New(),
	}
}

// actorID returns the authenticated user id placed on the context by the
// session middleware, or "" for anonymous requests.
func actorID(r *http.Request) string {
	userID, _ := r.Context().Value("userID").(string)
	return userID
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

type CreateSpotRequest struct {
	Name     string   `json:"name" validate:"required"`
	Location string   `json:"location"`
	Lat      float64  `json:"lat" validate:"min=-90,max=90"`
	Lng      float64  `json:"lng" validate:"min=-180,max=180"`
	Tags     []string `json:"tags"`
	Image    string   `json:"image" validate:"required"`
}

type AddReviewRequest struct {
	Content string `json:"content" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

func (h *SpotHandler) ListSpots(w http.ResponseWriter, r *http.Request) {
	spots, err := h.spotService.ListSpots(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spots)
}

func (h *SpotHandler) CreateSpot(w http.ResponseWriter, r *http.Request) {
	var input CreateSpotRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(input); err != nil {
		middleware.WriteError(w, errors.NewAPIError("INVALID_INPUT", "Invalid request data", errors.ErrInvalidInput.Status, err.Error()))
		return
	}

	spot, err := h.spotService.CreateSpot(r.Context(), actorID(r), services.CreateSpotInput{
		Name:     input.Name,
		Location: input.Location,
		Lat:      input.Lat,
		Lng:      input.Lng,
		Tags:     input.Tags,
		Image:    input.Image,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, spot)
}

func (h *SpotHandler) DeleteSpot(w http.ResponseWriter, r *http.Request) {
	spotID := mux.Vars(r)["spotID"]
	if err := h.spotService.DeleteSpot(r.Context(), actorID(r), spotID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "spot_id": spotID})
}

func (h *SpotHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	spotID := mux.Vars(r)["spotID"]

	var input AddReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(input); err != nil {
		middleware.WriteError(w, errors.NewAPIError("INVALID_INPUT", "Invalid review data", errors.ErrInvalidInput.Status, err.Error()))
		return
	}

	result, err := h.spotService.AddReview(r.Context(), actorID(r), spotID, services.AddReviewInput{
		Content: input.Content,
		Rating:  input.Rating,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *SpotHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	spot, err := h.spotService.DeleteReview(r.Context(), actorID(r), vars["spotID"], vars["reviewID"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spot)
}

func (h *SpotHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ranks, err := h.spotService.Leaderboard(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"leaderboard": ranks,
		"count":       len(ranks),
	})
}
