package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"flowstate-server/middleware"
	"flowstate-server/models"
	"flowstate-server/services"
	"flowstate-server/utils/errors"
)

type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	ShowEmail *bool   `json:"show_email"`
	Picture   *string `json:"picture"`
}

type ReplaceTasksRequest struct {
	Tasks []models.Task `json:"tasks"`
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	profile, err := h.userService.GetProfile(r.Context(), actorID(r), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(input); err != nil {
		middleware.WriteError(w, errors.NewAPIError("INVALID_INPUT", "Invalid profile data", errors.ErrInvalidInput.Status, err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), actorID(r), services.ProfileUpdate{
		Name:      input.Name,
		Bio:       input.Bio,
		ShowEmail: input.ShowEmail,
		Picture:   input.Picture,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ReplaceTasks(w http.ResponseWriter, r *http.Request) {
	var input ReplaceTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	user, err := h.userService.ReplaceTasks(r.Context(), actorID(r), input.Tasks)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	spotID := mux.Vars(r)["spotID"]
	user, err := h.userService.ToggleBookmark(r.Context(), actorID(r), spotID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["userID"]
	user, err := h.userService.Follow(r.Context(), actorID(r), targetID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["userID"]
	user, err := h.userService.Unfollow(r.Context(), actorID(r), targetID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
