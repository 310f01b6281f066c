package handler

import (
	"encoding/json"
	"net/http"

	"github.com/skycastlabs/skycast-api/internal/api/middleware"
	"github.com/skycastlabs/skycast-api/internal/api/response"
	"github.com/skycastlabs/skycast-api/internal/domain"
	"github.com/skycastlabs/skycast-api/internal/service"
)

// UserHandler handles account endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register handles POST /api/users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	auth, err := h.users.Register(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, auth)
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	auth, err := h.users.Login(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, auth)
}

// GetProfile handles GET /api/users/profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, profile)
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	auth, err := h.users.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, auth)
}

// AddHistory handles POST /api/users/history.
func (h *UserHandler) AddHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.HistoryAdd
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	history, err := h.users.AddSearchHistory(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, history)
}
