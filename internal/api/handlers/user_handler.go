package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/user-directory-be/internal/services"
	"github.com/isdelr/user-directory-be/internal/storage"
	"github.com/rs/zerolog/log"
)

// maxUploadBytes caps the in-memory portion of a multipart submission.
const maxUploadBytes = 10 << 20

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	service services.UserServiceProvider
	uploads *storage.UploadStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, uploads *storage.UploadStore) *UserHandler {
	return &UserHandler{service: service, uploads: uploads}
}

// GetAll handles the request to list all users.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Get handles the request to retrieve a single user by ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.GetUserByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to get user")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Create handles a multipart create submission.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	user, err := h.service.CreateUser(input)
	if err != nil {
		h.respondServiceError(w, err, "Failed to create user")
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User created")
	respondJSON(w, http.StatusCreated, user)
}

// Update handles a multipart update submission for an existing user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	input, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	user, err := h.service.UpdateUser(id, input)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update user")
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User updated")
	respondJSON(w, http.StatusOK, user)
}

// Delete handles the request to remove a user.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteUser(id); err != nil {
		h.respondServiceError(w, err, "Failed to delete user")
		return
	}

	log.Info().Str("user_id", id).Msg("User deleted")
	respondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// parseForm reads the multipart submission. The photo part, when present,
// is written to the upload area before validation runs; a rejected
// submission can leave an unreferenced file behind. On failure it writes
// the error response and returns ok=false.
func (h *UserHandler) parseForm(w http.ResponseWriter, r *http.Request) (services.UserInput, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return services.UserInput{}, false
	}

	input := services.UserInput{
		Name:   strings.TrimSpace(r.FormValue("name")),
		Email:  strings.TrimSpace(r.FormValue("email")),
		Mobile: strings.TrimSpace(r.FormValue("mobile")),
		DOB:    strings.TrimSpace(r.FormValue("dob")),
	}

	file, header, err := r.FormFile("photo")
	switch err {
	case nil:
		defer file.Close()
		name, saveErr := h.uploads.Save(file, header.Filename)
		if saveErr != nil {
			log.Error().Err(saveErr).Msg("Failed to store uploaded photo")
			respondError(w, http.StatusInternalServerError, "Failed to store photo")
			return services.UserInput{}, false
		}
		input.Photo = name
	case http.ErrMissingFile:
		// No photo submitted.
	default:
		respondError(w, http.StatusBadRequest, "Invalid photo upload")
		return services.UserInput{}, false
	}

	return input, true
}

// respondServiceError maps service errors onto the status contract.
func (h *UserHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	default:
		log.Error().Err(err).Msg(fallback)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
