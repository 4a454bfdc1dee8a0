package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/student-records/internal/models"
	"github.com/isdelr/student-records/internal/services"
	"github.com/rs/zerolog/log"
)

// StudentHandler handles HTTP requests for student records.
type StudentHandler struct {
	service services.StudentServiceProvider
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(service services.StudentServiceProvider) *StudentHandler {
	return &StudentHandler{service: service}
}

// GetAll returns every record as an object keyed by id.
func (h *StudentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}

	students, err := h.service.List(r.Context(), user)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	out := make(map[string]models.Student, len(students))
	for _, st := range students {
		out[st.ID] = st
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns a single record.
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	st, err := h.service.Get(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Create adds a record owned by the caller.
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}

	var input models.StudentInput
	if !decodeBody(w, r, &input) {
		return
	}

	id, err := h.service.Create(r.Context(), user, input)
	if err != nil {
		log.Error().Err(err).Str("username", user).Msg("Failed to create student")
		writeServiceError(w, err, "")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Student added successfully",
		"id":      id,
	})
}

// Update merges the request body into an existing record.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}

	var patch models.StudentPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Update(r.Context(), user, id, patch); err != nil {
		log.Warn().Err(err).Str("student_id", id).Str("username", user).Msg("Failed to update student")
		writeServiceError(w, err, "You are not authorized to modify this record")
		return
	}

	writeMessage(w, http.StatusOK, "Student updated successfully")
}

// Delete removes a record.
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := identity(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), user, id); err != nil {
		log.Warn().Err(err).Str("student_id", id).Str("username", user).Msg("Failed to delete student")
		writeServiceError(w, err, "You are not authorized to delete this record")
		return
	}

	writeMessage(w, http.StatusOK, "Student deleted successfully")
}
