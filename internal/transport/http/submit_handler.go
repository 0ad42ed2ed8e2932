package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizlink-service/internal/app"
	"quizlink-service/internal/domain"
)

// SubmitHandler exposes the submission coordinator and the administrator
// report over plain JSON endpoints.
type SubmitHandler struct {
	service *app.SubmitService
}

func NewSubmitHandler(service *app.SubmitService) *SubmitHandler {
	return &SubmitHandler{service: service}
}

type submitRequest struct {
	Token   string                 `json:"token"`
	Name    string                 `json:"name"`
	NIJ     string                 `json:"nij"`
	Answers []domain.AttemptAnswer `json:"answers"`
}

// Submit handles POST /api/submissions. The response body never carries the
// score or per-question feedback.
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Submit(r.Context(), req.Token, domain.Participant{Name: req.Name, NIJ: req.NIJ}, req.Answers)
	if err != nil {
		writeError(w, statusForError(err), messageForError(err))
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListAttempts handles GET /api/attempts?quizId=... — the administrator-facing
// read model with full scores.
func (h *SubmitHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		writeError(w, http.StatusBadRequest, "missing quizId")
		return
	}
	attempts, err := h.service.ListAttempts(r.Context(), quizID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list attempts")
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQuizNotPublished):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrQuizExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrDuplicateAttempt):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidSubmission):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func messageForError(err error) string {
	if statusForError(err) == http.StatusInternalServerError {
		// Persistence failures get a retry affordance, not internals.
		log.Printf("submit failed: %v", err)
		return "submission failed, please try again"
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, domain.SubmitResult{Success: false, Message: message})
}
