package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Harshitk-cp/informed/internal/domain"
	"github.com/Harshitk-cp/informed/internal/inference"
	"github.com/Harshitk-cp/informed/internal/knowledge"
	"github.com/Harshitk-cp/informed/internal/service"
)

type SessionHandler struct {
	svc *service.SessionService
	kb  *knowledge.Base
}

func NewSessionHandler(svc *service.SessionService, kb *knowledge.Base) *SessionHandler {
	return &SessionHandler{svc: svc, kb: kb}
}

type diagnosisProbability struct {
	DiagnosisID string  `json:"diagnosis_id"`
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

type sessionResponse struct {
	ID             string                 `json:"id"`
	Status         service.Status         `json:"status"`
	Posterior      []diagnosisProbability `json:"posterior"`
	Answers        []domain.Answer        `json:"answers"`
	EntropyHistory []float64              `json:"entropy_history"`
	StartedAt      string                 `json:"started_at"`
	LastActivityAt string                 `json:"last_activity_at"`
}

type nextResponse struct {
	SessionID string               `json:"session_id"`
	Status    service.Status       `json:"status"`
	Question  *inference.Candidate `json:"question"`
}

type answerRequest struct {
	SymptomID string `json:"symptom_id"`
	Answer    *bool  `json:"answer"`
}

// Start opens a new session at the uniform prior.
// POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	sess, status, err := h.svc.Start(r.Context())
	if err != nil {
		writeEngineError(w, err, "failed to start session")
		return
	}
	writeJSON(w, http.StatusCreated, h.toResponse(sess, status))
}

// GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, status, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, err, "failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(sess, status))
}

// Next returns the question to ask now. question is null once every symptom
// has been asked.
// GET /v1/sessions/{id}/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	turn, err := h.svc.Next(r.Context(), id)
	if err != nil {
		writeEngineError(w, err, "failed to select next question")
		return
	}
	writeJSON(w, http.StatusOK, nextResponse{
		SessionID: id.String(),
		Status:    turn.Status,
		Question:  turn.Question,
	})
}

// Answer records a yes/no answer.
// POST /v1/sessions/{id}/answers
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SymptomID == "" {
		writeError(w, http.StatusBadRequest, "symptom_id is required")
		return
	}
	if req.Answer == nil {
		writeError(w, http.StatusBadRequest, "answer is required")
		return
	}

	sess, status, err := h.svc.Answer(r.Context(), id, req.SymptomID, *req.Answer)
	if err != nil {
		writeEngineError(w, err, "failed to record answer")
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(sess, status))
}

// POST /v1/sessions/{id}/reset
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, status, err := h.svc.Reset(r.Context(), id)
	if err != nil {
		writeEngineError(w, err, "failed to reset session")
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(sess, status))
}

// DELETE /v1/sessions/{id}
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.svc.End(r.Context(), id); err != nil {
		writeEngineError(w, err, "failed to end session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *SessionHandler) toResponse(sess *domain.Session, status service.Status) sessionResponse {
	resp := sessionResponse{
		ID:             sess.ID.String(),
		Status:         status,
		Posterior:      make([]diagnosisProbability, len(sess.Posterior)),
		Answers:        sess.Answers,
		EntropyHistory: sess.EntropyHistory,
		StartedAt:      sess.StartedAt.Format(time.RFC3339),
		LastActivityAt: sess.LastActivityAt.Format(time.RFC3339),
	}
	for i, p := range sess.Posterior {
		d := h.kb.Diagnosis(i)
		resp.Posterior[i] = diagnosisProbability{DiagnosisID: d.ID, Name: d.Name, Probability: p}
	}
	return resp
}
