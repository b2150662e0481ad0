package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/informed/internal/domain"
	"github.com/Harshitk-cp/informed/internal/knowledge"
)

type KnowledgeHandler struct {
	kb *knowledge.Base
}

func NewKnowledgeHandler(kb *knowledge.Base) *KnowledgeHandler {
	return &KnowledgeHandler{kb: kb}
}

type cptResponse struct {
	Diagnoses []string    `json:"diagnoses"`
	Symptoms  []string    `json:"symptoms"`
	Table     [][]float64 `json:"table"`
}

// Diagnoses lists the diagnosis catalog in order.
// GET /v1/knowledge/diagnoses
func (h *KnowledgeHandler) Diagnoses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]domain.Diagnosis{"diagnoses": h.kb.Diagnoses()})
}

// Symptoms lists the symptom catalog in order.
// GET /v1/knowledge/symptoms
func (h *KnowledgeHandler) Symptoms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]domain.Symptom{"symptoms": h.kb.Symptoms()})
}

// CPT returns P(symptom = yes | diagnosis) as a dense table, one row per
// diagnosis.
// GET /v1/knowledge/cpt
func (h *KnowledgeHandler) CPT(w http.ResponseWriter, r *http.Request) {
	resp := cptResponse{
		Diagnoses: make([]string, 0, h.kb.NumDiagnoses()),
		Symptoms:  make([]string, 0, h.kb.NumSymptoms()),
		Table:     h.kb.Table(),
	}
	for _, d := range h.kb.Diagnoses() {
		resp.Diagnoses = append(resp.Diagnoses, d.ID)
	}
	for _, s := range h.kb.Symptoms() {
		resp.Symptoms = append(resp.Symptoms, s.ID)
	}
	writeJSON(w, http.StatusOK, resp)
}
