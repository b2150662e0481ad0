package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Harshitk-cp/informed/internal/analysis"
	"github.com/Harshitk-cp/informed/internal/inference"
)

// InferenceHandler exposes the stateless engine operations. Callers pass the
// belief distribution in every request.
type InferenceHandler struct {
	engine *inference.Engine
}

func NewInferenceHandler(engine *inference.Engine) *InferenceHandler {
	return &InferenceHandler{engine: engine}
}

type distributionRequest struct {
	Distribution inference.Distribution `json:"distribution"`
	SymptomID    string                 `json:"symptom_id,omitempty"`
	Answer       *bool                  `json:"answer,omitempty"`
	Asked        []string               `json:"asked,omitempty"`
}

type updateResponse struct {
	Distribution inference.Distribution `json:"distribution"`
	Entropy      float64                `json:"entropy"`
}

type gainResponse struct {
	SymptomID string  `json:"symptom_id"`
	Gain      float64 `json:"gain"`
	PYes      float64 `json:"p_yes"`
}

type nextQuestionResponse struct {
	Question  *inference.Candidate `json:"question"`
	Exhausted bool                 `json:"exhausted"`
}

// Entropy returns the Shannon entropy of a distribution in bits.
// POST /v1/inference/entropy
func (h *InferenceHandler) Entropy(w http.ResponseWriter, r *http.Request) {
	var req distributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entropy, err := inference.Entropy(req.Distribution)
	if err != nil {
		writeEngineError(w, err, "failed to compute entropy")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"entropy": entropy})
}

// Update folds one answer into a distribution.
// POST /v1/inference/update
func (h *InferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req distributionRequest
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

	posterior, err := h.engine.Update(req.Distribution, req.SymptomID, *req.Answer)
	if err != nil {
		writeEngineError(w, err, "failed to update distribution")
		return
	}
	entropy, err := inference.Entropy(posterior)
	if err != nil {
		writeEngineError(w, err, "failed to update distribution")
		return
	}
	writeJSON(w, http.StatusOK, updateResponse{Distribution: posterior, Entropy: entropy})
}

// InformationGain returns the expected entropy reduction of one question.
// POST /v1/inference/information-gain
func (h *InferenceHandler) InformationGain(w http.ResponseWriter, r *http.Request) {
	var req distributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SymptomID == "" {
		writeError(w, http.StatusBadRequest, "symptom_id is required")
		return
	}

	gain, err := h.engine.InformationGain(req.Distribution, req.SymptomID)
	if err != nil {
		writeEngineError(w, err, "failed to compute information gain")
		return
	}
	pYes, err := h.engine.AnswerProbability(req.Distribution, req.SymptomID)
	if err != nil {
		writeEngineError(w, err, "failed to compute information gain")
		return
	}
	writeJSON(w, http.StatusOK, gainResponse{SymptomID: req.SymptomID, Gain: gain, PYes: pYes})
}

// NextQuestion selects the most informative question not yet asked.
// POST /v1/inference/next-question
func (h *InferenceHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	var req distributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asked := make(map[string]struct{}, len(req.Asked))
	for _, id := range req.Asked {
		asked[id] = struct{}{}
	}

	c, ok, err := h.engine.NextQuestion(req.Distribution, asked)
	if err != nil {
		writeEngineError(w, err, "failed to select next question")
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, nextQuestionResponse{Exhausted: true})
		return
	}
	writeJSON(w, http.StatusOK, nextQuestionResponse{Question: &c})
}

// MutualInformation ranks every symptom by its gain under the uniform prior.
// GET /v1/analysis/mutual-information
func (h *InferenceHandler) MutualInformation(w http.ResponseWriter, r *http.Request) {
	ranked, err := analysis.MutualInformation(h.engine)
	if err != nil {
		writeEngineError(w, err, "failed to rank symptoms")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]inference.Candidate{"symptoms": ranked})
}
