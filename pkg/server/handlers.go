package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Aspect5/fintel-v2-sub000/pkg/config"
	"github.com/Aspect5/fintel-v2-sub000/pkg/workflow"
)

// createWorkflowRequest is the submission body. Provider is optional
// and defaults to the primary role; base_url only applies to the local
// role.
type createWorkflowRequest struct {
	Query    string `json:"query"`
	Provider string `json:"provider,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

type createWorkflowResponse struct {
	WorkflowID string         `json:"workflow_id"`
	State      workflow.State `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	switch req.Provider {
	case "", config.ProviderRolePrimary, config.ProviderRoleSecondary, config.ProviderRoleLocal:
	default:
		writeError(w, http.StatusBadRequest, "provider must be one of: primary, secondary, local")
		return
	}

	// The id comes back even when initialization fails; the caller
	// polls the failure like any other terminal state.
	id := s.engine.Start(req.Query, workflow.StartOptions{
		Provider: req.Provider,
		BaseURL:  req.BaseURL,
	})
	state, _ := s.engine.Snapshot(id)

	s.logger.Info("workflow accepted", "workflow_id", id, "provider", req.Provider)
	writeJSON(w, http.StatusCreated, createWorkflowResponse{
		WorkflowID: id,
		State:      state,
	})
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflowID")
	state, ok := s.engine.Snapshot(id)
	if !ok {
		writeError(w, http.StatusNotFound, "workflow not found")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleCancelWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workflowID")
	if _, ok := s.engine.Snapshot(id); !ok {
		writeError(w, http.StatusNotFound, "workflow not found")
		return
	}
	if !s.engine.Cancel(id) {
		writeError(w, http.StatusConflict, "workflow already finished")
		return
	}
	state, _ := s.engine.Snapshot(id)
	writeJSON(w, http.StatusOK, createWorkflowResponse{
		WorkflowID: id,
		State:      state,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
