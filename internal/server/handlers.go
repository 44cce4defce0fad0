package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inovacc/juli/internal/workspace"
)

// APIResponse is the envelope of API errors and acknowledgements
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// handleListWorkspaces returns all workspaces in display order
func (s *Server) handleListWorkspaces(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, s.workspaces.List())
}

func (s *Server) handleGetActiveWorkspace(w http.ResponseWriter, _ *http.Request) {
	active, ok := s.workspaces.Active()
	if !ok {
		s.jsonError(w, "No active workspace", http.StatusNotFound)
		return
	}

	s.jsonResponse(w, active)
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspaces.Get(r.PathValue("id"))
	if !ok {
		s.jsonError(w, "Workspace not found", http.StatusNotFound)
		return
	}

	s.jsonResponse(w, ws)
}

func (s *Server) handleSetActiveWorkspace(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.workspaces.SetActive(id); err != nil {
		if errors.Is(err, workspace.ErrWorkspaceNotFound) {
			s.jsonError(w, "Workspace not found", http.StatusNotFound)
			return
		}

		s.logger.Error("failed to set active workspace", "id", id, "error", err)
		s.jsonError(w, "Failed to set active workspace", http.StatusInternalServerError)

		return
	}

	s.jsonResponse(w, APIResponse{
		Success: true,
		Message: "Active workspace set",
	})
}

// handleHealth returns health check status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if err := s.workspaces.Ping(); err != nil {
		s.logger.Error("settings store unreachable", "error", err)
		s.jsonError(w, "Settings store unavailable", http.StatusServiceUnavailable)

		return
	}

	s.jsonResponse(w, map[string]any{
		"status":  "ok",
		"windows": s.hub.ClientCount(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("JSON encode error", "error", err)
	}
}

// jsonError writes a JSON error response
func (s *Server) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error:   message,
	}); err != nil {
		s.logger.Error("JSON encode error", "error", err)
	}
}
