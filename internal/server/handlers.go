package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// RootInfo describes one configured root.
type RootInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Directory bool   `json:"directory"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// handleRoots lists the roots the next run would scan, in order.
func (s *Server) handleRoots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	job, err := s.jobs()
	if err != nil {
		s.logger.Error(r.Context(), err, "Failed to load roots")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	roots := make([]RootInfo, 0, len(job.Roots))
	for _, root := range job.Roots {
		roots = append(roots, RootInfo{Name: root.Name(), Path: root.Path(), Directory: root.IsDirectory()})
	}
	s.writeJSON(w, r, http.StatusOK, roots)
}

// handleState reports the runner state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]string{"state": s.runner.State().String()})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode response")
	}
}
