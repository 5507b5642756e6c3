package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "tw-screener",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleScreenResults returns the candidates from the latest screening run
func (s *Server) handleScreenResults(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		s.writeError(w, http.StatusServiceUnavailable, "results not available")
		return
	}

	candidates, updatedAt := s.results.Get()
	if updatedAt.IsZero() {
		s.writeError(w, http.StatusNotFound, "no screening run has completed yet")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"updated_at": updatedAt.Format(time.RFC3339),
		"count":      len(candidates),
		"candidates": candidates,
	})
}

// handleScreenRun triggers a screening run in the background
func (s *Server) handleScreenRun(w http.ResponseWriter, r *http.Request) {
	if s.triggerRun == nil {
		s.writeError(w, http.StatusServiceUnavailable, "screening trigger not configured")
		return
	}

	go func() {
		if err := s.triggerRun(); err != nil {
			s.log.Error().Err(err).Msg("Triggered screening run failed")
		}
	}()

	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
	})
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := map[string]interface{}{
		"status": "running",
		"memory": map[string]interface{}{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
