package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pep299/company-summarizer/internal/model"
)

// summarizeRequest distinguishes a missing url from an empty one
type summarizeRequest struct {
	URL *string `json:"url"`
}

// summarizeHandler summarizes the company website at the posted URL
func (s *Server) summarizeHandler(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	input := model.URLInput{URL: *req.URL}
	if err := input.Validate(); err != nil {
		s.logger.Errorf("Invalid URL format: %s", input.URL)
		writeDetail(w, http.StatusBadRequest, "Invalid URL")
		return
	}

	s.logger.Infof("Received URL: %s", input.URL)

	summary, err := s.summarizer.GetSummary(r.Context(), input.URL)
	if err != nil {
		s.logger.Errorf("Exception during processing URL: %s - %v", input.URL, err)
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Model failed to process URL: %v", err))
		return
	}

	s.logger.Infof("Successfully summarized URL: %s", input.URL)
	writeJSON(w, http.StatusOK, summary)
}

// cacheStatsHandler returns cache statistics
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cacheManager.GetStats(r.Context())
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error getting cache stats: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// cacheClearHandler clears the cache
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.cacheManager.Clear(r.Context()); err != nil {
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error clearing cache: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Cache cleared successfully",
	})
}
