package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/career-planner/internal/evidence"
	"github.com/jonathan/career-planner/internal/planner"
	"github.com/jonathan/career-planner/internal/reference"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 25
)

// handleAnalyze runs a full compatibility analysis for the posted profile.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var input planner.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), &input)
	if err != nil {
		s.errorResponse(w, httpStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, analysis)
}

// occupationResult is the search response shape for one catalog hit.
type occupationResult struct {
	OccupationID   string  `json:"occupationId"`
	Title          string  `json:"title"`
	Confidence     float64 `json:"confidence"`
	Regulated      bool    `json:"regulated"`
	CredentialHint string  `json:"credentialHint,omitempty"`
	OfficialURL    string  `json:"officialUrl,omitempty"`
}

// handleSearchOccupations resolves a free-text role query against the
// reference catalog.
func (s *Server) handleSearchOccupations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.errorResponse(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "query parameter 'limit' must be a positive integer")
			return
		}
		limit = min(n, maxSearchLimit)
	}

	region := r.URL.Query().Get("region")
	if region == "" {
		region = s.region
	}

	matches, err := s.searcher.Search(r.Context(), region, query, limit)
	if err != nil {
		s.errorResponse(w, httpStatus(err), err.Error())
		return
	}

	results := make([]occupationResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, occupationResult{
			OccupationID:   m.Occupation.ID,
			Title:          m.Occupation.Title,
			Confidence:     m.Confidence,
			Regulated:      m.Occupation.Regulated,
			CredentialHint: m.Occupation.CredentialHint,
			OfficialURL:    m.Occupation.OfficialURL,
		})
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"results": results})
}

// refreshRequest is the evidence refresh request body.
type refreshRequest struct {
	Role         string `json:"role"`
	Location     string `json:"location"`
	Country      string `json:"country"`
	OccupationID string `json:"occupationId"`
	Force        bool   `json:"force"`
}

// handleRefreshEvidence forces a market evidence fetch for a role query,
// bypassing the freshness check when force is set.
func (s *Server) handleRefreshEvidence(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Role == "" {
		s.errorResponse(w, http.StatusBadRequest, "field 'role' is required")
		return
	}

	result, err := s.refresher.Fetch(r.Context(), evidence.Request{
		Role:         req.Role,
		Location:     req.Location,
		Country:      req.Country,
		OccupationID: req.OccupationID,
		UseMarket:    true,
		ForceRefresh: req.Force,
	})
	if err != nil {
		s.errorResponse(w, httpStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// httpStatus maps domain errors to HTTP status codes.
func httpStatus(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, reference.ErrNoRegionData):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
