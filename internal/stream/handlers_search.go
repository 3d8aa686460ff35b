package stream

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	searchLimitDefault = 10
	searchLimitMax     = 50
	searchQueryMaxLen  = 200
)

// HandleSearch validates bounds before any network call: an out-of-range
// limit never reaches the provider.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(q) > searchQueryMaxLen {
		writeError(w, http.StatusBadRequest, "query is too long")
		return
	}

	limit := searchLimitDefault
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 || v > searchLimitMax {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = v
	}

	results, err := s.searcher.SearchVideos(r.Context(), q, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search videos: "+err.Error())
		return
	}

	// Providers may return more than asked for; the contract caps at limit
	// while preserving provider order.
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []SearchResult{}
	}

	writeJSON(w, http.StatusOK, results)
}
