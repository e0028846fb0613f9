package api

import (
	"net/http"
	"strings"

	"github.com/seenimoa/catalystiv/internal/analysis/research"
	"github.com/seenimoa/catalystiv/internal/datasource"
	"github.com/seenimoa/catalystiv/internal/provider"
)

// ResearchBatchRequest holds several per-symbol research requests.
type ResearchBatchRequest struct {
	Requests []datasource.ResearchRequest `json:"requests" validate:"required,min=1,dive"`
}

// trialQueryKeys are the query-string keys forwarded to the trials fetcher.
var trialQueryKeys = []string{
	provider.ParamSymbol,
	provider.ParamSponsor,
	provider.ParamCondition,
	provider.ParamIntervention,
	provider.ParamPhase,
	provider.ParamStatus,
	provider.ParamStudyType,
	provider.ParamStartDate,
	provider.ParamEndDate,
	provider.ParamLimit,
	provider.ParamProvider,
}

// handleResearch builds one research summary. ?format=text returns the
// plain-text report instead of JSON.
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req datasource.ResearchRequest
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	summary, err := s.agg.Research(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "text") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(research.FormatReport(summary))) //nolint:errcheck
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: summary})
}

func (s *Server) handleResearchBatch(w http.ResponseWriter, r *http.Request) {
	var req ResearchBatchRequest
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	summaries, err := s.agg.ResearchBatch(r.Context(), req.Requests)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: summaries})
}

// handleClinicalTrials forwards the query string to the registry's
// ClinicalTrials model. No matching trials is a 404.
func (s *Server) handleClinicalTrials(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := provider.QueryParams{}
	for _, key := range trialQueryKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			params[key] = v
		}
	}

	trials, err := s.agg.FetchTrials(r.Context(), params)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: trials})
}
