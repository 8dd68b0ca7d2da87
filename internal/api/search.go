// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pdiddy/aihub/internal/aggregate"
	"github.com/pdiddy/aihub/internal/chat"
	"github.com/pdiddy/aihub/internal/source"
)

// Default max_results per endpoint.
const (
	rankedDefault   = 25
	filteredDefault = 10
	groupedDefault  = 50
	singleDefault   = 10
)

// searchRequest reads q, max_results and page into a pipeline request.
func searchRequest(r *http.Request, defMax int) (aggregate.Request, error) {
	maxResults, err := intParam(r, "max_results", defMax)
	if err != nil {
		return aggregate.Request{}, err
	}
	page, err := intParam(r, "page", 1)
	if err != nil {
		return aggregate.Request{}, err
	}
	req := aggregate.Request{
		Query:      r.URL.Query().Get("q"),
		MaxResults: maxResults,
		Page:       page,
	}
	if maxResults == 0 || page == 0 {
		return aggregate.Request{}, errors.Wrap(aggregate.ErrInvalidRequest, "max_results and page must be at least 1")
	}
	return req, req.Validate()
}

func (s *Server) handleRanked(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequest(r, rankedDefault)
	if err != nil {
		s.pipelineError(w, r, err)
		return
	}
	s.runRanked(w, r, req)
}

func (s *Server) handleFiltered(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequest(r, filteredDefault)
	if err != nil {
		s.pipelineError(w, r, err)
		return
	}
	req.Filters = source.ParseFilters(r.URL.Query().Get("filters"))
	s.runRanked(w, r, req)
}

func (s *Server) runRanked(w http.ResponseWriter, r *http.Request, req aggregate.Request) {
	resp, err := s.Pipeline.Run(r.Context(), req)
	if err != nil {
		s.pipelineError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGrouped(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "max_results", groupedDefault)
	if err != nil {
		s.pipelineError(w, r, err)
		return
	}
	g, err := s.Pipeline.Group(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.pipelineError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// handleSingle serves one source's results under key. A failing source is
// a 502: there is nothing else to show.
func (s *Server) handleSingle(id source.ID, key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := searchRequest(r, singleDefault)
		if err != nil {
			s.pipelineError(w, r, err)
			return
		}
		resp, err := s.Pipeline.Single(r.Context(), id, req)
		switch {
		case errors.Is(err, source.ErrUnknownSource):
			respondDetail(w, http.StatusNotFound, "source "+string(id)+" is not configured")
			return
		case err != nil:
			s.Log.Warn().Str("source", string(id)).Err(err).Msg("single-source search failed")
			respondDetail(w, http.StatusBadGateway, "failed to fetch "+key+": "+err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"page":        resp.Page,
			"max_results": resp.MaxResults,
			key:           resp.Results,
		})
	}
}

func (s *Server) handleRepoDetails(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	repo := strings.TrimSpace(r.URL.Query().Get("repo"))
	if owner == "" || repo == "" {
		respondDetail(w, http.StatusBadRequest, "owner and repo are required")
		return
	}

	d, err := s.Repos.Details(r.Context(), owner, repo)
	if err != nil {
		var fe *source.FetchError
		if errors.As(err, &fe) && fe.Status == http.StatusNotFound {
			respondDetail(w, http.StatusNotFound, "repository "+owner+"/"+repo+" not found")
			return
		}
		s.Log.Warn().Str("repo", owner+"/"+repo).Err(err).Msg("repo details failed")
		respondDetail(w, http.StatusBadGateway, "failed to fetch repo details")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

type chatRequest struct {
	Message string `json:"message" validate:"required,max=8000"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.Chat == nil || !s.Chat.Enabled() {
		respondDetail(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.Chat.Reply(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrDisabled) {
			respondDetail(w, http.StatusServiceUnavailable, "chat is not configured")
			return
		}
		s.Log.Warn().Err(err).Msg("chat completion failed")
		respondDetail(w, http.StatusBadGateway, "chat completion failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"response": reply})
}
