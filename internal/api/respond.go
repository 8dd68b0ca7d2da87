// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/pdiddy/aihub/internal/aggregate"
	"github.com/pdiddy/aihub/internal/store"
)

// maxBody caps JSON request bodies.
const maxBody = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"detail":"encoding response failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// respondDetail writes the {"detail": msg} error payload.
func respondDetail(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"detail": msg})
}

// pipelineError maps a pipeline error to a status: 400 for invalid input,
// 500 for anything else.
func (s *Server) pipelineError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, aggregate.ErrInvalidRequest) {
		msg := err.Error()
		if hints := errors.GetAllHints(err); len(hints) > 0 {
			msg += " (" + strings.Join(hints, "; ") + ")"
		}
		respondDetail(w, http.StatusBadRequest, msg)
		return
	}
	s.Log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	respondDetail(w, http.StatusInternalServerError, "failed to fetch resources: "+err.Error())
}

// storeError maps store sentinels to statuses.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		respondDetail(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, store.ErrNotFound):
		respondDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrAlreadyReviewed):
		respondDetail(w, http.StatusConflict, err.Error())
	default:
		s.Log.Error().Err(err).Msg("store operation failed")
		respondDetail(w, http.StatusInternalServerError, "internal error")
	}
}

// decode reads a JSON body into dst and validates it. It writes a 400 and
// returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		respondDetail(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := strings.ToLower(fe.Field()) + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// intParam parses an integer query parameter, returning def when absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Mark(errors.Newf("%s must be an integer, got %q", name, v), aggregate.ErrInvalidRequest)
	}
	return n, nil
}
