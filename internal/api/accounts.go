// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/aihub/pkg/types"
)

type signupRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// resourceRequest is the body for bookmarks and uploads.
type resourceRequest struct {
	Title       string `json:"title" validate:"required,max=300"`
	URL         string `json:"url" validate:"required,http_url"`
	Description string `json:"description" validate:"max=5000"`
	Type        string `json:"resource_type" validate:"required,oneof=code_repository paper course blog handbook"`
}

func (req resourceRequest) resource() types.Resource {
	return types.Resource{
		Type:  types.ResourceType(req.Type),
		Title: req.Title,
		Body:  req.Description,
		URL:   req.URL,
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.Store.CreateUser(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if !s.startSession(w, r, u) {
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.Store.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if !s.startSession(w, r, u) {
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		if err := s.Store.DeleteSession(r.Context(), c.Value); err != nil {
			s.storeError(w, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, currentUser(r))
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u types.User) bool {
	sess, err := s.Store.CreateSession(r.Context(), u.ID, s.cfg.SessionTTL)
	if err != nil {
		s.storeError(w, err)
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.Bookmarks(r.Context(), currentUser(r).ID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"bookmarks": list})
}

func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if !s.decode(w, r, &req) {
		return
	}
	b, err := s.Store.AddBookmark(r.Context(), currentUser(r).ID, req.resource())
	if err != nil {
		s.storeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.DeleteBookmark(r.Context(), currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitUpload(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.Store.SubmitUpload(r.Context(), currentUser(r).ID, req.resource())
	if err != nil {
		s.storeError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, u)
}

// handleListApproved shows approved community uploads as resources.
func (s *Server) handleListApproved(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.Uploads(r.Context(), types.UploadApproved)
	if err != nil {
		s.storeError(w, err)
		return
	}
	out := make([]types.Resource, 0, len(list))
	for _, u := range list {
		out = append(out, u.Resource())
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	status := types.UploadStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = types.UploadPending
	}
	if !status.Valid() {
		respondDetail(w, http.StatusBadRequest, "unknown status "+string(status))
		return
	}
	list, err := s.Store.Uploads(r.Context(), status)
	if err != nil {
		s.storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"uploads": list})
}

func (s *Server) handleReview(status types.UploadStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.Store.ReviewUpload(r.Context(), chi.URLParam(r, "id"), currentUser(r).ID, status)
		if err != nil {
			s.storeError(w, err)
			return
		}
		s.Log.Info().Str("upload", u.ID).Str("status", string(status)).Str("reviewer", currentUser(r).Username).Msg("upload reviewed")
		respondJSON(w, http.StatusOK, u)
	}
}
