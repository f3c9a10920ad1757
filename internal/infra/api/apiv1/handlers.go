package apiv1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/infra/logging"
)

const maxLookupLimit = 200

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type addUserRequest struct {
	UserID int64 `json:"user_id"`
	Notify bool  `json:"notify"`
}

type usersResponse struct {
	Count int                     `json:"count"`
	Users []*model.AuthorizedUser `json:"users"`
}

type lookupsResponse struct {
	Count   int                   `json:"count"`
	Lookups []*model.LookupRecord `json:"lookups"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.validKey(r.Header.Get("X-API-Key")) {
		logging.With(r.Context(), s.log).Warn().Str("remote", r.RemoteAddr).Msg("admin login rejected")
		writeError(w, http.StatusUnauthorized, "invalid api key")
		return
	}
	tok, exp, err := s.auth.Mint(w)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("mint admin token")
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: tok, ExpiresAt: exp})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.access.List(r.Context())
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("list users")
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []*model.AuthorizedUser{}
	}
	writeJSON(w, http.StatusOK, usersResponse{Count: len(users), Users: users})
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.access.Grant(r.Context(), 0, req.UserID)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "user already allowed")
		return
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	case err != nil:
		logging.With(r.Context(), s.log).Error().Err(err).Int64("user_id", req.UserID).Msg("grant user")
		writeError(w, http.StatusInternalServerError, "failed to add user")
		return
	}

	if req.Notify && s.notifier != nil {
		if err := s.notifier.SendMessage(r.Context(), req.UserID, s.t.T("access_granted")); err != nil {
			// users who never opened a chat with the bot cannot be messaged
			logging.With(r.Context(), s.log).Warn().Err(err).Int64("user_id", req.UserID).Msg("grant notification failed")
		}
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"user_id": req.UserID})
}

func (s *Server) handleRemoveUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	err = s.access.Revoke(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not on allow-list")
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "cannot remove this user")
	case err != nil:
		logging.With(r.Context(), s.log).Error().Err(err).Int64("user_id", id).Msg("revoke user")
		writeError(w, http.StatusInternalServerError, "failed to remove user")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleListLookups accepts an optional 'limit' query parameter (default 50).
func (s *Server) handleListLookups(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n > maxLookupLimit {
			n = maxLookupLimit
		}
		limit = n
	}

	recs, err := s.history.Recent(r.Context(), limit)
	switch {
	case errors.Is(err, domain.ErrFeatureDisabled):
		writeError(w, http.StatusNotImplemented, "lookup history is disabled")
		return
	case err != nil:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("list lookups")
		writeError(w, http.StatusInternalServerError, "failed to list lookups")
		return
	}
	if recs == nil {
		recs = []*model.LookupRecord{}
	}
	writeJSON(w, http.StatusOK, lookupsResponse{Count: len(recs), Lookups: recs})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
