package server

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// CreateOrUpdateUserHandler merges the resolved claims with the optional
// profile fields in the request body and upserts the user record.
func (s *Server) CreateOrUpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized: missing or invalid JWT claims")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot read request body")
			return
		}

		record, err := s.users.Upsert(r.Context(), claims, body)
		if err != nil {
			status := statusForServiceError(err)
			if status >= http.StatusInternalServerError {
				log.Error().Err(err).Str("subject", claims.Subject).Msg("user upsert failed")
			}
			writeError(w, status, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"item":    record,
			"message": "User created/updated successfully",
		})
	}
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PreflightHandler answers CORS preflight without authentication.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCorsHeaders(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
