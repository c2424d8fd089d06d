package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/peer2park/backend/auth"
	"github.com/peer2park/backend/spots"
	"github.com/peer2park/backend/token"
	"github.com/peer2park/backend/users"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// ContextKeyClaims stores the resolved identity claims.
const ContextKeyClaims ContextKey = "claims"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// APIMiddleware is the standard chain for authenticated API routes.
func (s *Server) APIMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.CorsMiddleware,
		s.RequireAuth,
	}
}

// RequireAuth runs the credential resolver over the inbound request and
// binds the resulting claims into the request context.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.resolver.Resolve(r.Context(), &auth.Request{
			Authorization: r.Header.Get("Authorization"),
		})
		if err != nil {
			if errors.Is(err, auth.ErrProviderUnavailable) {
				log.Error().Err(err).Msg("identity provider unreachable")
				writeError(w, http.StatusServiceUnavailable, "identity provider unavailable")
				return
			}
			writeError(w, http.StatusUnauthorized, "Unauthorized: missing or invalid JWT claims")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
		next(w, r.WithContext(ctx))
	}
}

// CorsMiddleware mirrors the permissive CORS policy of the original API.
func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCorsHeaders(w)
		next(w, r)
	}
}

// ClaimsFromContext retrieves the claims bound by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims, ok
}

func statusForServiceError(err error) int {
	switch {
	case errors.Is(err, users.ErrInvalidBody), errors.Is(err, spots.ErrMissingCoordinates):
		return http.StatusBadRequest
	case errors.Is(err, users.ErrMissingSubject):
		return http.StatusUnauthorized
	case errors.Is(err, spots.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
