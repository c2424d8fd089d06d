package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/peer2park/backend/auth"
	"github.com/peer2park/backend/internal/config"
	"github.com/peer2park/backend/spots"
	"github.com/peer2park/backend/token"
	"github.com/peer2park/backend/users"
)

// CredentialResolver normalizes an inbound request to trusted claims.
type CredentialResolver interface {
	Resolve(ctx context.Context, req *auth.Request) (*token.Claims, error)
}

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	resolver CredentialResolver
	users    *users.Service
	spots    *spots.Service
}

func New(cfg config.Config, resolver CredentialResolver, userService *users.Service, spotService *spots.Service) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		resolver: resolver,
		users:    userService,
		spots:    spotService,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
