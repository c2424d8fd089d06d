package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /health", s.HealthHandler())
	s.RegisterRouteFunc("OPTIONS /", s.PreflightHandler())

	s.RegisterRouteFunc("POST /users", ChainMiddleware(s.CreateOrUpdateUserHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc("POST /spots", ChainMiddleware(s.CreateSpotHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET /spots", ChainMiddleware(s.GetSpotsHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("DELETE /spots/{id}", ChainMiddleware(s.DeleteSpotHandler(), s.APIMiddleware()...))
}
