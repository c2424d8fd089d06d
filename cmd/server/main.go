package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/peer2park/backend/auth"
	"github.com/peer2park/backend/internal/config"
	"github.com/peer2park/backend/mongodb"
	"github.com/peer2park/backend/server"
	"github.com/peer2park/backend/spots"
	"github.com/peer2park/backend/token"
	"github.com/peer2park/backend/users"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() error {
	c := config.New()
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := mongodb.Connect(ctx, c.GetMongoURI())
	if err != nil {
		return fmt.Errorf("mongodb.Connect: %w", err)
	}
	db := mongoClient.Database(c.GetMongoDatabase())

	userService := users.NewService(mongodb.NewUserRepository(db))
	spotService := spots.NewService(mongodb.NewSpotRepository(db))

	resolver, err := newResolver(ctx, c)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    c.GetPort(),
		Handler: server.New(c, resolver, userService, spotService),
	}

	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func newResolver(ctx context.Context, c config.Config) (*auth.Resolver, error) {
	keys := token.NewKeyCache(c.GetJWKSURL())
	validator := token.NewValidator(c.GetIssuerURL())
	verifier := token.NewVerifier(keys, validator)

	userInfo, err := auth.NewProviderUserInfo(ctx, c.GetIssuerURL())
	if err != nil {
		// Introspection is a fallback path; the resolver works without it.
		log.Warn().Err(err).Msg("provider discovery failed, introspection fallback disabled")
		return auth.NewResolver(verifier, nil, auth.WithDevFallback(c.AllowDevFallback())), nil
	}

	return auth.NewResolver(verifier, userInfo, auth.WithDevFallback(c.AllowDevFallback())), nil
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
