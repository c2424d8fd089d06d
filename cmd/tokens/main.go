// Command tokens resolves a usable bearer token for the Peer2Park API and
// prints a ready-to-use Authorization header. It tries the cached bundle
// first, then a refresh exchange, then a full login (password-based when
// TEST_USERNAME/TEST_PASSWORD are set, interactive browser PKCE otherwise).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/peer2park/backend/client"
	"github.com/peer2park/backend/internal/config"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	kind := flag.String("kind", "id", `token kind: "id" or "access"`)
	flag.Parse()

	if *kind != string(client.TokenKindID) && *kind != string(client.TokenKindAccess) {
		log.Fatal().Str("kind", *kind).Msg(`token kind must be "id" or "access"`)
	}

	header, err := resolveHeader(client.TokenKind(*kind))
	if err != nil {
		log.Fatal().Err(err).Msg("token acquisition failed")
	}
	fmt.Println(header)
}

func resolveHeader(kind client.TokenKind) (string, error) {
	c := config.New()

	storePath, err := client.DefaultStorePath()
	if err != nil {
		return "", err
	}

	authenticator := client.NewCognitoAuthenticator(client.Config{
		Region:       c.GetRegion(),
		ClientID:     c.GetClientID(),
		HostedDomain: c.GetHostedDomain(),
		RedirectURL:  c.GetRedirectURL(),
		Scopes:       c.GetScopes(),
		Username:     c.GetTestUsername(),
		Password:     c.GetTestPassword(),
	})

	resolver := client.NewResolver(client.NewFileStore(storePath), authenticator)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jwt, err := resolver.GetJWT(ctx, kind)
	if err != nil {
		return "", err
	}
	return "Authorization: Bearer " + jwt, nil
}
