package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peer2park/backend/auth"
	"github.com/peer2park/backend/internal/config"
	"github.com/peer2park/backend/server"
	"github.com/peer2park/backend/spots"
	fakespotrepo "github.com/peer2park/backend/spots/repofake"
	"github.com/peer2park/backend/token"
	"github.com/peer2park/backend/users"
	fakeuserrepo "github.com/peer2park/backend/users/repofake"
)

// stubResolver replays a fixed resolution outcome and records the request.
type stubResolver struct {
	claims  *token.Claims
	err     error
	lastReq *auth.Request
}

func (s *stubResolver) Resolve(_ context.Context, req *auth.Request) (*token.Claims, error) {
	s.lastReq = req
	return s.claims, s.err
}

type serverFixture struct {
	server   *server.Server
	resolver *stubResolver
	userRepo *fakeuserrepo.FakeUserRepo
	spotRepo *fakespotrepo.FakeSpotRepo
}

func setupServer(t *testing.T) *serverFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")

	resolver := &stubResolver{claims: &token.Claims{
		Subject:  "user-123",
		Email:    "alice@example.com",
		Username: "alice",
		TokenUse: "id",
	}}
	userRepo := fakeuserrepo.NewFakeUserRepo()
	spotRepo := fakespotrepo.NewFakeSpotRepo()

	srv := server.New(
		config.New(),
		resolver,
		users.NewService(userRepo),
		spots.NewService(spotRepo),
	)

	return &serverFixture{
		server:   srv,
		resolver: resolver,
		userRepo: userRepo,
		spotRepo: spotRepo,
	}
}

func (f *serverFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer test.jwt.sig")

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

// TestHealth tests the unauthenticated liveness route
func TestHealth(t *testing.T) {
	f := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.Nil(t, f.resolver.lastReq, "health must not hit the resolver")
}

// TestPreflight tests the CORS preflight route
func TestPreflight(t *testing.T) {
	f := setupServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

// TestRequireAuth tests the authentication middleware outcomes
func TestRequireAuth(t *testing.T) {
	t.Run("passes the Authorization header to the resolver", func(t *testing.T) {
		f := setupServer(t)

		rec := f.do(t, http.MethodGet, "/spots", "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, f.resolver.lastReq)
		require.Equal(t, "Bearer test.jwt.sig", f.resolver.lastReq.Authorization)
	})

	t.Run("unauthorized", func(t *testing.T) {
		f := setupServer(t)
		f.resolver.claims = nil
		f.resolver.err = auth.ErrUnauthorized

		rec := f.do(t, http.MethodGet, "/spots", "")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"Unauthorized: missing or invalid JWT claims"}`, rec.Body.String())
	})

	t.Run("provider unavailable", func(t *testing.T) {
		f := setupServer(t)
		f.resolver.claims = nil
		f.resolver.err = auth.ErrProviderUnavailable

		rec := f.do(t, http.MethodGet, "/spots", "")

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("authenticated responses carry CORS headers", func(t *testing.T) {
		f := setupServer(t)

		rec := f.do(t, http.MethodGet, "/spots", "")

		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

// TestCreateOrUpdateUser tests the user upsert route
func TestCreateOrUpdateUser(t *testing.T) {
	t.Run("creates from claims and body", func(t *testing.T) {
		f := setupServer(t)

		rec := f.do(t, http.MethodPost, "/users", `{"displayName":"Alice A."}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Success bool         `json:"success"`
			Item    users.Record `json:"item"`
			Message string       `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		require.True(t, envelope.Success)
		require.Equal(t, "User created/updated successfully", envelope.Message)
		require.Equal(t, "user-123", envelope.Item.UserID)
		require.Equal(t, "alice@example.com", envelope.Item.Email)
		require.Equal(t, "Alice A.", envelope.Item.DisplayName)

		require.NotNil(t, f.userRepo.Get("user-123"))
	})

	t.Run("empty body provisions from claims alone", func(t *testing.T) {
		f := setupServer(t)

		rec := f.do(t, http.MethodPost, "/users", "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, f.userRepo.Get("user-123"))
	})

	t.Run("malformed body", func(t *testing.T) {
		f := setupServer(t)

		rec := f.do(t, http.MethodPost, "/users", `{"displayName":`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Nil(t, f.userRepo.Get("user-123"))
	})
}

// TestSpotRoutes tests create, list, and delete for spot reports
func TestSpotRoutes(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		f := setupServer(t)

		rec := f.do(t, http.MethodPost, "/spots", `{"latitude":51.5,"longitude":-0.12}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Message string `json:"message"`
			ID      string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "Parking spot added!", resp.Message)
		require.NotEmpty(t, resp.ID)
	})

	t.Run("create rejects missing coordinates", func(t *testing.T) {
		f := setupServer(t)

		rec := f.do(t, http.MethodPost, "/spots", `{"latitude":51.5}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list empty store as bare array", func(t *testing.T) {
		f := setupServer(t)

		rec := f.do(t, http.MethodGet, "/spots", "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("list returns stored spots", func(t *testing.T) {
		f := setupServer(t)
		f.do(t, http.MethodPost, "/spots", `{"latitude":51.5,"longitude":-0.12}`)

		rec := f.do(t, http.MethodGet, "/spots", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var records []spots.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 1)
		require.Equal(t, 51.5, records[0].Latitude)
	})

	t.Run("delete", func(t *testing.T) {
		f := setupServer(t)
		createRec := f.do(t, http.MethodPost, "/spots", `{"latitude":51.5,"longitude":-0.12}`)

		var created struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))

		rec := f.do(t, http.MethodDelete, "/spots/"+created.ID, "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = f.do(t, http.MethodDelete, "/spots/"+created.ID, "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
