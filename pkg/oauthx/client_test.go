package oauthx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestExchangeChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/credentials":
			require.Equal(t, http.MethodGet, r.Method)
			_ = json.NewEncoder(w).Encode(ClientCredentials{ClientID: "svc", ClientSecret: "s3cret"})
		case "/v1/oauth2/authorize":
			require.NoError(t, r.ParseForm())
			require.Equal(t, "svc", r.FormValue("client_id"))
			require.Equal(t, "user-1", r.FormValue("subject"))
			_ = json.NewEncoder(w).Encode(AuthorizationCode{Code: "authcode"})
		case "/v1/oauth2/token":
			require.NoError(t, r.ParseForm())
			require.Equal(t, "authorization_code", r.FormValue("grant_type"))
			require.Equal(t, "authcode", r.FormValue("code"))
			_ = json.NewEncoder(w).Encode(TokenData{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 3600})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	client := NewClient(srv.URL)

	creds, err := client.FetchClientCredentials(ctx)
	require.NoError(t, err)
	require.Equal(t, "svc", creds.ClientID)

	code, err := client.Authorize(ctx, creds, "user-1")
	require.NoError(t, err)
	require.Equal(t, "authcode", code.Code)

	token, err := client.Exchange(ctx, creds, code)
	require.NoError(t, err)
	require.Equal(t, "tok", token.AccessToken)
	require.EqualValues(t, 3600, token.ExpiresIn)
}

func TestExchangeChainFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "temporarily_unavailable",
			"error_description": "down for maintenance",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.FetchClientCredentials(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	require.Equal(t, "temporarily_unavailable", apiErr.Code)
}

func TestIntrospect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/oauth2/introspect", r.URL.Path)
		require.NoError(t, r.ParseForm())
		if r.FormValue("token") == "live-token" {
			_ = json.NewEncoder(w).Encode(Introspection{Active: true, Subject: "user-9", ExpiresAt: 1900000000})
			return
		}
		_ = json.NewEncoder(w).Encode(Introspection{Active: false})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	res, err := client.Introspect(context.Background(), "live-token")
	require.NoError(t, err)
	require.True(t, res.Active)
	require.Equal(t, "user-9", res.Subject)

	res, err = client.Introspect(context.Background(), "dead-token")
	require.NoError(t, err)
	require.False(t, res.Active)
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("prefers expires_in", func(t *testing.T) {
		got := TokenExpiry(TokenData{AccessToken: "opaque", ExpiresIn: 60}, now)
		require.Equal(t, now.Add(time.Minute), got)
	})

	t.Run("falls back to exp claim", func(t *testing.T) {
		exp := now.Add(30 * time.Minute)
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user-1",
			"exp": exp.Unix(),
		}).SignedString([]byte("test-key"))
		require.NoError(t, err)

		got := TokenExpiry(TokenData{AccessToken: raw}, now)
		require.WithinDuration(t, exp, got, time.Second)
	})

	t.Run("zero time when undecodable", func(t *testing.T) {
		got := TokenExpiry(TokenData{AccessToken: "not-a-jwt"}, now)
		require.True(t, got.IsZero())
	})
}
