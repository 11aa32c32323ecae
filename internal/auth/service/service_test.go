package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/copperline/gatehouse/internal/auth/audit"
	"github.com/copperline/gatehouse/internal/auth/domain"
	"github.com/copperline/gatehouse/internal/auth/session"
	"github.com/copperline/gatehouse/internal/auth/store"
	"github.com/copperline/gatehouse/internal/auth/store/drivers/sqlite"
	"github.com/copperline/gatehouse/pkg/cryptox"
	"github.com/copperline/gatehouse/pkg/idx"
	"github.com/copperline/gatehouse/pkg/oauthx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "gatehouse-service-test-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// recordingSink captures audit events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Record(_ context.Context, e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) last(t *testing.T) audit.Event {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.events)
	return s.events[len(s.events)-1]
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestSessions(t *testing.T) *session.Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return session.NewStore(client, time.Hour)
}

// newProviderClient points an oauthx client at an in-process provider.
func newProviderClient(t *testing.T, handler http.Handler) *oauthx.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return oauthx.NewClient(srv.URL)
}

// exchangeProvider serves the three-hop token exchange chain, always handing
// out the given token.
func exchangeProvider(t *testing.T, token oauthx.TokenData) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/oauth2/credentials":
			_ = json.NewEncoder(w).Encode(oauthx.ClientCredentials{
				ClientID: "gatehouse", ClientSecret: "secret",
			})
		case "/v1/oauth2/authorize":
			_ = json.NewEncoder(w).Encode(oauthx.AuthorizationCode{Code: "authcode-1"})
		case "/v1/oauth2/token":
			_ = json.NewEncoder(w).Encode(token)
		default:
			http.NotFound(w, r)
		}
	})
}

// introspectProvider answers every introspection with the given result and
// counts how often it was called.
func introspectProvider(t *testing.T, result oauthx.Introspection, calls *int) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/oauth2/introspect", r.URL.Path)
		*calls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	})
}

// seedUser inserts an enabled user with a hashed password and the standard
// role, returning the stored row.
func seedUser(t *testing.T, st store.Store, username, email, password string) domain.User {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Enabled:      true,
		State:        domain.Active(),
	}
	require.NoError(t, st.Users().CreateUser(ctx, user))
	require.NoError(t, st.Users().AddUserRole(ctx, user.ID, domain.RoleStandardUser))

	stored, err := st.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	return stored
}
