package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/copperline/gatehouse/pkg/oauthx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func newTwoFactorService(t *testing.T) (*TwoFactorService, *recordingSink) {
	t.Helper()

	sink := &recordingSink{}
	return &TwoFactorService{
		Store:  newTestStore(t),
		Audit:  sink,
		Issuer: "gatehouse",
	}, sink
}

// deadProvider fails the test on any request; for flows that must stay local.
func deadProvider(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected provider call: %s %s", r.Method, r.URL.Path)
		http.Error(w, "unexpected", http.StatusInternalServerError)
	})
}

func TestGA2FAProvision(t *testing.T) {
	ctx := context.Background()
	svc, sink := newTwoFactorService(t)
	svc.Provider = newProviderClient(t, deadProvider(t))
	user := seedUser(t, svc.Store, "alice", "alice@example.com", "hunter22")

	// First contact provisions a secret; any submitted code is ignored.
	outcome, err := svc.GA2FA(ctx, user.ID, "123456")
	require.NoError(t, err)
	require.NotNil(t, outcome.Enrollment)
	require.False(t, outcome.CodeRequired)
	require.Nil(t, outcome.Grant)
	require.NotEmpty(t, outcome.Enrollment.Secret)
	require.True(t, strings.HasPrefix(outcome.Enrollment.QR, "otpauth://totp/"))
	require.Contains(t, outcome.Enrollment.QR, "gatehouse")

	stored, err := svc.Store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TOTPSecret)
	require.Equal(t, outcome.Enrollment.Secret, *stored.TOTPSecret)

	require.Equal(t, "ga2fa", sink.last(t).Method)
	require.Equal(t, http.StatusOK, sink.last(t).Code)
}

func TestGA2FACodeRequired(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTwoFactorService(t)
	svc.Provider = newProviderClient(t, deadProvider(t))
	user := seedUser(t, svc.Store, "alice", "alice@example.com", "hunter22")
	require.NoError(t, svc.Store.Users().UpdateTOTPSecret(ctx, user.ID, "JBSWY3DPEHPK3PXP"))

	outcome, err := svc.GA2FA(ctx, user.ID, "")
	require.NoError(t, err)
	require.True(t, outcome.CodeRequired)
	require.Nil(t, outcome.Enrollment)
	require.Nil(t, outcome.Grant)
}

func TestGA2FAVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("valid code yields a provider grant", func(t *testing.T) {
		svc, _ := newTwoFactorService(t)
		svc.Provider = newProviderClient(t, exchangeProvider(t, oauthx.TokenData{
			AccessToken: "granted-token",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		}))
		user := seedUser(t, svc.Store, "alice", "alice@example.com", "hunter22")

		// Enroll first to obtain a real secret.
		enroll, err := svc.GA2FA(ctx, user.ID, "")
		require.NoError(t, err)
		require.NotNil(t, enroll.Enrollment)

		code, err := totp.GenerateCode(enroll.Enrollment.Secret, time.Now())
		require.NoError(t, err)

		outcome, err := svc.GA2FA(ctx, user.ID, code)
		require.NoError(t, err)
		require.NotNil(t, outcome.Grant)
		require.Equal(t, "granted-token", outcome.Grant.AccessToken)
		require.Equal(t, "Bearer", outcome.Grant.TokenType)
		require.WithinDuration(t, time.Now().Add(time.Hour), outcome.Grant.Expired, 5*time.Second)
	})

	t.Run("wrong code", func(t *testing.T) {
		svc, _ := newTwoFactorService(t)
		svc.Provider = newProviderClient(t, deadProvider(t))
		user := seedUser(t, svc.Store, "alice", "alice@example.com", "hunter22")
		require.NoError(t, svc.Store.Users().UpdateTOTPSecret(ctx, user.ID, "JBSWY3DPEHPK3PXP"))

		_, err := svc.GA2FA(ctx, user.ID, "000000")
		require.ErrorIs(t, err, ErrIncorrectCode)
	})

	t.Run("provider failure degrades to unauthorized", func(t *testing.T) {
		svc, _ := newTwoFactorService(t)
		svc.Provider = newProviderClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		}))
		user := seedUser(t, svc.Store, "alice", "alice@example.com", "hunter22")

		enroll, err := svc.GA2FA(ctx, user.ID, "")
		require.NoError(t, err)

		code, err := totp.GenerateCode(enroll.Enrollment.Secret, time.Now())
		require.NoError(t, err)

		_, err = svc.GA2FA(ctx, user.ID, code)
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestGA2FABypass(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTwoFactorService(t)
	svc.Provider = newProviderClient(t, deadProvider(t))
	svc.Bypass = Bypass{Secret: "TESTSECRETTESTSECRETTESTSECRETAB", Code: "424242"}

	user := seedUser(t, svc.Store, "alice", "alice@example.com", "hunter22")
	require.NoError(t, svc.Store.Users().UpdateTOTPSecret(ctx, user.ID, svc.Bypass.Secret))

	// The bypass pair completes without any provider traffic.
	outcome, err := svc.GA2FA(ctx, user.ID, svc.Bypass.Code)
	require.NoError(t, err)
	require.NotNil(t, outcome.Grant)

	// A non-matching code still goes through real verification.
	_, err = svc.GA2FA(ctx, user.ID, "111111")
	require.ErrorIs(t, err, ErrIncorrectCode)
}

func TestGA2FAUnknownUser(t *testing.T) {
	svc, _ := newTwoFactorService(t)
	svc.Provider = newProviderClient(t, deadProvider(t))

	_, err := svc.GA2FA(context.Background(), "ghost", "123456")
	require.ErrorIs(t, err, ErrIncorrectCode)

	_, err = svc.GA2FA(context.Background(), "", "123456")
	require.ErrorIs(t, err, ErrIncorrectCode)
}
