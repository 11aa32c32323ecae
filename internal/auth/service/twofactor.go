package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/copperline/gatehouse/internal/auth/audit"
	"github.com/copperline/gatehouse/internal/auth/domain"
	"github.com/copperline/gatehouse/internal/auth/store"
	"github.com/copperline/gatehouse/pkg/oauthx"
	"github.com/copperline/gatehouse/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Bypass is a fixed secret/code pair that short-circuits verification under
// test configuration. When the stored secret matches Secret and the submitted
// code matches Code, the flow succeeds without a provider round trip. Leave
// empty in production.
type Bypass struct {
	Secret string
	Code   string
}

type TwoFactorService struct {
	Store    store.Store
	Provider *oauthx.Client
	Audit    audit.Sink
	Issuer   string // issuer label baked into otpauth:// URLs
	Bypass   Bypass
}

func (s *TwoFactorService) record(ctx context.Context, response string, code int) {
	s.Audit.Record(ctx, audit.Event{Method: "ga2fa", Response: response, Code: code})
}

func (s *TwoFactorService) fail(ctx context.Context, err error) error {
	s.record(ctx, err.Error(), http.StatusUnauthorized)
	return err
}

// GA2FA drives the whole two-factor interaction from one entry point. The
// stored secret decides the state:
//
//   - no secret yet: provision one and return the enrollment material. Any
//     submitted code is ignored on this pass; the user cannot have a valid
//     code before owning the secret.
//   - secret but no code submitted: advise the caller a code is required.
//   - secret and code: verify, then exchange with the provider for a token.
func (s *TwoFactorService) GA2FA(ctx context.Context, userID, code string) (domain.TwoFactorOutcome, error) {
	if userID == "" {
		return domain.TwoFactorOutcome{}, s.fail(ctx, ErrIncorrectCode)
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TwoFactorOutcome{}, s.fail(ctx, ErrIncorrectCode)
	}
	if err != nil {
		slogx.FromContext(ctx).ErrorContext(ctx, "ga2fa user lookup failed", slogx.Err(err))
		return domain.TwoFactorOutcome{}, s.fail(ctx, ErrUnauthorized)
	}

	if user.TOTPSecret == nil || *user.TOTPSecret == "" {
		return s.provision(ctx, user)
	}

	if code == "" {
		s.record(ctx, "2FA code required", http.StatusOK)
		return domain.TwoFactorOutcome{CodeRequired: true}, nil
	}

	return s.verify(ctx, user, *user.TOTPSecret, code)
}

func (s *TwoFactorService) provision(ctx context.Context, user domain.User) (domain.TwoFactorOutcome, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		slogx.FromContext(ctx).ErrorContext(ctx, "totp generate failed", slogx.Err(err))
		return domain.TwoFactorOutcome{}, s.fail(ctx, ErrUnauthorized)
	}

	if err := s.Store.Users().UpdateTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		slogx.FromContext(ctx).ErrorContext(ctx, "totp secret persist failed", slogx.Err(err))
		return domain.TwoFactorOutcome{}, s.fail(ctx, ErrUnauthorized)
	}

	s.record(ctx, "2FA secret provisioned", http.StatusOK)
	return domain.TwoFactorOutcome{
		Enrollment: &domain.TOTPEnrollment{Secret: key.Secret(), QR: key.URL()},
	}, nil
}

func (s *TwoFactorService) verify(ctx context.Context, user domain.User, secret, code string) (domain.TwoFactorOutcome, error) {
	if s.bypassed(secret, code) {
		s.record(ctx, "ok", http.StatusOK)
		return domain.TwoFactorOutcome{Grant: &domain.TokenGrant{}}, nil
	}

	if !totp.Validate(code, secret) {
		return domain.TwoFactorOutcome{}, s.fail(ctx, ErrIncorrectCode)
	}

	grant, err := s.exchange(ctx, user.ID)
	if err != nil {
		slogx.FromContext(ctx).ErrorContext(ctx, "provider exchange failed", slogx.Err(err))
		return domain.TwoFactorOutcome{}, s.fail(ctx, ErrUnauthorized)
	}

	s.record(ctx, "ok", http.StatusOK)
	return domain.TwoFactorOutcome{Grant: grant}, nil
}

// bypassed reports whether the test-bypass pair applies. It is never true
// when no bypass is configured.
func (s *TwoFactorService) bypassed(secret, code string) bool {
	return s.Bypass.Secret != "" && secret == s.Bypass.Secret && code == s.Bypass.Code
}

// exchange runs the three-hop chain with the provider: fetch our client
// credentials, authorize the subject, swap the code for an access token.
func (s *TwoFactorService) exchange(ctx context.Context, subject string) (*domain.TokenGrant, error) {
	issuedAt := time.Now().UTC()

	creds, err := s.Provider.FetchClientCredentials(ctx)
	if err != nil {
		return nil, err
	}

	authCode, err := s.Provider.Authorize(ctx, creds, subject)
	if err != nil {
		return nil, err
	}

	token, err := s.Provider.Exchange(ctx, creds, authCode)
	if err != nil {
		return nil, err
	}

	return &domain.TokenGrant{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Expired:     oauthx.TokenExpiry(token, issuedAt),
	}, nil
}
