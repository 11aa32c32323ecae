// Package service holds the orchestrators of the authentication core. Each
// method runs one linear flow over the store, the session cache and the
// external authorization provider, records the outcome on the audit sink and
// returns either a redacted user view or a sentinel error. Handlers translate
// the sentinel into a 401 message body.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/copperline/gatehouse/internal/auth/audit"
	"github.com/copperline/gatehouse/internal/auth/domain"
	"github.com/copperline/gatehouse/internal/auth/session"
	"github.com/copperline/gatehouse/internal/auth/store"
	"github.com/copperline/gatehouse/pkg/cryptox"
	"github.com/copperline/gatehouse/pkg/idx"
	"github.com/copperline/gatehouse/pkg/oauthx"
	"github.com/copperline/gatehouse/pkg/slogx"
)

// resetTokenTTL is how long a password-reset token stays redeemable.
const resetTokenTTL = time.Hour

// ResetMailer delivers reset tokens out of band. Optional; when nil the token
// is only returned to the caller.
type ResetMailer interface {
	SendResetToken(to, token string) error
}

type AuthService struct {
	Store    store.Store
	Sessions *session.Store
	Provider *oauthx.Client
	Audit    audit.Sink
	Mailer   ResetMailer
}

// record mirrors one flow outcome onto the audit sink.
func (s *AuthService) record(ctx context.Context, method, response string, code int) {
	s.Audit.Record(ctx, audit.Event{Method: method, Response: response, Code: code})
}

// fail records the failure branch and returns the sentinel unchanged.
func (s *AuthService) fail(ctx context.Context, method string, err error) error {
	s.record(ctx, method, err.Error(), http.StatusUnauthorized)
	return err
}

// internal logs the underlying cause and degrades it to the opaque
// unauthorized sentinel so callers never see store or provider internals.
func (s *AuthService) internal(ctx context.Context, method string, err error) error {
	slogx.FromContext(ctx).ErrorContext(ctx, "auth flow failed",
		slog.String("method", method), slogx.Err(err))
	return s.fail(ctx, method, ErrUnauthorized)
}

// Login checks a credential pair, establishes a server-side session and
// returns the redacted user view. Every failure reads as 401 to the caller;
// the audit trail distinguishes the branches.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.PublicUser, error) {
	const method = "login"

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.PublicUser{}, s.fail(ctx, method, ErrInvalidCredentials)
	}
	if err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return domain.PublicUser{}, s.fail(ctx, method, ErrInvalidCredentials)
	}
	if !user.Enabled || user.State.Deleted() {
		return domain.PublicUser{}, s.fail(ctx, method, ErrAccountDisabled)
	}

	view := user.Public()
	if err := s.Sessions.Put(ctx, user.ID, view); err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}

	s.record(ctx, method, "ok", http.StatusOK)
	return view, nil
}

// Check validates a bearer token against the provider and resolves it to the
// current user view, re-attaching the token and its expiry. A missing token
// fails fast without touching the provider.
func (s *AuthService) Check(ctx context.Context, bearer string) (domain.PublicUser, error) {
	const method = "check"

	if bearer == "" {
		return domain.PublicUser{}, s.fail(ctx, method, ErrMissingAuthorization)
	}

	intro, err := s.Provider.Introspect(ctx, bearer)
	if err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}
	if !intro.Active || intro.Subject == "" {
		return domain.PublicUser{}, s.fail(ctx, method, ErrUnauthorized)
	}

	user, err := s.Store.Users().GetUserByID(ctx, intro.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return domain.PublicUser{}, s.fail(ctx, method, ErrUnauthorized)
	}
	if err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}

	var expiry time.Time
	if intro.ExpiresAt > 0 {
		expiry = time.Unix(intro.ExpiresAt, 0).UTC()
	}

	s.record(ctx, method, "ok", http.StatusOK)
	return user.Public().WithToken(bearer, expiry), nil
}

// SignupRequest carries the registration form.
type SignupRequest struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Signup registers a new account or silently revives a soft-deleted one that
// owns the same username or email. Conflicts with live accounts fail.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (domain.PublicUser, error) {
	const method = "signup"

	if req.Password == "" {
		return domain.PublicUser{}, s.fail(ctx, method, ErrPasswordRequired)
	}
	if req.Password != req.ConfirmPassword {
		return domain.PublicUser{}, s.fail(ctx, method, ErrPasswordConfirm)
	}

	if req.Username != "" {
		existing, err := s.Store.Users().GetUserByUsername(ctx, req.Username)
		switch {
		case err == nil && existing.State.Deleted():
			return s.reactivate(ctx, method, existing.ID)
		case err == nil:
			return domain.PublicUser{}, s.fail(ctx, method, ErrUsernameTaken)
		case !errors.Is(err, store.ErrNotFound):
			return domain.PublicUser{}, s.internal(ctx, method, err)
		}
	}

	if req.Email != "" {
		existing, err := s.Store.Users().GetUserByEmail(ctx, req.Email)
		switch {
		case err == nil && existing.State.Deleted():
			return s.reactivate(ctx, method, existing.ID)
		case err == nil:
			return domain.PublicUser{}, s.fail(ctx, method, ErrEmailTaken)
		case !errors.Is(err, store.ErrNotFound):
			return domain.PublicUser{}, s.internal(ctx, method, err)
		}
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Enabled:      true,
		State:        domain.Active(),
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}

	// New accounts always start in the standard tier.
	if err := s.Store.Users().AddUserRole(ctx, user.ID, domain.RoleStandardUser); err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}

	created, err := s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}

	s.record(ctx, method, "ok", http.StatusOK)
	return created.Public(), nil
}

func (s *AuthService) reactivate(ctx context.Context, method, userID string) (domain.PublicUser, error) {
	if err := s.Store.Users().Reactivate(ctx, userID); err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}
	s.record(ctx, method, "ok", http.StatusOK)
	return user.Public(), nil
}

// Forgot issues a password-reset token for the account behind an email. The
// raw token is returned alongside the view; if a mailer is configured it is
// also delivered out of band, best effort.
func (s *AuthService) Forgot(ctx context.Context, email string) (domain.PublicUser, string, error) {
	const method = "forgot"

	if email == "" {
		return domain.PublicUser{}, "", s.fail(ctx, method, ErrEmailRequired)
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.PublicUser{}, "", s.fail(ctx, method, ErrInvalidEmail)
	}
	if err != nil {
		return domain.PublicUser{}, "", s.internal(ctx, method, err)
	}

	token, err := cryptox.GenerateHexToken(cryptox.TokenSize128)
	if err != nil {
		return domain.PublicUser{}, "", s.internal(ctx, method, err)
	}

	expires := time.Now().UTC().Add(resetTokenTTL)
	if err := s.Store.Users().SetResetToken(ctx, user.ID, token, expires); err != nil {
		return domain.PublicUser{}, "", s.internal(ctx, method, err)
	}

	if s.Mailer != nil {
		if err := s.Mailer.SendResetToken(user.Email, token); err != nil {
			slogx.FromContext(ctx).WarnContext(ctx, "reset token mail failed", slogx.Err(err))
		}
	}

	s.record(ctx, method, "ok", http.StatusOK)
	return user.Public(), token, nil
}

// Reset redeems an outstanding reset token, replaces the password and logs
// the user straight in with the new credentials. Expired and missing tokens
// are rejected alike.
func (s *AuthService) Reset(ctx context.Context, token, newPassword string) (domain.PublicUser, error) {
	const method = "reset"

	// ":token" is the unfilled path placeholder some clients send verbatim.
	if token == "" || token == ":token" {
		return domain.PublicUser{}, s.fail(ctx, method, ErrInvalidResetToken)
	}
	if newPassword == "" {
		return domain.PublicUser{}, s.fail(ctx, method, ErrPasswordRequired)
	}

	user, err := s.Store.Users().GetUserByResetToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return domain.PublicUser{}, s.fail(ctx, method, ErrInvalidResetToken)
	}
	if err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}

	if user.ResetExpires == nil || time.Now().UTC().After(*user.ResetExpires) {
		return domain.PublicUser{}, s.fail(ctx, method, ErrInvalidResetToken)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}
	if err := s.Store.Users().ClearResetToken(ctx, user.ID); err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}

	s.record(ctx, method, "ok", http.StatusOK)

	// Complete the flow as a login with the fresh credentials.
	return s.Login(ctx, user.Email, newPassword)
}

// Logout tears down the server-side session and returns the parting view.
func (s *AuthService) Logout(ctx context.Context, userID string) (domain.PublicUser, error) {
	const method = "logout"

	if userID == "" {
		return domain.PublicUser{}, s.fail(ctx, method, ErrUnauthorized)
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.PublicUser{}, s.fail(ctx, method, ErrUnauthorized)
	}
	if err != nil {
		return domain.PublicUser{}, s.internal(ctx, method, err)
	}

	if err := s.Sessions.Delete(ctx, user.ID); err != nil {
		slogx.FromContext(ctx).WarnContext(ctx, "session delete failed", slogx.Err(err))
	}

	s.record(ctx, method, "ok", http.StatusOK)
	return user.Public(), nil
}
