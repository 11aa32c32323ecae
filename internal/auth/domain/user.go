package domain

import (
	"crypto/md5" // #nosec G501 - gravatar addressing, not a security context
	"encoding/hex"
	"strings"
	"time"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string     // argon2id encoded
	Enabled      bool       // false rejects login regardless of credentials
	TOTPSecret   *string    // nullable, base32 encoded
	ResetToken   *string    // nullable, hex-encoded 128-bit value
	ResetExpires *time.Time // must be in the future while ResetToken is set
	State        Lifecycle
	RoleIDs      []string
	AccountIDs   []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the redacted projection of User safe for external exposure.
// It never carries the password hash or the TOTP secret. Token and Expired
// are populated only by token-issuing flows.
type PublicUser struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Gravatar string    `json:"gravatar"`
	Email    string    `json:"email"`
	Enabled  bool      `json:"enabled"`
	Removed  bool      `json:"removed"`
	Expired  time.Time `json:"expired,omitzero"`
	Token    string    `json:"token,omitempty"`
	Roles    []string  `json:"roles"`
	Accounts []string  `json:"accounts"`
}

// Public returns the redacted view of u.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Gravatar: GravatarHash(u.Email),
		Email:    u.Email,
		Enabled:  u.Enabled,
		Removed:  u.State.Deleted(),
		Roles:    u.RoleIDs,
		Accounts: u.AccountIDs,
	}
}

// WithToken returns a copy of the view carrying a live token and its expiry.
func (p PublicUser) WithToken(token string, expired time.Time) PublicUser {
	p.Token = token
	p.Expired = expired
	return p
}

// GravatarHash derives the gravatar address hash for an email.
func GravatarHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email)))) // #nosec G401
	return hex.EncodeToString(sum[:])
}
