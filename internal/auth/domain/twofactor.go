package domain

import "time"

// TOTPEnrollment is returned when a two-factor secret is first provisioned.
type TOTPEnrollment struct {
	Secret string `json:"secret"` // base32 encoded
	QR     string `json:"qr"`     // otpauth:// URL for QR code generation
}

// TokenGrant is the provider-issued access token handed back after a
// successful two-factor verification.
type TokenGrant struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	Expired     time.Time `json:"expired,omitzero"`
}

// TwoFactorOutcome is the result of one ga2fa interaction. Exactly one field
// is set: enrollment material, a code-required advisory, or a completed
// verification.
type TwoFactorOutcome struct {
	Enrollment   *TOTPEnrollment
	CodeRequired bool
	Grant        *TokenGrant
}
