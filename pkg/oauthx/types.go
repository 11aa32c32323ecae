package oauthx

// ClientCredentials are the service's own credentials at the provider,
// fetched at the start of every exchange chain.
type ClientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// AuthorizationCode is the short-lived code minted by the authorize endpoint.
type AuthorizationCode struct {
	Code string `json:"code"`
}

// TokenData is what the token endpoint returns.
type TokenData struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"` // seconds until expiry
	Scope       string `json:"scope,omitempty"`
}

// Introspection is the RFC 7662-shaped answer from the introspection
// endpoint. Subject identifies the user the token was issued for.
type Introspection struct {
	Active    bool   `json:"active"`
	Subject   string `json:"sub,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"` // unix seconds
	Scope     string `json:"scope,omitempty"`
}
